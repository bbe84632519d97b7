package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prepkitchen/label-cli/internal/model"
	"github.com/prepkitchen/label-cli/internal/yield"
)

var (
	calibrateComponent string
	calibrateFile      string
	calibrateDefault   float64
	calibrateAccept    string
	calibrateReject    string
	calibrateReviewer  string
)

// samplesFile is the YAML shape for weigh-in imports.
type samplesFile struct {
	Samples []model.YieldSample `yaml:"samples"`
}

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Propose a calibrated yield for a component, or decide an open proposal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		// Decision mode: accept or reject an open proposal and stop.
		if calibrateAccept != "" || calibrateReject != "" {
			if calibrateAccept != "" && calibrateReject != "" {
				return eris.New("calibrate: --accept and --reject are mutually exclusive")
			}
			if calibrateReviewer == "" {
				return eris.New("calibrate: --reviewer is required when deciding a proposal")
			}
			id, status := calibrateAccept, model.ProposalAccepted
			if calibrateReject != "" {
				id, status = calibrateReject, model.ProposalRejected
			}
			if err := st.SetProposalStatus(ctx, id, status, calibrateReviewer); err != nil {
				return err
			}
			fmt.Printf("Proposal %s: %s by %s\n", truncateID(id), status, calibrateReviewer)
			return nil
		}

		if calibrateComponent == "" {
			return eris.New("calibrate: --component is required")
		}

		var samples []model.YieldSample
		if calibrateFile != "" {
			var in samplesFile
			if err := readYAML(calibrateFile, &in); err != nil {
				return err
			}
			for i := range in.Samples {
				if in.Samples[i].ComponentID == "" {
					in.Samples[i].ComponentID = calibrateComponent
				}
			}
			if err := st.AppendYieldSamples(ctx, in.Samples); err != nil {
				return err
			}
			zap.L().Info("yield samples imported",
				zap.String("component_id", calibrateComponent),
				zap.Int("count", len(in.Samples)),
			)
		}
		samples, err = st.ListYieldSamples(ctx, calibrateComponent)
		if err != nil {
			return err
		}

		defaultYield := effectiveDefaultYield(
			cmd.Flags().Changed("default"), calibrateDefault, cfg.Yield.DefaultYieldPct)

		calibrator := yield.NewCalibrator(cfg.Yield)
		proposal := calibrator.Propose(calibrateComponent, samples, defaultYield)

		if err := st.SaveYieldProposal(ctx, &proposal); err != nil {
			return err
		}

		formatProposal(&proposal)
		return nil
	},
}

// effectiveDefaultYield resolves the recipe default: an explicit flag wins,
// then the configured yield.default_yield_pct, then the flag's built-in
// default.
func effectiveDefaultYield(flagChanged bool, flagValue, configured float64) float64 {
	if flagChanged {
		return flagValue
	}
	if configured > 0 {
		return configured
	}
	return flagValue
}

func formatProposal(p *model.YieldProposal) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Proposal:\t%s\n", truncateID(p.ID))
	_, _ = fmt.Fprintf(w, "Component:\t%s\n", p.ComponentID)
	_, _ = fmt.Fprintf(w, "Proposed yield:\t%.2f%%\n", p.ProposedYieldPct)
	_, _ = fmt.Fprintf(w, "Basis:\t%s\n", p.Basis)
	_, _ = fmt.Fprintf(w, "Confidence:\t%.2f\n", p.Confidence)
	_, _ = fmt.Fprintf(w, "Samples:\t%d clean, %d outliers\n", p.SampleCount, p.OutlierCount)
	_, _ = fmt.Fprintf(w, "Reason:\t%s\n", p.Reason)
	_ = w.Flush()
}

func init() {
	calibrateCmd.Flags().StringVar(&calibrateComponent, "component", "", "component ID to calibrate")
	calibrateCmd.Flags().StringVarP(&calibrateFile, "file", "f", "", "weigh-in samples YAML to import before calibrating")
	calibrateCmd.Flags().Float64Var(&calibrateDefault, "default", 100.0, "recipe default yield percent")
	calibrateCmd.Flags().StringVar(&calibrateAccept, "accept", "", "accept the open proposal with this ID")
	calibrateCmd.Flags().StringVar(&calibrateReject, "reject", "", "reject the open proposal with this ID")
	calibrateCmd.Flags().StringVar(&calibrateReviewer, "reviewer", "", "reviewer recorded on the decision")
	rootCmd.AddCommand(calibrateCmd)
}
