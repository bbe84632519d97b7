package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prepkitchen/label-cli/internal/consensus"
	"github.com/prepkitchen/label-cli/internal/model"
	"github.com/prepkitchen/label-cli/internal/nutrient"
)

var (
	consensusFile      string
	consensusProductID string
	consensusTasks     bool
)

// readingsFile is the YAML shape for consensus input.
type readingsFile struct {
	ProductName string                `yaml:"product_name"`
	Sources     []model.SourceReading `yaml:"sources"`
}

var consensusCmd = &cobra.Command{
	Use:   "consensus",
	Short: "Resolve multi-source nutrient readings into a consensus profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		var in readingsFile
		if err := readYAML(consensusFile, &in); err != nil {
			return err
		}

		resolver := consensus.NewResolver(cfg.Consensus)
		result := resolver.Resolve(in.Sources)

		formatConsensus(os.Stdout, result)

		if consensusTasks && len(result.DivergentKeys) > 0 {
			ctx := cmd.Context()
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return err
			}

			for _, key := range result.DivergentKeys {
				payload, _ := json.Marshal(result.Values[key])
				task := model.VerificationTask{
					TaskType:  model.TaskDivergence,
					Severity:  "WARNING",
					Title:     fmt.Sprintf("%s: sources diverge on %s", in.ProductName, key),
					ProductID: consensusProductID,
					Payload:   string(payload),
					CreatedBy: cfg.Label.CreatedBy,
				}
				if err := st.OpenTask(ctx, &task); err != nil {
					return err
				}
				zap.L().Info("divergence task opened",
					zap.String("task_id", task.ID),
					zap.String("key", string(key)),
				)
			}
		}
		return nil
	},
}

func formatConsensus(out io.Writer, result *consensus.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tVALUE\tSOURCE\tAGREEMENT\tCV\tVOTES\tFLAG")
	_, _ = fmt.Fprintln(w, "---\t-----\t------\t---------\t--\t-----\t----")

	for _, key := range nutrient.All() {
		res, ok := result.Values[key]
		if !ok {
			continue
		}
		flag := ""
		if res.Divergent {
			flag = "DIVERGENT"
		}
		_, _ = fmt.Fprintf(w, "%s\t%.2f\t%s\t%.2f\t%.3f\t%d\t%s\n",
			key, res.SelectedValue, res.SelectedSource, res.AgreementScore, res.CV, len(res.Contributors), flag)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\nOverall confidence: %.2f  Primary source: %s  Divergent keys: %d\n",
		result.OverallConfidence, result.PrimarySourceID, len(result.DivergentKeys))
}

func init() {
	consensusCmd.Flags().StringVarP(&consensusFile, "file", "f", "", "source readings YAML (required)")
	consensusCmd.Flags().StringVar(&consensusProductID, "product", "", "product ID for opened tasks")
	consensusCmd.Flags().BoolVar(&consensusTasks, "tasks", false, "open a verification task per divergent key")
	_ = consensusCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(consensusCmd)
}
