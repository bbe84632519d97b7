package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/prepkitchen/label-cli/internal/label"
	"github.com/prepkitchen/label-cli/internal/model"
)

var (
	recomputeDir     string
	recomputeSince   string
	recomputeWorkers int
	recomputeStrict  bool
)

// recomputeInput is one meal-service file in the batch directory. The SKU and
// title ride alongside the computation input so each file freezes its own
// snapshot version.
type recomputeInput struct {
	SKU                    string `yaml:"sku"`
	Title                  string `yaml:"title"`
	model.ComputationInput `yaml:",inline"`
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute and freeze labels for a directory of meal-service inputs",
	Long: `Walks a directory of meal-service YAML files and recomputes each label
concurrently, freezing a new snapshot version per file. Prior versions are
never touched; each new snapshot supersedes the last via a lineage edge.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		matches, err := filepath.Glob(filepath.Join(recomputeDir, "*.yaml"))
		if err != nil {
			return eris.Wrap(err, "recompute: glob inputs")
		}
		ymls, err := filepath.Glob(filepath.Join(recomputeDir, "*.yml"))
		if err != nil {
			return eris.Wrap(err, "recompute: glob inputs")
		}
		matches = append(matches, ymls...)
		sort.Strings(matches)

		if recomputeSince != "" {
			since, err := time.Parse("2006-01-02", recomputeSince)
			if err != nil {
				return eris.Wrapf(err, "recompute: parse --since %q", recomputeSince)
			}
			kept := matches[:0]
			for _, path := range matches {
				info, err := os.Stat(path)
				if err != nil {
					return eris.Wrapf(err, "recompute: stat %s", path)
				}
				if !info.ModTime().Before(since) {
					kept = append(kept, path)
				}
			}
			matches = kept
		}
		if len(matches) == 0 {
			return eris.Errorf("recompute: no YAML inputs under %s", recomputeDir)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		engine := label.NewEngine(cfg.Label.QAKcalTolerance, cfg.Label.QARelativeTolerance)

		var frozen, failed atomic.Int64
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(recomputeWorkers)

		for _, path := range matches {
			path := path
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}

				var in recomputeInput
				if err := readYAML(path, &in); err != nil {
					failed.Add(1)
					zap.L().Error("recompute input unreadable",
						zap.String("path", path), zap.Error(err))
					return nil
				}
				if in.SKU == "" {
					failed.Add(1)
					zap.L().Error("recompute input missing sku", zap.String("path", path))
					return nil
				}

				hasErrors := false
				for _, report := range validateLots(in.Lots) {
					if report.HasErrors() {
						hasErrors = true
					}
				}
				if hasErrors {
					if recomputeStrict {
						failed.Add(1)
						zap.L().Error("plausibility errors, skipped under --strict",
							zap.String("path", path), zap.String("sku", in.SKU))
						return nil
					}
					in.Provisional = true
				}

				result := engine.Compute(in.ComputationInput)
				if err := freezeLabel(ctx, st, in.SKU, in.Title, result, in.Lots); err != nil {
					failed.Add(1)
					zap.L().Error("freeze failed",
						zap.String("path", path), zap.String("sku", in.SKU), zap.Error(err))
					return nil
				}
				frozen.Add(1)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "recompute: batch interrupted")
		}

		fmt.Printf("Recomputed %d of %d inputs (%d failed)\n",
			frozen.Load(), len(matches), failed.Load())
		if n := failed.Load(); n > 0 {
			return eris.Errorf("recompute: %d inputs failed", n)
		}
		return nil
	},
}

func init() {
	recomputeCmd.Flags().StringVarP(&recomputeDir, "dir", "d", ".", "directory of meal-service YAML inputs")
	recomputeCmd.Flags().StringVar(&recomputeSince, "since", "", "only inputs modified on or after this date (YYYY-MM-DD)")
	recomputeCmd.Flags().IntVar(&recomputeWorkers, "workers", 4, "concurrent recomputations")
	recomputeCmd.Flags().BoolVar(&recomputeStrict, "strict", false, "skip inputs with plausibility errors instead of marking provisional")
	rootCmd.AddCommand(recomputeCmd)
}
