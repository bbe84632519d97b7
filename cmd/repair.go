package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prepkitchen/label-cli/internal/repair"
	"github.com/prepkitchen/label-cli/internal/store"
)

var repairDryRun bool

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Replace trace placeholder values with reference medians",
	Long: `Scans stored nutrient values for trace placeholders (values at or below
the configured threshold) and replaces each with the best available
reference: the product's own median, the global median for the key, or a
fixed fallback. Repaired rows are marked derived, flagged as historical
exceptions, and queued for review.`,
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

		all, err := st.ListNutrientValues(ctx, store.ValueFilter{})
		if err != nil {
			return err
		}

		repairer := repair.NewRepairer(cfg.Repair.TraceThreshold)

		readings := make([]repair.Reading, 0, len(all))
		byProduct := make(map[string]string)
		for _, row := range all {
			readings = append(readings, repair.Reading{
				IngredientID: row.ProductID,
				Key:          row.Key,
				Value:        row.ValuePer100g,
			})
			byProduct[row.ProductID] = row.ProductID
		}
		refs := repairer.BuildReferences(readings)

		threshold := repairer.Threshold()
		trace, err := st.ListNutrientValues(ctx, store.ValueFilter{AtOrBelow: &threshold})
		if err != nil {
			return err
		}

		runID := uuid.NewString()
		result := repairer.Sweep(trace, refs, byProduct, runID, time.Now().UTC())

		if !repairDryRun && result.RowsRepaired > 0 {
			if err := st.SaveNutrientValues(ctx, trace); err != nil {
				return err
			}
		}

		zap.L().Info("repair sweep finished",
			zap.String("run_id", runID),
			zap.Int("trace_rows", result.TraceRows),
			zap.Int("repaired", result.RowsRepaired),
			zap.Bool("dry_run", repairDryRun),
		)

		mode := "applied"
		if repairDryRun {
			mode = "dry run, nothing written"
		}
		fmt.Printf("Scanned %d trace rows of %d total, repaired %d (%s)\n",
			result.TraceRows, len(all), result.RowsRepaired, mode)
		for ref, n := range result.ByRef {
			fmt.Printf("  %-24s %d\n", ref, n)
		}
		return nil
	},
}

func init() {
	repairCmd.Flags().BoolVar(&repairDryRun, "dry-run", false, "report what would change without writing")
	rootCmd.AddCommand(repairCmd)
}
