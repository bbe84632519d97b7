package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prepkitchen/label-cli/internal/label"
	"github.com/prepkitchen/label-cli/internal/model"
	"github.com/prepkitchen/label-cli/internal/plausibility"
	"github.com/prepkitchen/label-cli/internal/store"
)

var (
	computeFile     string
	computeSKU      string
	computeTitle    string
	computeServings float64
	computeSave     bool
	computeStrict   bool
	computeJSON     bool
)

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute a nutrition label for a meal-service event",
	Long:  "Aggregates consumed lot quantities into per-serving nutrients, applies FDA rounding, builds the ingredient and allergen declarations, and runs the calorie QA check. Plausibility errors mark the label provisional; --strict fails instead.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var input model.ComputationInput
		if err := readYAML(computeFile, &input); err != nil {
			return err
		}
		if computeServings > 0 {
			input.Servings = computeServings
		}

		reports := validateLots(input.Lots)
		hasErrors := false
		for _, report := range reports {
			for _, issue := range report.Issues {
				zap.L().Warn("plausibility issue",
					zap.String("product", report.ProductName),
					zap.String("rule", issue.Rule),
					zap.String("severity", string(issue.Severity)),
					zap.String("detail", issue.Message),
				)
			}
			if report.HasErrors() {
				hasErrors = true
			}
		}
		if hasErrors {
			if computeStrict {
				return eris.New("compute: plausibility errors present, refusing under --strict")
			}
			input.Provisional = true
		}

		engine := label.NewEngine(cfg.Label.QAKcalTolerance, cfg.Label.QARelativeTolerance)
		result := engine.Compute(input)

		if computeSave {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate store")
			}
			if err := freezeLabel(ctx, st, computeSKU, computeTitle, result, input.Lots); err != nil {
				return err
			}
		}

		if computeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		formatFactsPanel(os.Stdout, result)
		return nil
	},
}

// validateLots runs the plausibility checks on every lot's per-100g profile.
func validateLots(lots []model.ConsumedLot) []*plausibility.Report {
	validator := plausibility.Validator{AtwaterTolerance: cfg.Label.AtwaterTolerance}
	reports := make([]*plausibility.Report, 0, len(lots))
	for _, lot := range lots {
		name := lot.ProductName
		if name == "" {
			name = lot.IngredientName
		}
		reports = append(reports, validator.ValidateNamed(lot.NutrientsPer100g, name))
	}
	return reports
}

// freezeLabel persists the result as a new immutable snapshot version, a
// SUPERSEDES edge to the prior version when one exists, and a consumed-lot
// lineage edge per lot.
func freezeLabel(ctx context.Context, st store.Store, sku, title string, result *model.LabelResult, lots []model.ConsumedLot) error {
	prior, err := st.LatestSnapshot(ctx, model.LabelTypeSKU, sku)
	if err != nil {
		return err
	}

	snap, err := st.FreezeSnapshot(ctx, &model.LabelSnapshot{
		LabelType:     model.LabelTypeSKU,
		ExternalRefID: sku,
		Title:         title,
		Result:        result,
		CreatedBy:     cfg.Label.CreatedBy,
	})
	if err != nil {
		return err
	}
	zap.L().Info("label frozen",
		zap.String("snapshot_id", snap.ID),
		zap.String("sku", sku),
		zap.Int("version", snap.Version),
	)

	if prior != nil {
		if err := st.AddLineageEdge(ctx, &model.LineageEdge{
			ParentLabelID: snap.ID,
			ChildLabelID:  prior.ID,
			EdgeType:      model.EdgeSupersedes,
			CreatedBy:     cfg.Label.CreatedBy,
		}); err != nil {
			return err
		}
	}

	for _, lot := range lots {
		lotSnap, err := st.FreezeSnapshot(ctx, &model.LabelSnapshot{
			LabelType:     model.LabelTypeLot,
			ExternalRefID: lot.LotID,
			Title:         lot.ProductName,
			CreatedBy:     cfg.Label.CreatedBy,
		})
		if err != nil {
			return err
		}
		if err := st.AddLineageEdge(ctx, &model.LineageEdge{
			ParentLabelID: snap.ID,
			ChildLabelID:  lotSnap.ID,
			EdgeType:      model.EdgeProductConsumedFromLot,
			CreatedBy:     cfg.Label.CreatedBy,
		}); err != nil {
			return err
		}
	}
	return nil
}

// formatFactsPanel renders the rounded facts the way they would read on a
// printed label, plus the QA verdict.
func formatFactsPanel(out io.Writer, result *model.LabelResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Serving weight\t%.0f g\n", result.ServingWeightG)
	_, _ = fmt.Fprintf(w, "Calories\t%d\n", result.RoundedFacts.Calories)
	_, _ = fmt.Fprintf(w, "Total Fat\t%.1f g\n", result.RoundedFacts.FatG)
	_, _ = fmt.Fprintf(w, "  Saturated Fat\t%.1f g\n", result.RoundedFacts.SatFatG)
	_, _ = fmt.Fprintf(w, "  Trans Fat\t%.1f g\n", result.RoundedFacts.TransFatG)
	_, _ = fmt.Fprintf(w, "Cholesterol\t%d mg\n", result.RoundedFacts.CholesterolMg)
	_, _ = fmt.Fprintf(w, "Sodium\t%d mg\n", result.RoundedFacts.SodiumMg)
	_, _ = fmt.Fprintf(w, "Total Carbohydrate\t%d g\n", result.RoundedFacts.CarbG)
	_, _ = fmt.Fprintf(w, "  Dietary Fiber\t%d g\n", result.RoundedFacts.FiberG)
	_, _ = fmt.Fprintf(w, "  Total Sugars\t%d g\n", result.RoundedFacts.SugarsG)
	_, _ = fmt.Fprintf(w, "  Added Sugars\t%d g\n", result.RoundedFacts.AddedSugarsG)
	_, _ = fmt.Fprintf(w, "Protein\t%d g\n", result.RoundedFacts.ProteinG)
	_ = w.Flush()

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, result.IngredientDeclaration)
	_, _ = fmt.Fprintln(out, result.AllergenStatement)
	_, _ = fmt.Fprintln(out)

	verdict := "PASS"
	if !result.QA.Pass {
		verdict = "FAIL"
	}
	_, _ = fmt.Fprintf(out, "QA: macro estimate %.0f kcal vs labeled %d (delta %+.0f, tolerance %.0f): %s\n",
		result.QA.MacroKcal, result.QA.LabeledCalories, result.QA.Delta, result.QA.Tolerance, verdict)
	if result.Provisional {
		_, _ = fmt.Fprintln(out, "PROVISIONAL: plausibility errors present, label pending review")
	}
}

func init() {
	computeCmd.Flags().StringVarP(&computeFile, "file", "f", "", "meal-service input YAML (required)")
	computeCmd.Flags().StringVar(&computeSKU, "sku", "", "SKU reference for the frozen snapshot")
	computeCmd.Flags().StringVar(&computeTitle, "title", "", "snapshot title")
	computeCmd.Flags().Float64Var(&computeServings, "servings", 0, "override servings from the input file")
	computeCmd.Flags().BoolVar(&computeSave, "save", false, "freeze the result as a new snapshot version")
	computeCmd.Flags().BoolVar(&computeStrict, "strict", false, "fail on plausibility errors instead of marking provisional")
	computeCmd.Flags().BoolVar(&computeJSON, "json", false, "print the full result as JSON")
	_ = computeCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(computeCmd)
}
