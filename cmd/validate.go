package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prepkitchen/label-cli/internal/nutrient"
	"github.com/prepkitchen/label-cli/internal/plausibility"
)

var (
	validateFile     string
	validateName     string
	validateCategory string
)

// profileFile is the YAML shape for a standalone per-100g profile.
type profileFile struct {
	Name     string             `yaml:"name"`
	Category string             `yaml:"category"`
	Profile  map[string]float64 `yaml:"profile"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a per-100g nutrient profile for plausibility",
	RunE: func(cmd *cobra.Command, args []string) error {
		var in profileFile
		if err := readYAML(validateFile, &in); err != nil {
			return err
		}
		if validateName != "" {
			in.Name = validateName
		}
		if validateCategory != "" {
			in.Category = validateCategory
		}

		profile, unknown := nutrient.FromStringMap(in.Profile)
		for _, k := range unknown {
			zap.L().Warn("unknown nutrient key ignored", zap.String("key", k))
		}

		category := plausibility.ParseCategory(in.Category)
		if in.Category == "" {
			category = plausibility.DetectCategory(in.Name)
		}
		validator := plausibility.Validator{AtwaterTolerance: cfg.Label.AtwaterTolerance}
		report := validator.Validate(profile, category, in.Name)

		formatReport(report)

		if report.HasErrors() {
			return eris.Errorf("validate: %q has plausibility errors", in.Name)
		}
		return nil
	},
}

func formatReport(report *plausibility.Report) {
	fmt.Printf("Product: %s  Category: %s\n", report.ProductName, report.Category)
	if len(report.Issues) == 0 {
		fmt.Println("No issues found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SEVERITY\tRULE\tKEY\tOBSERVED\tEXPECTED\tMESSAGE")
	_, _ = fmt.Fprintln(w, "--------\t----\t---\t--------\t--------\t-------")
	for _, is := range report.Issues {
		expected := ""
		if is.Suggested != nil {
			expected = fmt.Sprintf("%.1f-%.1f", is.Suggested.Min, is.Suggested.Max)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\t%s\n",
			is.Severity, is.Rule, is.Key, is.Observed, expected, is.Message)
	}
	_ = w.Flush()
}

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "profile YAML (required)")
	validateCmd.Flags().StringVar(&validateName, "name", "", "override the product name")
	validateCmd.Flags().StringVar(&validateCategory, "category", "", "force a category instead of detecting one")
	_ = validateCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(validateCmd)
}
