// Package plausibility checks per-100g nutrient profiles against universal
// physical constraints and category-specific expectations. It reports
// findings as ordered issues; it never rejects a profile outright, since an
// implausible label is frozen as provisional rather than blocked.
package plausibility

import (
	"fmt"
	"math"

	"github.com/prepkitchen/label-cli/internal/nutrient"
)

// Severity grades an issue.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Issue is one plausibility finding.
type Issue struct {
	Key       nutrient.Key `json:"key,omitempty"`
	Observed  float64      `json:"observed"`
	Rule      string       `json:"rule"`
	Severity  Severity     `json:"severity"`
	Message   string       `json:"message"`
	Suggested *Range       `json:"suggested,omitempty"`
}

// Report is the ordered issue list for one profile.
type Report struct {
	ProductName string   `json:"product_name,omitempty"`
	Category    Category `json:"category"`
	Issues      []Issue  `json:"issues"`
}

// HasErrors reports whether any ERROR-severity issue is present. Errors are
// the signal the boundary layer uses to mark a label provisional.
func (r *Report) HasErrors() bool {
	for _, is := range r.Issues {
		if is.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Atwater constants: calories per gram of each macro.
const (
	kcalPerGramProtein = 4.0
	kcalPerGramCarb    = 4.0
	kcalPerGramFat     = 9.0
)

const (
	maxKcalPer100g          = 900
	maxMacroMassPer100g     = 105
	defaultAtwaterTolerance = 0.15
	// Below this many estimated kcal the Atwater cross-check is skipped:
	// the 4/4/9 approximation is meaningless against rounding noise.
	atwaterMinKcal = 10
)

// Validator applies the plausibility rules. The zero value uses the
// production thresholds.
type Validator struct {
	// AtwaterTolerance is the relative kcal discrepancy above which the
	// Atwater cross-check warns; zero or negative selects the default (0.15).
	AtwaterTolerance float64
}

func (v Validator) atwaterTolerance() float64 {
	if v.AtwaterTolerance <= 0 {
		return defaultAtwaterTolerance
	}
	return v.AtwaterTolerance
}

// Validate checks profile against universal rules and, when category is not
// unknown, the category's expected ranges. productName is used for
// diagnostics only. Pass CategoryUnknown (or the result of DetectCategory)
// as category.
func (v Validator) Validate(profile nutrient.Profile, category Category, productName string) *Report {
	report := &Report{ProductName: productName, Category: category}
	report.Issues = append(report.Issues, v.universalIssues(profile, productName)...)
	report.Issues = append(report.Issues, categoryIssues(profile, category, productName)...)
	return report
}

// ValidateNamed detects the category from productName before validating.
func (v Validator) ValidateNamed(profile nutrient.Profile, productName string) *Report {
	return v.Validate(profile, DetectCategory(productName), productName)
}

// Validate runs a zero-value Validator.
func Validate(profile nutrient.Profile, category Category, productName string) *Report {
	return Validator{}.Validate(profile, category, productName)
}

// ValidateNamed runs a zero-value Validator.
func ValidateNamed(profile nutrient.Profile, productName string) *Report {
	return Validator{}.ValidateNamed(profile, productName)
}

func (v Validator) universalIssues(profile nutrient.Profile, productName string) []Issue {
	var issues []Issue

	// Negative amounts are impossible regardless of food.
	for _, key := range nutrient.All() {
		if !profile.Has(key) {
			continue
		}
		if v := profile.Get(key); v < 0 {
			issues = append(issues, Issue{
				Key: key, Observed: v, Rule: "non_negative", Severity: SeverityError,
				Message: fmt.Sprintf("%s: %s is negative (%.2f)", productName, key, v),
			})
		}
	}

	kcal := profile.Get(nutrient.Kcal)
	if kcal > maxKcalPer100g {
		issues = append(issues, Issue{
			Key: nutrient.Kcal, Observed: kcal, Rule: "energy_density", Severity: SeverityError,
			Message:   fmt.Sprintf("%s: %.0f kcal/100g exceeds the physical maximum", productName, kcal),
			Suggested: &Range{0, maxKcalPer100g},
		})
	}

	issues = append(issues, hierarchyIssues(profile, productName)...)

	protein := profile.Get(nutrient.Protein)
	carb := profile.Get(nutrient.Carb)
	fat := profile.Get(nutrient.Fat)
	fiber := profile.Get(nutrient.Fiber)

	if mass := protein + carb + fat + fiber; mass > maxMacroMassPer100g {
		issues = append(issues, Issue{
			Observed: mass, Rule: "macro_mass", Severity: SeverityError,
			Message: fmt.Sprintf(
				"%s: %.1fg of macros per 100g of food is physically impossible", productName, mass),
			Suggested: &Range{0, maxMacroMassPer100g},
		})
	}

	if atwater := protein*kcalPerGramProtein + carb*kcalPerGramCarb + fat*kcalPerGramFat; atwater >= atwaterMinKcal {
		tolerance := v.atwaterTolerance()
		if math.Abs(kcal-atwater)/atwater > tolerance {
			issues = append(issues, Issue{
				Key: nutrient.Kcal, Observed: kcal, Rule: "atwater_consistency", Severity: SeverityWarning,
				Message: fmt.Sprintf(
					"%s: reported %.0f kcal differs from the %.0f kcal macro estimate by more than %.0f%%",
					productName, kcal, atwater, tolerance*100),
				Suggested: &Range{atwater * (1 - tolerance), atwater * (1 + tolerance)},
			})
		}
	}

	return issues
}

// hierarchyIssues enforces the sub-component constraints: a part can never
// exceed its whole.
func hierarchyIssues(profile nutrient.Profile, productName string) []Issue {
	pairs := []struct {
		part, whole nutrient.Key
		rule        string
	}{
		{nutrient.SatFat, nutrient.Fat, "sat_fat_within_fat"},
		{nutrient.TransFat, nutrient.Fat, "trans_fat_within_fat"},
		{nutrient.Sugars, nutrient.Carb, "sugars_within_carb"},
		{nutrient.AddedSugars, nutrient.Sugars, "added_sugars_within_sugars"},
		{nutrient.Fiber, nutrient.Carb, "fiber_within_carb"},
	}

	var issues []Issue
	for _, p := range pairs {
		if !profile.Has(p.part) {
			continue
		}
		part, whole := profile.Get(p.part), profile.Get(p.whole)
		if part > whole {
			issues = append(issues, Issue{
				Key: p.part, Observed: part, Rule: p.rule, Severity: SeverityError,
				Message: fmt.Sprintf("%s: %s (%.2fg) exceeds %s (%.2fg)",
					productName, p.part, part, p.whole, whole),
				Suggested: &Range{0, whole},
			})
		}
	}
	return issues
}

func categoryIssues(profile nutrient.Profile, category Category, productName string) []Issue {
	ranges, ok := categoryRanges[category]
	if !ok {
		return nil
	}

	var issues []Issue
	for _, key := range checkedCategoryKeys {
		if !profile.Has(key) {
			continue
		}
		band, ok := ranges[key]
		if !ok {
			continue
		}
		v := profile.Get(key)
		if band.Contains(v) {
			continue
		}
		suggested := band
		issues = append(issues, Issue{
			Key: key, Observed: v, Rule: fmt.Sprintf("category_range_%s", category),
			Severity: SeverityWarning,
			Message: fmt.Sprintf("%s: %s %.2f outside expected %s range [%.1f, %.1f] per 100g",
				productName, key, v, category, band.Min, band.Max),
			Suggested: &suggested,
		})
	}
	return issues
}
