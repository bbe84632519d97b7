// Package label turns consumed lot quantities into a frozen nutrition label:
// per-serving values over the full nutrient key set, the FDA-rounded facts
// panel, predominance-ordered ingredient declaration, allergen statement,
// and a calorie QA cross-check. Compute is pure: identical inputs produce
// identical results regardless of lot order.
package label

import (
	"math"
	"sort"
	"strings"

	"github.com/prepkitchen/label-cli/internal/model"
	"github.com/prepkitchen/label-cli/internal/nutrient"
	"github.com/prepkitchen/label-cli/internal/rounding"
)

const (
	defaultKcalTolerance     = 20.0
	defaultRelativeTolerance = 0.35
)

// noAllergenStatement is the declaration used when no major allergen is
// present anywhere in the recipe.
const noAllergenStatement = "Contains: None of the 9 major allergens"

// Engine computes labels with fixed QA tolerances.
type Engine struct {
	kcalTolerance     float64
	relativeTolerance float64
}

// NewEngine returns an engine with the given QA tolerances. Zero values
// select the defaults (±20 kcal, 35% relative).
func NewEngine(kcalTolerance, relativeTolerance float64) *Engine {
	if kcalTolerance <= 0 {
		kcalTolerance = defaultKcalTolerance
	}
	if relativeTolerance <= 0 {
		relativeTolerance = defaultRelativeTolerance
	}
	return &Engine{kcalTolerance: kcalTolerance, relativeTolerance: relativeTolerance}
}

// Compute produces the label for one meal-service event.
func (e *Engine) Compute(input model.ComputationInput) *model.LabelResult {
	servings := input.Servings
	if servings <= 0 {
		servings = 1
	}

	totals := nutrient.Profile{}
	var totalWeight float64
	for _, lot := range input.Lots {
		totalWeight += lot.GramsConsumed
		for key, per100 := range lot.NutrientsPer100g {
			if !key.Valid() {
				continue
			}
			totals[key] += per100 * lot.GramsConsumed / 100.0
		}
	}

	// Every canonical key appears in the output, absent ones as zero, so
	// two labels are always field-for-field comparable.
	perServing := make(map[nutrient.Key]float64, len(nutrient.All()))
	for _, key := range nutrient.All() {
		perServing[key] = totals[key] / servings
	}

	facts := roundFacts(perServing)

	result := &model.LabelResult{
		ServingWeightG:        totalWeight / servings,
		PerServing:            perServing,
		RoundedFacts:          facts,
		IngredientDeclaration: ingredientDeclaration(input.Lines),
		AllergenStatement:     allergenStatement(input.Lines, input.Lots),
		QA:                    e.qaReport(facts),
		Provisional:           input.Provisional,
		Evidence:              input.Evidence,
	}
	return result
}

func roundFacts(perServing map[nutrient.Key]float64) model.RoundedFacts {
	return model.RoundedFacts{
		Calories:      rounding.Calories(perServing[nutrient.Kcal]),
		FatG:          rounding.FatLike(perServing[nutrient.Fat]),
		SatFatG:       rounding.FatLike(perServing[nutrient.SatFat]),
		TransFatG:     rounding.FatLike(perServing[nutrient.TransFat]),
		CholesterolMg: rounding.CholesterolMg(perServing[nutrient.Cholesterol]),
		SodiumMg:      rounding.SodiumMg(perServing[nutrient.Sodium]),
		CarbG:         rounding.GeneralGrams(perServing[nutrient.Carb]),
		FiberG:        rounding.GeneralGrams(perServing[nutrient.Fiber]),
		SugarsG:       rounding.GeneralGrams(perServing[nutrient.Sugars]),
		AddedSugarsG:  rounding.GeneralGrams(perServing[nutrient.AddedSugars]),
		ProteinG:      rounding.GeneralGrams(perServing[nutrient.Protein]),
	}
}

// qaReport cross-checks the rounded calorie declaration against the 4/4/9
// estimate built from the rounded macros. The absolute band is widened by a
// relative band because the Atwater approximation degrades for low-calorie
// and high-fiber foods.
func (e *Engine) qaReport(facts model.RoundedFacts) model.QAReport {
	macroKcal := float64(facts.ProteinG)*4 + float64(facts.CarbG)*4 + facts.FatG*9
	delta := macroKcal - float64(facts.Calories)

	tolerance := e.kcalTolerance
	if rel := e.relativeTolerance * float64(facts.Calories); rel > tolerance {
		tolerance = rel
	}

	return model.QAReport{
		MacroKcal:       macroKcal,
		LabeledCalories: facts.Calories,
		Delta:           delta,
		Tolerance:       tolerance,
		Pass:            math.Abs(delta) <= tolerance,
	}
}

// ingredientDeclaration renders recipe lines in predominance order: heaviest
// per-serving contribution first, ties broken by name so the output is
// stable.
func ingredientDeclaration(lines []model.IngredientLine) string {
	if len(lines) == 0 {
		return "Ingredients:"
	}
	sorted := make([]model.IngredientLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].GramsPerServing != sorted[j].GramsPerServing {
			return sorted[i].GramsPerServing > sorted[j].GramsPerServing
		}
		return sorted[i].Name < sorted[j].Name
	})

	names := make([]string, len(sorted))
	for i, line := range sorted {
		names[i] = line.Name
	}
	return "Ingredients: " + strings.Join(names, ", ")
}

// allergenStatement unions the major allergens tagged on any recipe line or
// consumed lot. Tags outside the nine declared allergens are ignored.
func allergenStatement(lines []model.IngredientLine, lots []model.ConsumedLot) string {
	present := make(map[string]bool)
	for _, line := range lines {
		for _, tag := range line.AllergenTags {
			if model.IsMajorAllergen(tag) {
				present[tag] = true
			}
		}
	}
	for _, lot := range lots {
		for _, tag := range lot.AllergenTags {
			if model.IsMajorAllergen(tag) {
				present[tag] = true
			}
		}
	}

	if len(present) == 0 {
		return noAllergenStatement
	}

	names := make([]string, 0, len(present))
	for tag := range present {
		names = append(names, strings.ReplaceAll(tag, "_", " "))
	}
	sort.Strings(names)
	return "Contains: " + strings.Join(names, ", ")
}
