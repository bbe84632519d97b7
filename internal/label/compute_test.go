package label

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepkitchen/label-cli/internal/model"
	"github.com/prepkitchen/label-cli/internal/nutrient"
)

func mealInput() model.ComputationInput {
	return model.ComputationInput{
		Servings: 1,
		Lots: []model.ConsumedLot{
			{
				LotID:         "lot-chicken",
				ProductName:   "Chicken Breast",
				GramsConsumed: 200,
				NutrientsPer100g: nutrient.Profile{
					nutrient.Kcal:    165,
					nutrient.Protein: 31,
					nutrient.Fat:     3.6,
					nutrient.Carb:    0,
					nutrient.Sodium:  74,
				},
			},
			{
				LotID:         "lot-rice",
				ProductName:   "Jasmine Rice",
				GramsConsumed: 150,
				NutrientsPer100g: nutrient.Profile{
					nutrient.Kcal:    130,
					nutrient.Protein: 2.7,
					nutrient.Fat:     0.3,
					nutrient.Carb:    28,
					nutrient.Sodium:  1,
				},
			},
			{
				LotID:         "lot-sauce",
				ProductName:   "Teriyaki Sauce",
				GramsConsumed: 50,
				NutrientsPer100g: nutrient.Profile{
					nutrient.Kcal:    89,
					nutrient.Protein: 1,
					nutrient.Fat:     4,
					nutrient.Carb:    12,
					nutrient.Sodium:  600,
				},
				AllergenTags: []string{"soy", "wheat"},
			},
		},
		Lines: []model.IngredientLine{
			{Name: "Chicken Breast", GramsPerServing: 200},
			{Name: "Jasmine Rice", GramsPerServing: 150},
			{Name: "Teriyaki Sauce", GramsPerServing: 50, AllergenTags: []string{"soy", "wheat"}},
		},
	}
}

func TestComputeMeal(t *testing.T) {
	result := NewEngine(0, 0).Compute(mealInput())

	assert.InDelta(t, 400.0, result.ServingWeightG, 1e-9)
	assert.InDelta(t, 569.5, result.PerServing[nutrient.Kcal], 1e-9)
	assert.InDelta(t, 66.55, result.PerServing[nutrient.Protein], 1e-9)
	assert.InDelta(t, 449.5, result.PerServing[nutrient.Sodium], 1e-9)

	assert.Equal(t, 570, result.RoundedFacts.Calories)
	assert.Equal(t, 10.0, result.RoundedFacts.FatG)
	assert.Equal(t, 48, result.RoundedFacts.CarbG)
	assert.Equal(t, 67, result.RoundedFacts.ProteinG)
	assert.Equal(t, 450, result.RoundedFacts.SodiumMg)

	assert.Equal(t, "Ingredients: Chicken Breast, Jasmine Rice, Teriyaki Sauce",
		result.IngredientDeclaration)
	assert.Equal(t, "Contains: soy, wheat", result.AllergenStatement)

	// 67*4 + 48*4 + 10*9 = 550 against a 570 declaration.
	assert.InDelta(t, 550.0, result.QA.MacroKcal, 1e-9)
	assert.InDelta(t, -20.0, result.QA.Delta, 1e-9)
	assert.True(t, result.QA.Pass)
	assert.False(t, result.Provisional)
}

func TestComputeFullKeySet(t *testing.T) {
	result := NewEngine(0, 0).Compute(mealInput())
	require.Len(t, result.PerServing, len(nutrient.All()))
	assert.Zero(t, result.PerServing[nutrient.VitaminB12])
	assert.Zero(t, result.PerServing[nutrient.Omega3])
}

func TestComputeOrderIndependent(t *testing.T) {
	engine := NewEngine(0, 0)
	want := engine.Compute(mealInput())

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		input := mealInput()
		rng.Shuffle(len(input.Lots), func(a, b int) {
			input.Lots[a], input.Lots[b] = input.Lots[b], input.Lots[a]
		})
		assert.Equal(t, want, engine.Compute(input))
	}
}

func TestComputeZeroServingsTreatedAsOne(t *testing.T) {
	input := mealInput()
	input.Servings = 0
	result := NewEngine(0, 0).Compute(input)
	assert.InDelta(t, 400.0, result.ServingWeightG, 1e-9)
	assert.Equal(t, 570, result.RoundedFacts.Calories)
}

func TestComputeMultipleServings(t *testing.T) {
	input := mealInput()
	input.Servings = 4
	result := NewEngine(0, 0).Compute(input)
	assert.InDelta(t, 100.0, result.ServingWeightG, 1e-9)
	assert.InDelta(t, 569.5/4, result.PerServing[nutrient.Kcal], 1e-9)
}

func TestComputeEmptyInput(t *testing.T) {
	result := NewEngine(0, 0).Compute(model.ComputationInput{Servings: 1})
	assert.Zero(t, result.ServingWeightG)
	assert.Equal(t, 0, result.RoundedFacts.Calories)
	assert.Equal(t, "Ingredients:", result.IngredientDeclaration)
	assert.Equal(t, "Contains: None of the 9 major allergens", result.AllergenStatement)
	assert.True(t, result.QA.Pass)
}

func TestIngredientDeclarationPredominanceOrder(t *testing.T) {
	lines := []model.IngredientLine{
		{Name: "Olive Oil", GramsPerServing: 10},
		{Name: "Quinoa", GramsPerServing: 120},
		{Name: "Black Beans", GramsPerServing: 120},
		{Name: "Salmon", GramsPerServing: 180},
	}
	// Descending weight; the 120g tie breaks alphabetically.
	assert.Equal(t, "Ingredients: Salmon, Black Beans, Quinoa, Olive Oil",
		ingredientDeclaration(lines))
}

func TestAllergenStatement(t *testing.T) {
	lines := []model.IngredientLine{
		{Name: "Granola", AllergenTags: []string{"tree_nuts", "wheat", "gluten"}},
		{Name: "Yogurt", AllergenTags: []string{"milk"}},
	}
	lots := []model.ConsumedLot{
		{LotID: "l1", AllergenTags: []string{"sesame", "wheat"}},
	}
	// Sorted, deduplicated, underscores spelled out; "gluten" is not one of
	// the nine and is dropped.
	assert.Equal(t, "Contains: milk, sesame, tree nuts, wheat",
		allergenStatement(lines, lots))
	assert.Equal(t, "Contains: None of the 9 major allergens",
		allergenStatement(nil, nil))
}

func TestQAFailure(t *testing.T) {
	input := model.ComputationInput{
		Servings: 1,
		Lots: []model.ConsumedLot{{
			LotID:         "l1",
			GramsConsumed: 100,
			NutrientsPer100g: nutrient.Profile{
				nutrient.Kcal:    30,
				nutrient.Protein: 20,
			},
		}},
	}
	result := NewEngine(0, 0).Compute(input)
	// Macros say 80 kcal, label says 30; neither the ±20 band nor 35% of 30
	// covers a delta of 50.
	assert.InDelta(t, 50.0, result.QA.Delta, 1e-9)
	assert.False(t, result.QA.Pass)
}

func TestQARelativeToleranceWidening(t *testing.T) {
	// 1000g at 165 kcal/100g rounds to 1650 labeled calories; the macro
	// estimate misses by more than 20 kcal but well under 35%.
	input := model.ComputationInput{
		Servings: 1,
		Lots: []model.ConsumedLot{{
			LotID:         "l1",
			GramsConsumed: 1000,
			NutrientsPer100g: nutrient.Profile{
				nutrient.Kcal:    165,
				nutrient.Protein: 31,
				nutrient.Fat:     3.6,
			},
		}},
	}
	result := NewEngine(0, 0).Compute(input)
	require.Greater(t, math.Abs(result.QA.Delta), 20.0)
	assert.True(t, result.QA.Pass)
	assert.InDelta(t, 0.35*float64(result.QA.LabeledCalories), result.QA.Tolerance, 1e-9)
}

func TestComputeProvisionalAndEvidencePassThrough(t *testing.T) {
	input := mealInput()
	input.Provisional = true
	input.Evidence = &model.EvidenceSummary{VerifiedKeys: 12, InferredKeys: 3, DivergentKeys: 1}
	result := NewEngine(0, 0).Compute(input)
	assert.True(t, result.Provisional)
	require.NotNil(t, result.Evidence)
	assert.Equal(t, 3, result.Evidence.InferredKeys)
}
