package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepkitchen/label-cli/internal/consensus"
	"github.com/prepkitchen/label-cli/internal/model"
	"github.com/prepkitchen/label-cli/internal/nutrient"
)

func TestFormatFactsPanel(t *testing.T) {
	result := &model.LabelResult{
		ServingWeightG: 400,
		RoundedFacts: model.RoundedFacts{
			Calories: 570, FatG: 10.0, SatFatG: 2.0, TransFatG: 0,
			CholesterolMg: 75, SodiumMg: 450,
			CarbG: 48, FiberG: 2, SugarsG: 5, AddedSugarsG: 0, ProteinG: 67,
		},
		IngredientDeclaration: "Ingredients: Chicken Breast, Jasmine Rice, Teriyaki Sauce",
		AllergenStatement:     "Contains: soy, wheat",
		QA: model.QAReport{
			MacroKcal: 550, LabeledCalories: 570, Delta: -20, Tolerance: 199.5, Pass: true,
		},
	}

	var buf strings.Builder
	formatFactsPanel(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "Calories")
	assert.Contains(t, out, "570")
	assert.Contains(t, out, "Ingredients: Chicken Breast, Jasmine Rice, Teriyaki Sauce")
	assert.Contains(t, out, "Contains: soy, wheat")
	assert.Contains(t, out, "PASS")
	assert.NotContains(t, out, "PROVISIONAL")
}

func TestFormatFactsPanelProvisionalAndFail(t *testing.T) {
	result := &model.LabelResult{
		RoundedFacts: model.RoundedFacts{Calories: 30, ProteinG: 20},
		QA:           model.QAReport{MacroKcal: 80, LabeledCalories: 30, Delta: 50, Tolerance: 20, Pass: false},
		Provisional:  true,
	}

	var buf strings.Builder
	formatFactsPanel(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "PROVISIONAL")
}

func TestFormatConsensus(t *testing.T) {
	result := &consensus.Result{
		Values: map[nutrient.Key]consensus.KeyResolution{
			nutrient.Kcal: {
				Key: nutrient.Kcal, SelectedValue: 165, SelectedSource: "usda-1",
				AgreementScore: 0.97, CV: 0.03,
				Contributors: []consensus.Contributor{{SourceID: "usda-1"}, {SourceID: "mfr-1"}},
			},
			nutrient.Sodium: {
				Key: nutrient.Sodium, SelectedValue: 74, SelectedSource: "mfr-1",
				Divergent: true,
				Contributors: []consensus.Contributor{{SourceID: "usda-1"}, {SourceID: "mfr-1"}},
			},
		},
		OverallConfidence: 0.82,
		DivergentKeys:     []nutrient.Key{nutrient.Sodium},
		PrimarySourceID:   "usda-1",
	}

	var buf strings.Builder
	formatConsensus(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "usda-1")
	assert.Contains(t, out, "DIVERGENT")
	assert.Contains(t, out, "Divergent keys: 1")

	// Kcal rows render before sodium: output follows canonical key order.
	kcalIdx := strings.Index(out, "kcal")
	sodiumIdx := strings.Index(out, "sodium_mg")
	require.Greater(t, kcalIdx, -1)
	require.Greater(t, sodiumIdx, -1)
	assert.Less(t, kcalIdx, sodiumIdx)
}

func TestEffectiveDefaultYield(t *testing.T) {
	// An explicit flag beats the configured default beats the flag fallback.
	assert.Equal(t, 82.0, effectiveDefaultYield(true, 82.0, 95.0))
	assert.Equal(t, 95.0, effectiveDefaultYield(false, 100.0, 95.0))
	assert.Equal(t, 100.0, effectiveDefaultYield(false, 100.0, 0))
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "1234abcd", truncateID("1234abcd-5678-90ef"))
	assert.Equal(t, "short", truncateID("short"))
}
