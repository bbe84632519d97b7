package nutrient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllKeysComplete(t *testing.T) {
	keys := All()
	require.Len(t, keys, 40)

	seen := make(map[Key]bool, len(keys))
	for _, k := range keys {
		assert.True(t, k.Valid(), "key %s should be valid", k)
		assert.NotEmpty(t, k.Unit(), "key %s should have a unit", k)
		assert.False(t, seen[k], "key %s duplicated", k)
		seen[k] = true
	}

	// Subsets must be drawn from the dictionary.
	for _, k := range CoreKeys {
		assert.True(t, seen[k])
	}
	for _, k := range FactsPanelKeys {
		assert.True(t, seen[k])
	}
}

func TestParse(t *testing.T) {
	k, ok := Parse("sodium_mg")
	require.True(t, ok)
	assert.Equal(t, Sodium, k)
	assert.Equal(t, UnitMg, k.Unit())

	_, ok = Parse("caffeine_mg")
	assert.False(t, ok)
}

func TestDailyValues(t *testing.T) {
	dv, ok := Iron.DailyValue()
	require.True(t, ok)
	assert.Equal(t, 18.0, dv)

	_, ok = Protein.DailyValue()
	assert.False(t, ok, "macros have no DV entry")

	assert.True(t, VitaminC.IsMicronutrient())
	assert.False(t, Kcal.IsMicronutrient())
}

func TestProfileSetFloorsAndFilters(t *testing.T) {
	p := make(Profile)
	p.Set(Protein, -3)
	p.Set(Key("bogus"), 12)
	p.Set(Carb, 28.2)

	assert.Equal(t, 0.0, p.Get(Protein))
	assert.Equal(t, 28.2, p.Get(Carb))
	assert.False(t, p.Has(Key("bogus")))
	assert.Equal(t, 0.0, p.Get(Fat), "absent reads as zero")
	assert.False(t, p.Has(Fat))
}

func TestProfileScale(t *testing.T) {
	p := Profile{Kcal: 165, Protein: 31}
	scaled := p.Scale(2)
	assert.Equal(t, 330.0, scaled.Get(Kcal))
	assert.Equal(t, 62.0, scaled.Get(Protein))
	// Original untouched.
	assert.Equal(t, 165.0, p.Get(Kcal))

	neg := p.Scale(-1)
	assert.Equal(t, 0.0, neg.Get(Kcal))
}

func TestProfileKeysOrder(t *testing.T) {
	p := Profile{Protein: 1, Kcal: 2, Zinc: 3}
	assert.Equal(t, []Key{Kcal, Protein, Zinc}, p.Keys())
}

func TestFromStringMap(t *testing.T) {
	p, dropped := FromStringMap(map[string]float64{
		"kcal":        165,
		"protein_g":   -1,
		"caffeine_mg": 40,
	})
	assert.Equal(t, 165.0, p.Get(Kcal))
	assert.Equal(t, 0.0, p.Get(Protein))
	assert.True(t, p.Has(Protein))
	assert.Equal(t, []string{"caffeine_mg"}, dropped)
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		unit   string
		key    Key
		want   float64
		ok     bool
	}{
		{"g to g", 3.6, "g", Fat, 3.6, true},
		{"mg to g", 500, "mg", Fat, 0.5, true},
		{"g to mg", 0.08, "g", Sodium, 80, true},
		{"mcg to mg", 1500, "mcg", Calcium, 1.5, true},
		{"kj to kcal", 418.4, "kJ", Kcal, 100, true},
		{"kcal passthrough", 165, "kcal", Kcal, 165, true},
		{"iu vitamin d", 400, "IU", VitaminD, 10, true},
		{"iu vitamin a", 1000, "iu", VitaminA, 300, true},
		{"iu unsupported", 10, "iu", Iron, 0, false},
		{"unknown unit", 1, "cup", Fat, 0, false},
		{"grams long form", 2, "grams", Protein, 2, true},
		{"micro sign", 30, "µg", Selenium, 30, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Convert(tt.amount, tt.unit, tt.key)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestSodiumFromSalt(t *testing.T) {
	assert.InDelta(t, 393.4, SodiumFromSalt(1), 1e-9)
	assert.Equal(t, 0.0, SodiumFromSalt(-2))
}
