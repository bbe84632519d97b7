package rounding

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prepkitchen/label-cli/internal/nutrient"
)

func TestCalories(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{-10, 0},
		{0, 0},
		{4.9, 0},
		{5, 5},
		{23, 25},
		{47.4, 45},
		{50, 50},
		{52, 50},
		{61, 60},
		{569.5, 570},
		{896, 900},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Calories(tt.in), "Calories(%v)", tt.in)
	}
}

func TestFatLike(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-1, 0},
		{0.49, 0},
		{0.5, 0.5},
		{0.74, 0.5},
		{0.76, 1.0},
		{3.6, 3.5},
		{4.8, 5.0},
		{5, 5},
		{7.4, 7},
		{12.6, 13},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FatLike(tt.in), "FatLike(%v)", tt.in)
	}
}

func TestGeneralGrams(t *testing.T) {
	assert.Equal(t, 0, GeneralGrams(0.49))
	assert.Equal(t, 1, GeneralGrams(0.5))
	assert.Equal(t, 28, GeneralGrams(28.2))
	assert.Equal(t, 31, GeneralGrams(31.4))
	assert.Equal(t, 0, GeneralGrams(-2))
}

func TestSodiumMg(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{-5, 0},
		{4.9, 0},
		{5, 5},
		{82, 80},
		{138, 140},
		{140, 140},
		{142, 140},
		{146, 150},
		{812, 810},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SodiumMg(tt.in), "SodiumMg(%v)", tt.in)
	}
}

func TestCholesterolMg(t *testing.T) {
	assert.Equal(t, 0, CholesterolMg(1.9))
	assert.Equal(t, 5, CholesterolMg(4))
	assert.Equal(t, 85, CholesterolMg(84))
	assert.Equal(t, 0, CholesterolMg(-1))
}

func TestPercentDV(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{1.9, 0},
		{2, 2},
		{7, 8},
		{10, 10},
		{12, 10},
		{23, 25},
		{50, 50},
		{55, 60},
		{104, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PercentDV(tt.in), "PercentDV(%v)", tt.in)
	}
}

func TestForDailyValue(t *testing.T) {
	// DV < 25: 0.1 granularity (e.g. vitamin D, DV 20 mcg).
	assert.Equal(t, 2.3, ForDailyValue(2.31, 20))
	assert.Equal(t, 0.0, ForDailyValue(0.3, 20), "below 2%% DV reports 0")
	// 25 <= DV < 250: whole units (e.g. vitamin C, DV 90 mg).
	assert.Equal(t, 12.0, ForDailyValue(12.4, 90))
	// 250 <= DV < 500: nearest 5 (e.g. folate, DV 400 mcg).
	assert.Equal(t, 85.0, ForDailyValue(86, 400))
	// DV >= 500: nearest 10 (e.g. calcium, DV 1300 mg).
	assert.Equal(t, 260.0, ForDailyValue(261, 1300))
	assert.Equal(t, 0.0, ForDailyValue(-4, 90))
	assert.Equal(t, 0.0, ForDailyValue(5, 0))
}

func TestMicronutrient(t *testing.T) {
	// Calcium DV 1300 -> nearest 10.
	assert.Equal(t, 180.0, Micronutrient(nutrient.Calcium, 182))
	// Iron DV 18 -> nearest 0.1.
	assert.Equal(t, 2.6, Micronutrient(nutrient.Iron, 2.61))
	// Zero floor override for vitamin D.
	assert.Equal(t, 0.0, Micronutrient(nutrient.VitaminD, 0.05))
	// No DV (omega-3): falls back to gram-style rounding.
	assert.Equal(t, 1.0, Micronutrient(nutrient.Omega3, 1.2))
	assert.Equal(t, 0.0, Micronutrient(nutrient.Omega3, 0.3))
}

func TestRoundingIdempotent(t *testing.T) {
	inputs := []float64{0, 0.3, 0.5, 1.7, 4.9, 5, 23, 50, 61, 139, 142, 512, 569.5}
	for _, v := range inputs {
		assert.Equal(t, Calories(float64(Calories(v))), Calories(v), "calories %v", v)
		assert.Equal(t, FatLike(FatLike(v)), FatLike(v), "fat %v", v)
		assert.Equal(t, GeneralGrams(float64(GeneralGrams(v))), GeneralGrams(v), "grams %v", v)
		assert.Equal(t, SodiumMg(float64(SodiumMg(v))), SodiumMg(v), "sodium %v", v)
		assert.Equal(t, CholesterolMg(float64(CholesterolMg(v))), CholesterolMg(v), "chol %v", v)
		assert.Equal(t, PercentDV(float64(PercentDV(v))), PercentDV(v), "pctdv %v", v)
	}
}

func TestRoundingMonotone(t *testing.T) {
	var prev int
	for v := 0.0; v <= 200; v += 0.25 {
		got := Calories(v)
		assert.GreaterOrEqual(t, got, prev, "calories not monotone at %v", v)
		prev = got
	}
	var prevF float64
	for v := 0.0; v <= 20; v += 0.05 {
		got := FatLike(v)
		assert.GreaterOrEqual(t, got, prevF, "fat not monotone at %v", v)
		prevF = got
	}
}
