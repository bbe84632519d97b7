// Package rounding implements the tiered FDA label rounding rules from
// 21 CFR 101.9. Every function is pure, clamps negative inputs to zero, and
// is idempotent: rounding an already-rounded value returns it unchanged.
package rounding

import (
	"math"

	"github.com/prepkitchen/label-cli/internal/nutrient"
)

// nearest rounds value to the closest multiple of step, half away from zero.
func nearest(value, step float64) float64 {
	return math.Round(value/step) * step
}

// Calories rounds energy per 21 CFR 101.9(c)(1):
// <5 reports 0, 5-50 to the nearest 5, above 50 to the nearest 10.
func Calories(value float64) int {
	switch {
	case value < 5:
		return 0
	case value <= 50:
		return int(nearest(value, 5))
	default:
		return int(nearest(value, 10))
	}
}

// FatLike rounds total, saturated, and trans fat grams:
// <0.5 reports 0, 0.5-5 to the nearest 0.5 g, above 5 to the nearest 1 g.
func FatLike(value float64) float64 {
	switch {
	case value < 0.5:
		return 0
	case value < 5:
		return nearest(value, 0.5)
	default:
		return nearest(value, 1)
	}
}

// GeneralGrams rounds carbohydrate, fiber, sugars, added sugars, and protein:
// <0.5 reports 0, otherwise nearest 1 g.
func GeneralGrams(value float64) int {
	if value < 0.5 {
		return 0
	}
	return int(nearest(value, 1))
}

// SodiumMg rounds sodium: <5 reports 0, 5-140 to the nearest 5 mg, above 140
// to the nearest 10 mg.
func SodiumMg(value float64) int {
	switch {
	case value < 5:
		return 0
	case value <= 140:
		return int(nearest(value, 5))
	default:
		return int(nearest(value, 10))
	}
}

// CholesterolMg rounds cholesterol: <2 reports 0, otherwise nearest 5 mg.
func CholesterolMg(value float64) int {
	if value < 2 {
		return 0
	}
	return int(nearest(value, 5))
}

// microOverride carries a hand-set zero floor for micronutrients whose
// label-insignificance threshold differs from the generic 2% DV cut.
var microOverride = map[nutrient.Key]float64{
	// Vitamin D and B12 are declared down to very small absolute amounts.
	nutrient.VitaminD:   0.1,
	nutrient.VitaminB12: 0.05,
}

// granularityForDV derives the rounding increment from a nutrient's Daily
// Value magnitude: DV<25 rounds to 0.1, 25-250 to 1, 250-500 to 5, >=500 to
// 10 (all in the nutrient's own unit).
func granularityForDV(dv float64) float64 {
	switch {
	case dv < 25:
		return 0.1
	case dv < 250:
		return 1
	case dv < 500:
		return 5
	default:
		return 10
	}
}

// ForDailyValue rounds a vitamin or mineral amount using a granularity
// derived from the supplied Daily Value. Amounts below 2% of the DV report
// zero.
func ForDailyValue(value, dv float64) float64 {
	if value <= 0 || dv <= 0 {
		return 0
	}
	if value < dv*0.02 {
		return 0
	}
	step := granularityForDV(dv)
	rounded := nearest(value, step)
	// Round to one decimal to strip float artifacts from 0.1 steps.
	return math.Round(rounded*10) / 10
}

// Micronutrient rounds a vitamin/mineral amount using the nutrient's
// established DV and any per-nutrient zero-floor override. Keys without a DV
// fall back to general gram rounding semantics in their own unit.
func Micronutrient(key nutrient.Key, value float64) float64 {
	if value <= 0 {
		return 0
	}
	dv, ok := key.DailyValue()
	if !ok {
		if value < 0.5 {
			return 0
		}
		return nearest(value, 1)
	}
	if floor, ok := microOverride[key]; ok && value < floor {
		return 0
	}
	return ForDailyValue(value, dv)
}

// PercentDV rounds a percent-Daily-Value figure: <2% reports 0, 2-10% to the
// nearest 2, 10-50% to the nearest 5, above 50% to the nearest 10.
func PercentDV(pct float64) int {
	switch {
	case pct < 2:
		return 0
	case pct <= 10:
		return int(nearest(pct, 2))
	case pct <= 50:
		return int(nearest(pct, 5))
	default:
		return int(nearest(pct, 10))
	}
}
