package nutrient

import "strings"

// Conversion constants for source readings that arrive in non-canonical
// units.
const (
	kjPerKcal        = 4.184
	vitaminDMcgPerIU = 0.025
	vitaminAMcgPerIU = 0.3
	sodiumMgPerSaltG = 393.4
)

// NormalizeUnit canonicalizes the unit spellings seen across source
// databases (micro signs, long forms, kJ) into a small closed set.
func NormalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	u = strings.ReplaceAll(u, "μ", "u") // greek mu
	u = strings.ReplaceAll(u, "µ", "u") // micro sign
	switch u {
	case "ug", "mcg":
		return "mcg"
	case "milligram", "milligrams":
		return "mg"
	case "gram", "grams":
		return "g"
	case "kcal", "calorie", "calories":
		return "kcal"
	case "kj", "kilojoule", "kilojoules":
		return "kj"
	}
	return u
}

// Convert converts amount from a source unit into the canonical unit of key.
// It handles mass-unit rescaling, kJ energy, and the IU forms of vitamins D
// and A. The second return is false when no conversion exists.
func Convert(amount float64, fromUnit string, key Key) (float64, bool) {
	from := NormalizeUnit(fromUnit)
	to := string(key.Unit())

	if to == "kcal" {
		switch from {
		case "kcal":
			return amount, true
		case "kj":
			return amount / kjPerKcal, true
		}
		return 0, false
	}

	if from == "iu" {
		switch key {
		case VitaminD:
			return amount * vitaminDMcgPerIU, true
		case VitaminA:
			return amount * vitaminAMcgPerIU, true
		}
		return 0, false
	}

	factors := map[string]float64{"g": 1, "mg": 1e-3, "mcg": 1e-6}
	fromG, ok := factors[from]
	if !ok {
		return 0, false
	}
	toG, ok := factors[to]
	if !ok {
		return 0, false
	}
	return amount * fromG / toG, true
}

// SodiumFromSalt derives sodium in mg from a salt mass in grams. Used when a
// source reports salt instead of sodium.
func SodiumFromSalt(saltG float64) float64 {
	if saltG < 0 {
		return 0
	}
	return saltG * sodiumMgPerSaltG
}
