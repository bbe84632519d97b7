package nutrient

// Key identifies one of the 40 canonical nutrients tracked by the platform.
// Every nutrient value in the system is keyed by one of these; anything else
// is rejected at the ingestion boundary.
type Key string

const (
	Kcal            Key = "kcal"
	Protein         Key = "protein_g"
	Carb            Key = "carb_g"
	Fat             Key = "fat_g"
	Fiber           Key = "fiber_g"
	Sugars          Key = "sugars_g"
	AddedSugars     Key = "added_sugars_g"
	SatFat          Key = "sat_fat_g"
	TransFat        Key = "trans_fat_g"
	Cholesterol     Key = "cholesterol_mg"
	Sodium          Key = "sodium_mg"
	VitaminD        Key = "vitamin_d_mcg"
	Calcium         Key = "calcium_mg"
	Iron            Key = "iron_mg"
	Potassium       Key = "potassium_mg"
	VitaminA        Key = "vitamin_a_mcg"
	VitaminC        Key = "vitamin_c_mg"
	VitaminE        Key = "vitamin_e_mg"
	VitaminK        Key = "vitamin_k_mcg"
	Thiamin         Key = "thiamin_mg"
	Riboflavin      Key = "riboflavin_mg"
	Niacin          Key = "niacin_mg"
	VitaminB6       Key = "vitamin_b6_mg"
	Folate          Key = "folate_mcg"
	VitaminB12      Key = "vitamin_b12_mcg"
	Biotin          Key = "biotin_mcg"
	PantothenicAcid Key = "pantothenic_acid_mg"
	Phosphorus      Key = "phosphorus_mg"
	Iodine          Key = "iodine_mcg"
	Magnesium       Key = "magnesium_mg"
	Zinc            Key = "zinc_mg"
	Selenium        Key = "selenium_mcg"
	Copper          Key = "copper_mg"
	Manganese       Key = "manganese_mg"
	Chromium        Key = "chromium_mcg"
	Molybdenum      Key = "molybdenum_mcg"
	Chloride        Key = "chloride_mg"
	Choline         Key = "choline_mg"
	Omega3          Key = "omega3_g"
	Omega6          Key = "omega6_g"
)

// Unit is a canonical measurement unit for nutrient amounts.
type Unit string

const (
	UnitKcal Unit = "kcal"
	UnitG    Unit = "g"
	UnitMg   Unit = "mg"
	UnitMcg  Unit = "mcg"
)

// allKeys is the canonical iteration order: label facts-panel keys first
// (FDA panel order), then vitamins and minerals in dictionary order.
var allKeys = []Key{
	Kcal, Fat, SatFat, TransFat, Cholesterol, Sodium,
	Carb, Fiber, Sugars, AddedSugars, Protein,
	VitaminD, Calcium, Iron, Potassium,
	VitaminA, VitaminC, VitaminE, VitaminK,
	Thiamin, Riboflavin, Niacin, VitaminB6, Folate, VitaminB12,
	Biotin, PantothenicAcid, Phosphorus, Iodine, Magnesium,
	Zinc, Selenium, Copper, Manganese, Chromium, Molybdenum,
	Chloride, Choline, Omega3, Omega6,
}

// unitByKey maps every key to its canonical unit.
var unitByKey = map[Key]Unit{
	Kcal:            UnitKcal,
	Protein:         UnitG,
	Carb:            UnitG,
	Fat:             UnitG,
	Fiber:           UnitG,
	Sugars:          UnitG,
	AddedSugars:     UnitG,
	SatFat:          UnitG,
	TransFat:        UnitG,
	Cholesterol:     UnitMg,
	Sodium:          UnitMg,
	VitaminD:        UnitMcg,
	Calcium:         UnitMg,
	Iron:            UnitMg,
	Potassium:       UnitMg,
	VitaminA:        UnitMcg,
	VitaminC:        UnitMg,
	VitaminE:        UnitMg,
	VitaminK:        UnitMcg,
	Thiamin:         UnitMg,
	Riboflavin:      UnitMg,
	Niacin:          UnitMg,
	VitaminB6:       UnitMg,
	Folate:          UnitMcg,
	VitaminB12:      UnitMcg,
	Biotin:          UnitMcg,
	PantothenicAcid: UnitMg,
	Phosphorus:      UnitMg,
	Iodine:          UnitMcg,
	Magnesium:       UnitMg,
	Zinc:            UnitMg,
	Selenium:        UnitMcg,
	Copper:          UnitMg,
	Manganese:       UnitMg,
	Chromium:        UnitMcg,
	Molybdenum:      UnitMcg,
	Chloride:        UnitMg,
	Choline:         UnitMg,
	Omega3:          UnitG,
	Omega6:          UnitG,
}

// dailyValues holds the FDA Daily Values (adults and children >=4 years)
// used for %DV reporting and rounding granularity. Keys without an
// established DV (macros covered by gram rounding, omega fatty acids) are
// absent.
var dailyValues = map[Key]float64{
	VitaminD:        20,   // mcg
	Calcium:         1300, // mg
	Iron:            18,   // mg
	Potassium:       4700, // mg
	VitaminA:        900,  // mcg RAE
	VitaminC:        90,   // mg
	VitaminE:        15,   // mg
	VitaminK:        120,  // mcg
	Thiamin:         1.2,  // mg
	Riboflavin:      1.3,  // mg
	Niacin:          16,   // mg NE
	VitaminB6:       1.7,  // mg
	Folate:          400,  // mcg DFE
	VitaminB12:      2.4,  // mcg
	Biotin:          30,   // mcg
	PantothenicAcid: 5,    // mg
	Phosphorus:      1250, // mg
	Iodine:          150,  // mcg
	Magnesium:       420,  // mg
	Zinc:            11,   // mg
	Selenium:        55,   // mcg
	Copper:          0.9,  // mg
	Manganese:       2.3,  // mg
	Chromium:        35,   // mcg
	Molybdenum:      45,   // mcg
	Chloride:        2300, // mg
	Choline:         550,  // mg
}

// CoreKeys are the minimum set a product must resolve before its labels are
// considered computable without fallback.
var CoreKeys = []Key{Kcal, Protein, Carb, Fat, Sodium}

// FactsPanelKeys is the FDA nutrition-facts subset, in panel order.
var FactsPanelKeys = []Key{
	Kcal, Fat, SatFat, TransFat, Cholesterol, Sodium,
	Carb, Fiber, Sugars, AddedSugars, Protein,
}

// All returns every canonical key in stable panel-then-dictionary order.
// The returned slice is a copy.
func All() []Key {
	out := make([]Key, len(allKeys))
	copy(out, allKeys)
	return out
}

// Valid reports whether k is one of the 40 canonical keys.
func (k Key) Valid() bool {
	_, ok := unitByKey[k]
	return ok
}

// Unit returns the canonical unit for k, or the empty Unit for unknown keys.
func (k Key) Unit() Unit {
	return unitByKey[k]
}

// DailyValue returns the FDA Daily Value for k and whether one is
// established.
func (k Key) DailyValue() (float64, bool) {
	dv, ok := dailyValues[k]
	return dv, ok
}

// IsMicronutrient reports whether k is a vitamin or mineral with an
// established Daily Value (the keys subject to DV-derived rounding).
func (k Key) IsMicronutrient() bool {
	_, ok := dailyValues[k]
	return ok
}

// Parse returns the canonical Key for s, or false when s is not one of the
// 40 dictionary keys.
func Parse(s string) (Key, bool) {
	k := Key(s)
	return k, k.Valid()
}
