package model

import (
	"time"

	"github.com/prepkitchen/label-cli/internal/nutrient"
)

// MajorAllergens are the nine allergens that must be declared on a label.
var MajorAllergens = []string{
	"milk", "egg", "fish", "shellfish", "tree_nuts",
	"peanuts", "wheat", "soy", "sesame",
}

// IsMajorAllergen reports whether tag is one of the nine declared allergens.
func IsMajorAllergen(tag string) bool {
	for _, a := range MajorAllergens {
		if a == tag {
			return true
		}
	}
	return false
}

// ConsumedLot is the grams drawn from one inventory lot during a meal
// service, with the lot's resolved per-100g profile and allergen tags.
type ConsumedLot struct {
	LotID          string           `json:"lot_id" yaml:"lot_id"`
	ProductID      string           `json:"product_id,omitempty" yaml:"product_id,omitempty"`
	ProductName    string           `json:"product_name,omitempty" yaml:"product_name,omitempty"`
	IngredientID   string           `json:"ingredient_id,omitempty" yaml:"ingredient_id,omitempty"`
	IngredientName string           `json:"ingredient_name,omitempty" yaml:"ingredient_name,omitempty"`
	GramsConsumed  float64          `json:"grams_consumed" yaml:"grams_consumed"`
	NutrientsPer100g nutrient.Profile `json:"nutrients_per_100g" yaml:"nutrients_per_100g"`
	AllergenTags   []string         `json:"allergen_tags,omitempty" yaml:"allergen_tags,omitempty"`
}

// IngredientLine is one recipe line used for predominance-order declaration.
type IngredientLine struct {
	Name             string   `json:"name" yaml:"name"`
	GramsPerServing  float64  `json:"grams_per_serving" yaml:"grams_per_serving"`
	AllergenTags     []string `json:"allergen_tags,omitempty" yaml:"allergen_tags,omitempty"`
}

// EvidenceSummary carries upstream provenance counts into a frozen label so
// audits can see how much of the panel rests on inferred values.
type EvidenceSummary struct {
	VerifiedKeys  int `json:"verified_keys" yaml:"verified_keys"`
	InferredKeys  int `json:"inferred_keys" yaml:"inferred_keys"`
	DivergentKeys int `json:"divergent_keys" yaml:"divergent_keys"`
	MissingCore   int `json:"missing_core" yaml:"missing_core"`
}

// ComputationInput is everything the label engine needs for one meal-service
// event.
type ComputationInput struct {
	Lots        []ConsumedLot    `json:"lots" yaml:"lots"`
	Servings    float64          `json:"servings" yaml:"servings"`
	Lines       []IngredientLine `json:"lines" yaml:"lines"`
	Provisional bool             `json:"provisional,omitempty" yaml:"provisional,omitempty"`
	Evidence    *EvidenceSummary `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}

// RoundedFacts is the FDA-rounded nutrition facts panel subset.
type RoundedFacts struct {
	Calories      int     `json:"calories"`
	FatG          float64 `json:"fat_g"`
	SatFatG       float64 `json:"sat_fat_g"`
	TransFatG     float64 `json:"trans_fat_g"`
	CholesterolMg int     `json:"cholesterol_mg"`
	SodiumMg      int     `json:"sodium_mg"`
	CarbG         int     `json:"carb_g"`
	FiberG        int     `json:"fiber_g"`
	SugarsG       int     `json:"sugars_g"`
	AddedSugarsG  int     `json:"added_sugars_g"`
	ProteinG      int     `json:"protein_g"`
}

// QAReport cross-checks labeled calories against the Atwater macro estimate.
type QAReport struct {
	MacroKcal       float64 `json:"macro_kcal"`
	LabeledCalories int     `json:"labeled_calories"`
	Delta           float64 `json:"delta"`
	Tolerance       float64 `json:"tolerance"`
	Pass            bool    `json:"pass"`
}

// LabelResult is the full output of one label computation. Once frozen into
// a snapshot it is never edited; corrections freeze a new version.
type LabelResult struct {
	ServingWeightG       float64                  `json:"serving_weight_g"`
	PerServing           map[nutrient.Key]float64 `json:"per_serving"`
	RoundedFacts         RoundedFacts             `json:"rounded_fda"`
	IngredientDeclaration string                  `json:"ingredient_declaration"`
	AllergenStatement    string                   `json:"allergen_statement"`
	QA                   QAReport                 `json:"qa"`
	Provisional          bool                     `json:"provisional"`
	Evidence             *EvidenceSummary         `json:"evidence,omitempty"`
}

// LabelType classifies what a snapshot describes in the lineage graph.
type LabelType string

const (
	LabelTypeSKU        LabelType = "SKU"
	LabelTypeIngredient LabelType = "INGREDIENT"
	LabelTypeProduct    LabelType = "PRODUCT"
	LabelTypeLot        LabelType = "LOT"
)

// EdgeType classifies a parent/child link between two snapshots.
type EdgeType string

const (
	EdgeSKUContainsIngredient      EdgeType = "SKU_CONTAINS_INGREDIENT"
	EdgeIngredientResolvedProduct  EdgeType = "INGREDIENT_RESOLVED_TO_PRODUCT"
	EdgeProductConsumedFromLot     EdgeType = "PRODUCT_CONSUMED_FROM_LOT"
	EdgeSupersedes                 EdgeType = "SUPERSEDES"
)

// LabelSnapshot is an immutable, versioned, frozen label. The store exposes
// no update path for a snapshot: corrections insert a new version and link it
// with a SUPERSEDES edge.
type LabelSnapshot struct {
	ID            string       `json:"id"`
	LabelType     LabelType    `json:"label_type"`
	ExternalRefID string       `json:"external_ref_id"`
	Title         string       `json:"title"`
	Result        *LabelResult `json:"result,omitempty"`
	FrozenAt      time.Time    `json:"frozen_at"`
	CreatedBy     string       `json:"created_by"`
	Version       int          `json:"version"`
}

// LineageEdge is one parent/child link in the append-only lineage graph.
type LineageEdge struct {
	ID            string    `json:"id"`
	ParentLabelID string    `json:"parent_label_id"`
	ChildLabelID  string    `json:"child_label_id"`
	EdgeType      EdgeType  `json:"edge_type"`
	CreatedAt     time.Time `json:"created_at"`
	CreatedBy     string    `json:"created_by"`
}
