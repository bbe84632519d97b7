// Package repair replaces trace nutrient readings, values at or below a
// floor that signals a blank or placeholder import, with the best available
// estimate: the ingredient's own median, then the global per-key median,
// then a fixed conservative fallback. Every repaired row is downgraded to
// derived evidence and queued for review.
package repair

import (
	"sort"
	"time"

	"github.com/prepkitchen/label-cli/internal/model"
	"github.com/prepkitchen/label-cli/internal/nutrient"
)

const defaultTraceThreshold = 0.00011

// Source refs written onto repaired rows, by fallback tier.
const (
	RefIngredientMedian = "repair:ingredient-median"
	RefGlobalMedian     = "repair:global-median"
	RefDefaultFallback  = "repair:default-fallback"
)

// defaultFallbacks are last-resort per-100g estimates used when no median is
// available for a key. Values are deliberately modest so a fallback never
// inflates a label.
var defaultFallbacks = map[nutrient.Key]float64{
	nutrient.Kcal:            120.0,
	nutrient.Protein:         5.0,
	nutrient.Carb:            15.0,
	nutrient.Fat:             4.0,
	nutrient.Fiber:           2.0,
	nutrient.Sugars:          3.0,
	nutrient.AddedSugars:     1.0,
	nutrient.SatFat:          1.0,
	nutrient.TransFat:        0.01,
	nutrient.Cholesterol:     5.0,
	nutrient.Sodium:          80.0,
	nutrient.VitaminD:        0.2,
	nutrient.Calcium:         40.0,
	nutrient.Iron:            1.0,
	nutrient.Potassium:       180.0,
	nutrient.VitaminA:        30.0,
	nutrient.VitaminC:        4.0,
	nutrient.VitaminE:        0.8,
	nutrient.VitaminK:        8.0,
	nutrient.Thiamin:         0.08,
	nutrient.Riboflavin:      0.07,
	nutrient.Niacin:          0.9,
	nutrient.VitaminB6:       0.1,
	nutrient.Folate:          20.0,
	nutrient.VitaminB12:      0.2,
	nutrient.Biotin:          1.5,
	nutrient.PantothenicAcid: 0.4,
	nutrient.Phosphorus:      90.0,
	nutrient.Iodine:          8.0,
	nutrient.Magnesium:       20.0,
	nutrient.Zinc:            0.7,
	nutrient.Selenium:        8.0,
	nutrient.Copper:          0.08,
	nutrient.Manganese:       0.2,
	nutrient.Chromium:        2.0,
	nutrient.Molybdenum:      5.0,
	nutrient.Chloride:        70.0,
	nutrient.Choline:         18.0,
	nutrient.Omega3:          0.06,
	nutrient.Omega6:          0.3,
}

// unknownKeyFallback is used for a key missing from the table.
const unknownKeyFallback = 0.1

// Reading is one non-trace observation used to build reference medians.
type Reading struct {
	IngredientID string
	Key          nutrient.Key
	Value        float64
}

// References holds the medians a sweep repairs against.
type References struct {
	ingredient map[string]map[nutrient.Key][]float64
	global     map[nutrient.Key][]float64
}

// Repair describes the replacement chosen for one trace row.
type Repair struct {
	Value         float64
	SourceRef     string
	EvidenceGrade model.EvidenceGrade
	Confidence    float64
}

// Repairer applies the trace threshold and tiered fallbacks.
type Repairer struct {
	threshold float64
}

// NewRepairer returns a repairer with the given trace threshold; zero
// selects the default.
func NewRepairer(threshold float64) *Repairer {
	if threshold <= 0 {
		threshold = defaultTraceThreshold
	}
	return &Repairer{threshold: threshold}
}

// IsTrace reports whether v is at or below the trace floor.
func (r *Repairer) IsTrace(v float64) bool {
	return v <= r.threshold
}

// Threshold returns the effective trace floor, after defaulting. Callers that
// pre-filter rows (the store sweep) must use this rather than the raw
// configured value so the filter and the repairer agree.
func (r *Repairer) Threshold() float64 {
	return r.threshold
}

// BuildReferences collects per-ingredient and global medians from readings,
// discarding trace values so placeholders never seed the medians they are
// repaired from.
func (r *Repairer) BuildReferences(readings []Reading) *References {
	refs := &References{
		ingredient: make(map[string]map[nutrient.Key][]float64),
		global:     make(map[nutrient.Key][]float64),
	}
	for _, reading := range readings {
		if r.IsTrace(reading.Value) || !reading.Key.Valid() {
			continue
		}
		byKey, ok := refs.ingredient[reading.IngredientID]
		if !ok {
			byKey = make(map[nutrient.Key][]float64)
			refs.ingredient[reading.IngredientID] = byKey
		}
		byKey[reading.Key] = append(byKey[reading.Key], reading.Value)
		refs.global[reading.Key] = append(refs.global[reading.Key], reading.Value)
	}
	return refs
}

// Choose picks the replacement value for a trace reading of key on the given
// ingredient, preferring the ingredient's own median, then the global
// median, then the fallback table.
func (r *Repairer) Choose(refs *References, ingredientID string, key nutrient.Key) Repair {
	if refs != nil {
		if v, ok := median(refs.ingredient[ingredientID][key]); ok && v > r.threshold {
			return Repair{
				Value:         v,
				SourceRef:     RefIngredientMedian,
				EvidenceGrade: model.GradeInferredIngredient,
				Confidence:    0.65,
			}
		}
		if v, ok := median(refs.global[key]); ok && v > r.threshold {
			return Repair{
				Value:         v,
				SourceRef:     RefGlobalMedian,
				EvidenceGrade: model.GradeInferredSimilar,
				Confidence:    0.45,
			}
		}
	}

	fallback, ok := defaultFallbacks[key]
	if !ok {
		fallback = unknownKeyFallback
	}
	return Repair{
		Value:         fallback,
		SourceRef:     RefDefaultFallback,
		EvidenceGrade: model.GradeHistoricalException,
		Confidence:    0.25,
	}
}

// Apply writes the repair onto the row: the value becomes derived evidence,
// the row is flagged as a historical exception, and verification resets to
// needs-review so a human confirms the estimate.
func (r *Repairer) Apply(row *model.NutrientValue, rep Repair, runID string, now time.Time) {
	row.ValuePer100g = rep.Value
	row.SourceType = model.SourceDerived
	row.SourceRef = rep.SourceRef
	row.EvidenceGrade = rep.EvidenceGrade
	row.ConfidenceScore = rep.Confidence
	row.HistoricalException = true
	row.VerificationStatus = model.StatusNeedsReview
	row.RetrievedAt = &now
	row.RetrievalRunID = runID
	row.Version++
}

// SweepResult summarizes one repair pass.
type SweepResult struct {
	RowsScanned  int
	TraceRows    int
	RowsRepaired int
	ByRef        map[string]int
}

// Sweep repairs every trace row in place. ingredientByProduct maps a row's
// product to the ingredient whose median should be preferred; a missing
// entry skips straight to the global tier.
func (r *Repairer) Sweep(rows []model.NutrientValue, refs *References, ingredientByProduct map[string]string, runID string, now time.Time) SweepResult {
	result := SweepResult{RowsScanned: len(rows), ByRef: make(map[string]int)}
	for i := range rows {
		if !r.IsTrace(rows[i].ValuePer100g) {
			continue
		}
		result.TraceRows++
		rep := r.Choose(refs, ingredientByProduct[rows[i].ProductID], rows[i].Key)
		r.Apply(&rows[i], rep, runID, now)
		result.RowsRepaired++
		result.ByRef[rep.SourceRef]++
	}
	return result
}

// median returns the middle of vs, averaging the central pair for even
// counts. ok is false for an empty slice.
func median(vs []float64) (v float64, ok bool) {
	if len(vs) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(vs))
	copy(sorted, vs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return (sorted[mid-1] + sorted[mid]) / 2, true
}
