package model

// SourceType identifies where a nutrient reading came from. The zero rank is
// most trusted; consensus tie-breaks and provenance selection use this order
// exclusively, never string comparison.
type SourceType string

const (
	SourceManufacturer   SourceType = "MANUFACTURER"
	SourceUSDAFoundation SourceType = "USDA_FOUNDATION"
	SourceUSDALegacy     SourceType = "USDA_LEGACY"
	SourceUSDABranded    SourceType = "USDA_BRANDED"
	SourceCommunity      SourceType = "COMMUNITY"
	SourceManual         SourceType = "MANUAL"
	SourceDerived        SourceType = "DERIVED"
	SourceInferred       SourceType = "INFERRED"
)

// sourceRank orders source types by trust. Manual entries sit between the
// branded databases and the community database: a human transcription beats
// crowd data but not an authoritative feed.
var sourceRank = map[SourceType]int{
	SourceManufacturer:   0,
	SourceUSDAFoundation: 1,
	SourceUSDALegacy:     2,
	SourceUSDABranded:    3,
	SourceManual:         4,
	SourceCommunity:      5,
	SourceDerived:        6,
	SourceInferred:       7,
}

// TrustRank returns the trust rank for s (lower is more trusted). Unknown
// source types rank below every known one.
func (s SourceType) TrustRank() int {
	if r, ok := sourceRank[s]; ok {
		return r
	}
	return len(sourceRank)
}

// Valid reports whether s is a known source type.
func (s SourceType) Valid() bool {
	_, ok := sourceRank[s]
	return ok
}

// EvidenceGrade is the provenance-quality tier of a nutrient reading.
type EvidenceGrade string

const (
	GradeLabelVerbatim       EvidenceGrade = "LABEL_VERBATIM"
	GradeSourceRetrieved     EvidenceGrade = "SOURCE_RETRIEVED"
	GradeInferredIngredient  EvidenceGrade = "INFERRED_FROM_INGREDIENT"
	GradeInferredSimilar     EvidenceGrade = "INFERRED_FROM_SIMILAR_PRODUCT"
	GradeHistoricalException EvidenceGrade = "HISTORICAL_EXCEPTION"
)

var gradeRank = map[EvidenceGrade]int{
	GradeLabelVerbatim:       0,
	GradeSourceRetrieved:     1,
	GradeInferredIngredient:  2,
	GradeInferredSimilar:     3,
	GradeHistoricalException: 4,
}

// Rank returns the quality rank for g (lower is stronger evidence).
func (g EvidenceGrade) Rank() int {
	if r, ok := gradeRank[g]; ok {
		return r
	}
	return len(gradeRank)
}

// VerificationStatus is the human-review state of a nutrient reading.
type VerificationStatus string

const (
	StatusNeedsReview VerificationStatus = "NEEDS_REVIEW"
	StatusVerified    VerificationStatus = "VERIFIED"
	StatusRejected    VerificationStatus = "REJECTED"
)
