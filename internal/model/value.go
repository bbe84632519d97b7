package model

import (
	"time"

	"github.com/prepkitchen/label-cli/internal/nutrient"
)

// NutrientValue is one source's per-100g estimate for one nutrient of one
// product.
type NutrientValue struct {
	ID                  string             `json:"id,omitempty"`
	ProductID           string             `json:"product_id"`
	Key                 nutrient.Key       `json:"key"`
	ValuePer100g        float64            `json:"value_per_100g"`
	SourceType          SourceType         `json:"source_type"`
	SourceRef           string             `json:"source_ref,omitempty"`
	EvidenceGrade       EvidenceGrade      `json:"evidence_grade"`
	ConfidenceScore     float64            `json:"confidence_score"`
	VerificationStatus  VerificationStatus `json:"verification_status"`
	HistoricalException bool               `json:"historical_exception,omitempty"`
	RetrievedAt         *time.Time         `json:"retrieved_at,omitempty"`
	RetrievalRunID      string             `json:"retrieval_run_id,omitempty"`
	Version             int                `json:"version"`
}

// SourceReading is one source's partial nutrient map for a food, as fed to
// the consensus resolver. BaseConfidence applies to every key the source
// supplies.
type SourceReading struct {
	SourceID       string           `json:"source_id" yaml:"source_id"`
	SourceType     SourceType       `json:"source_type" yaml:"source_type"`
	SourceRef      string           `json:"source_ref,omitempty" yaml:"source_ref,omitempty"`
	BaseConfidence float64          `json:"base_confidence" yaml:"base_confidence"`
	Values         nutrient.Profile `json:"values" yaml:"values"`
}
