package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrustRankOrdering(t *testing.T) {
	ordered := []SourceType{
		SourceManufacturer,
		SourceUSDAFoundation,
		SourceUSDALegacy,
		SourceUSDABranded,
		SourceManual,
		SourceCommunity,
		SourceDerived,
		SourceInferred,
	}
	for i := 1; i < len(ordered); i++ {
		assert.Less(t, ordered[i-1].TrustRank(), ordered[i].TrustRank(),
			"%s should outrank %s", ordered[i-1], ordered[i])
	}

	unknown := SourceType("CRYSTAL_BALL")
	assert.False(t, unknown.Valid())
	assert.Greater(t, unknown.TrustRank(), SourceInferred.TrustRank())
}

func TestEvidenceGradeRank(t *testing.T) {
	assert.Less(t, GradeLabelVerbatim.Rank(), GradeSourceRetrieved.Rank())
	assert.Less(t, GradeInferredIngredient.Rank(), GradeInferredSimilar.Rank())
	assert.Less(t, GradeInferredSimilar.Rank(), GradeHistoricalException.Rank())
}

func TestIsMajorAllergen(t *testing.T) {
	assert.True(t, IsMajorAllergen("sesame"))
	assert.True(t, IsMajorAllergen("tree_nuts"))
	assert.False(t, IsMajorAllergen("gluten"))
	assert.False(t, IsMajorAllergen(""))
}
