package consensus

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepkitchen/label-cli/internal/config"
	"github.com/prepkitchen/label-cli/internal/model"
	"github.com/prepkitchen/label-cli/internal/nutrient"
)

func defaultResolver() *Resolver {
	return NewResolver(config.ConsensusConfig{AgreementCVThreshold: 0.15})
}

func TestResolveSingleSource(t *testing.T) {
	r := defaultResolver()
	res := r.Resolve([]model.SourceReading{{
		SourceID:       "usda-173686",
		SourceType:     model.SourceUSDAFoundation,
		BaseConfidence: 0.82,
		Values:         nutrient.Profile{nutrient.Kcal: 165, nutrient.Protein: 31},
	}})

	kcal := res.Values[nutrient.Kcal]
	assert.Equal(t, 165.0, kcal.SelectedValue)
	assert.Equal(t, 0.82, kcal.AgreementScore)
	assert.Equal(t, "usda-173686", kcal.SelectedSource)
	assert.Empty(t, res.DivergentKeys)
	assert.Equal(t, "usda-173686", res.PrimarySourceID)
	assert.InDelta(t, 0.82, res.OverallConfidence, 1e-9)
}

func TestResolveAgreeingSources(t *testing.T) {
	r := defaultResolver()
	res := r.Resolve([]model.SourceReading{
		{
			SourceID:       "off-00012345",
			SourceType:     model.SourceManufacturer,
			BaseConfidence: 0.9,
			Values:         nutrient.Profile{nutrient.Kcal: 100},
		},
		{
			SourceID:       "usda-branded-1",
			SourceType:     model.SourceUSDABranded,
			BaseConfidence: 0.8,
			Values:         nutrient.Profile{nutrient.Kcal: 104},
		},
	})

	kcal := res.Values[nutrient.Kcal]
	assert.False(t, kcal.Divergent)
	assert.Less(t, kcal.CV, 0.03)
	// Confidence-weighted: (100*0.9 + 104*0.8) / 1.7.
	assert.InDelta(t, 101.88, kcal.SelectedValue, 0.01)
	assert.Greater(t, kcal.AgreementScore, 0.9)
	// Provenance points at the most trusted contributor.
	assert.Equal(t, "off-00012345", kcal.SelectedSource)
	assert.Empty(t, res.DivergentKeys)
}

func TestResolveDivergentSources(t *testing.T) {
	r := defaultResolver()
	res := r.Resolve([]model.SourceReading{
		{
			SourceID:       "community-1",
			SourceType:     model.SourceCommunity,
			BaseConfidence: 0.7,
			Values:         nutrient.Profile{nutrient.Sodium: 900},
		},
		{
			SourceID:       "mfr-1",
			SourceType:     model.SourceManufacturer,
			BaseConfidence: 0.95,
			Values:         nutrient.Profile{nutrient.Sodium: 320},
		},
	})

	sodium := res.Values[nutrient.Sodium]
	require.True(t, sodium.Divergent)
	// Most trusted wins outright, no averaging.
	assert.Equal(t, 320.0, sodium.SelectedValue)
	assert.Equal(t, "mfr-1", sodium.SelectedSource)
	assert.Equal(t, []nutrient.Key{nutrient.Sodium}, res.DivergentKeys)
	assert.Greater(t, sodium.CV, 0.15)
}

func TestResolvePermutationInvariant(t *testing.T) {
	sources := []model.SourceReading{
		{SourceID: "a", SourceType: model.SourceManufacturer, BaseConfidence: 0.96,
			Values: nutrient.Profile{nutrient.Kcal: 120, nutrient.Fat: 4.2, nutrient.Sodium: 300}},
		{SourceID: "b", SourceType: model.SourceUSDAFoundation, BaseConfidence: 0.82,
			Values: nutrient.Profile{nutrient.Kcal: 123, nutrient.Fat: 4.0, nutrient.Sodium: 800}},
		{SourceID: "c", SourceType: model.SourceCommunity, BaseConfidence: 0.6,
			Values: nutrient.Profile{nutrient.Kcal: 118, nutrient.Protein: 5.2}},
	}

	r := defaultResolver()
	want := r.Resolve(sources)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := make([]model.SourceReading, len(sources))
		copy(shuffled, sources)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := r.Resolve(shuffled)
		assert.Equal(t, want.DivergentKeys, got.DivergentKeys)
		assert.Equal(t, want.PrimarySourceID, got.PrimarySourceID)
		assert.InDelta(t, want.OverallConfidence, got.OverallConfidence, 1e-12)
		require.Equal(t, len(want.Values), len(got.Values))
		for k, w := range want.Values {
			g := got.Values[k]
			assert.Equal(t, w.SelectedValue, g.SelectedValue, "key %s", k)
			assert.Equal(t, w.SelectedSource, g.SelectedSource, "key %s", k)
			assert.Equal(t, w.Contributors, g.Contributors, "key %s", k)
		}
	}
}

func TestPrimarySourceTieBreaks(t *testing.T) {
	r := defaultResolver()

	// Same trust tier: coverage decides.
	res := r.Resolve([]model.SourceReading{
		{SourceID: "narrow", SourceType: model.SourceUSDALegacy, BaseConfidence: 0.8,
			Values: nutrient.Profile{nutrient.Kcal: 100}},
		{SourceID: "broad", SourceType: model.SourceUSDALegacy, BaseConfidence: 0.8,
			Values: nutrient.Profile{nutrient.Kcal: 100, nutrient.Protein: 10}},
	})
	assert.Equal(t, "broad", res.PrimarySourceID)

	// Same tier and coverage: lexical source id.
	res = r.Resolve([]model.SourceReading{
		{SourceID: "zeta", SourceType: model.SourceUSDALegacy, BaseConfidence: 0.8,
			Values: nutrient.Profile{nutrient.Kcal: 100}},
		{SourceID: "alpha", SourceType: model.SourceUSDALegacy, BaseConfidence: 0.8,
			Values: nutrient.Profile{nutrient.Kcal: 100}},
	})
	assert.Equal(t, "alpha", res.PrimarySourceID)
}

func TestResolveClampsConfidence(t *testing.T) {
	r := defaultResolver()
	res := r.Resolve([]model.SourceReading{{
		SourceID:       "wild",
		SourceType:     model.SourceManual,
		BaseConfidence: 1.7,
		Values:         nutrient.Profile{nutrient.Kcal: 90},
	}})
	assert.Equal(t, 1.0, res.Values[nutrient.Kcal].AgreementScore)
}

func TestResolveEmpty(t *testing.T) {
	r := defaultResolver()
	res := r.Resolve(nil)
	assert.Empty(t, res.Values)
	assert.Empty(t, res.DivergentKeys)
	assert.Zero(t, res.OverallConfidence)
	assert.Empty(t, res.PrimarySourceID)
}

func TestResultProfile(t *testing.T) {
	r := defaultResolver()
	res := r.Resolve([]model.SourceReading{{
		SourceID:       "s",
		SourceType:     model.SourceManual,
		BaseConfidence: 1,
		Values:         nutrient.Profile{nutrient.Kcal: 165, nutrient.Protein: 31},
	}})
	p := res.Profile()
	assert.Equal(t, 165.0, p.Get(nutrient.Kcal))
	assert.Equal(t, 31.0, p.Get(nutrient.Protein))
	assert.Len(t, p, 2)
}

func TestZeroMeanDoesNotDivideByZero(t *testing.T) {
	r := defaultResolver()
	res := r.Resolve([]model.SourceReading{
		{SourceID: "a", SourceType: model.SourceManual, BaseConfidence: 0.9,
			Values: nutrient.Profile{nutrient.TransFat: 0}},
		{SourceID: "b", SourceType: model.SourceManual, BaseConfidence: 0.9,
			Values: nutrient.Profile{nutrient.TransFat: 0}},
	})
	tf := res.Values[nutrient.TransFat]
	assert.Equal(t, 0.0, tf.SelectedValue)
	assert.False(t, tf.Divergent)
	assert.Equal(t, 1.0, tf.AgreementScore)
}
