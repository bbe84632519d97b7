// Package consensus merges disagreeing multi-source nutrient readings into a
// single canonical per-100g profile with provenance and a disagreement
// signal. Resolution is deterministic and invariant to input ordering.
package consensus

import (
	"math"
	"sort"

	"github.com/prepkitchen/label-cli/internal/config"
	"github.com/prepkitchen/label-cli/internal/model"
	"github.com/prepkitchen/label-cli/internal/nutrient"
)

// KeyResolution is the per-nutrient outcome of consensus.
type KeyResolution struct {
	Key            nutrient.Key  `json:"key"`
	SelectedValue  float64       `json:"selected_value"`
	SelectedSource string        `json:"selected_source"`
	Contributors   []Contributor `json:"contributors"`
	CV             float64       `json:"cv"`
	AgreementScore float64       `json:"agreement_score"`
	Divergent      bool          `json:"divergent"`
}

// Contributor is one source's vote for a key.
type Contributor struct {
	SourceID   string           `json:"source_id"`
	SourceType model.SourceType `json:"source_type"`
	Value      float64          `json:"value"`
	Confidence float64          `json:"confidence"`
}

// Result is the full consensus outcome for one food.
type Result struct {
	Values            map[nutrient.Key]KeyResolution `json:"values"`
	OverallConfidence float64                        `json:"overall_confidence"`
	DivergentKeys     []nutrient.Key                 `json:"divergent_keys"`
	PrimarySourceID   string                         `json:"primary_source_id"`
}

// Profile extracts the resolved per-100g profile from r.
func (r *Result) Profile() nutrient.Profile {
	p := make(nutrient.Profile, len(r.Values))
	for k, res := range r.Values {
		p[k] = res.SelectedValue
	}
	return p
}

// Resolver merges source readings under configured agreement thresholds.
type Resolver struct {
	cfg config.ConsensusConfig
}

// NewResolver creates a Resolver. A zero CV threshold falls back to the
// production default of 0.15.
func NewResolver(cfg config.ConsensusConfig) *Resolver {
	if cfg.AgreementCVThreshold <= 0 {
		cfg.AgreementCVThreshold = 0.15
	}
	return &Resolver{cfg: cfg}
}

// Resolve computes consensus across sources. Readings with non-canonical
// keys or negative values have been floored/dropped upstream by
// nutrient.Profile; readings with out-of-range confidence are clamped into
// [0,1]. Sources without an id participate but cannot become the primary.
func (r *Resolver) Resolve(sources []model.SourceReading) *Result {
	ordered := make([]model.SourceReading, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.SourceType.TrustRank() != b.SourceType.TrustRank() {
			return a.SourceType.TrustRank() < b.SourceType.TrustRank()
		}
		if len(a.Values) != len(b.Values) {
			return len(a.Values) > len(b.Values)
		}
		return a.SourceID < b.SourceID
	})

	result := &Result{Values: make(map[nutrient.Key]KeyResolution)}

	var agreementSum float64
	var resolvedKeys int
	for _, key := range nutrient.All() {
		res, ok := r.resolveKey(key, ordered)
		if !ok {
			continue
		}
		result.Values[key] = res
		agreementSum += res.AgreementScore
		resolvedKeys++
		if res.Divergent {
			result.DivergentKeys = append(result.DivergentKeys, key)
		}
	}

	if resolvedKeys > 0 {
		result.OverallConfidence = agreementSum / float64(resolvedKeys)
	}
	if len(ordered) > 0 {
		result.PrimarySourceID = ordered[0].SourceID
	}
	return result
}

// resolveKey merges every contribution for one key. Contributors keep the
// trust-then-coverage-then-id order established in Resolve, so index 0 is
// always the most trusted voice.
func (r *Resolver) resolveKey(key nutrient.Key, ordered []model.SourceReading) (KeyResolution, bool) {
	var contributors []Contributor
	for _, src := range ordered {
		if !src.Values.Has(key) {
			continue
		}
		contributors = append(contributors, Contributor{
			SourceID:   src.SourceID,
			SourceType: src.SourceType,
			Value:      src.Values.Get(key),
			Confidence: clamp01(src.BaseConfidence),
		})
	}
	if len(contributors) == 0 {
		return KeyResolution{}, false
	}

	res := KeyResolution{
		Key:            key,
		Contributors:   contributors,
		SelectedSource: contributors[0].SourceID,
	}

	if len(contributors) == 1 {
		res.SelectedValue = contributors[0].Value
		res.AgreementScore = contributors[0].Confidence
		return res, true
	}

	mean, stddev := meanStddev(contributors)
	cv := 0.0
	if mean != 0 {
		cv = stddev / mean
	}
	res.CV = cv
	res.AgreementScore = math.Max(0, 1-cv)

	if cv > r.cfg.AgreementCVThreshold {
		// Sources disagree: fall back to the most trusted voice and flag
		// the key for human review.
		res.Divergent = true
		res.SelectedValue = contributors[0].Value
		return res, true
	}

	// Confidence-weighted average. All-zero confidences degrade to a plain
	// mean.
	var weighted, weightSum float64
	for _, c := range contributors {
		weighted += c.Value * c.Confidence
		weightSum += c.Confidence
	}
	if weightSum > 0 {
		res.SelectedValue = weighted / weightSum
	} else {
		res.SelectedValue = mean
	}
	return res, true
}

func meanStddev(contributors []Contributor) (float64, float64) {
	var sum float64
	for _, c := range contributors {
		sum += c.Value
	}
	mean := sum / float64(len(contributors))

	var sq float64
	for _, c := range contributors {
		d := c.Value - mean
		sq += d * d
	}
	// Population stddev: the contributors are the whole voting population,
	// not a sample of one.
	return mean, math.Sqrt(sq / float64(len(contributors)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
