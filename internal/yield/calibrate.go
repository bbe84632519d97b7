// Package yield converts noisy raw-vs-cooked weigh-in history into a
// calibrated shrink factor, rejecting outlier batches and falling back to
// the recipe default when the evidence is too thin.
package yield

import (
	"fmt"
	"math"

	"github.com/prepkitchen/label-cli/internal/config"
	"github.com/prepkitchen/label-cli/internal/model"
)

// VarianceLevel classifies how far an observed yield drifted from plan.
type VarianceLevel string

const (
	VarianceNormal   VarianceLevel = "normal"
	VarianceWarning  VarianceLevel = "warning"
	VarianceCritical VarianceLevel = "critical"
)

// Calibrator proposes yields from sample history.
type Calibrator struct {
	cfg config.YieldConfig
}

// NewCalibrator creates a Calibrator, filling zero thresholds with the
// production defaults (z>2 outliers, 0.6 confidence, 3 samples).
func NewCalibrator(cfg config.YieldConfig) *Calibrator {
	if cfg.OutlierZScore <= 0 {
		cfg.OutlierZScore = 2.0
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = 0.6
	}
	if cfg.MinCalibrationSamples <= 0 {
		cfg.MinCalibrationSamples = 3
	}
	return &Calibrator{cfg: cfg}
}

// Propose derives a yield proposal for one component from its sample
// history. defaultYieldPct is the recipe's planned yield, used whenever the
// history cannot support calibration.
func (c *Calibrator) Propose(componentID string, samples []model.YieldSample, defaultYieldPct float64) model.YieldProposal {
	clean, outliers := c.splitOutliers(samples)

	proposal := model.YieldProposal{
		ComponentID:  componentID,
		SampleCount:  len(clean),
		OutlierCount: len(outliers),
	}

	confidence := c.confidence(clean)
	proposal.Confidence = confidence

	if confidence >= c.cfg.ConfidenceThreshold && len(clean) >= c.cfg.MinCalibrationSamples {
		mean, _ := meanStddev(actuals(clean))
		proposal.Basis = model.YieldBasisCalibrated
		proposal.ProposedYieldPct = round2(mean)
		proposal.Reason = fmt.Sprintf(
			"calibrated from %d clean samples (%d outliers rejected), confidence %.2f",
			len(clean), len(outliers), confidence)
		return proposal
	}

	proposal.Basis = model.YieldBasisDefault
	proposal.ProposedYieldPct = defaultYieldPct
	if len(clean) < c.cfg.MinCalibrationSamples {
		proposal.Reason = fmt.Sprintf(
			"default %.2f%% retained: only %d clean samples (need %d)",
			defaultYieldPct, len(clean), c.cfg.MinCalibrationSamples)
	} else {
		proposal.Reason = fmt.Sprintf(
			"default %.2f%% retained: confidence %.2f below threshold %.2f",
			defaultYieldPct, confidence, c.cfg.ConfidenceThreshold)
	}
	return proposal
}

// Select picks the yield to use at consumption time. The calibrated value
// wins only when the proposal actually calibrated and its confidence meets
// the threshold; a tie at exactly the threshold favors the calibration.
func (c *Calibrator) Select(proposal *model.YieldProposal, defaultYieldPct float64) (float64, string) {
	if proposal != nil &&
		proposal.Basis == model.YieldBasisCalibrated &&
		proposal.Confidence >= c.cfg.ConfidenceThreshold {
		return proposal.ProposedYieldPct, fmt.Sprintf(
			"using calibrated yield %.2f%% (confidence %.2f, %d samples)",
			proposal.ProposedYieldPct, proposal.Confidence, proposal.SampleCount)
	}
	return defaultYieldPct, fmt.Sprintf("using default yield %.2f%%", defaultYieldPct)
}

// splitOutliers partitions samples into clean and outlier sets by z-score of
// the actual yield. Fewer than three samples cannot support an outlier call,
// and a zero spread means nothing is an outlier.
func (c *Calibrator) splitOutliers(samples []model.YieldSample) (clean, outliers []model.YieldSample) {
	if len(samples) < 3 {
		return samples, nil
	}
	mean, stddev := meanStddev(actuals(samples))
	if stddev == 0 {
		return samples, nil
	}
	for _, s := range samples {
		z := math.Abs(s.ActualYieldPct-mean) / stddev
		if z > c.cfg.OutlierZScore {
			outliers = append(outliers, s)
		} else {
			clean = append(clean, s)
		}
	}
	return clean, outliers
}

// confidence scores the clean-sample evidence: a count factor that saturates
// at five samples (0.3 floor at one) times a consistency factor that decays
// with relative spread.
func (c *Calibrator) confidence(clean []model.YieldSample) float64 {
	n := len(clean)
	if n == 0 {
		return 0
	}

	sampleFactor := 0.3 + 0.7*float64(n-1)/4.0
	if sampleFactor > 1 {
		sampleFactor = 1
	}

	mean, stddev := meanStddev(actuals(clean))
	consistency := 1.0
	if mean != 0 {
		consistency = math.Max(0, 1-stddev/mean)
	}

	return sampleFactor * consistency
}

// Classify grades the drift between expected and actual yield for variance
// monitoring: within 15 points is normal, within 30 a warning, beyond that
// critical.
func Classify(variancePct float64) VarianceLevel {
	v := math.Abs(variancePct)
	switch {
	case v <= 15:
		return VarianceNormal
	case v <= 30:
		return VarianceWarning
	default:
		return VarianceCritical
	}
}

func actuals(samples []model.YieldSample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.ActualYieldPct
	}
	return out
}

func meanStddev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
