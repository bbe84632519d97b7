package model

import "time"

// YieldSample is one raw-vs-cooked weigh-in for a preparation component.
type YieldSample struct {
	BatchID          string    `json:"batch_id" yaml:"batch_id"`
	ComponentID      string    `json:"component_id" yaml:"component_id"`
	ExpectedYieldPct float64   `json:"expected_yield_pct" yaml:"expected_yield_pct"`
	ActualYieldPct   float64   `json:"actual_yield_pct" yaml:"actual_yield_pct"`
	RecordedAt       time.Time `json:"recorded_at" yaml:"recorded_at"`
}

// YieldBasis states whether a proposal came from history or fell back to the
// recipe default.
type YieldBasis string

const (
	YieldBasisDefault    YieldBasis = "default"
	YieldBasisCalibrated YieldBasis = "calibrated"
)

// YieldProposal is a calibrated-yield recommendation for a component. It is
// surfaced for human accept/reject before it becomes the active yield.
type YieldProposal struct {
	ID               string     `json:"id,omitempty"`
	ComponentID      string     `json:"component_id"`
	ProposedYieldPct float64    `json:"proposed_yield_pct"`
	Confidence       float64    `json:"confidence"`
	SampleCount      int        `json:"sample_count"`
	OutlierCount     int        `json:"outlier_count"`
	Basis            YieldBasis `json:"basis"`
	Reason           string     `json:"reason"`
	CreatedAt        time.Time  `json:"created_at,omitempty"`
}

// ProposalStatus is the review state of a yield proposal.
type ProposalStatus string

const (
	ProposalOpen     ProposalStatus = "OPEN"
	ProposalAccepted ProposalStatus = "ACCEPTED"
	ProposalRejected ProposalStatus = "REJECTED"
)
