package store

import (
	"context"

	"github.com/prepkitchen/label-cli/internal/model"
	"github.com/prepkitchen/label-cli/internal/nutrient"
)

// ValueFilter specifies criteria for listing nutrient values.
type ValueFilter struct {
	ProductID string                   `json:"product_id,omitempty"`
	Key       nutrient.Key             `json:"key,omitempty"`
	Status    model.VerificationStatus `json:"status,omitempty"`
	// AtOrBelow restricts to rows whose value is at or below the bound;
	// the repair sweep uses it to select trace rows.
	AtOrBelow *float64 `json:"at_or_below,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	Offset    int      `json:"offset,omitempty"`
}

// SnapshotFilter specifies criteria for listing label snapshots.
type SnapshotFilter struct {
	LabelType     model.LabelType `json:"label_type,omitempty"`
	ExternalRefID string          `json:"external_ref_id,omitempty"`
	Limit         int             `json:"limit,omitempty"`
	Offset        int             `json:"offset,omitempty"`
}

// StoredProposal is a yield proposal together with its review state, which
// lives in the store rather than on the proposal itself.
type StoredProposal struct {
	model.YieldProposal
	Status     model.ProposalStatus `json:"status"`
	ReviewedBy string               `json:"reviewed_by,omitempty"`
}

// Store defines the persistence interface for the label engine. Label
// snapshots are insert-only: a frozen snapshot is never updated, corrections
// freeze a new version linked by a SUPERSEDES edge.
type Store interface {
	// Nutrient values
	UpsertNutrientValue(ctx context.Context, v *model.NutrientValue) error
	SaveNutrientValues(ctx context.Context, vs []model.NutrientValue) error
	ListNutrientValues(ctx context.Context, filter ValueFilter) ([]model.NutrientValue, error)

	// Yield calibration
	AppendYieldSamples(ctx context.Context, samples []model.YieldSample) error
	ListYieldSamples(ctx context.Context, componentID string) ([]model.YieldSample, error)
	SaveYieldProposal(ctx context.Context, p *model.YieldProposal) error
	GetProposal(ctx context.Context, proposalID string) (*StoredProposal, error)
	LatestProposal(ctx context.Context, componentID string) (*StoredProposal, error)
	SetProposalStatus(ctx context.Context, proposalID string, status model.ProposalStatus, reviewedBy string) error

	// Label snapshots and lineage
	FreezeSnapshot(ctx context.Context, snap *model.LabelSnapshot) (*model.LabelSnapshot, error)
	GetSnapshot(ctx context.Context, id string) (*model.LabelSnapshot, error)
	LatestSnapshot(ctx context.Context, labelType model.LabelType, externalRefID string) (*model.LabelSnapshot, error)
	ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]model.LabelSnapshot, error)
	AddLineageEdge(ctx context.Context, edge *model.LineageEdge) error
	ListLineage(ctx context.Context, labelID string) ([]model.LineageEdge, error)

	// Verification queue
	OpenTask(ctx context.Context, task *model.VerificationTask) error
	ListOpenTasks(ctx context.Context, limit int) ([]model.VerificationTask, error)
	ResolveTask(ctx context.Context, taskID string, status model.TaskStatus) error
	AddReview(ctx context.Context, review *model.VerificationReview) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
