package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepkitchen/label-cli/internal/model"
	"github.com/prepkitchen/label-cli/internal/nutrient"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

// --- Nutrient values ---

func TestSQLite_NutrientValue_UpsertAndList(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	v := model.NutrientValue{
		ProductID:          "prod-1",
		Key:                nutrient.Protein,
		ValuePer100g:       22.5,
		SourceType:         model.SourceUSDAFoundation,
		SourceRef:          "fdc:171077",
		EvidenceGrade:      model.GradeSourceRetrieved,
		ConfidenceScore:    0.9,
		VerificationStatus: model.StatusNeedsReview,
	}
	require.NoError(t, st.UpsertNutrientValue(ctx, &v))
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, 1, v.Version)

	got, err := st.ListNutrientValues(ctx, ValueFilter{ProductID: "prod-1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, nutrient.Protein, got[0].Key)
	assert.Equal(t, 22.5, got[0].ValuePer100g)
	assert.Equal(t, model.StatusNeedsReview, got[0].VerificationStatus)
}

func TestSQLite_NutrientValue_UpsertConflictBumpsVersion(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	v := model.NutrientValue{
		ProductID: "prod-1", Key: nutrient.Sodium, ValuePer100g: 400,
		SourceType: model.SourceManufacturer, SourceRef: "label:v1",
		EvidenceGrade: model.GradeLabelVerbatim, VerificationStatus: model.StatusVerified,
	}
	require.NoError(t, st.UpsertNutrientValue(ctx, &v))

	v2 := v
	v2.ID = ""
	v2.ValuePer100g = 380
	require.NoError(t, st.UpsertNutrientValue(ctx, &v2))

	got, err := st.ListNutrientValues(ctx, ValueFilter{ProductID: "prod-1", Key: nutrient.Sodium})
	require.NoError(t, err)
	require.Len(t, got, 1, "same (product, key, ref) stays one row")
	assert.Equal(t, 380.0, got[0].ValuePer100g)
	assert.Equal(t, 2, got[0].Version)
}

func TestSQLite_NutrientValue_FilterAtOrBelow(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, v := range []model.NutrientValue{
		{ProductID: "p1", Key: nutrient.Iron, ValuePer100g: 0.0001, SourceType: model.SourceUSDABranded, SourceRef: "a", EvidenceGrade: model.GradeSourceRetrieved},
		{ProductID: "p1", Key: nutrient.Zinc, ValuePer100g: 1.2, SourceType: model.SourceUSDABranded, SourceRef: "b", EvidenceGrade: model.GradeSourceRetrieved},
	} {
		vv := v
		require.NoError(t, st.UpsertNutrientValue(ctx, &vv))
	}

	bound := 0.00011
	got, err := st.ListNutrientValues(ctx, ValueFilter{AtOrBelow: &bound})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, nutrient.Iron, got[0].Key)
}

func TestSQLite_SaveNutrientValues(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	v := model.NutrientValue{
		ProductID: "p1", Key: nutrient.Selenium, ValuePer100g: 0,
		SourceType: model.SourceUSDABranded, SourceRef: "a",
		EvidenceGrade: model.GradeSourceRetrieved, VerificationStatus: model.StatusVerified,
	}
	require.NoError(t, st.UpsertNutrientValue(ctx, &v))

	now := time.Now().UTC()
	v.ValuePer100g = 8.0
	v.SourceType = model.SourceDerived
	v.HistoricalException = true
	v.VerificationStatus = model.StatusNeedsReview
	v.RetrievedAt = &now
	v.Version = 2
	require.NoError(t, st.SaveNutrientValues(ctx, []model.NutrientValue{v}))

	got, err := st.ListNutrientValues(ctx, ValueFilter{ProductID: "p1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 8.0, got[0].ValuePer100g)
	assert.Equal(t, model.SourceDerived, got[0].SourceType)
	assert.True(t, got[0].HistoricalException)
	assert.Equal(t, 2, got[0].Version)
	require.NotNil(t, got[0].RetrievedAt)
}

// --- Yield ---

func TestSQLite_YieldSamplesRoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	samples := []model.YieldSample{
		{BatchID: "b1", ComponentID: "comp-1", ExpectedYieldPct: 85, ActualYieldPct: 80, RecordedAt: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)},
		{BatchID: "b2", ComponentID: "comp-1", ExpectedYieldPct: 85, ActualYieldPct: 82, RecordedAt: time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)},
		{BatchID: "b3", ComponentID: "comp-2", ExpectedYieldPct: 90, ActualYieldPct: 91, RecordedAt: time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, st.AppendYieldSamples(ctx, samples))

	got, err := st.ListYieldSamples(ctx, "comp-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b1", got[0].BatchID)
	assert.Equal(t, 82.0, got[1].ActualYieldPct)
}

func TestSQLite_ProposalLifecycle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	p := model.YieldProposal{
		ComponentID:      "comp-1",
		ProposedYieldPct: 81.3,
		Confidence:       0.87,
		SampleCount:      6,
		OutlierCount:     1,
		Basis:            model.YieldBasisCalibrated,
		Reason:           "calibrated from 6 clean samples",
	}
	require.NoError(t, st.SaveYieldProposal(ctx, &p))
	require.NotEmpty(t, p.ID)

	got, err := st.LatestProposal(ctx, "comp-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.ProposalOpen, got.Status)
	assert.Equal(t, 81.3, got.ProposedYieldPct)

	require.NoError(t, st.SetProposalStatus(ctx, p.ID, model.ProposalAccepted, "reviewer@kitchen"))

	got, err = st.GetProposal(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProposalAccepted, got.Status)
	assert.Equal(t, "reviewer@kitchen", got.ReviewedBy)

	// A decided proposal cannot be decided again.
	err = st.SetProposalStatus(ctx, p.ID, model.ProposalRejected, "someone-else")
	require.Error(t, err)
}

func TestSQLite_LatestProposalMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.LatestProposal(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// --- Snapshots ---

func TestSQLite_FreezeSnapshotVersions(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	snap := model.LabelSnapshot{
		LabelType:     model.LabelTypeSKU,
		ExternalRefID: "sku-42",
		Title:         "Chicken Teriyaki Bowl",
		CreatedBy:     "label-cli",
		Result: &model.LabelResult{
			ServingWeightG: 400,
			RoundedFacts:   model.RoundedFacts{Calories: 570, ProteinG: 67},
		},
	}

	first, err := st.FreezeSnapshot(ctx, &snap)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.FrozenAt.IsZero())

	second, err := st.FreezeSnapshot(ctx, &snap)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Version)
	assert.NotEqual(t, first.ID, second.ID)

	latest, err := st.LatestSnapshot(ctx, model.LabelTypeSKU, "sku-42")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
	require.NotNil(t, latest.Result)
	assert.Equal(t, 570, latest.Result.RoundedFacts.Calories)

	// Versions count per (type, ref); a different ref starts at 1.
	other := snap
	other.ExternalRefID = "sku-43"
	third, err := st.FreezeSnapshot(ctx, &other)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Version)
}

func TestSQLite_GetSnapshotMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetSnapshot(context.Background(), "no-such-id")
	require.Error(t, err)
}

func TestSQLite_ListSnapshotsFilter(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, ref := range []string{"sku-1", "sku-2"} {
		_, err := st.FreezeSnapshot(ctx, &model.LabelSnapshot{
			LabelType: model.LabelTypeSKU, ExternalRefID: ref,
		})
		require.NoError(t, err)
	}
	_, err := st.FreezeSnapshot(ctx, &model.LabelSnapshot{
		LabelType: model.LabelTypeLot, ExternalRefID: "lot-1",
	})
	require.NoError(t, err)

	skus, err := st.ListSnapshots(ctx, SnapshotFilter{LabelType: model.LabelTypeSKU})
	require.NoError(t, err)
	assert.Len(t, skus, 2)

	all, err := st.ListSnapshots(ctx, SnapshotFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLite_Lineage(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	sku, err := st.FreezeSnapshot(ctx, &model.LabelSnapshot{LabelType: model.LabelTypeSKU, ExternalRefID: "sku-1"})
	require.NoError(t, err)
	ing, err := st.FreezeSnapshot(ctx, &model.LabelSnapshot{LabelType: model.LabelTypeIngredient, ExternalRefID: "ing-1"})
	require.NoError(t, err)
	prod, err := st.FreezeSnapshot(ctx, &model.LabelSnapshot{LabelType: model.LabelTypeProduct, ExternalRefID: "prod-1"})
	require.NoError(t, err)

	require.NoError(t, st.AddLineageEdge(ctx, &model.LineageEdge{
		ParentLabelID: sku.ID, ChildLabelID: ing.ID, EdgeType: model.EdgeSKUContainsIngredient,
	}))
	require.NoError(t, st.AddLineageEdge(ctx, &model.LineageEdge{
		ParentLabelID: ing.ID, ChildLabelID: prod.ID, EdgeType: model.EdgeIngredientResolvedProduct,
	}))

	edges, err := st.ListLineage(ctx, ing.ID)
	require.NoError(t, err)
	require.Len(t, edges, 2, "both directions around the ingredient")

	edges, err = st.ListLineage(ctx, sku.ID)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, model.EdgeSKUContainsIngredient, edges[0].EdgeType)
}

// --- Verification queue ---

func TestSQLite_TaskLifecycle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	task := model.VerificationTask{
		TaskType:  model.TaskDivergence,
		Severity:  "WARNING",
		Title:     "kcal diverges across sources",
		ProductID: "prod-9",
		CreatedBy: "label-cli",
	}
	require.NoError(t, st.OpenTask(ctx, &task))
	assert.Equal(t, model.TaskOpen, task.Status)

	open, err := st.ListOpenTasks(ctx, 0)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, model.TaskDivergence, open[0].TaskType)

	require.NoError(t, st.AddReview(ctx, &model.VerificationReview{
		TaskID: task.ID, ReviewedBy: "qa@kitchen", Decision: "ACCEPT",
	}))
	require.NoError(t, st.ResolveTask(ctx, task.ID, model.TaskResolved))

	open, err = st.ListOpenTasks(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, open)

	err = st.ResolveTask(ctx, "missing-task", model.TaskResolved)
	require.Error(t, err)
}
