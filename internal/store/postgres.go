package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/prepkitchen/label-cli/internal/db"
	"github.com/prepkitchen/label-cli/internal/model"
	"github.com/prepkitchen/label-cli/internal/nutrient"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool; tests inject pgxmock here.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: func() {}}
}

// Pool returns the underlying pool for subsystems that need direct query
// access (bulk imports).
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS nutrient_values (
	id                   TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	product_id           TEXT NOT NULL,
	key                  TEXT NOT NULL,
	value_per_100g       DOUBLE PRECISION NOT NULL,
	source_type          TEXT NOT NULL,
	source_ref           TEXT NOT NULL DEFAULT '',
	evidence_grade       TEXT NOT NULL,
	confidence_score     DOUBLE PRECISION NOT NULL DEFAULT 0,
	verification_status  TEXT NOT NULL DEFAULT 'NEEDS_REVIEW',
	historical_exception BOOLEAN NOT NULL DEFAULT false,
	retrieved_at         TIMESTAMPTZ,
	retrieval_run_id     TEXT NOT NULL DEFAULT '',
	version              INTEGER NOT NULL DEFAULT 1,
	UNIQUE(product_id, key, source_ref)
);

CREATE TABLE IF NOT EXISTS yield_samples (
	id                 TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	batch_id           TEXT NOT NULL,
	component_id       TEXT NOT NULL,
	expected_yield_pct DOUBLE PRECISION NOT NULL,
	actual_yield_pct   DOUBLE PRECISION NOT NULL,
	recorded_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS yield_proposals (
	id                 TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	component_id       TEXT NOT NULL,
	proposed_yield_pct DOUBLE PRECISION NOT NULL,
	confidence         DOUBLE PRECISION NOT NULL,
	sample_count       INTEGER NOT NULL,
	outlier_count      INTEGER NOT NULL,
	basis              TEXT NOT NULL,
	reason             TEXT NOT NULL DEFAULT '',
	status             TEXT NOT NULL DEFAULT 'OPEN',
	reviewed_by        TEXT NOT NULL DEFAULT '',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS label_snapshots (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	label_type      TEXT NOT NULL,
	external_ref_id TEXT NOT NULL,
	title           TEXT NOT NULL DEFAULT '',
	result          JSONB,
	frozen_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_by      TEXT NOT NULL DEFAULT '',
	version         INTEGER NOT NULL,
	UNIQUE(label_type, external_ref_id, version)
);

CREATE TABLE IF NOT EXISTS lineage_edges (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	parent_label_id TEXT NOT NULL,
	child_label_id  TEXT NOT NULL,
	edge_type       TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_by      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS verification_tasks (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	task_type   TEXT NOT NULL,
	severity    TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'OPEN',
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	product_id  TEXT NOT NULL DEFAULT '',
	payload     TEXT NOT NULL DEFAULT '',
	created_by  TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	version     INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS verification_reviews (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	task_id     TEXT NOT NULL REFERENCES verification_tasks(id),
	reviewed_by TEXT NOT NULL,
	decision    TEXT NOT NULL,
	notes       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_nutrient_values_product ON nutrient_values(product_id);
CREATE INDEX IF NOT EXISTS idx_nutrient_values_status ON nutrient_values(verification_status);
CREATE INDEX IF NOT EXISTS idx_yield_samples_component ON yield_samples(component_id);
CREATE INDEX IF NOT EXISTS idx_yield_proposals_component ON yield_proposals(component_id);
CREATE INDEX IF NOT EXISTS idx_label_snapshots_ref ON label_snapshots(label_type, external_ref_id);
CREATE INDEX IF NOT EXISTS idx_lineage_edges_parent ON lineage_edges(parent_label_id);
CREATE INDEX IF NOT EXISTS idx_lineage_edges_child ON lineage_edges(child_label_id);
CREATE INDEX IF NOT EXISTS idx_verification_tasks_status ON verification_tasks(status);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.closeFn()
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) UpsertNutrientValue(ctx context.Context, v *model.NutrientValue) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.Version <= 0 {
		v.Version = 1
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO nutrient_values
			(id, product_id, key, value_per_100g, source_type, source_ref,
			 evidence_grade, confidence_score, verification_status,
			 historical_exception, retrieved_at, retrieval_run_id, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (product_id, key, source_ref) DO UPDATE SET
			value_per_100g = EXCLUDED.value_per_100g,
			source_type = EXCLUDED.source_type,
			evidence_grade = EXCLUDED.evidence_grade,
			confidence_score = EXCLUDED.confidence_score,
			verification_status = EXCLUDED.verification_status,
			historical_exception = EXCLUDED.historical_exception,
			retrieved_at = EXCLUDED.retrieved_at,
			retrieval_run_id = EXCLUDED.retrieval_run_id,
			version = nutrient_values.version + 1`,
		v.ID, v.ProductID, string(v.Key), v.ValuePer100g, string(v.SourceType), v.SourceRef,
		string(v.EvidenceGrade), v.ConfidenceScore, string(v.VerificationStatus),
		v.HistoricalException, v.RetrievedAt, v.RetrievalRunID, v.Version,
	)
	return eris.Wrapf(err, "postgres: upsert nutrient value %s/%s", v.ProductID, v.Key)
}

// SaveNutrientValues merges a batch of rows in one round trip via a temp
// table, keyed on (product_id, key, source_ref).
func (s *PostgresStore) SaveNutrientValues(ctx context.Context, vs []model.NutrientValue) error {
	if len(vs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(vs))
	for _, v := range vs {
		id := v.ID
		if id == "" {
			id = uuid.New().String()
		}
		rows = append(rows, []any{
			id, v.ProductID, string(v.Key), v.ValuePer100g, string(v.SourceType), v.SourceRef,
			string(v.EvidenceGrade), v.ConfidenceScore, string(v.VerificationStatus),
			v.HistoricalException, v.RetrievedAt, v.RetrievalRunID, v.Version,
		})
	}
	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table: "nutrient_values",
		Columns: []string{
			"id", "product_id", "key", "value_per_100g", "source_type", "source_ref",
			"evidence_grade", "confidence_score", "verification_status",
			"historical_exception", "retrieved_at", "retrieval_run_id", "version",
		},
		ConflictKeys: []string{"product_id", "key", "source_ref"},
	}, rows)
	return eris.Wrap(err, "postgres: save nutrient values")
}

func (s *PostgresStore) ListNutrientValues(ctx context.Context, filter ValueFilter) ([]model.NutrientValue, error) {
	query := `SELECT id, product_id, key, value_per_100g, source_type, source_ref,
		evidence_grade, confidence_score, verification_status,
		historical_exception, retrieved_at, retrieval_run_id, version
		FROM nutrient_values WHERE 1=1`
	var args []any

	if filter.ProductID != "" {
		args = append(args, filter.ProductID)
		query += ` AND product_id = ` + placeholder(len(args))
	}
	if filter.Key != "" {
		args = append(args, string(filter.Key))
		query += ` AND key = ` + placeholder(len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND verification_status = ` + placeholder(len(args))
	}
	if filter.AtOrBelow != nil {
		args = append(args, *filter.AtOrBelow)
		query += ` AND value_per_100g <= ` + placeholder(len(args))
	}
	query += ` ORDER BY product_id, key`

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	args = append(args, limit)
	query += ` LIMIT ` + placeholder(len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET ` + placeholder(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list nutrient values")
	}
	defer rows.Close()

	var values []model.NutrientValue
	for rows.Next() {
		var v model.NutrientValue
		var key, sourceType, grade, status string
		if err := rows.Scan(&v.ID, &v.ProductID, &key, &v.ValuePer100g, &sourceType, &v.SourceRef,
			&grade, &v.ConfidenceScore, &status,
			&v.HistoricalException, &v.RetrievedAt, &v.RetrievalRunID, &v.Version,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan nutrient value")
		}
		v.Key = nutrient.Key(key)
		v.SourceType = model.SourceType(sourceType)
		v.EvidenceGrade = model.EvidenceGrade(grade)
		v.VerificationStatus = model.VerificationStatus(status)
		values = append(values, v)
	}
	return values, eris.Wrap(rows.Err(), "postgres: list nutrient values iterate")
}

// AppendYieldSamples uses COPY; weigh-in imports arrive hundreds of rows at
// a time.
func (s *PostgresStore) AppendYieldSamples(ctx context.Context, samples []model.YieldSample) error {
	rows := make([][]any, 0, len(samples))
	for _, sample := range samples {
		recordedAt := sample.RecordedAt
		if recordedAt.IsZero() {
			recordedAt = time.Now().UTC()
		}
		rows = append(rows, []any{
			uuid.New().String(), sample.BatchID, sample.ComponentID,
			sample.ExpectedYieldPct, sample.ActualYieldPct, recordedAt,
		})
	}
	_, err := db.CopyFrom(ctx, s.pool, "yield_samples",
		[]string{"id", "batch_id", "component_id", "expected_yield_pct", "actual_yield_pct", "recorded_at"},
		rows,
	)
	return eris.Wrap(err, "postgres: append yield samples")
}

func (s *PostgresStore) ListYieldSamples(ctx context.Context, componentID string) ([]model.YieldSample, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT batch_id, component_id, expected_yield_pct, actual_yield_pct, recorded_at
		 FROM yield_samples WHERE component_id = $1 ORDER BY recorded_at`,
		componentID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list yield samples for %s", componentID)
	}
	defer rows.Close()

	var samples []model.YieldSample
	for rows.Next() {
		var sample model.YieldSample
		if err := rows.Scan(&sample.BatchID, &sample.ComponentID,
			&sample.ExpectedYieldPct, &sample.ActualYieldPct, &sample.RecordedAt,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan yield sample")
		}
		samples = append(samples, sample)
	}
	return samples, eris.Wrap(rows.Err(), "postgres: list yield samples iterate")
}

func (s *PostgresStore) SaveYieldProposal(ctx context.Context, p *model.YieldProposal) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO yield_proposals
			(id, component_id, proposed_yield_pct, confidence, sample_count, outlier_count, basis, reason, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.ComponentID, p.ProposedYieldPct, p.Confidence, p.SampleCount,
		p.OutlierCount, string(p.Basis), p.Reason, string(model.ProposalOpen), p.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert yield proposal for %s", p.ComponentID)
}

func (s *PostgresStore) GetProposal(ctx context.Context, proposalID string) (*StoredProposal, error) {
	row := s.pool.QueryRow(ctx, pgProposalQuery+` WHERE id = $1`, proposalID)
	p, err := scanPgProposal(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get proposal %s", proposalID)
	}
	return p, nil
}

func (s *PostgresStore) LatestProposal(ctx context.Context, componentID string) (*StoredProposal, error) {
	row := s.pool.QueryRow(ctx,
		pgProposalQuery+` WHERE component_id = $1 ORDER BY created_at DESC LIMIT 1`, componentID)
	p, err := scanPgProposal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: latest proposal for %s", componentID)
	}
	return p, nil
}

func (s *PostgresStore) SetProposalStatus(ctx context.Context, proposalID string, status model.ProposalStatus, reviewedBy string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE yield_proposals SET status = $1, reviewed_by = $2 WHERE id = $3 AND status = $4`,
		string(status), reviewedBy, proposalID, string(model.ProposalOpen),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set proposal status %s", proposalID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("open proposal not found: %s", proposalID)
	}
	return nil
}

func (s *PostgresStore) FreezeSnapshot(ctx context.Context, snap *model.LabelSnapshot) (*model.LabelSnapshot, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin freeze")
	}
	defer tx.Rollback(ctx)

	var count int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM label_snapshots WHERE label_type = $1 AND external_ref_id = $2`,
		string(snap.LabelType), snap.ExternalRefID,
	).Scan(&count)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: count snapshot versions")
	}

	frozen := *snap
	frozen.ID = uuid.New().String()
	frozen.Version = count + 1
	frozen.FrozenAt = time.Now().UTC()

	var resultJSON []byte
	if frozen.Result != nil {
		resultJSON, err = json.Marshal(frozen.Result)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: marshal label result")
		}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO label_snapshots (id, label_type, external_ref_id, title, result, frozen_at, created_by, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		frozen.ID, string(frozen.LabelType), frozen.ExternalRefID, frozen.Title,
		resultJSON, frozen.FrozenAt, frozen.CreatedBy, frozen.Version,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert snapshot %s/%s", frozen.LabelType, frozen.ExternalRefID)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit freeze")
	}
	return &frozen, nil
}

func (s *PostgresStore) GetSnapshot(ctx context.Context, id string) (*model.LabelSnapshot, error) {
	row := s.pool.QueryRow(ctx, pgSnapshotQuery+` WHERE id = $1`, id)
	snap, err := scanPgSnapshot(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get snapshot %s", id)
	}
	return snap, nil
}

func (s *PostgresStore) LatestSnapshot(ctx context.Context, labelType model.LabelType, externalRefID string) (*model.LabelSnapshot, error) {
	row := s.pool.QueryRow(ctx,
		pgSnapshotQuery+` WHERE label_type = $1 AND external_ref_id = $2 ORDER BY version DESC LIMIT 1`,
		string(labelType), externalRefID,
	)
	snap, err := scanPgSnapshot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: latest snapshot %s/%s", labelType, externalRefID)
	}
	return snap, nil
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]model.LabelSnapshot, error) {
	query := pgSnapshotQuery + ` WHERE 1=1`
	var args []any

	if filter.LabelType != "" {
		args = append(args, string(filter.LabelType))
		query += ` AND label_type = ` + placeholder(len(args))
	}
	if filter.ExternalRefID != "" {
		args = append(args, filter.ExternalRefID)
		query += ` AND external_ref_id = ` + placeholder(len(args))
	}
	query += ` ORDER BY frozen_at DESC, version DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT ` + placeholder(len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET ` + placeholder(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list snapshots")
	}
	defer rows.Close()

	var snaps []model.LabelSnapshot
	for rows.Next() {
		snap, err := scanPgSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *snap)
	}
	return snaps, eris.Wrap(rows.Err(), "postgres: list snapshots iterate")
}

func (s *PostgresStore) AddLineageEdge(ctx context.Context, edge *model.LineageEdge) error {
	if edge.ID == "" {
		edge.ID = uuid.New().String()
	}
	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO lineage_edges (id, parent_label_id, child_label_id, edge_type, created_at, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		edge.ID, edge.ParentLabelID, edge.ChildLabelID, string(edge.EdgeType), edge.CreatedAt, edge.CreatedBy,
	)
	return eris.Wrapf(err, "postgres: insert lineage edge %s", edge.EdgeType)
}

func (s *PostgresStore) ListLineage(ctx context.Context, labelID string) ([]model.LineageEdge, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, parent_label_id, child_label_id, edge_type, created_at, created_by
		 FROM lineage_edges WHERE parent_label_id = $1 OR child_label_id = $1
		 ORDER BY created_at`,
		labelID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list lineage for %s", labelID)
	}
	defer rows.Close()

	var edges []model.LineageEdge
	for rows.Next() {
		var edge model.LineageEdge
		var edgeType string
		if err := rows.Scan(&edge.ID, &edge.ParentLabelID, &edge.ChildLabelID,
			&edgeType, &edge.CreatedAt, &edge.CreatedBy,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lineage edge")
		}
		edge.EdgeType = model.EdgeType(edgeType)
		edges = append(edges, edge)
	}
	return edges, eris.Wrap(rows.Err(), "postgres: list lineage iterate")
}

func (s *PostgresStore) OpenTask(ctx context.Context, task *model.VerificationTask) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	if task.Status == "" {
		task.Status = model.TaskOpen
	}
	if task.Version <= 0 {
		task.Version = 1
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO verification_tasks (id, task_type, severity, status, title, description, product_id, payload, created_by, created_at, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		task.ID, string(task.TaskType), task.Severity, string(task.Status), task.Title,
		task.Description, task.ProductID, task.Payload, task.CreatedBy, task.CreatedAt, task.Version,
	)
	return eris.Wrapf(err, "postgres: open task %s", task.TaskType)
}

func (s *PostgresStore) ListOpenTasks(ctx context.Context, limit int) ([]model.VerificationTask, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, task_type, severity, status, title, description, product_id, payload, created_by, created_at, version
		 FROM verification_tasks WHERE status = $1 ORDER BY created_at LIMIT $2`,
		string(model.TaskOpen), limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list open tasks")
	}
	defer rows.Close()

	var tasks []model.VerificationTask
	for rows.Next() {
		var task model.VerificationTask
		var taskType, status string
		if err := rows.Scan(&task.ID, &taskType, &task.Severity, &status, &task.Title,
			&task.Description, &task.ProductID, &task.Payload, &task.CreatedBy,
			&task.CreatedAt, &task.Version,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan task")
		}
		task.TaskType = model.TaskType(taskType)
		task.Status = model.TaskStatus(status)
		tasks = append(tasks, task)
	}
	return tasks, eris.Wrap(rows.Err(), "postgres: list open tasks iterate")
}

func (s *PostgresStore) ResolveTask(ctx context.Context, taskID string, status model.TaskStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE verification_tasks SET status = $1, version = version + 1 WHERE id = $2`,
		string(status), taskID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: resolve task %s", taskID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("task not found: %s", taskID)
	}
	return nil
}

func (s *PostgresStore) AddReview(ctx context.Context, review *model.VerificationReview) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO verification_reviews (id, task_id, reviewed_by, decision, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		review.ID, review.TaskID, review.ReviewedBy, review.Decision, review.Notes, review.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert review for task %s", review.TaskID)
}

// helpers

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

const pgSnapshotQuery = `SELECT id, label_type, external_ref_id, title, result, frozen_at, created_by, version FROM label_snapshots`

func scanPgSnapshot(row scannable) (*model.LabelSnapshot, error) {
	var snap model.LabelSnapshot
	var labelType string
	var resultJSON []byte

	err := row.Scan(&snap.ID, &labelType, &snap.ExternalRefID, &snap.Title,
		&resultJSON, &snap.FrozenAt, &snap.CreatedBy, &snap.Version)
	if err != nil {
		return nil, err
	}
	snap.LabelType = model.LabelType(labelType)

	if len(resultJSON) > 0 {
		snap.Result = &model.LabelResult{}
		if err := json.Unmarshal(resultJSON, snap.Result); err != nil {
			return nil, eris.Wrap(err, "unmarshal label result")
		}
	}
	return &snap, nil
}

const pgProposalQuery = `SELECT id, component_id, proposed_yield_pct, confidence, sample_count, outlier_count, basis, reason, status, reviewed_by, created_at FROM yield_proposals`

func scanPgProposal(row scannable) (*StoredProposal, error) {
	var p StoredProposal
	var basis, status string

	err := row.Scan(&p.ID, &p.ComponentID, &p.ProposedYieldPct, &p.Confidence,
		&p.SampleCount, &p.OutlierCount, &basis, &p.Reason, &status, &p.ReviewedBy, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Basis = model.YieldBasis(basis)
	p.Status = model.ProposalStatus(status)
	return &p, nil
}
