package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/prepkitchen/label-cli/internal/model"
	"github.com/prepkitchen/label-cli/internal/nutrient"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS nutrient_values (
	id                   TEXT PRIMARY KEY,
	product_id           TEXT NOT NULL,
	key                  TEXT NOT NULL,
	value_per_100g       REAL NOT NULL,
	source_type          TEXT NOT NULL,
	source_ref           TEXT NOT NULL DEFAULT '',
	evidence_grade       TEXT NOT NULL,
	confidence_score     REAL NOT NULL DEFAULT 0,
	verification_status  TEXT NOT NULL DEFAULT 'NEEDS_REVIEW',
	historical_exception INTEGER NOT NULL DEFAULT 0,
	retrieved_at         DATETIME,
	retrieval_run_id     TEXT NOT NULL DEFAULT '',
	version              INTEGER NOT NULL DEFAULT 1,
	UNIQUE(product_id, key, source_ref)
);

CREATE TABLE IF NOT EXISTS yield_samples (
	id                 TEXT PRIMARY KEY,
	batch_id           TEXT NOT NULL,
	component_id       TEXT NOT NULL,
	expected_yield_pct REAL NOT NULL,
	actual_yield_pct   REAL NOT NULL,
	recorded_at        DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS yield_proposals (
	id                 TEXT PRIMARY KEY,
	component_id       TEXT NOT NULL,
	proposed_yield_pct REAL NOT NULL,
	confidence         REAL NOT NULL,
	sample_count       INTEGER NOT NULL,
	outlier_count      INTEGER NOT NULL,
	basis              TEXT NOT NULL,
	reason             TEXT NOT NULL DEFAULT '',
	status             TEXT NOT NULL DEFAULT 'OPEN',
	reviewed_by        TEXT NOT NULL DEFAULT '',
	created_at         DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS label_snapshots (
	id              TEXT PRIMARY KEY,
	label_type      TEXT NOT NULL,
	external_ref_id TEXT NOT NULL,
	title           TEXT NOT NULL DEFAULT '',
	result          TEXT,
	frozen_at       DATETIME NOT NULL,
	created_by      TEXT NOT NULL DEFAULT '',
	version         INTEGER NOT NULL,
	UNIQUE(label_type, external_ref_id, version)
);

CREATE TABLE IF NOT EXISTS lineage_edges (
	id              TEXT PRIMARY KEY,
	parent_label_id TEXT NOT NULL,
	child_label_id  TEXT NOT NULL,
	edge_type       TEXT NOT NULL,
	created_at      DATETIME NOT NULL,
	created_by      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS verification_tasks (
	id          TEXT PRIMARY KEY,
	task_type   TEXT NOT NULL,
	severity    TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'OPEN',
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	product_id  TEXT NOT NULL DEFAULT '',
	payload     TEXT NOT NULL DEFAULT '',
	created_by  TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL,
	version     INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS verification_reviews (
	id          TEXT PRIMARY KEY,
	task_id     TEXT NOT NULL REFERENCES verification_tasks(id),
	reviewed_by TEXT NOT NULL,
	decision    TEXT NOT NULL,
	notes       TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL
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

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertNutrientValue(ctx context.Context, v *model.NutrientValue) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.Version <= 0 {
		v.Version = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO nutrient_values
			(id, product_id, key, value_per_100g, source_type, source_ref,
			 evidence_grade, confidence_score, verification_status,
			 historical_exception, retrieved_at, retrieval_run_id, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(product_id, key, source_ref) DO UPDATE SET
			value_per_100g = excluded.value_per_100g,
			source_type = excluded.source_type,
			evidence_grade = excluded.evidence_grade,
			confidence_score = excluded.confidence_score,
			verification_status = excluded.verification_status,
			historical_exception = excluded.historical_exception,
			retrieved_at = excluded.retrieved_at,
			retrieval_run_id = excluded.retrieval_run_id,
			version = nutrient_values.version + 1`,
		v.ID, v.ProductID, string(v.Key), v.ValuePer100g, string(v.SourceType), v.SourceRef,
		string(v.EvidenceGrade), v.ConfidenceScore, string(v.VerificationStatus),
		v.HistoricalException, v.RetrievedAt, v.RetrievalRunID, v.Version,
	)
	return eris.Wrapf(err, "sqlite: upsert nutrient value %s/%s", v.ProductID, v.Key)
}

func (s *SQLiteStore) SaveNutrientValues(ctx context.Context, vs []model.NutrientValue) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save values")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE nutrient_values SET
			value_per_100g = ?, source_type = ?, source_ref = ?,
			evidence_grade = ?, confidence_score = ?, verification_status = ?,
			historical_exception = ?, retrieved_at = ?, retrieval_run_id = ?,
			version = ?
		WHERE id = ?`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare save values")
	}
	defer stmt.Close()

	for _, v := range vs {
		if _, err := stmt.ExecContext(ctx,
			v.ValuePer100g, string(v.SourceType), v.SourceRef,
			string(v.EvidenceGrade), v.ConfidenceScore, string(v.VerificationStatus),
			v.HistoricalException, v.RetrievedAt, v.RetrievalRunID, v.Version, v.ID,
		); err != nil {
			return eris.Wrapf(err, "sqlite: save nutrient value %s", v.ID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit save values")
}

func (s *SQLiteStore) ListNutrientValues(ctx context.Context, filter ValueFilter) ([]model.NutrientValue, error) {
	query := `SELECT id, product_id, key, value_per_100g, source_type, source_ref,
		evidence_grade, confidence_score, verification_status,
		historical_exception, retrieved_at, retrieval_run_id, version
		FROM nutrient_values WHERE 1=1`
	var args []any

	if filter.ProductID != "" {
		query += ` AND product_id = ?`
		args = append(args, filter.ProductID)
	}
	if filter.Key != "" {
		query += ` AND key = ?`
		args = append(args, string(filter.Key))
	}
	if filter.Status != "" {
		query += ` AND verification_status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.AtOrBelow != nil {
		query += ` AND value_per_100g <= ?`
		args = append(args, *filter.AtOrBelow)
	}
	query += ` ORDER BY product_id, key`

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list nutrient values")
	}
	defer rows.Close()

	var values []model.NutrientValue
	for rows.Next() {
		var v model.NutrientValue
		var key, sourceType, grade, status string
		var retrievedAt sql.NullTime
		if err := rows.Scan(&v.ID, &v.ProductID, &key, &v.ValuePer100g, &sourceType, &v.SourceRef,
			&grade, &v.ConfidenceScore, &status,
			&v.HistoricalException, &retrievedAt, &v.RetrievalRunID, &v.Version,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan nutrient value")
		}
		v.Key = nutrient.Key(key)
		v.SourceType = model.SourceType(sourceType)
		v.EvidenceGrade = model.EvidenceGrade(grade)
		v.VerificationStatus = model.VerificationStatus(status)
		if retrievedAt.Valid {
			t := retrievedAt.Time
			v.RetrievedAt = &t
		}
		values = append(values, v)
	}
	return values, eris.Wrap(rows.Err(), "sqlite: list nutrient values iterate")
}

func (s *SQLiteStore) AppendYieldSamples(ctx context.Context, samples []model.YieldSample) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin append samples")
	}
	defer tx.Rollback()

	for _, sample := range samples {
		recordedAt := sample.RecordedAt
		if recordedAt.IsZero() {
			recordedAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO yield_samples (id, batch_id, component_id, expected_yield_pct, actual_yield_pct, recorded_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), sample.BatchID, sample.ComponentID,
			sample.ExpectedYieldPct, sample.ActualYieldPct, recordedAt,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert yield sample for %s", sample.ComponentID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit append samples")
}

func (s *SQLiteStore) ListYieldSamples(ctx context.Context, componentID string) ([]model.YieldSample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT batch_id, component_id, expected_yield_pct, actual_yield_pct, recorded_at
		 FROM yield_samples WHERE component_id = ? ORDER BY recorded_at`,
		componentID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list yield samples for %s", componentID)
	}
	defer rows.Close()

	var samples []model.YieldSample
	for rows.Next() {
		var sample model.YieldSample
		if err := rows.Scan(&sample.BatchID, &sample.ComponentID,
			&sample.ExpectedYieldPct, &sample.ActualYieldPct, &sample.RecordedAt,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan yield sample")
		}
		samples = append(samples, sample)
	}
	return samples, eris.Wrap(rows.Err(), "sqlite: list yield samples iterate")
}

func (s *SQLiteStore) SaveYieldProposal(ctx context.Context, p *model.YieldProposal) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO yield_proposals
			(id, component_id, proposed_yield_pct, confidence, sample_count, outlier_count, basis, reason, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ComponentID, p.ProposedYieldPct, p.Confidence, p.SampleCount,
		p.OutlierCount, string(p.Basis), p.Reason, string(model.ProposalOpen), p.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert yield proposal for %s", p.ComponentID)
}

func (s *SQLiteStore) GetProposal(ctx context.Context, proposalID string) (*StoredProposal, error) {
	row := s.db.QueryRowContext(ctx, proposalQuery+` WHERE id = ?`, proposalID)
	p, err := scanProposal(row)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get proposal %s", proposalID)
	}
	return p, nil
}

func (s *SQLiteStore) LatestProposal(ctx context.Context, componentID string) (*StoredProposal, error) {
	row := s.db.QueryRowContext(ctx,
		proposalQuery+` WHERE component_id = ? ORDER BY created_at DESC LIMIT 1`, componentID)
	p, err := scanProposal(row)
	if err == errNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: latest proposal for %s", componentID)
	}
	return p, nil
}

func (s *SQLiteStore) SetProposalStatus(ctx context.Context, proposalID string, status model.ProposalStatus, reviewedBy string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE yield_proposals SET status = ?, reviewed_by = ? WHERE id = ? AND status = ?`,
		string(status), reviewedBy, proposalID, string(model.ProposalOpen),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set proposal status %s", proposalID)
	}
	return checkRowsAffected(res, "open proposal", proposalID)
}

func (s *SQLiteStore) FreezeSnapshot(ctx context.Context, snap *model.LabelSnapshot) (*model.LabelSnapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin freeze")
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM label_snapshots WHERE label_type = ? AND external_ref_id = ?`,
		string(snap.LabelType), snap.ExternalRefID,
	).Scan(&count)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: count snapshot versions")
	}

	frozen := *snap
	frozen.ID = uuid.New().String()
	frozen.Version = count + 1
	frozen.FrozenAt = time.Now().UTC()

	var resultJSON sql.NullString
	if frozen.Result != nil {
		b, err := json.Marshal(frozen.Result)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: marshal label result")
		}
		resultJSON = sql.NullString{String: string(b), Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO label_snapshots (id, label_type, external_ref_id, title, result, frozen_at, created_by, version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		frozen.ID, string(frozen.LabelType), frozen.ExternalRefID, frozen.Title,
		resultJSON, frozen.FrozenAt, frozen.CreatedBy, frozen.Version,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert snapshot %s/%s", frozen.LabelType, frozen.ExternalRefID)
	}
	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit freeze")
	}
	return &frozen, nil
}

func (s *SQLiteStore) GetSnapshot(ctx context.Context, id string) (*model.LabelSnapshot, error) {
	row := s.db.QueryRowContext(ctx, snapshotQuery+` WHERE id = ?`, id)
	snap, err := scanSnapshot(row)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get snapshot %s", id)
	}
	return snap, nil
}

func (s *SQLiteStore) LatestSnapshot(ctx context.Context, labelType model.LabelType, externalRefID string) (*model.LabelSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		snapshotQuery+` WHERE label_type = ? AND external_ref_id = ? ORDER BY version DESC LIMIT 1`,
		string(labelType), externalRefID,
	)
	snap, err := scanSnapshot(row)
	if err == errNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: latest snapshot %s/%s", labelType, externalRefID)
	}
	return snap, nil
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]model.LabelSnapshot, error) {
	query := snapshotQuery + ` WHERE 1=1`
	var args []any

	if filter.LabelType != "" {
		query += ` AND label_type = ?`
		args = append(args, string(filter.LabelType))
	}
	if filter.ExternalRefID != "" {
		query += ` AND external_ref_id = ?`
		args = append(args, filter.ExternalRefID)
	}
	query += ` ORDER BY frozen_at DESC, version DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list snapshots")
	}
	defer rows.Close()

	var snaps []model.LabelSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *snap)
	}
	return snaps, eris.Wrap(rows.Err(), "sqlite: list snapshots iterate")
}

func (s *SQLiteStore) AddLineageEdge(ctx context.Context, edge *model.LineageEdge) error {
	if edge.ID == "" {
		edge.ID = uuid.New().String()
	}
	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lineage_edges (id, parent_label_id, child_label_id, edge_type, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		edge.ID, edge.ParentLabelID, edge.ChildLabelID, string(edge.EdgeType), edge.CreatedAt, edge.CreatedBy,
	)
	return eris.Wrapf(err, "sqlite: insert lineage edge %s", edge.EdgeType)
}

func (s *SQLiteStore) ListLineage(ctx context.Context, labelID string) ([]model.LineageEdge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, parent_label_id, child_label_id, edge_type, created_at, created_by
		 FROM lineage_edges WHERE parent_label_id = ? OR child_label_id = ?
		 ORDER BY created_at`,
		labelID, labelID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list lineage for %s", labelID)
	}
	defer rows.Close()

	var edges []model.LineageEdge
	for rows.Next() {
		var edge model.LineageEdge
		var edgeType string
		if err := rows.Scan(&edge.ID, &edge.ParentLabelID, &edge.ChildLabelID,
			&edgeType, &edge.CreatedAt, &edge.CreatedBy,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lineage edge")
		}
		edge.EdgeType = model.EdgeType(edgeType)
		edges = append(edges, edge)
	}
	return edges, eris.Wrap(rows.Err(), "sqlite: list lineage iterate")
}

func (s *SQLiteStore) OpenTask(ctx context.Context, task *model.VerificationTask) error {
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
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO verification_tasks (id, task_type, severity, status, title, description, product_id, payload, created_by, created_at, version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, string(task.TaskType), task.Severity, string(task.Status), task.Title,
		task.Description, task.ProductID, task.Payload, task.CreatedBy, task.CreatedAt, task.Version,
	)
	return eris.Wrapf(err, "sqlite: open task %s", task.TaskType)
}

func (s *SQLiteStore) ListOpenTasks(ctx context.Context, limit int) ([]model.VerificationTask, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task_type, severity, status, title, description, product_id, payload, created_by, created_at, version
		 FROM verification_tasks WHERE status = ? ORDER BY created_at LIMIT ?`,
		string(model.TaskOpen), limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list open tasks")
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
			return nil, eris.Wrap(err, "sqlite: scan task")
		}
		task.TaskType = model.TaskType(taskType)
		task.Status = model.TaskStatus(status)
		tasks = append(tasks, task)
	}
	return tasks, eris.Wrap(rows.Err(), "sqlite: list open tasks iterate")
}

func (s *SQLiteStore) ResolveTask(ctx context.Context, taskID string, status model.TaskStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE verification_tasks SET status = ?, version = version + 1 WHERE id = ?`,
		string(status), taskID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: resolve task %s", taskID)
	}
	return checkRowsAffected(res, "task", taskID)
}

func (s *SQLiteStore) AddReview(ctx context.Context, review *model.VerificationReview) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO verification_reviews (id, task_id, reviewed_by, decision, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		review.ID, review.TaskID, review.ReviewedBy, review.Decision, review.Notes, review.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert review for task %s", review.TaskID)
}

// helpers

var errNotFound = eris.New("not found")

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

const snapshotQuery = `SELECT id, label_type, external_ref_id, title, result, frozen_at, created_by, version FROM label_snapshots`

func scanSnapshot(row scannable) (*model.LabelSnapshot, error) {
	var snap model.LabelSnapshot
	var labelType string
	var resultJSON sql.NullString

	err := row.Scan(&snap.ID, &labelType, &snap.ExternalRefID, &snap.Title,
		&resultJSON, &snap.FrozenAt, &snap.CreatedBy, &snap.Version)
	if err == sql.ErrNoRows {
		return nil, errNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan snapshot")
	}
	snap.LabelType = model.LabelType(labelType)

	if resultJSON.Valid {
		snap.Result = &model.LabelResult{}
		if err := json.Unmarshal([]byte(resultJSON.String), snap.Result); err != nil {
			return nil, eris.Wrap(err, "unmarshal label result")
		}
	}
	return &snap, nil
}

const proposalQuery = `SELECT id, component_id, proposed_yield_pct, confidence, sample_count, outlier_count, basis, reason, status, reviewed_by, created_at FROM yield_proposals`

func scanProposal(row scannable) (*StoredProposal, error) {
	var p StoredProposal
	var basis, status string

	err := row.Scan(&p.ID, &p.ComponentID, &p.ProposedYieldPct, &p.Confidence,
		&p.SampleCount, &p.OutlierCount, &basis, &p.Reason, &status, &p.ReviewedBy, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan proposal")
	}
	p.Basis = model.YieldBasis(basis)
	p.Status = model.ProposalStatus(status)
	return &p, nil
}
