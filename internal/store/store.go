package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/evidence"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/pipeline"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS evaluations (
	id                TEXT PRIMARY KEY,
	run_id            TEXT NOT NULL,
	session_id        TEXT,
	objective_id      TEXT NOT NULL,
	objective_version TEXT NOT NULL,
	passed            INTEGER NOT NULL,
	score_json        TEXT NOT NULL,
	failures_json     TEXT NOT NULL,
	attribution_json  TEXT NOT NULL,
	fingerprint       TEXT NOT NULL,
	collected_at      TEXT NOT NULL,
	created_at        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_evaluations_fingerprint ON evaluations(fingerprint);

CREATE TABLE IF NOT EXISTS evidence_items (
	evaluation_id TEXT NOT NULL,
	ordinal       INTEGER NOT NULL,
	source        TEXT NOT NULL,
	item_id       TEXT NOT NULL,
	value         REAL NOT NULL,
	PRIMARY KEY (evaluation_id, ordinal),
	FOREIGN KEY (evaluation_id) REFERENCES evaluations(id)
);
`

const selectEvaluation = `SELECT id, run_id, session_id, objective_id, objective_version, passed,
	score_json, failures_json, attribution_json, fingerprint, collected_at, created_at
	FROM evaluations`

// #endregion schema

// #region store-struct
// Store is the SQLite results log. It implements pipeline.Publisher.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ pipeline.Publisher = (*Store)(nil)

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region publish
// Publish persists an evaluation and its evidence in one transaction.
func (s *Store) Publish(ctx context.Context, rec pipeline.Record) error {
	_, err := s.Insert(ctx, rec)
	return err
}

// Insert is Publish returning the new evaluation id.
func (s *Store) Insert(ctx context.Context, rec pipeline.Record) (string, error) {
	r := rec.Result
	scoreJSON, err := json.Marshal(r.ScoreVector)
	if err != nil {
		return "", fmt.Errorf("marshal score vector: %w", err)
	}
	failuresJSON, err := json.Marshal(nonNil(r.Failures))
	if err != nil {
		return "", fmt.Errorf("marshal failures: %w", err)
	}
	attrJSON, err := json.Marshal(nonNil(r.AttributionRefs))
	if err != nil {
		return "", fmt.Errorf("marshal attribution refs: %w", err)
	}

	id := uuid.New().String()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO evaluations (id, run_id, session_id, objective_id, objective_version, passed,
		 score_json, failures_json, attribution_json, fingerprint, collected_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, r.RunID, nullIfEmpty(rec.SessionID), r.ObjectiveID, r.ObjectiveVersion, boolInt(r.Passed),
		string(scoreJSON), string(failuresJSON), string(attrJSON), r.BundleFingerprint,
		rec.CollectedAt.UTC().Format(time.RFC3339Nano), s.now().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert evaluation: %w", err)
	}

	for i, it := range rec.Evidence {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO evidence_items (evaluation_id, ordinal, source, item_id, value) VALUES (?, ?, ?, ?, ?)`,
			id, i, it.Source, it.ItemID, it.Value,
		)
		if err != nil {
			return "", fmt.Errorf("insert evidence %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// #endregion publish

// #region queries
// GetEvaluation retrieves one evaluation by id.
func (s *Store) GetEvaluation(ctx context.Context, id string) (EvaluationRecord, error) {
	row := s.db.QueryRowContext(ctx, selectEvaluation+` WHERE id = ?`, id)
	rec, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return EvaluationRecord{}, fmt.Errorf("get evaluation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return EvaluationRecord{}, fmt.Errorf("get evaluation %s: %w", id, err)
	}
	return rec, nil
}

// ListEvaluations returns the most recent evaluations, newest first.
func (s *Store) ListEvaluations(ctx context.Context, limit int) ([]EvaluationRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectEvaluation+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return collect(rows)
}

// FindByFingerprint returns every evaluation of the given evidence bundle,
// oldest first. A repeated fingerprint marks a duplicate attempt.
func (s *Store) FindByFingerprint(ctx context.Context, fingerprint string) ([]EvaluationRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectEvaluation+` WHERE fingerprint = ? ORDER BY created_at ASC, rowid ASC`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("find by fingerprint: %w", err)
	}
	return collect(rows)
}

// EvidenceFor returns the stored evidence of one evaluation in bundle order.
func (s *Store) EvidenceFor(ctx context.Context, evaluationID string) ([]evidence.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, item_id, value FROM evidence_items WHERE evaluation_id = ? ORDER BY ordinal`, evaluationID,
	)
	if err != nil {
		return nil, fmt.Errorf("evidence for %s: %w", evaluationID, err)
	}
	defer rows.Close()

	items := []evidence.Item{}
	for rows.Next() {
		var it evidence.Item
		if err := rows.Scan(&it.Source, &it.ItemID, &it.Value); err != nil {
			return nil, fmt.Errorf("scan evidence: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// #endregion queries

// #region scanning
type scanner interface {
	Scan(dest ...any) error
}

func collect(rows *sql.Rows) ([]EvaluationRecord, error) {
	defer rows.Close()
	var out []EvaluationRecord
	for rows.Next() {
		rec, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanEvaluation(row scanner) (EvaluationRecord, error) {
	var (
		rec                               EvaluationRecord
		sessionID                         sql.NullString
		passed                            int
		scoreJSON, failuresJSON, attrJSON string
		collectedStr, createdStr          string
	)
	err := row.Scan(&rec.ID, &rec.Result.RunID, &sessionID, &rec.Result.ObjectiveID, &rec.Result.ObjectiveVersion,
		&passed, &scoreJSON, &failuresJSON, &attrJSON, &rec.Result.BundleFingerprint, &collectedStr, &createdStr)
	if err != nil {
		return EvaluationRecord{}, err
	}
	if sessionID.Valid {
		rec.SessionID = sessionID.String
	}
	rec.Result.Passed = passed != 0
	if err := json.Unmarshal([]byte(scoreJSON), &rec.Result.ScoreVector); err != nil {
		return EvaluationRecord{}, fmt.Errorf("unmarshal score vector: %w", err)
	}
	if err := json.Unmarshal([]byte(failuresJSON), &rec.Result.Failures); err != nil {
		return EvaluationRecord{}, fmt.Errorf("unmarshal failures: %w", err)
	}
	if err := json.Unmarshal([]byte(attrJSON), &rec.Result.AttributionRefs); err != nil {
		return EvaluationRecord{}, fmt.Errorf("unmarshal attribution refs: %w", err)
	}
	rec.CollectedAt, _ = time.Parse(time.RFC3339Nano, collectedStr)
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

// #endregion scanning

// #region helpers
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// #endregion helpers
