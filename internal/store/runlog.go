// Package store persists reconciliation run history in SQLite: one row per
// run plus one row per document outcome, so failed documents stay visible
// across runs even after the ledger entry is repaired.
package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jamesaloy3/hospitality-outlook/internal/model"
)

type SQLiteRunLog struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

func NewSQLiteRunLog(path string) *SQLiteRunLog {
	return &SQLiteRunLog{path: path}
}

func (s *SQLiteRunLog) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return err
	}

	schema := `
CREATE TABLE IF NOT EXISTS runs (
  run_id TEXT PRIMARY KEY,
  folder TEXT NOT NULL,
  started_unix INTEGER NOT NULL,
  finished_unix INTEGER NOT NULL DEFAULT 0,
  new_count INTEGER NOT NULL DEFAULT 0,
  changed_count INTEGER NOT NULL DEFAULT 0,
  skipped_count INTEGER NOT NULL DEFAULT 0,
  failed_count INTEGER NOT NULL DEFAULT 0,
  detached_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS run_documents (
  run_id TEXT NOT NULL,
  rel_path TEXT NOT NULL,
  document_id TEXT NOT NULL DEFAULT '',
  outcome TEXT NOT NULL,
  detail TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (run_id, rel_path)
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_unix);
CREATE INDEX IF NOT EXISTS idx_run_documents_outcome ON run_documents(outcome);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteRunLog) RecordRun(ctx context.Context, run model.RunSummary) error {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO runs(run_id, folder, started_unix, finished_unix,
		                  new_count, changed_count, skipped_count, failed_count, detached_count)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET
		   finished_unix=excluded.finished_unix,
		   new_count=excluded.new_count,
		   changed_count=excluded.changed_count,
		   skipped_count=excluded.skipped_count,
		   failed_count=excluded.failed_count,
		   detached_count=excluded.detached_count`,
		run.RunID,
		run.Folder,
		run.StartedAt.Unix(),
		run.FinishedAt.Unix(),
		run.New,
		run.Changed,
		run.Skipped,
		run.Failed,
		run.Detached,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_documents(run_id, rel_path, document_id, outcome, detail)
		 VALUES(?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, rel_path) DO UPDATE SET
		   document_id=excluded.document_id,
		   outcome=excluded.outcome,
		   detail=excluded.detail`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, doc := range run.Documents {
		if _, err := stmt.ExecContext(ctx, run.RunID, doc.RelPath, doc.DocumentID, string(doc.Outcome), doc.Detail); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteRunLog) RecentRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.QueryContext(
		ctx,
		`SELECT run_id, folder, started_unix, finished_unix,
		        new_count, changed_count, skipped_count, failed_count, detached_count
		 FROM runs ORDER BY started_unix DESC, run_id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	runs := make([]model.RunSummary, 0, limit)
	for rows.Next() {
		var run model.RunSummary
		var started, finished int64
		if err := rows.Scan(
			&run.RunID,
			&run.Folder,
			&started,
			&finished,
			&run.New,
			&run.Changed,
			&run.Skipped,
			&run.Failed,
			&run.Detached,
		); err != nil {
			return nil, err
		}
		run.StartedAt = time.Unix(started, 0).UTC()
		run.FinishedAt = time.Unix(finished, 0).UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		docs, err := s.runDocuments(ctx, db, runs[i].RunID)
		if err != nil {
			return nil, err
		}
		runs[i].Documents = docs
	}
	return runs, nil
}

func (s *SQLiteRunLog) runDocuments(ctx context.Context, db *sql.DB, runID string) ([]model.DocumentOutcome, error) {
	rows, err := db.QueryContext(
		ctx,
		`SELECT rel_path, document_id, outcome, detail
		 FROM run_documents WHERE run_id = ? ORDER BY rel_path`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var docs []model.DocumentOutcome
	for rows.Next() {
		var doc model.DocumentOutcome
		var outcome string
		if err := rows.Scan(&doc.RelPath, &doc.DocumentID, &outcome, &doc.Detail); err != nil {
			return nil, err
		}
		doc.Outcome = model.Outcome(outcome)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteRunLog) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteRunLog) ensureDB(ctx context.Context) (*sql.DB, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, errors.New("sqlite db not initialized")
	}
	return s.db, nil
}
