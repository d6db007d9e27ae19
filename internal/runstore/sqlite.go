package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/apiforge/internal/errors"
	"git.home.luguber.info/inful/apiforge/internal/report"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (or creates) the run database.
// Use ":memory:" for an in-memory store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.RunStoreError("open", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, errors.RunStoreError("initialize", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		types INTEGER NOT NULL,
		members INTEGER NOT NULL,
		issues INTEGER NOT NULL,
		report TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record persists a finished run. Re-recording the same run ID replaces the
// previous row, which keeps retries idempotent.
func (s *SQLiteStore) Record(ctx context.Context, r *report.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reportJSON, err := json.Marshal(r)
	if err != nil {
		return errors.RunStoreError("record", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (run_id, started_at, finished_at, outcome, types, members, issues, report)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.StartedAt.Unix(), r.FinishedAt.Unix(), r.Outcome,
		r.Stats.TypesMerged, r.Stats.MembersMerged, len(r.Issues), string(reportJSON),
	)
	if err != nil {
		return errors.RunStoreError("record", err)
	}
	return nil
}

// Recent returns the newest runs first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, started_at, finished_at, outcome, types, members, issues, report
		 FROM runs ORDER BY started_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, errors.RunStoreError("recent", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.RunStoreError("recent", err)
	}
	return runs, nil
}

// Get returns one run by ID, or a run-store error when absent.
func (s *SQLiteStore) Get(ctx context.Context, runID string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT run_id, started_at, finished_at, outcome, types, members, issues, report
		 FROM runs WHERE run_id = ?`, runID)
	run, err := scanRun(row.Scan)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanRun(scan func(...any) error) (Run, error) {
	var run Run
	var started, finished int64
	var reportJSON string
	if err := scan(&run.ID, &started, &finished, &run.Outcome,
		&run.Types, &run.Members, &run.Issues, &reportJSON); err != nil {
		return Run{}, errors.RunStoreError("scan", err)
	}
	run.StartedAt = time.Unix(started, 0).UTC()
	run.FinishedAt = time.Unix(finished, 0).UTC()
	run.ReportJSON = []byte(reportJSON)
	return run, nil
}
