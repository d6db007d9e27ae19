// Package runstore persists a history of generation runs in SQLite so
// successive runs can be compared and regressions spotted without keeping
// every report file around.
package runstore

import (
	"context"
	"time"

	"git.home.luguber.info/inful/apiforge/internal/report"
)

// Run is one recorded generation run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    string
	Types      int
	Members    int
	Issues     int
	ReportJSON []byte
}

// Store records and queries run history.
type Store interface {
	// Record persists the outcome of a finished run.
	Record(ctx context.Context, r *report.Report) error
	// Recent returns the most recent runs, newest first.
	Recent(ctx context.Context, limit int) ([]Run, error)
	// Get returns one run by ID.
	Get(ctx context.Context, runID string) (*Run, error)
	// Close releases the underlying database.
	Close() error
}
