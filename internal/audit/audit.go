// Package audit implements an optional, write-only sqlite log of job
// dispatch and completion events, grounded on the reference engine's
// internal/store (sqlite.go's connection setup, migrations.go's idempotent
// schema pattern). This is explicitly not scheduler state: nothing here is
// read back on startup, and the scheduler runs identically with no
// Auditor installed at all: persisting scheduler state across restarts is
// a separate, unimplemented concern.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/InitWare/Neo-InitWare/pkg/sched"
)

// Store is a sqlite-backed append-only log of job_events rows, implementing
// scheduler.Auditor.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) a sqlite database at path. Use ":memory:" for an
// in-memory database in tests.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	return &Store{db: db, logger: logger.With("component", "audit")}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

// Migrate creates the job_events table and its indexes if absent.
func (s *Store) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// RecordDispatch logs a job entering Running.
func (s *Store) RecordDispatch(tx *sched.Transaction, job *sched.Job) {
	s.insert(job, tx.ID, "dispatch", "")
}

// RecordCompletion logs a job reaching a terminal (or restart-promoted)
// state.
func (s *Store) RecordCompletion(tx *sched.Transaction, job *sched.Job) {
	s.insert(job, tx.ID, "completion", string(job.State))
}

func (s *Store) insert(job *sched.Job, txID, phase, outcome string) {
	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO job_events (job_id, correlation_id, unit, op, transaction_id, phase, outcome, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(job.ID), job.CorrelationID, string(job.Unit.Principal()), string(job.Op), txID, phase, outcome,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		s.logger.Error("audit insert failed", "job", job.ID, "phase", phase, "error", err)
	}
}

// Event is one row of recorded history, as returned by RecentForUnit.
type Event struct {
	JobID         int64
	CorrelationID string
	Unit          string
	Op            string
	TransactionID string
	Phase         string
	Outcome       string
	RecordedAt    string
}

// RecentForUnit returns the most recent events recorded for unit, newest
// first, up to limit rows.
func (s *Store) RecentForUnit(ctx context.Context, unit string, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT job_id, correlation_id, unit, op, transaction_id, phase, outcome, recorded_at
		 FROM job_events WHERE unit = ? ORDER BY id DESC LIMIT ?`, unit, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.JobID, &e.CorrelationID, &e.Unit, &e.Op, &e.TransactionID, &e.Phase, &e.Outcome, &e.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
