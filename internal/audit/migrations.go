package audit

import (
	"context"
	"database/sql"
)

// schema is the append-only audit table. Each statement uses IF NOT EXISTS
// for idempotency, mirroring the reference engine's migration style.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS job_events (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id         INTEGER NOT NULL,
		correlation_id TEXT NOT NULL,
		unit           TEXT NOT NULL,
		op             TEXT NOT NULL,
		transaction_id TEXT NOT NULL,
		phase          TEXT NOT NULL,
		outcome        TEXT NOT NULL DEFAULT '',
		recorded_at    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_job_events_job_id ON job_events(job_id)`,
	`CREATE INDEX IF NOT EXISTS idx_job_events_unit ON job_events(unit)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
