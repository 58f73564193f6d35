package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for all Turnwheel tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		kind         TEXT NOT NULL,
		participants TEXT NOT NULL,
		step_count   INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL,
		completed_at TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS steps (
		session_id   TEXT NOT NULL,
		idx          INTEGER NOT NULL,
		manager_acts INTEGER NOT NULL DEFAULT 0,
		activity     TEXT NOT NULL DEFAULT '[]',
		selected     TEXT NOT NULL DEFAULT '',
		position     INTEGER NOT NULL DEFAULT 0,
		snapshot     TEXT NOT NULL DEFAULT '{}',
		PRIMARY KEY (session_id, idx),
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sessions_kind ON sessions(kind)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_steps_session_id ON steps(session_id)`,
}

// migrate executes all schema DDL statements.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
