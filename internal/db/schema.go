package db

import (
	"database/sql"
	"fmt"
)

// The store mirrors browser local storage: string keys, string values.
// Structured values are JSON encoded by the repository layer.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS kv_store (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_kv_store_updated_at ON kv_store(updated_at)`,
}

// Migrate applies every schema statement. Statements are idempotent.
func Migrate(conn *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
