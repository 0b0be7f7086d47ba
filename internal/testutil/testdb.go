package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/hrdesk/internal/db"
)

// NewTestDB opens an in-memory state database that is closed with the test.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenDB(db.MemoryPath)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// NewTestUoW wraps conn in a UnitOfWork.
func NewTestUoW(conn *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(conn)
}
