package db

import (
	"database/sql"
	"testing"

	"go.uber.org/zap"
)

// NewTestDB создает чистую базу SQLite в памяти со схемой.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := OpenSQLite(":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}
