// Package testdb opens a throwaway database with the real schema applied.
// It is imported only from tests.
package testdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/wildtrace/wildtrace-api/internal/infrastructure/database"
	_ "github.com/wildtrace/wildtrace-api/migrations" // registers the embedded schema
)

// Open returns a migrated database in t's temp directory, closed on cleanup.
func Open(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:         filepath.Join(t.TempDir(), "wildtrace-test.db"),
		WALMode:      true,
		BusyTimeout:  5,
		MaxOpenConns: 2,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

// Exec runs a fixture statement, failing the test on error.
func Exec(t testing.TB, db *database.DB, stmt string, args ...any) int64 {
	t.Helper()
	res, err := db.ExecContext(context.Background(), stmt, args...)
	if err != nil {
		t.Fatalf("fixture %q: %v", stmt, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("fixture %q: last insert id: %v", stmt, err)
	}
	return id
}

// Count returns SELECT COUNT(*) for the given FROM/WHERE tail.
func Count(t testing.TB, db *database.DB, tail string, args ...any) int {
	t.Helper()
	var n int
	if err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+tail, args...).Scan(&n); err != nil {
		t.Fatalf("count %q: %v", tail, err)
	}
	return n
}
