// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/edify-labs/edify/internal/db"
)

// NewTestDB opens an in-memory SQLite DB and runs all goose migrations.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	// A file URI with shared cache lets every pool connection see the same
	// in-memory database. Each test gets its own name. The busy timeout covers
	// the asynchronous generation writer and token last-used updates.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open in-memory sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if err := db.Migrate(context.Background(), conn, "sqlite3"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return conn
}
