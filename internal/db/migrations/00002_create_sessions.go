package migrations

// The sessions table layout must match what each scs store adapter reads and
// writes, and the column types differ by driver.

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateSessions, downCreateSessions)
}

var sessionsDDL = map[string]string{
	"postgres": `CREATE TABLE IF NOT EXISTS sessions (
    token  TEXT PRIMARY KEY,
    data   BYTEA NOT NULL,
    expiry TIMESTAMPTZ NOT NULL
)`,
	"mysql": `CREATE TABLE IF NOT EXISTS sessions (
    token  CHAR(43) PRIMARY KEY,
    data   BLOB NOT NULL,
    expiry TIMESTAMP(6) NOT NULL
)`,
	"sqlite3": `CREATE TABLE IF NOT EXISTS sessions (
    token  TEXT PRIMARY KEY,
    data   BLOB NOT NULL,
    expiry REAL NOT NULL
)`,
}

func upCreateSessions(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, forDialect(sessionsDDL)); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `CREATE INDEX sessions_expiry_idx ON sessions (expiry)`); err != nil {
		return fmt.Errorf("create sessions index: %w", err)
	}
	return nil
}

func downCreateSessions(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS sessions`)
	return err
}
