package migrations

// generations keeps the tool input and the validated model output. Postgres
// stores them as JSONB so admins can query them, MySQL needs LONGTEXT for
// lesson plans that outgrow TEXT, and SQLite is happy with TEXT.

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateGenerations, downCreateGenerations)
}

var jsonColumnType = map[string]string{
	"postgres": "JSONB",
	"mysql":    "LONGTEXT",
	"sqlite3":  "TEXT",
}

const generationsDDL = `CREATE TABLE generations (
    id            VARCHAR(36)  PRIMARY KEY,
    user_id       VARCHAR(36)  NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    tool_slug     VARCHAR(64)  NOT NULL,
    status        VARCHAR(16)  NOT NULL,
    error_code    VARCHAR(64)  NOT NULL DEFAULT '',
    model         VARCHAR(128) NOT NULL DEFAULT '',
    input_tokens  INTEGER      NOT NULL DEFAULT 0,
    output_tokens INTEGER      NOT NULL DEFAULT 0,
    duration_ms   BIGINT       NOT NULL DEFAULT 0,
    input_json    {{json}}     NOT NULL,
    output_json   {{json}}     NULL,
    created_at    TIMESTAMP    NOT NULL
)`

func upCreateGenerations(ctx context.Context, tx *sql.Tx) error {
	ddl := strings.ReplaceAll(generationsDDL, "{{json}}", forDialect(jsonColumnType))
	stmts := []string{
		ddl,
		`CREATE INDEX idx_generations_user_created ON generations (user_id, created_at)`,
		`CREATE INDEX idx_generations_tool ON generations (tool_slug)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create generations: %w", err)
		}
	}
	return nil
}

func downCreateGenerations(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS generations`)
	return err
}
