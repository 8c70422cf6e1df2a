package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/edify-labs/edify/internal/db/migrations"
)

//go:embed migrations
var Migrations embed.FS

// Migrate runs all pending goose migrations: the embedded SQL files plus the
// dialect-aware Go migrations registered by the migrations package.
// It must be called before the HTTP server starts accepting requests.
func Migrate(ctx context.Context, db *sqlx.DB, driver string) error {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return err
	}

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	migrations.SetDialect(dialect)

	sub, err := fs.Sub(Migrations, "migrations")
	if err != nil {
		return fmt.Errorf("sub migrations fs: %w", err)
	}

	goose.SetBaseFS(sub)
	defer goose.SetBaseFS(nil)
	if err := goose.UpContext(ctx, db.DB, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Status reports the applied version for the migrate command.
func Status(ctx context.Context, db *sqlx.DB, driver string) (int64, error) {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return 0, err
	}
	if err := goose.SetDialect(dialect); err != nil {
		return 0, fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, db.DB)
}

func gooseDialect(driver string) (string, error) {
	switch driver {
	case "sqlite3", "mysql", "postgres":
		return driver, nil
	default:
		return "", fmt.Errorf("unknown driver for goose dialect: %q", driver)
	}
}
