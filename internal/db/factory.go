package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// New opens and pings a database connection for the given driver and DSN.
// Supported drivers: sqlite3, mysql, postgres.
func New(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch driver {
	case "sqlite3":
		// modernc/sqlite registers itself as "sqlite" (CGO-free)
		db, err = sqlx.Open("sqlite", sqliteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// WAL is persisted in the database file; the per-connection pragmas
		// travel in the DSN.
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	case "mysql":
		db, err = sqlx.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		db.SetConnMaxLifetime(5 * time.Minute)
	case "postgres":
		db, err = sqlx.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported DB driver %q: must be sqlite3, mysql, or postgres", driver)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// sqliteDSN enables foreign keys and a busy timeout on every pooled connection.
func sqliteDSN(dsn string) string {
	var params []string
	if !strings.Contains(dsn, "foreign_keys") {
		params = append(params, "_pragma=foreign_keys(1)")
	}
	if !strings.Contains(dsn, "busy_timeout") {
		params = append(params, "_pragma=busy_timeout(5000)")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}
