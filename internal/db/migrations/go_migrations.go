// Package migrations contains dialect-aware Go database migrations that cannot
// be expressed as a single cross-database SQL statement.
package migrations

// dialect is set by the parent db package before migrations are applied.
var dialect string

// SetDialect configures the SQL dialect for Go migrations.
// Must be called before goose.Up. Valid values: "sqlite3", "postgres", "mysql".
func SetDialect(d string) {
	dialect = d
}

// forDialect picks the statement for the configured dialect, falling back to
// sqlite3 when none was set (tests open in-memory SQLite directly).
func forDialect(m map[string]string) string {
	if s, ok := m[dialect]; ok {
		return s
	}
	return m["sqlite3"]
}
