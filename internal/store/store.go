package store

import (
	"database/sql"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyMember is returned when a user already belongs to an organization.
	ErrAlreadyMember = errors.New("user is already a member of this organization")

	// ErrNotMember is returned when removing a user who is not a member.
	ErrNotMember = errors.New("user is not a member of this organization")
)

// notFound maps sql.ErrNoRows to ErrNotFound and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// isUniqueConstraintError checks whether err indicates a unique constraint violation.
// Works across SQLite, PostgreSQL, and MySQL.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // SQLite & PostgreSQL
		strings.Contains(msg, "duplicate key") || // PostgreSQL
		strings.Contains(msg, "duplicate entry") // MySQL
}
