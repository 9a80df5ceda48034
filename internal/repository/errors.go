package repository

import (
	"errors"
	"strings"

	sqlite3 "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already registered")
	ErrSlugTaken     = errors.New("slug already taken")
)

// isUniqueViolation checks for a SQLite UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// uniqueColumn names the "table.column" reported by a UNIQUE violation,
// or "" when err is not one.
func uniqueColumn(err error) string {
	if !isUniqueViolation(err) {
		return ""
	}
	const marker = "UNIQUE constraint failed: "
	msg := err.Error()
	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}
	col := msg[i+len(marker):]
	if j := strings.IndexAny(col, " ,)"); j >= 0 {
		col = col[:j]
	}
	return col
}

// mapUserConstraint converts unique violations on users into domain errors.
func mapUserConstraint(err error) error {
	switch uniqueColumn(err) {
	case "users.username":
		return ErrUsernameTaken
	case "users.email":
		return ErrEmailTaken
	}
	return nil
}
