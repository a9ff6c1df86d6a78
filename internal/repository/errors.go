package repository

import (
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Common repository errors that can be checked with errors.Is()
var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a write violates a uniqueness constraint
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidReference is returned when a write points at a row that does not exist
	ErrInvalidReference = errors.New("referenced entity does not exist")

	// ErrInvalidEntity is returned when an entity is missing required fields
	ErrInvalidEntity = errors.New("invalid entity")
)

// IntegrityError is a database level rejection of a write.
type IntegrityError struct {
	Kind       error  // ErrDuplicate, ErrInvalidReference or ErrInvalidEntity
	Constraint string // e.g. "dhcp_servers.name", empty when SQLite does not say
	Err        error
}

func (e *IntegrityError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%v (%s)", e.Kind, e.Constraint)
	}
	return e.Kind.Error()
}

func (e *IntegrityError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// translateError maps SQLite constraint failures onto the repository sentinels.
// Anything else is returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var kind error
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			kind = ErrDuplicate
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			kind = ErrInvalidReference
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL, sqlite3.SQLITE_CONSTRAINT_CHECK:
			kind = ErrInvalidEntity
		}
	}

	// Fall back to the message when the extended code is not available
	msg := err.Error()
	if kind == nil {
		switch {
		case strings.Contains(msg, "UNIQUE constraint failed"):
			kind = ErrDuplicate
		case strings.Contains(msg, "FOREIGN KEY constraint failed"):
			kind = ErrInvalidReference
		case strings.Contains(msg, "NOT NULL constraint failed"):
			kind = ErrInvalidEntity
		default:
			return err
		}
	}

	return &IntegrityError{Kind: kind, Constraint: constraintName(msg), Err: err}
}

// constraintName extracts "table.column" from "... constraint failed: table.column (2067)".
// Foreign key failures carry no column and yield "".
func constraintName(msg string) string {
	const marker = "constraint failed: "
	idx := strings.LastIndex(msg, marker)
	if idx < 0 {
		return ""
	}
	after := msg[idx+len(marker):]
	if strings.Contains(after, "constraint failed") {
		return ""
	}
	if i := strings.IndexAny(after, " ,)"); i >= 0 {
		after = after[:i]
	}
	return after
}
