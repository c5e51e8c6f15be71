package db

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound      = errors.New("element not found")
	ErrAlreadyIn     = errors.New("element already in database")
	ErrSeatRange     = errors.New("incorrect seat number")
	ErrAlreadyTaken  = errors.New("seat already taken")
	ErrIncorrectTime = errors.New("incorrect time period")
	ErrFile          = errors.New("cannot open the database file")

	// ErrUnresolvedReference is returned in strict mode when seed data names a
	// passenger, company or plane that was never loaded.
	ErrUnresolvedReference = errors.New("unresolved seed reference")
)

// PathError reports a database path whose parent directory does not exist.
type PathError struct {
	Path string
	Dir  string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("incorrect path to file %q: directory %q does not exist", e.Path, e.Dir)
}

// isConstraintErr reports whether err is an SQLite constraint violation.
func isConstraintErr(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}
