package store

import (
	"errors"

	"github.com/glebarez/go-sqlite"
	"gorm.io/gorm"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrValidation indicates empty content, an empty tag name or a malformed tag set.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a referenced paste, tag or association does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the association or unique name already exists.
	ErrConflict = errors.New("conflict")

	// ErrStoreBusy indicates the store stayed locked after all retries.
	ErrStoreBusy = errors.New("store busy")

	// ErrNotReady indicates an operation before migrations completed.
	ErrNotReady = errors.New("store not migrated")
)

func sqliteCode(err error) (int, bool) {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code(), true
	}
	return 0, false
}

func isBusy(err error) bool {
	code, ok := sqliteCode(err)
	if !ok {
		return false
	}

	primary := code & 0xff
	return primary == sqlite3.SQLITE_BUSY || primary == sqlite3.SQLITE_LOCKED
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	code, ok := sqliteCode(err)
	return ok && (code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY)
}

func isCheckViolation(err error) bool {
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}

	code, ok := sqliteCode(err)
	return ok && (code == sqlite3.SQLITE_CONSTRAINT_CHECK || code == sqlite3.SQLITE_CONSTRAINT_NOTNULL)
}
