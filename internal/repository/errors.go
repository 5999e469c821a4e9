package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"

	"github.com/iliyamo/lab-seat-scheduler/internal/apperr"
)

// ErrStale is wrapped into Conflict errors when an optimistic check finds
// that a record changed between the caller's read and the write.  Callers
// should refresh canonical state and retry.
var ErrStale = errors.New("stale state: refresh and retry")

// isUniqueViolation recognises duplicate-key errors from both supported
// drivers: MySQL error 1062 and SQLite UNIQUE/PRIMARY KEY constraints.
func isUniqueViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// classify converts a driver error into the engine's taxonomy.
func classify(op, entity string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return &apperr.Error{Kind: apperr.KindNotFound, Op: op, Entity: entity, Msg: "not found"}
	case isUniqueViolation(err):
		return &apperr.Error{Kind: apperr.KindConflict, Op: op, Entity: entity, Msg: "already exists", Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperr.Dependency(op, entity, err)
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Dependency(op, entity, err)
}

// stale builds the Conflict returned by optimistic checks.
func stale(op, entity string) error {
	return &apperr.Error{Kind: apperr.KindConflict, Op: op, Entity: entity, Msg: "target changed concurrently", Err: ErrStale}
}
