package repository

import (
	"context"
	"database/sql"
)

// SQLStore implements Store over database/sql.  The SQL it issues is the
// common subset of MySQL and SQLite, so the same store serves production
// (MySQL) and embedded/test deployments (SQLite).  Schema creation lives
// in the database package.
type SQLStore struct {
	*LabRepo
	*RowRepo
	*WorkstationRepo
	*EmptySlotRepo
	*BookingRepo
	*QueueRepo
	db *sql.DB
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore wires every repository to the same database handle.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{
		LabRepo:         NewLabRepo(db),
		RowRepo:         NewRowRepo(db),
		WorkstationRepo: NewWorkstationRepo(db),
		EmptySlotRepo:   NewEmptySlotRepo(db),
		BookingRepo:     NewBookingRepo(db),
		QueueRepo:       NewQueueRepo(db),
		db:              db,
	}
}

// DB exposes the underlying handle for health checks.
func (s *SQLStore) DB() *sql.DB { return s.db }

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn inside a transaction and rolls back unless fn and the
// commit both succeed.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// affectedOne reports whether exactly one row was touched.
func affectedOne(res sql.Result) bool {
	n, err := res.RowsAffected()
	return err == nil && n == 1
}
