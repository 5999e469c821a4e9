package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/lab-seat-scheduler/internal/apperr"
	"github.com/iliyamo/lab-seat-scheduler/internal/model"
)

// EmptySlotRepo provides methods to work with placeholders.
type EmptySlotRepo struct {
	db *sql.DB
}

// NewEmptySlotRepo constructs an EmptySlotRepo with the given DB handle.
func NewEmptySlotRepo(db *sql.DB) *EmptySlotRepo {
	return &EmptySlotRepo{db: db}
}

// CreateEmptySlot inserts a placeholder on a free coordinate.
func (r *EmptySlotRepo) CreateEmptySlot(ctx context.Context, s *model.EmptySlot) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var rows int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM lab_rows WHERE id = ?`, s.RowID).Scan(&rows); err != nil {
			return err
		}
		if rows == 0 {
			return apperr.NotFound("createEmptySlot", "row", s.RowID)
		}
		var occupied int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM workstations WHERE row_id = ? AND position = ?`,
			s.RowID, s.Position).Scan(&occupied); err != nil {
			return err
		}
		if occupied > 0 {
			return apperr.Conflict("createEmptySlot", "empty_slot", "position %d holds a workstation", s.Position)
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO empty_slots (row_id, position) VALUES (?, ?)`, s.RowID, s.Position)
		if err != nil {
			if isUniqueViolation(err) {
				return apperr.Conflict("createEmptySlot", "empty_slot", "position %d already has a placeholder", s.Position)
			}
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		s.ID = uint64(id)
		return nil
	})
	return classify("createEmptySlot", "empty_slot", err)
}

// EnsureEmptySlot returns the placeholder at c, creating it when absent.
func (r *EmptySlotRepo) EnsureEmptySlot(ctx context.Context, c model.Coord) (*model.EmptySlot, bool, error) {
	if s, err := r.FindEmptySlotAt(ctx, c); err == nil {
		return s, false, nil
	} else if !apperr.IsNotFound(err) {
		return nil, false, err
	}

	s := &model.EmptySlot{RowID: c.RowID, Position: c.Position}
	var rows int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lab_rows WHERE id = ?`, c.RowID).Scan(&rows); err != nil {
		return nil, false, classify("ensureEmptySlot", "row", err)
	}
	if rows == 0 {
		return nil, false, apperr.NotFound("ensureEmptySlot", "row", c.RowID)
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO empty_slots (row_id, position) VALUES (?, ?)`, c.RowID, c.Position)
	if err != nil {
		if isUniqueViolation(err) {
			// lost a race with another writer; theirs is as good as ours
			existing, ferr := r.FindEmptySlotAt(ctx, c)
			return existing, false, ferr
		}
		return nil, false, classify("ensureEmptySlot", "empty_slot", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, classify("ensureEmptySlot", "empty_slot", err)
	}
	s.ID = uint64(id)
	return s, true, nil
}

// DeleteEmptySlot removes a placeholder.  Deleting an absent one succeeds.
func (r *EmptySlotRepo) DeleteEmptySlot(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM empty_slots WHERE id = ?`, id)
	return classify("deleteEmptySlot", "empty_slot", err)
}

// FindEmptySlotAt returns the placeholder stored at c.
func (r *EmptySlotRepo) FindEmptySlotAt(ctx context.Context, c model.Coord) (*model.EmptySlot, error) {
	const q = `SELECT id, row_id, position FROM empty_slots WHERE row_id = ? AND position = ?`
	var s model.EmptySlot
	if err := r.db.QueryRowContext(ctx, q, c.RowID, c.Position).Scan(&s.ID, &s.RowID, &s.Position); err != nil {
		return nil, classify("findEmptySlot", "empty_slot", err)
	}
	return &s, nil
}

// ListEmptySlots returns the placeholders of a lab.
func (r *EmptySlotRepo) ListEmptySlots(ctx context.Context, labID uint64) ([]model.EmptySlot, error) {
	const q = `SELECT es.id, es.row_id, es.position
	           FROM empty_slots es
	           JOIN lab_rows lr ON lr.id = es.row_id
	           WHERE lr.lab_id = ?
	           ORDER BY es.id`
	rows, err := r.db.QueryContext(ctx, q, labID)
	if err != nil {
		return nil, classify("listEmptySlots", "empty_slot", err)
	}
	defer rows.Close()

	out := []model.EmptySlot{}
	for rows.Next() {
		var s model.EmptySlot
		if err := rows.Scan(&s.ID, &s.RowID, &s.Position); err != nil {
			return nil, classify("listEmptySlots", "empty_slot", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("listEmptySlots", "empty_slot", err)
	}
	return out, nil
}
