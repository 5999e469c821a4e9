package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/lab-seat-scheduler/internal/apperr"
	"github.com/iliyamo/lab-seat-scheduler/internal/model"
)

// RowRepo provides methods to work with lab rows.  Names are unique per
// lab through the uq_lab_rows_name index.
type RowRepo struct {
	db *sql.DB
}

// NewRowRepo constructs a RowRepo with the given DB handle.
func NewRowRepo(db *sql.DB) *RowRepo {
	return &RowRepo{db: db}
}

// CreateRow inserts a row.  A duplicate name surfaces as Conflict; an
// unknown lab as NotFound.
func (r *RowRepo) CreateRow(ctx context.Context, row *model.Row) error {
	var exists int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM laboratories WHERE id = ?`, row.LabID).Scan(&exists); err != nil {
		return classify("createRow", "lab", err)
	}
	if exists == 0 {
		return apperr.NotFound("createRow", "lab", row.LabID)
	}
	row.CreatedAt = time.Now().UTC().Truncate(time.Second)
	const q = `INSERT INTO lab_rows (lab_id, name, created_at) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, row.LabID, row.Name, row.CreatedAt)
	if err != nil {
		return classify("createRow", "row", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify("createRow", "row", err)
	}
	row.ID = uint64(id)
	return nil
}

// GetRow retrieves a row by id.
func (r *RowRepo) GetRow(ctx context.Context, id uint64) (*model.Row, error) {
	const q = `SELECT id, lab_id, name, created_at FROM lab_rows WHERE id = ?`
	var row model.Row
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&row.ID, &row.LabID, &row.Name, &row.CreatedAt); err != nil {
		return nil, classify("getRow", "row", err)
	}
	return &row, nil
}

// FindRowByName looks a row up by its normalized name inside a lab.
func (r *RowRepo) FindRowByName(ctx context.Context, labID uint64, name string) (*model.Row, error) {
	const q = `SELECT id, lab_id, name, created_at FROM lab_rows WHERE lab_id = ? AND name = ?`
	var row model.Row
	if err := r.db.QueryRowContext(ctx, q, labID, name).Scan(&row.ID, &row.LabID, &row.Name, &row.CreatedAt); err != nil {
		return nil, classify("findRow", "row", err)
	}
	return &row, nil
}

// ListRows returns the rows of a lab ordered by name.
func (r *RowRepo) ListRows(ctx context.Context, labID uint64) ([]model.Row, error) {
	const q = `SELECT id, lab_id, name, created_at FROM lab_rows WHERE lab_id = ? ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, q, labID)
	if err != nil {
		return nil, classify("listRows", "row", err)
	}
	defer rows.Close()

	out := []model.Row{}
	for rows.Next() {
		var row model.Row
		if err := rows.Scan(&row.ID, &row.LabID, &row.Name, &row.CreatedAt); err != nil {
			return nil, classify("listRows", "row", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("listRows", "row", err)
	}
	return out, nil
}

// RenameRow changes a row's name.
func (r *RowRepo) RenameRow(ctx context.Context, id uint64, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE lab_rows SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return classify("renameRow", "row", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports zero affected rows for a no-op rename; tell the
		// cases apart before declaring the row missing.
		if _, err := r.GetRow(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// DeleteRowCascade removes a row together with its workstations,
// placeholders and the bookings of those workstations.  Either all of it
// goes or none of it does.
func (r *RowRepo) DeleteRowCascade(ctx context.Context, id uint64) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM bookings WHERE workstation_id IN (SELECT id FROM workstations WHERE row_id = ?)`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM workstations WHERE row_id = ?`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM empty_slots WHERE row_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM lab_rows WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if !affectedOne(res) {
			return apperr.NotFound("deleteRow", "row", id)
		}
		return nil
	})
	return classify("deleteRow", "row", err)
}
