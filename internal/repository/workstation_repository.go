package repository // repository defines data access for workstations

import (
	"context"       // context allows query cancellation and timeouts
	"database/sql"  // sql provides DB primitives
	"encoding/json" // software_list is stored as a JSON array
	"errors"

	"github.com/iliyamo/lab-seat-scheduler/internal/apperr"
	"github.com/iliyamo/lab-seat-scheduler/internal/model"
)

// WorkstationRepo provides methods to work with workstations.  The
// uq_workstations_coord index on (row_id, position) is the final guard
// against two live units sharing a coordinate.
type WorkstationRepo struct {
	db *sql.DB
}

// NewWorkstationRepo constructs a WorkstationRepo with the given DB handle.
func NewWorkstationRepo(db *sql.DB) *WorkstationRepo {
	return &WorkstationRepo{db: db}
}

const wsColumns = `w.id, w.row_id, w.position, w.label, w.base_status, w.specs, w.software_list, w.version`

type scanner interface {
	Scan(dest ...any) error
}

func scanWorkstation(s scanner) (*model.Workstation, error) {
	var w model.Workstation
	var status, software string
	if err := s.Scan(&w.ID, &w.RowID, &w.Position, &w.Label, &status, &w.Specs, &software, &w.Version); err != nil {
		return nil, err
	}
	w.BaseStatus = model.Status(status)
	w.SoftwareList = []string{}
	if software != "" {
		if err := json.Unmarshal([]byte(software), &w.SoftwareList); err != nil {
			return nil, err
		}
	}
	return &w, nil
}

func encodeSoftware(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	return string(b), err
}

// CreateWorkstation inserts a workstation at its coordinate and removes a
// placeholder that sat there.  A live occupant yields Conflict.
func (r *WorkstationRepo) CreateWorkstation(ctx context.Context, w *model.Workstation) error {
	software, err := encodeSoftware(w.SoftwareList)
	if err != nil {
		return apperr.Validation("createWorkstation", "workstation", "software_list: %v", err)
	}
	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		var rows int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM lab_rows WHERE id = ?`, w.RowID).Scan(&rows); err != nil {
			return err
		}
		if rows == 0 {
			return apperr.NotFound("createWorkstation", "row", w.RowID)
		}
		const q = `INSERT INTO workstations (row_id, position, label, base_status, specs, software_list, version)
		           VALUES (?, ?, ?, ?, ?, ?, 1)`
		res, err := tx.ExecContext(ctx, q, w.RowID, w.Position, w.Label, string(w.BaseStatus), w.Specs, software)
		if err != nil {
			if isUniqueViolation(err) {
				return apperr.Conflict("createWorkstation", "workstation", "position %d is occupied", w.Position)
			}
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		w.ID = uint64(id)
		w.Version = 1
		// the new unit supersedes any placeholder at the coordinate
		_, err = tx.ExecContext(ctx, `DELETE FROM empty_slots WHERE row_id = ? AND position = ?`, w.RowID, w.Position)
		return err
	})
	return classify("createWorkstation", "workstation", err)
}

// GetWorkstation retrieves a workstation by id.
func (r *WorkstationRepo) GetWorkstation(ctx context.Context, id uint64) (*model.Workstation, error) {
	return r.getWorkstation(ctx, r.db, id)
}

func (r *WorkstationRepo) getWorkstation(ctx context.Context, q queryer, id uint64) (*model.Workstation, error) {
	w, err := scanWorkstation(q.QueryRowContext(ctx, `SELECT `+wsColumns+` FROM workstations w WHERE w.id = ?`, id))
	if err != nil {
		return nil, classify("getWorkstation", "workstation", err)
	}
	return w, nil
}

// FindWorkstationAt returns the live workstation at a coordinate.
func (r *WorkstationRepo) FindWorkstationAt(ctx context.Context, c model.Coord) (*model.Workstation, error) {
	const q = `SELECT ` + wsColumns + ` FROM workstations w WHERE w.row_id = ? AND w.position = ?`
	w, err := scanWorkstation(r.db.QueryRowContext(ctx, q, c.RowID, c.Position))
	if err != nil {
		return nil, classify("findWorkstation", "workstation", err)
	}
	return w, nil
}

// ListWorkstations returns every workstation of a lab.
func (r *WorkstationRepo) ListWorkstations(ctx context.Context, labID uint64) ([]model.Workstation, error) {
	const q = `SELECT ` + wsColumns + `
	           FROM workstations w
	           JOIN lab_rows lr ON lr.id = w.row_id
	           WHERE lr.lab_id = ?
	           ORDER BY w.id`
	rows, err := r.db.QueryContext(ctx, q, labID)
	if err != nil {
		return nil, classify("listWorkstations", "workstation", err)
	}
	defer rows.Close()

	out := []model.Workstation{}
	for rows.Next() {
		w, err := scanWorkstation(rows)
		if err != nil {
			return nil, classify("listWorkstations", "workstation", err)
		}
		out = append(out, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("listWorkstations", "workstation", err)
	}
	return out, nil
}

// UpdateWorkstation writes the non-coordinate fields guarded by version.
func (r *WorkstationRepo) UpdateWorkstation(ctx context.Context, w *model.Workstation) error {
	software, err := encodeSoftware(w.SoftwareList)
	if err != nil {
		return apperr.Validation("updateWorkstation", "workstation", "software_list: %v", err)
	}
	const q = `UPDATE workstations
	           SET label = ?, base_status = ?, specs = ?, software_list = ?, version = version + 1
	           WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, q, w.Label, string(w.BaseStatus), w.Specs, software, w.ID, w.Version)
	if err != nil {
		return classify("updateWorkstation", "workstation", err)
	}
	if !affectedOne(res) {
		if _, err := r.GetWorkstation(ctx, w.ID); err != nil {
			return err
		}
		return stale("updateWorkstation", "workstation")
	}
	w.Version++
	return nil
}

// DeleteWorkstation removes the unit and its bookings and leaves a
// placeholder behind unless one is already present.
func (r *WorkstationRepo) DeleteWorkstation(ctx context.Context, id uint64) (bool, error) {
	created := false
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		w, err := r.getWorkstation(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE workstation_id = ?`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM workstations WHERE id = ?`, id); err != nil {
			return err
		}
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM empty_slots WHERE row_id = ? AND position = ?`,
			w.RowID, w.Position).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO empty_slots (row_id, position) VALUES (?, ?)`,
			w.RowID, w.Position); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, classify("deleteWorkstation", "workstation", err)
	}
	return created, nil
}

// moveGuarded updates the coordinate of w only when the stored row still
// carries the version and coordinate the caller read.
func moveGuarded(ctx context.Context, tx *sql.Tx, w model.Workstation, to model.Coord) error {
	const q = `UPDATE workstations SET row_id = ?, position = ?, version = version + 1
	           WHERE id = ? AND version = ? AND row_id = ? AND position = ?`
	res, err := tx.ExecContext(ctx, q, to.RowID, to.Position, w.ID, w.Version, w.RowID, w.Position)
	if err != nil {
		return err
	}
	if !affectedOne(res) {
		return errStaleMove
	}
	return nil
}

var errStaleMove = errors.New("stale move")

// RelocateWorkstation moves w onto an unoccupied coordinate.
func (r *WorkstationRepo) RelocateWorkstation(ctx context.Context, w model.Workstation, to model.Coord) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var rows int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM lab_rows WHERE id = ?`, to.RowID).Scan(&rows); err != nil {
			return err
		}
		if rows == 0 {
			return apperr.NotFound("relocateWorkstation", "row", to.RowID)
		}
		var occupied int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM workstations WHERE row_id = ? AND position = ?`,
			to.RowID, to.Position).Scan(&occupied); err != nil {
			return err
		}
		if occupied > 0 {
			return errStaleMove
		}
		return moveGuarded(ctx, tx, w, to)
	})
	return moveError("relocateWorkstation", err)
}

// SwapWorkstations exchanges two coordinates.  a is parked on a private
// negative position first so the unique coordinate index never sees two
// units on one cell mid-transaction.
func (r *WorkstationRepo) SwapWorkstations(ctx context.Context, a, b model.Workstation) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		parking := model.Coord{RowID: a.RowID, Position: -int(a.ID)}
		if err := moveGuarded(ctx, tx, a, parking); err != nil {
			return err
		}
		if err := moveGuarded(ctx, tx, b, a.Coord()); err != nil {
			return err
		}
		parked := a
		parked.RowID, parked.Position, parked.Version = parking.RowID, parking.Position, a.Version+1
		return moveGuarded(ctx, tx, parked, b.Coord())
	})
	return moveError("swapWorkstations", err)
}

func moveError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errStaleMove) || isUniqueViolation(err) {
		return stale(op, "workstation")
	}
	return classify(op, "workstation", err)
}
