package service

import (
	"context"

	"github.com/iliyamo/lab-seat-scheduler/internal/apperr"
	"github.com/iliyamo/lab-seat-scheduler/internal/layout"
	"github.com/iliyamo/lab-seat-scheduler/internal/model"
	"github.com/iliyamo/lab-seat-scheduler/internal/queue"
)

// ListLabs returns every laboratory.
func (e *Engine) ListLabs(ctx context.Context) ([]model.Laboratory, error) {
	labs, err := e.store.ListLabs(ctx)
	return labs, e.done("listLabs", err)
}

// GetLab returns one laboratory.
func (e *Engine) GetLab(ctx context.Context, id uint64) (*model.Laboratory, error) {
	lab, err := e.store.GetLab(ctx, id)
	return lab, e.done("getLab", err)
}

// CreateLab registers a laboratory.  Labs are owned by an external
// system; this exists for seeding.
func (e *Engine) CreateLab(ctx context.Context, name string) (*model.Laboratory, error) {
	if name == "" {
		return nil, e.done("createLab", apperr.Validation("createLab", "lab", "name is required"))
	}
	lab := &model.Laboratory{Name: name}
	if err := e.store.CreateLab(ctx, lab); err != nil {
		return nil, e.done("createLab", err)
	}
	return lab, e.done("createLab", nil)
}

// ListRows returns the rows of a lab ordered by name.
func (e *Engine) ListRows(ctx context.Context, labID uint64) ([]model.Row, error) {
	if _, err := e.store.GetLab(ctx, labID); err != nil {
		return nil, e.done("listRows", err)
	}
	rows, err := e.store.ListRows(ctx, labID)
	if err != nil {
		return nil, e.done("listRows", err)
	}
	layout.SortRows(rows)
	return rows, e.done("listRows", nil)
}

// AddRow creates a row.  An empty name takes the next free letter.  The
// name is normalized first; a duplicate within the lab is a validation
// error.
func (e *Engine) AddRow(ctx context.Context, labID uint64, name string) (*model.Row, error) {
	const op = "addRow"
	if _, err := e.store.GetLab(ctx, labID); err != nil {
		return nil, e.done(op, err)
	}
	n := layout.NormalizeRowName(name)
	if n == "" {
		rows, err := e.store.ListRows(ctx, labID)
		if err != nil {
			return nil, e.done(op, err)
		}
		names := make([]string, len(rows))
		for i, r := range rows {
			names[i] = r.Name
		}
		n = layout.NextRowName(names)
	}
	if !layout.ValidRowName(n) {
		return nil, e.done(op, apperr.Validation(op, "row", "name %q must be a single letter A-Z", name))
	}
	row := &model.Row{LabID: labID, Name: n}
	if err := e.store.CreateRow(ctx, row); err != nil {
		if apperr.IsConflict(err) {
			err = apperr.Validation(op, "row", "row %q already exists in lab %d", n, labID)
		}
		return nil, e.done(op, err)
	}
	e.log.Debug().Uint64("lab_id", labID).Str("row", n).Msg("row added")
	return row, e.done(op, nil)
}

// UpdateRow renames a row under the same rules as AddRow.
func (e *Engine) UpdateRow(ctx context.Context, id uint64, name string) (*model.Row, error) {
	const op = "updateRow"
	n := layout.NormalizeRowName(name)
	if !layout.ValidRowName(n) {
		return nil, e.done(op, apperr.Validation(op, "row", "name %q must be a single letter A-Z", name))
	}
	if err := e.store.RenameRow(ctx, id, n); err != nil {
		if apperr.IsConflict(err) {
			err = apperr.Validation(op, "row", "row %q already exists", n)
		}
		return nil, e.done(op, err)
	}
	row, err := e.store.GetRow(ctx, id)
	return row, e.done(op, err)
}

// DeleteRow removes a row with its workstations, placeholders and their
// bookings as one unit.
func (e *Engine) DeleteRow(ctx context.Context, id uint64) error {
	const op = "deleteRow"
	row, err := e.store.GetRow(ctx, id)
	if err != nil {
		return e.done(op, err)
	}
	if err := e.store.DeleteRowCascade(ctx, id); err != nil {
		return e.done(op, err)
	}
	e.log.Debug().Uint64("row_id", id).Msg("row deleted")
	e.publish(ctx, queue.RowDeleted, queue.RowDeletedEvent{RowID: row.ID, LabID: row.LabID, Name: row.Name})
	return e.done(op, nil)
}

// NextRowName returns the first unused letter for a lab.
func (e *Engine) NextRowName(ctx context.Context, labID uint64) (string, error) {
	rows, err := e.store.ListRows(ctx, labID)
	if err != nil {
		return "", e.done("nextRowName", err)
	}
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	return layout.NextRowName(names), e.done("nextRowName", nil)
}

// AddEmptySlot marks a coordinate as a deliberately fillable gap.
func (e *Engine) AddEmptySlot(ctx context.Context, rowID uint64, position int) (*model.EmptySlot, error) {
	const op = "addEmptySlot"
	if position < 0 {
		return nil, e.done(op, apperr.Validation(op, "empty_slot", "position must be >= 0"))
	}
	slot := &model.EmptySlot{RowID: rowID, Position: position}
	if err := e.store.CreateEmptySlot(ctx, slot); err != nil {
		return nil, e.done(op, err)
	}
	return slot, e.done(op, nil)
}

// RemoveEmptySlot deletes a placeholder.  Removing one that does not
// exist succeeds.
func (e *Engine) RemoveEmptySlot(ctx context.Context, id uint64) error {
	return e.done("removeEmptySlot", e.store.DeleteEmptySlot(ctx, id))
}
