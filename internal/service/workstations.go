package service

import (
	"context"
	"errors"

	"github.com/iliyamo/lab-seat-scheduler/internal/apperr"
	"github.com/iliyamo/lab-seat-scheduler/internal/layout"
	"github.com/iliyamo/lab-seat-scheduler/internal/model"
	"github.com/iliyamo/lab-seat-scheduler/internal/queue"
	"github.com/iliyamo/lab-seat-scheduler/internal/repository"
)

// NewWorkstation is the input of AddWorkstation.  The row is given either
// by RowID or by LabID plus RowName; RowName is normalized ("row a" → "A").
type NewWorkstation struct {
	RowID        uint64   `json:"row_id"`
	LabID        uint64   `json:"lab_id"`
	RowName      string   `json:"row"`
	Position     int      `json:"position"`
	Label        string   `json:"label"`
	BaseStatus   string   `json:"base_status"`
	Specs        string   `json:"specs"`
	SoftwareList []string `json:"software_list"`
}

// updateAttempts bounds how often a field patch is re-applied after losing
// an optimistic race with another writer.
const updateAttempts = 3

// resolveRow finds the row addressed by id or by lab and name.
func (e *Engine) resolveRow(ctx context.Context, op string, rowID, labID uint64, rowName string) (*model.Row, error) {
	if rowID != 0 {
		return e.store.GetRow(ctx, rowID)
	}
	n := layout.NormalizeRowName(rowName)
	if labID == 0 || n == "" {
		return nil, apperr.Validation(op, "row", "row_id or lab_id and row are required")
	}
	if !layout.ValidRowName(n) {
		return nil, apperr.Validation(op, "row", "name %q must be a single letter A-Z", rowName)
	}
	return e.store.FindRowByName(ctx, labID, n)
}

func validateSoftware(op string, list []string) ([]string, error) {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s == "" {
			return nil, apperr.Validation(op, "workstation", "software_list entries must not be empty")
		}
		out = append(out, s)
	}
	return out, nil
}

// AddWorkstation registers a physical unit at a free coordinate.  A
// placeholder at the coordinate is superseded.
func (e *Engine) AddWorkstation(ctx context.Context, in NewWorkstation) (*model.Workstation, error) {
	const op = "addWorkstation"
	row, err := e.resolveRow(ctx, op, in.RowID, in.LabID, in.RowName)
	if err != nil {
		return nil, e.done(op, err)
	}
	if in.Position < 0 {
		return nil, e.done(op, apperr.Validation(op, "workstation", "position must be >= 0"))
	}
	label := layout.NormalizeLabel(in.Label)
	if label == "" {
		return nil, e.done(op, apperr.Validation(op, "workstation", "label is required"))
	}
	status, ok := model.ParseBaseStatus(in.BaseStatus)
	if !ok {
		return nil, e.done(op, apperr.Validation(op, "workstation", "invalid base_status %q", in.BaseStatus))
	}
	software, err := validateSoftware(op, in.SoftwareList)
	if err != nil {
		return nil, e.done(op, err)
	}
	ws := &model.Workstation{
		RowID:        row.ID,
		Position:     in.Position,
		Label:        label,
		BaseStatus:   status,
		Specs:        in.Specs,
		SoftwareList: software,
	}
	if err := e.store.CreateWorkstation(ctx, ws); err != nil {
		return nil, e.done(op, err)
	}
	e.log.Debug().Uint64("workstation_id", ws.ID).Str("row", row.Name).Int("position", ws.Position).Msg("workstation added")
	return ws, e.done(op, nil)
}

// GetWorkstation returns one workstation.
func (e *Engine) GetWorkstation(ctx context.Context, id uint64) (*model.Workstation, error) {
	ws, err := e.store.GetWorkstation(ctx, id)
	return ws, e.done("getWorkstation", err)
}

// applyPatch validates p and writes it onto w.
func applyPatch(op string, w *model.Workstation, p model.WorkstationPatch) error {
	if p.Label != nil {
		label := layout.NormalizeLabel(*p.Label)
		if label == "" {
			return apperr.Validation(op, "workstation", "label must not be empty")
		}
		w.Label = label
	}
	if p.BaseStatus != nil {
		s, ok := model.ParseBaseStatus(*p.BaseStatus)
		if !ok || *p.BaseStatus == "" {
			return apperr.Validation(op, "workstation", "invalid base_status %q", *p.BaseStatus)
		}
		w.BaseStatus = s
	}
	if p.Specs != nil {
		w.Specs = *p.Specs
	}
	if p.SoftwareList != nil {
		list, err := validateSoftware(op, *p.SoftwareList)
		if err != nil {
			return err
		}
		w.SoftwareList = list
	}
	return nil
}

// UpdateWorkstation applies a field-level patch.  It never moves the
// unit.  A concurrent write to the same record causes the patch to be
// re-applied to the fresh copy, so the last writer wins field by field.
func (e *Engine) UpdateWorkstation(ctx context.Context, id uint64, p model.WorkstationPatch) (*model.Workstation, error) {
	const op = "updateWorkstation"
	var err error
	for attempt := 0; attempt < updateAttempts; attempt++ {
		var ws *model.Workstation
		if ws, err = e.store.GetWorkstation(ctx, id); err != nil {
			return nil, e.done(op, err)
		}
		if err = applyPatch(op, ws, p); err != nil {
			return nil, e.done(op, err)
		}
		if err = e.store.UpdateWorkstation(ctx, ws); err == nil {
			return ws, e.done(op, nil)
		}
		if !errors.Is(err, repository.ErrStale) {
			break
		}
	}
	return nil, e.done(op, err)
}

// DeleteWorkstation removes a unit and its bookings.  Its coordinate keeps
// exactly one placeholder.
func (e *Engine) DeleteWorkstation(ctx context.Context, id uint64) error {
	const op = "deleteWorkstation"
	ws, err := e.store.GetWorkstation(ctx, id)
	if err != nil {
		return e.done(op, err)
	}
	created, err := e.store.DeleteWorkstation(ctx, id)
	if err != nil {
		return e.done(op, err)
	}
	e.log.Debug().Uint64("workstation_id", id).Bool("placeholder_created", created).Msg("workstation deleted")
	e.publish(ctx, queue.WorkstationDeleted, queue.WorkstationDeletedEvent{
		WorkstationID:      id,
		RowID:              ws.RowID,
		Position:           ws.Position,
		PlaceholderCreated: created,
	})
	return e.done(op, nil)
}
