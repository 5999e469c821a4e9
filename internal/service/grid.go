package service

import (
	"context"
	"time"

	"github.com/iliyamo/lab-seat-scheduler/internal/layout"
	"github.com/iliyamo/lab-seat-scheduler/internal/model"
	"github.com/iliyamo/lab-seat-scheduler/internal/status"
)

// StatusView is the live state of one workstation.
type StatusView struct {
	WorkstationID uint64          `json:"workstation_id"`
	BaseStatus    model.Status    `json:"base_status"`
	Effective     model.Status    `json:"effective_status"`
	CurrentSlot   *model.TimeSlot `json:"current_slot,omitempty"`
	At            time.Time       `json:"at"`
}

// WorkstationView is a workstation with its effective status.
type WorkstationView struct {
	model.Workstation
	EffectiveStatus model.Status `json:"effective_status"`
}

// GridCell is one coordinate of a rendered row.
type GridCell struct {
	layout.Cell
	Workstation *WorkstationView `json:"workstation,omitempty"`
}

// GridRow is a row and its cells from position 0 to the highest used one.
type GridRow struct {
	model.Row
	Cells []GridCell `json:"cells"`
}

// GridView is the canonical arrangement of a lab at a point in time.
type GridView struct {
	LabID uint64    `json:"lab_id"`
	At    time.Time `json:"at"`
	Rows  []GridRow `json:"rows"`
}

// EffectiveStatus resolves the live status of a workstation at the
// engine's current time.
func (e *Engine) EffectiveStatus(ctx context.Context, id uint64) (*StatusView, error) {
	const op = "effectiveStatus"
	ws, err := e.store.GetWorkstation(ctx, id)
	if err != nil {
		return nil, e.done(op, err)
	}
	now := e.Now()
	books, err := e.store.ListBookingsByWorkstation(ctx, id, now.Format(model.DateLayout))
	if err != nil {
		return nil, e.done(op, err)
	}
	v := &StatusView{
		WorkstationID: id,
		BaseStatus:    ws.BaseStatus,
		Effective:     status.Effective(*ws, books, now),
		At:            now,
	}
	if slot, ok := model.SlotAt(now); ok {
		v.CurrentSlot = &slot
	}
	return v, e.done(op, nil)
}

// GetGrid renders every row of a lab with the effective status of each
// workstation.  Rows are ordered by name and cells by position.
func (e *Engine) GetGrid(ctx context.Context, labID uint64) (*GridView, error) {
	const op = "getGrid"
	if _, err := e.store.GetLab(ctx, labID); err != nil {
		return nil, e.done(op, err)
	}
	rows, err := e.store.ListRows(ctx, labID)
	if err != nil {
		return nil, e.done(op, err)
	}
	wss, err := e.store.ListWorkstations(ctx, labID)
	if err != nil {
		return nil, e.done(op, err)
	}
	slots, err := e.store.ListEmptySlots(ctx, labID)
	if err != nil {
		return nil, e.done(op, err)
	}
	now := e.Now()
	books, err := e.store.ListBookingsByLab(ctx, labID, now.Format(model.DateLayout))
	if err != nil {
		return nil, e.done(op, err)
	}

	byID := make(map[uint64]model.Workstation, len(wss))
	for _, w := range wss {
		byID[w.ID] = w
	}
	grid := layout.NewGrid(wss, slots)
	layout.SortRows(rows)

	view := &GridView{LabID: labID, At: now, Rows: make([]GridRow, 0, len(rows))}
	for _, r := range rows {
		cells := grid.Row(r.ID)
		gr := GridRow{Row: r, Cells: make([]GridCell, len(cells))}
		for i, c := range cells {
			gc := GridCell{Cell: c}
			if c.Kind == layout.CellWorkstation {
				w := byID[c.WorkstationID]
				gc.Workstation = &WorkstationView{Workstation: w, EffectiveStatus: status.Effective(w, books, now)}
			}
			gr.Cells[i] = gc
		}
		view.Rows = append(view.Rows, gr)
	}
	return view, e.done(op, nil)
}
