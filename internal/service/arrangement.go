package service

import (
	"context"

	"github.com/iliyamo/lab-seat-scheduler/internal/apperr"
	"github.com/iliyamo/lab-seat-scheduler/internal/layout"
	"github.com/iliyamo/lab-seat-scheduler/internal/model"
	"github.com/iliyamo/lab-seat-scheduler/internal/queue"
)

// MoveKind tells what a move turned into once occupancy was checked.
type MoveKind string

const (
	MoveRelocate MoveKind = "relocate"
	MoveSwap     MoveKind = "swap"
	MoveNoop     MoveKind = "noop"
)

// MoveResult reports an applied move.
type MoveResult struct {
	Kind        MoveKind           `json:"kind"`
	Workstation model.Workstation  `json:"workstation"`
	SwappedWith *model.Workstation `json:"swapped_with,omitempty"`
	// Placeholder is the marker kept at the vacated coordinate.
	Placeholder *model.EmptySlot `json:"placeholder,omitempty"`
}

// MoveWorkstation moves a unit to (targetRow, targetPosition) inside its
// own lab.  If another unit sits there the two swap coordinates
// atomically, so applying the same move twice restores the original
// arrangement.  A placeholder is kept at the vacated coordinate.
//
// Occupancy is re-checked when the move is applied.  If the source or the
// target changed since they were read (a concurrent edit) the call fails
// with a Conflict wrapping repository.ErrStale; callers should refresh the
// grid and retry.
func (e *Engine) MoveWorkstation(ctx context.Context, id uint64, targetRow string, targetPosition int) (*MoveResult, error) {
	const op = "moveWorkstation"
	src, err := e.store.GetWorkstation(ctx, id)
	if err != nil {
		return nil, e.done(op, err)
	}
	if targetPosition < 0 {
		return nil, e.done(op, apperr.Validation(op, "workstation", "target position must be >= 0"))
	}
	labID, err := e.labOfRow(ctx, src.RowID)
	if err != nil {
		return nil, e.done(op, err)
	}
	name := layout.NormalizeRowName(targetRow)
	if !layout.ValidRowName(name) {
		return nil, e.done(op, apperr.Validation(op, "row", "target row %q must be a single letter A-Z", targetRow))
	}
	row, err := e.store.FindRowByName(ctx, labID, name)
	if err != nil {
		return nil, e.done(op, err)
	}
	to := model.Coord{RowID: row.ID, Position: targetPosition}
	from := src.Coord()
	if to == from {
		e.metrics.Move(string(MoveNoop))
		return &MoveResult{Kind: MoveNoop, Workstation: *src}, e.done(op, nil)
	}

	// the vacated seat must stay fillable whichever way the move goes
	slot, _, err := e.store.EnsureEmptySlot(ctx, from)
	if err != nil {
		return nil, e.done(op, err)
	}

	res := &MoveResult{Placeholder: slot}
	other, err := e.store.FindWorkstationAt(ctx, to)
	switch {
	case err == nil:
		if err := e.store.SwapWorkstations(ctx, *src, *other); err != nil {
			return nil, e.done(op, err)
		}
		res.Kind = MoveSwap
	case apperr.IsNotFound(err):
		if err := e.store.RelocateWorkstation(ctx, *src, to); err != nil {
			return nil, e.done(op, err)
		}
		res.Kind = MoveRelocate
	default:
		return nil, e.done(op, err)
	}

	moved, err := e.store.GetWorkstation(ctx, id)
	if err != nil {
		return nil, e.done(op, err)
	}
	res.Workstation = *moved
	ev := queue.MoveEvent{
		WorkstationID: id,
		FromRowID:     from.RowID,
		FromPosition:  from.Position,
		ToRowID:       to.RowID,
		ToPosition:    to.Position,
	}
	eventType := queue.WorkstationMoved
	if res.Kind == MoveSwap {
		swapped, err := e.store.GetWorkstation(ctx, other.ID)
		if err != nil {
			return nil, e.done(op, err)
		}
		res.SwappedWith = swapped
		ev.OtherID = other.ID
		eventType = queue.WorkstationSwapped
	}
	e.metrics.Move(string(res.Kind))
	e.log.Debug().Uint64("workstation_id", id).Str("kind", string(res.Kind)).
		Uint64("to_row_id", to.RowID).Int("to_position", to.Position).Msg("workstation moved")
	e.publish(ctx, eventType, ev)
	return res, e.done(op, nil)
}
