package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/iliyamo/lab-seat-scheduler/internal/apperr"
	"github.com/iliyamo/lab-seat-scheduler/internal/metrics"
	"github.com/iliyamo/lab-seat-scheduler/internal/model"
	"github.com/iliyamo/lab-seat-scheduler/internal/queue"
)

// SlotAction is what a batch instruction does to its slot.
type SlotAction string

const (
	SlotNoop   SlotAction = "noop"
	SlotDelete SlotAction = "delete"
	SlotUpsert SlotAction = "upsert"
)

// SlotInstruction is one entry of a batch.  StudentName, Purpose and
// QueueEntryRef are read only by upserts.
type SlotInstruction struct {
	TimeSlot      string     `json:"time_slot"`
	Action        SlotAction `json:"action"`
	StudentName   string     `json:"student_name"`
	Purpose       string     `json:"purpose"`
	QueueEntryRef *uint64    `json:"queue_entry_ref"`
}

// SlotResult is the outcome of one instruction.
type SlotResult struct {
	TimeSlot model.TimeSlot `json:"time_slot"`
	Action   SlotAction     `json:"action"`
	// Booking is the booking after an upsert.
	Booking *model.Booking `json:"booking,omitempty"`
	// Deleted is set when a delete removed an existing booking.
	Deleted bool  `json:"deleted,omitempty"`
	Err     error `json:"-"`
}

// OK reports whether the instruction applied.
func (r SlotResult) OK() bool { return r.Err == nil }

// BatchResult collects the per-slot outcomes in instruction order.
type BatchResult struct {
	WorkstationID uint64       `json:"workstation_id"`
	Date          string       `json:"date"`
	Slots         []SlotResult `json:"slots"`
}

// Err joins the failures of every slot, or returns nil when all applied.
func (r *BatchResult) Err() error {
	var errs []error
	for _, s := range r.Slots {
		if s.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.TimeSlot, s.Err))
		}
	}
	return errors.Join(errs...)
}

// maxBatch is one instruction per time slot.
const maxBatch = 5

// BatchUpdateSlots applies up to five per-slot instructions to one
// workstation and date.  Instructions are independent: each runs
// concurrently and a failing slot never blocks the others.  The call
// returns only after every instruction settled; per-slot failures are
// reported in the result, not as the returned error, which is reserved
// for problems with the batch as a whole (unknown workstation, bad date,
// too many instructions).
func (e *Engine) BatchUpdateSlots(ctx context.Context, workstationID uint64, date string, instr []SlotInstruction) (*BatchResult, error) {
	const op = "batchUpdateSlots"
	if len(instr) > maxBatch {
		return nil, e.done(op, apperr.Validation(op, "booking", "at most %d instructions, got %d", maxBatch, len(instr)))
	}
	ws, err := e.store.GetWorkstation(ctx, workstationID)
	if err != nil {
		return nil, e.done(op, err)
	}
	d, err := e.parseDate(op, date)
	if err != nil {
		return nil, e.done(op, err)
	}
	labID, err := e.labOfRow(ctx, ws.RowID)
	if err != nil {
		return nil, e.done(op, err)
	}

	res := &BatchResult{WorkstationID: ws.ID, Date: d, Slots: make([]SlotResult, len(instr))}
	refs := make([]*uint64, len(instr))
	seen := make(map[model.TimeSlot]bool, len(instr))
	taken := map[uint64]bool{}

	// validation and queue matching run in slot order so that two upserts
	// for the same student never consume the same waitlist entry
	for i, in := range instr {
		r := &res.Slots[i]
		r.Action = in.Action
		if r.Action == "" {
			r.Action = SlotNoop
		}
		slot, err := parseSlot(op, in.TimeSlot)
		if err != nil {
			r.TimeSlot = model.TimeSlot(in.TimeSlot)
			r.Err = err
			continue
		}
		r.TimeSlot = slot
		if seen[slot] {
			r.Err = apperr.Validation(op, "booking", "slot %s appears more than once", slot)
			continue
		}
		seen[slot] = true
		switch r.Action {
		case SlotNoop, SlotDelete:
		case SlotUpsert:
			if strings.TrimSpace(in.StudentName) == "" {
				r.Err = apperr.Validation(op, "booking", "student_name is required for upsert")
				continue
			}
			ref, err := e.resolveQueueRef(ctx, op, labID, in.StudentName, in.QueueEntryRef, taken)
			if err != nil {
				r.Err = err
				continue
			}
			if ref != nil {
				taken[*ref] = true
			}
			refs[i] = ref
		default:
			r.Err = apperr.Validation(op, "booking", "unknown action %q", in.Action)
		}
	}

	var wg sync.WaitGroup
	for i := range instr {
		r := &res.Slots[i]
		if r.Err != nil || r.Action == SlotNoop {
			continue
		}
		wg.Add(1)
		go func(i int, r *SlotResult) {
			defer wg.Done()
			switch r.Action {
			case SlotDelete:
				r.Deleted, r.Err = e.deleteSlot(ctx, ws.ID, d, r.TimeSlot)
			case SlotUpsert:
				r.Booking, r.Err = e.upsertSlot(ctx, ws.ID, d, r.TimeSlot, instr[i], refs[i])
			}
		}(i, r)
	}
	wg.Wait()

	for i := range res.Slots {
		r := &res.Slots[i]
		result := metrics.ResultOK
		if r.Err != nil {
			r.Err = apperr.WithOp(op, r.Err)
			result = metrics.ResultError
		}
		e.metrics.BatchSlot(string(r.Action), result)
	}
	if err := res.Err(); err != nil {
		e.log.Warn().Err(err).Uint64("workstation_id", ws.ID).Str("date", d).Msg("batch applied partially")
	}
	return res, e.done(op, nil)
}

// deleteSlot removes the booking of one slot.  An empty slot is already in
// the requested state.
func (e *Engine) deleteSlot(ctx context.Context, wsID uint64, date string, slot model.TimeSlot) (bool, error) {
	b, err := e.store.FindBooking(ctx, wsID, date, slot)
	if apperr.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := e.store.DeleteBooking(ctx, b.ID); err != nil {
		if apperr.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	e.publish(ctx, queue.BookingDeleted, bookingEvent(b))
	return true, nil
}

// upsertSlot updates the slot's booking or creates it.  Losing a create
// race to another writer turns into an update of the winner's booking.
func (e *Engine) upsertSlot(ctx context.Context, wsID uint64, date string, slot model.TimeSlot, in SlotInstruction, ref *uint64) (*model.Booking, error) {
	student := strings.TrimSpace(in.StudentName)
	purpose := strings.TrimSpace(in.Purpose)
	for attempt := 0; attempt < 2; attempt++ {
		b, err := e.store.FindBooking(ctx, wsID, date, slot)
		switch {
		case err == nil:
			// a new student never inherits the previous student's waitlist link
			if ref != nil || !strings.EqualFold(student, b.StudentName) {
				b.QueueEntryRef = ref
			}
			b.StudentName, b.Purpose = student, purpose
			if err := e.store.UpdateBooking(ctx, b); err != nil {
				return nil, err
			}
			e.publish(ctx, queue.BookingUpdated, bookingEvent(b))
			return b, nil
		case !apperr.IsNotFound(err):
			return nil, err
		}
		nb := &model.Booking{
			WorkstationID: wsID,
			Date:          date,
			TimeSlot:      slot,
			StudentName:   student,
			Purpose:       purpose,
			QueueEntryRef: ref,
		}
		err = e.store.CreateBooking(ctx, nb)
		if err == nil {
			e.publish(ctx, queue.BookingCreated, bookingEvent(nb))
			return nb, nil
		}
		if !apperr.IsConflict(err) {
			return nil, err
		}
	}
	return nil, apperr.Conflict("batchUpdateSlots", "booking", "slot %s kept changing concurrently", slot)
}
