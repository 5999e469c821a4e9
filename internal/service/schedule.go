package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/lab-seat-scheduler/internal/apperr"
	"github.com/iliyamo/lab-seat-scheduler/internal/model"
	"github.com/iliyamo/lab-seat-scheduler/internal/queue"
)

// NewBooking is the input of CreateBooking.  An empty Date means today.
type NewBooking struct {
	WorkstationID uint64  `json:"workstation_id"`
	Date          string  `json:"date"`
	TimeSlot      string  `json:"time_slot"`
	StudentName   string  `json:"student_name"`
	Purpose       string  `json:"purpose"`
	QueueEntryRef *uint64 `json:"queue_entry_ref"`
}

// SlotView is one of the five windows of a workstation's day.
type SlotView struct {
	TimeSlot model.TimeSlot `json:"time_slot"`
	Start    string         `json:"start"`
	End      string         `json:"end"`
	Booking  *model.Booking `json:"booking,omitempty"`
}

func (e *Engine) parseDate(op, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return e.Today(), nil
	}
	d, ok := model.ParseDate(raw)
	if !ok {
		return "", apperr.Validation(op, "booking", "invalid date %q, want YYYY-MM-DD", raw)
	}
	return d, nil
}

func parseSlot(op, raw string) (model.TimeSlot, error) {
	slot, ok := model.ParseTimeSlot(raw)
	if !ok {
		return "", apperr.Validation(op, "booking", "unknown time slot %q", raw)
	}
	return slot, nil
}

func bookingEvent(b *model.Booking) queue.BookingEvent {
	return queue.BookingEvent{
		BookingID:     b.ID,
		WorkstationID: b.WorkstationID,
		Date:          b.Date,
		TimeSlot:      string(b.TimeSlot),
		StudentName:   b.StudentName,
		QueueEntryRef: b.QueueEntryRef,
	}
}

// CreateBooking books one slot of a workstation.  A second booking for
// the same workstation, date and slot is a Conflict.  Without an explicit
// QueueEntryRef the student name is matched against the live waitlist of
// the workstation's lab.
func (e *Engine) CreateBooking(ctx context.Context, in NewBooking) (*model.Booking, error) {
	const op = "createBooking"
	ws, err := e.store.GetWorkstation(ctx, in.WorkstationID)
	if err != nil {
		return nil, e.done(op, err)
	}
	date, err := e.parseDate(op, in.Date)
	if err != nil {
		return nil, e.done(op, err)
	}
	slot, err := parseSlot(op, in.TimeSlot)
	if err != nil {
		return nil, e.done(op, err)
	}
	student := strings.TrimSpace(in.StudentName)
	if student == "" {
		return nil, e.done(op, apperr.Validation(op, "booking", "student_name is required"))
	}
	labID, err := e.labOfRow(ctx, ws.RowID)
	if err != nil {
		return nil, e.done(op, err)
	}
	ref, err := e.resolveQueueRef(ctx, op, labID, student, in.QueueEntryRef, nil)
	if err != nil {
		return nil, e.done(op, err)
	}
	b := &model.Booking{
		WorkstationID: ws.ID,
		Date:          date,
		TimeSlot:      slot,
		StudentName:   student,
		Purpose:       strings.TrimSpace(in.Purpose),
		QueueEntryRef: ref,
	}
	if err := e.store.CreateBooking(ctx, b); err != nil {
		return nil, e.done(op, err)
	}
	e.log.Debug().Uint64("booking_id", b.ID).Uint64("workstation_id", ws.ID).
		Str("date", date).Str("slot", string(slot)).Msg("booking created")
	e.publish(ctx, queue.BookingCreated, bookingEvent(b))
	return b, e.done(op, nil)
}

// UpdateBooking changes the student, purpose or queue reference of a
// booking.  Its workstation, date and slot are fixed.  Handing the booking
// to another student without an explicit reference drops the old link and
// matches the new name against the live waitlist.
func (e *Engine) UpdateBooking(ctx context.Context, id uint64, p model.BookingPatch) (*model.Booking, error) {
	const op = "updateBooking"
	if p.ClearQueueEntryRef && p.QueueEntryRef != nil {
		return nil, e.done(op, apperr.Validation(op, "booking", "queue_entry_ref and clear_queue_entry_ref are exclusive"))
	}
	b, err := e.store.GetBooking(ctx, id)
	if err != nil {
		return nil, e.done(op, err)
	}
	studentChanged := false
	if p.StudentName != nil {
		s := strings.TrimSpace(*p.StudentName)
		if s == "" {
			return nil, e.done(op, apperr.Validation(op, "booking", "student_name must not be empty"))
		}
		studentChanged = !strings.EqualFold(s, b.StudentName)
		b.StudentName = s
	}
	if p.Purpose != nil {
		b.Purpose = strings.TrimSpace(*p.Purpose)
	}
	switch {
	case p.ClearQueueEntryRef:
		b.QueueEntryRef = nil
	case p.QueueEntryRef != nil || studentChanged:
		ws, err := e.store.GetWorkstation(ctx, b.WorkstationID)
		if err != nil {
			return nil, e.done(op, err)
		}
		labID, err := e.labOfRow(ctx, ws.RowID)
		if err != nil {
			return nil, e.done(op, err)
		}
		ref, err := e.resolveQueueRef(ctx, op, labID, b.StudentName, p.QueueEntryRef, nil)
		if err != nil {
			return nil, e.done(op, err)
		}
		b.QueueEntryRef = ref
	}
	if err := e.store.UpdateBooking(ctx, b); err != nil {
		return nil, e.done(op, err)
	}
	e.publish(ctx, queue.BookingUpdated, bookingEvent(b))
	return b, e.done(op, nil)
}

// DeleteBooking removes a booking.
func (e *Engine) DeleteBooking(ctx context.Context, id uint64) error {
	const op = "deleteBooking"
	b, err := e.store.GetBooking(ctx, id)
	if err != nil {
		return e.done(op, err)
	}
	if err := e.store.DeleteBooking(ctx, id); err != nil {
		return e.done(op, err)
	}
	e.publish(ctx, queue.BookingDeleted, bookingEvent(b))
	return e.done(op, nil)
}

// ListBookings returns the bookings of a lab for a date (today if empty).
func (e *Engine) ListBookings(ctx context.Context, labID uint64, date string) ([]model.Booking, error) {
	const op = "listBookings"
	d, err := e.parseDate(op, date)
	if err != nil {
		return nil, e.done(op, err)
	}
	if _, err := e.store.GetLab(ctx, labID); err != nil {
		return nil, e.done(op, err)
	}
	books, err := e.store.ListBookingsByLab(ctx, labID, d)
	return books, e.done(op, err)
}

// SlotBoard returns the five windows of a workstation's day in order,
// each with its booking if any.
func (e *Engine) SlotBoard(ctx context.Context, workstationID uint64, date string) ([]SlotView, error) {
	const op = "getSlotBoard"
	d, err := e.parseDate(op, date)
	if err != nil {
		return nil, e.done(op, err)
	}
	if _, err := e.store.GetWorkstation(ctx, workstationID); err != nil {
		return nil, e.done(op, err)
	}
	books, err := e.store.ListBookingsByWorkstation(ctx, workstationID, d)
	if err != nil {
		return nil, e.done(op, err)
	}
	bySlot := make(map[model.TimeSlot]model.Booking, len(books))
	for _, b := range books {
		bySlot[b.TimeSlot] = b
	}
	out := make([]SlotView, 0, 5)
	for _, s := range model.TimeSlots() {
		w, _ := s.Window()
		v := SlotView{TimeSlot: s, Start: clock(w.Start), End: clock(w.End)}
		if b, ok := bySlot[s]; ok {
			b := b
			v.Booking = &b
		}
		out = append(out, v)
	}
	return out, e.done(op, nil)
}

// clock formats minutes after midnight as HH:MM.
func clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
