package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/lab-seat-scheduler/internal/apperr"
	"github.com/iliyamo/lab-seat-scheduler/internal/model"
)

// BookingRepo provides methods to work with bookings.  The
// uq_bookings_slot index on (workstation_id, booking_date, time_slot)
// rejects double-booking.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

const bookingColumns = `b.id, b.workstation_id, b.booking_date, b.time_slot, b.student_name, b.purpose,
	b.queue_entry_id, b.created_at, b.updated_at`

func scanBooking(s scanner) (*model.Booking, error) {
	var b model.Booking
	var slot string
	var ref sql.NullInt64
	if err := s.Scan(&b.ID, &b.WorkstationID, &b.Date, &slot, &b.StudentName, &b.Purpose,
		&ref, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.TimeSlot = model.TimeSlot(slot)
	if ref.Valid {
		v := uint64(ref.Int64)
		b.QueueEntryRef = &v
	}
	return &b, nil
}

func nullRef(ref *uint64) sql.NullInt64 {
	if ref == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*ref), Valid: true}
}

func (r *BookingRepo) listBookings(ctx context.Context, op, q string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, classify(op, "booking", err)
	}
	defer rows.Close()

	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, classify(op, "booking", err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, "booking", err)
	}
	return out, nil
}

// CreateBooking inserts a booking.  Conflict when the slot is taken.
func (r *BookingRepo) CreateBooking(ctx context.Context, b *model.Booking) error {
	var exists int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workstations WHERE id = ?`, b.WorkstationID).Scan(&exists); err != nil {
		return classify("createBooking", "workstation", err)
	}
	if exists == 0 {
		return apperr.NotFound("createBooking", "workstation", b.WorkstationID)
	}
	now := time.Now().UTC().Truncate(time.Second)
	const q = `INSERT INTO bookings
	           (workstation_id, booking_date, time_slot, student_name, purpose, queue_entry_id, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, b.WorkstationID, b.Date, string(b.TimeSlot), b.StudentName, b.Purpose,
		nullRef(b.QueueEntryRef), now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("createBooking", "booking", "%s on %s is already booked", b.TimeSlot, b.Date)
		}
		return classify("createBooking", "booking", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify("createBooking", "booking", err)
	}
	b.ID = uint64(id)
	b.CreatedAt, b.UpdatedAt = now, now
	return nil
}

// GetBooking retrieves a booking by id.
func (r *BookingRepo) GetBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = ?`, id))
	if err != nil {
		return nil, classify("getBooking", "booking", err)
	}
	return b, nil
}

// FindBooking looks up the booking of one workstation, date and slot.
func (r *BookingRepo) FindBooking(ctx context.Context, workstationID uint64, date string, slot model.TimeSlot) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings b
	           WHERE b.workstation_id = ? AND b.booking_date = ? AND b.time_slot = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, workstationID, date, string(slot)))
	if err != nil {
		return nil, classify("findBooking", "booking", err)
	}
	return b, nil
}

// UpdateBooking rewrites the mutable fields and reloads the row into b.
func (r *BookingRepo) UpdateBooking(ctx context.Context, b *model.Booking) error {
	now := time.Now().UTC().Truncate(time.Second)
	const q = `UPDATE bookings SET student_name = ?, purpose = ?, queue_entry_id = ?, updated_at = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, b.StudentName, b.Purpose, nullRef(b.QueueEntryRef), now, b.ID); err != nil {
		return classify("updateBooking", "booking", err)
	}
	cur, err := r.GetBooking(ctx, b.ID)
	if err != nil {
		return apperr.WithOp("updateBooking", err)
	}
	*b = *cur
	return nil
}

// DeleteBooking removes a booking by id.
func (r *BookingRepo) DeleteBooking(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return classify("deleteBooking", "booking", err)
	}
	if !affectedOne(res) {
		return apperr.NotFound("deleteBooking", "booking", id)
	}
	return nil
}

// ListBookingsByLab returns the bookings of every workstation in a lab for
// one date.
func (r *BookingRepo) ListBookingsByLab(ctx context.Context, labID uint64, date string) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings b
	           JOIN workstations w ON w.id = b.workstation_id
	           JOIN lab_rows lr ON lr.id = w.row_id
	           WHERE lr.lab_id = ? AND b.booking_date = ?
	           ORDER BY b.id`
	return r.listBookings(ctx, "listBookings", q, labID, date)
}

// ListBookingsByWorkstation returns one workstation's bookings for a date.
func (r *BookingRepo) ListBookingsByWorkstation(ctx context.Context, workstationID uint64, date string) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings b
	           WHERE b.workstation_id = ? AND b.booking_date = ?
	           ORDER BY b.id`
	return r.listBookings(ctx, "listBookings", q, workstationID, date)
}
