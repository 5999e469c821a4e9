// Package repository defines the storage ports used by the engine and
// provides two implementations: SQLStore over database/sql (MySQL or
// SQLite) and MemoryStore for tests and single-process development.
//
// Every method returns *apperr.Error values: NotFound for unknown ids,
// Conflict for uniqueness or optimistic-check failures and Dependency for
// driver errors.  Multi-entity writes are atomic.
package repository

import (
	"context"

	"github.com/iliyamo/lab-seat-scheduler/internal/model"
)

// LabStore reads laboratories.  Creation exists for seeding only.
type LabStore interface {
	CreateLab(ctx context.Context, l *model.Laboratory) error
	GetLab(ctx context.Context, id uint64) (*model.Laboratory, error)
	ListLabs(ctx context.Context) ([]model.Laboratory, error)
}

// RowStore persists rows.
type RowStore interface {
	// CreateRow fails with Conflict when the lab already has the name.
	CreateRow(ctx context.Context, r *model.Row) error
	GetRow(ctx context.Context, id uint64) (*model.Row, error)
	FindRowByName(ctx context.Context, labID uint64, name string) (*model.Row, error)
	ListRows(ctx context.Context, labID uint64) ([]model.Row, error)
	RenameRow(ctx context.Context, id uint64, name string) error
	// DeleteRowCascade removes the row, its workstations, placeholders
	// and the bookings of those workstations in one transaction.
	DeleteRowCascade(ctx context.Context, id uint64) error
}

// WorkstationStore persists workstations.
type WorkstationStore interface {
	// CreateWorkstation inserts w and removes any placeholder at its
	// coordinate.  Conflict when a live workstation already sits there.
	CreateWorkstation(ctx context.Context, w *model.Workstation) error
	GetWorkstation(ctx context.Context, id uint64) (*model.Workstation, error)
	FindWorkstationAt(ctx context.Context, c model.Coord) (*model.Workstation, error)
	ListWorkstations(ctx context.Context, labID uint64) ([]model.Workstation, error)
	// UpdateWorkstation writes label, status, specs and software of w if
	// w.Version still matches, then bumps the version in w.
	UpdateWorkstation(ctx context.Context, w *model.Workstation) error
	// DeleteWorkstation removes the unit and its bookings and leaves a
	// placeholder at its coordinate unless one exists.  It reports
	// whether a placeholder was created.
	DeleteWorkstation(ctx context.Context, id uint64) (bool, error)
	// RelocateWorkstation moves w (as read by the caller) to an empty
	// coordinate.  Conflict when w moved or changed since it was read or
	// when the target is occupied at commit time.
	RelocateWorkstation(ctx context.Context, w model.Workstation, to model.Coord) error
	// SwapWorkstations exchanges the coordinates of a and b atomically
	// under the same optimistic checks.
	SwapWorkstations(ctx context.Context, a, b model.Workstation) error
}

// EmptySlotStore persists placeholders.
type EmptySlotStore interface {
	// CreateEmptySlot fails with Conflict when a workstation or a
	// placeholder already occupies the coordinate.
	CreateEmptySlot(ctx context.Context, s *model.EmptySlot) error
	// EnsureEmptySlot creates a placeholder at c unless one exists,
	// regardless of workstation occupancy.
	EnsureEmptySlot(ctx context.Context, c model.Coord) (*model.EmptySlot, bool, error)
	// DeleteEmptySlot is idempotent.
	DeleteEmptySlot(ctx context.Context, id uint64) error
	FindEmptySlotAt(ctx context.Context, c model.Coord) (*model.EmptySlot, error)
	ListEmptySlots(ctx context.Context, labID uint64) ([]model.EmptySlot, error)
}

// BookingStore persists bookings.
type BookingStore interface {
	// CreateBooking fails with Conflict on a duplicate
	// (workstation, date, slot) triple.
	CreateBooking(ctx context.Context, b *model.Booking) error
	GetBooking(ctx context.Context, id uint64) (*model.Booking, error)
	FindBooking(ctx context.Context, workstationID uint64, date string, slot model.TimeSlot) (*model.Booking, error)
	// UpdateBooking writes student, purpose and queue reference.
	UpdateBooking(ctx context.Context, b *model.Booking) error
	DeleteBooking(ctx context.Context, id uint64) error
	ListBookingsByLab(ctx context.Context, labID uint64, date string) ([]model.Booking, error)
	ListBookingsByWorkstation(ctx context.Context, workstationID uint64, date string) ([]model.Booking, error)
}

// QueueStore persists waitlist entries.
type QueueStore interface {
	CreateQueueEntry(ctx context.Context, q *model.QueueEntry) error
	GetQueueEntry(ctx context.Context, id uint64) (*model.QueueEntry, error)
	// ListQueueEntries returns every entry of the lab, newest first.
	ListQueueEntries(ctx context.Context, labID uint64) ([]model.QueueEntry, error)
	SetQueueStatus(ctx context.Context, id uint64, s model.QueueStatus) error
}

// Store is the full persistence port.
type Store interface {
	LabStore
	RowStore
	WorkstationStore
	EmptySlotStore
	BookingStore
	QueueStore
}
