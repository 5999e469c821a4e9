package model

import "time"

// DateLayout is the storage and wire format of booking dates.
const DateLayout = "2006-01-02"

// Booking assigns a student to a workstation for one date and slot.
// (WorkstationID, Date, TimeSlot) is unique.
//
// Fields:
//  ID            – primary key identifier.
//  WorkstationID – booked seat.
//  Date          – calendar date in DateLayout.
//  TimeSlot      – one of the five fixed windows.
//  StudentName   – who sits there.
//  Purpose       – why.
//  QueueEntryRef – waitlist entry consumed by this booking (optional).
type Booking struct {
    ID            uint64    `json:"id"`                        // bookings.id
    WorkstationID uint64    `json:"workstation_id"`            // bookings.workstation_id
    Date          string    `json:"date"`                      // bookings.booking_date
    TimeSlot      TimeSlot  `json:"time_slot"`                 // bookings.time_slot
    StudentName   string    `json:"student_name"`              // bookings.student_name
    Purpose       string    `json:"purpose"`                   // bookings.purpose
    QueueEntryRef *uint64   `json:"queue_entry_ref,omitempty"` // bookings.queue_entry_id (nullable)
    CreatedAt     time.Time `json:"created_at"`                // bookings.created_at
    UpdatedAt     time.Time `json:"updated_at"`                // bookings.updated_at
}

// BookingPatch updates the mutable fields of a booking.  The identity
// triple cannot be changed.  ClearQueueEntryRef unlinks the waitlist entry
// and cannot be combined with QueueEntryRef.
type BookingPatch struct {
    StudentName        *string `json:"student_name"`
    Purpose            *string `json:"purpose"`
    QueueEntryRef      *uint64 `json:"queue_entry_ref"`
    ClearQueueEntryRef bool    `json:"clear_queue_entry_ref"`
}

// QueueStatus is the advisory status stored on a waitlist entry.
type QueueStatus string

const (
    QueueWaiting   QueueStatus = "waiting"
    QueueAssigned  QueueStatus = "assigned"
    QueueCompleted QueueStatus = "completed"
    QueueCancelled QueueStatus = "cancelled"
)

// ParseQueueStatus validates a queue status.
func ParseQueueStatus(s string) (QueueStatus, bool) {
    switch QueueStatus(s) {
    case QueueWaiting, QueueAssigned, QueueCompleted, QueueCancelled:
        return QueueStatus(s), true
    }
    return "", false
}

// QueueEntry is a pending request for a seat.  Whether it is consumed
// is derived from today's bookings, not from Status.
type QueueEntry struct {
    ID              uint64      `json:"id"`               // queue_entries.id
    LabID           uint64      `json:"lab_id"`           // queue_entries.lab_id
    StudentName     string      `json:"student_name"`     // queue_entries.student_name
    Purpose         string      `json:"purpose"`          // queue_entries.purpose
    BatchPreference TimeSlot    `json:"batch_preference"` // queue_entries.batch_preference
    Status          QueueStatus `json:"status"`           // queue_entries.status
    CreatedAt       time.Time   `json:"created_at"`       // queue_entries.created_at
}
