// Package queue defines message payloads exchanged over the message broker
// and the publisher/consumer pair that moves them.
package queue

import (
    "encoding/json"
    "time"

    "github.com/google/uuid"
)

// Queue names.  Routing keys equal queue names on the default exchange.
const (
    EventsQueue     = "lab.events"
    ComplaintsQueue = "complaints"
)

// Event types carried in Envelope.Type.
const (
    BookingCreated     = "booking.created"
    BookingUpdated     = "booking.updated"
    BookingDeleted     = "booking.deleted"
    WorkstationMoved   = "workstation.moved"
    WorkstationSwapped = "workstation.swapped"
    WorkstationDeleted = "workstation.deleted"
    RowDeleted         = "row.deleted"
    QueueAdded         = "queue.added"
    QueueCancelled     = "queue.cancelled"
    ComplaintRaised    = "complaint.raised"
)

// Envelope wraps every message so consumers can dedupe by ID and route by
// Type without decoding the payload first.
type Envelope struct {
    ID         string          `json:"id"`
    Type       string          `json:"type"`
    OccurredAt time.Time       `json:"occurred_at"`
    Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope marshals payload and stamps a fresh id.
func NewEnvelope(eventType string, at time.Time, payload any) (Envelope, error) {
    body, err := json.Marshal(payload)
    if err != nil {
        return Envelope{}, err
    }
    return Envelope{
        ID:         uuid.NewString(),
        Type:       eventType,
        OccurredAt: at.UTC(),
        Payload:    body,
    }, nil
}

// BookingEvent is published when a booking is created, updated or deleted.
type BookingEvent struct {
    BookingID     uint64  `json:"booking_id"`
    WorkstationID uint64  `json:"workstation_id"`
    Date          string  `json:"date"`
    TimeSlot      string  `json:"time_slot"`
    StudentName   string  `json:"student_name,omitempty"`
    QueueEntryRef *uint64 `json:"queue_entry_ref,omitempty"`
}

// MoveEvent describes a relocate or a swap.  For a swap OtherID names the
// workstation that took the source's former coordinate.
type MoveEvent struct {
    WorkstationID uint64 `json:"workstation_id"`
    FromRowID     uint64 `json:"from_row_id"`
    FromPosition  int    `json:"from_position"`
    ToRowID       uint64 `json:"to_row_id"`
    ToPosition    int    `json:"to_position"`
    OtherID       uint64 `json:"other_id,omitempty"`
}

// WorkstationDeletedEvent records a removed unit and whether a placeholder
// was left behind.
type WorkstationDeletedEvent struct {
    WorkstationID      uint64 `json:"workstation_id"`
    RowID              uint64 `json:"row_id"`
    Position           int    `json:"position"`
    PlaceholderCreated bool   `json:"placeholder_created"`
}

// RowDeletedEvent records a cascaded row removal.
type RowDeletedEvent struct {
    RowID uint64 `json:"row_id"`
    LabID uint64 `json:"lab_id"`
    Name  string `json:"name"`
}

// QueueEvent is published when an entry joins or leaves the waitlist.
type QueueEvent struct {
    EntryID     uint64 `json:"entry_id"`
    LabID       uint64 `json:"lab_id"`
    StudentName string `json:"student_name"`
    Preference  string `json:"batch_preference"`
}
