package model

import "time"

// Laboratory is a computer lab.  Labs are managed by an external
// system; the engine only reads them to scope rows, queues and grids.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the lab.
//  CreatedAt – creation timestamp.
type Laboratory struct {
    ID        uint64    `json:"id"`         // laboratories.id
    Name      string    `json:"name"`       // laboratories.name
    CreatedAt time.Time `json:"created_at"` // laboratories.created_at
}

// Row is a named horizontal band of grid coordinates inside a lab.
// Names are single upper-case letters, unique per lab.
//
// Fields:
//  ID    – primary key identifier.
//  LabID – lab that owns the row.
//  Name  – normalized row letter (A..Z).
type Row struct {
    ID        uint64    `json:"id"`         // lab_rows.id
    LabID     uint64    `json:"lab_id"`     // lab_rows.lab_id
    Name      string    `json:"name"`       // lab_rows.name
    CreatedAt time.Time `json:"created_at"` // lab_rows.created_at
}

// EmptySlot is a persisted placeholder marking a deliberately empty,
// fillable coordinate.  A live workstation at the same coordinate always
// wins when the grid is rendered.
type EmptySlot struct {
    ID       uint64 `json:"id"`       // empty_slots.id
    RowID    uint64 `json:"row_id"`   // empty_slots.row_id
    Position int    `json:"position"` // empty_slots.position
}

// Complaint is forwarded to the external ticketing system.  The engine
// assigns the ID and does not store the record itself.
type Complaint struct {
    ID            string    `json:"id"`
    WorkstationID uint64    `json:"workstation_id"`
    Title         string    `json:"title"`
    Description   string    `json:"description"`
    Priority      string    `json:"priority"`
    RaisedAt      time.Time `json:"raised_at"`
}

// Complaint priorities.
const (
    PriorityLow    = "low"
    PriorityMedium = "medium"
    PriorityHigh   = "high"
)
