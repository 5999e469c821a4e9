package model

// Status is the stored or derived state of a workstation.
type Status string

// Stored base statuses.  StatusInUse is only ever produced by the
// effective status resolver and must never be persisted as ground truth.
const (
    StatusAvailable   Status = "available"
    StatusInUse       Status = "in-use"
    StatusMaintenance Status = "maintenance"
    StatusOffline     Status = "offline"
)

// ParseBaseStatus validates a status that may be written to storage.
// An empty string defaults to available.
func ParseBaseStatus(s string) (Status, bool) {
    switch Status(s) {
    case "":
        return StatusAvailable, true
    case StatusAvailable, StatusMaintenance, StatusOffline:
        return Status(s), true
    }
    return "", false
}

// Workstation describes a physical seat in a lab.  Workstations are
// uniquely identified among live records by their row and position.
//
// Fields:
//  ID           – primary key identifier.
//  RowID        – row the seat currently sits in.
//  Position     – zero-based column inside the row.
//  Label        – lower-case label such as "cc-01".
//  BaseStatus   – stored status (available, maintenance, offline).
//  Specs        – free-form hardware description.
//  SoftwareList – installed software, order preserved.
//  Version      – optimistic locking counter bumped on every write.
type Workstation struct {
    ID           uint64   `json:"id"`            // workstations.id
    RowID        uint64   `json:"row_id"`        // workstations.row_id
    Position     int      `json:"position"`      // workstations.position
    Label        string   `json:"label"`         // workstations.label
    BaseStatus   Status   `json:"base_status"`   // workstations.base_status
    Specs        string   `json:"specs"`         // workstations.specs
    SoftwareList []string `json:"software_list"` // workstations.software_list (JSON)
    Version      uint32   `json:"version"`       // workstations.version
}

// Coord is a grid coordinate.
type Coord struct {
    RowID    uint64 `json:"row_id"`
    Position int    `json:"position"`
}

// Coord returns the workstation's current coordinate.
func (w Workstation) Coord() Coord { return Coord{RowID: w.RowID, Position: w.Position} }

// WorkstationPatch carries a field-level partial update.  Nil fields are
// left untouched.  Coordinates are deliberately absent: relocation goes
// through the arrangement engine.
type WorkstationPatch struct {
    Label        *string   `json:"label"`
    BaseStatus   *string   `json:"base_status"`
    Specs        *string   `json:"specs"`
    SoftwareList *[]string `json:"software_list"`
}
