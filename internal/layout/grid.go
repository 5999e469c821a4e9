package layout

import (
	"sort"

	"github.com/iliyamo/lab-seat-scheduler/internal/model"
)

// CellKind tags what occupies a coordinate.
type CellKind string

const (
	CellUnoccupied  CellKind = "unoccupied"
	CellPlaceholder CellKind = "placeholder"
	CellWorkstation CellKind = "workstation"
)

// Cell is the tagged variant Workstation(id) | Placeholder(id) | Unoccupied.
type Cell struct {
	Kind          CellKind `json:"kind"`
	Position      int      `json:"position"`
	WorkstationID uint64   `json:"workstation_id,omitempty"`
	PlaceholderID uint64   `json:"placeholder_id,omitempty"`
}

// Grid indexes the cells of a lab by coordinate for O(1) occupancy checks.
type Grid struct {
	cells  map[model.Coord]Cell
	maxPos map[uint64]int // highest occupied position per row
}

// NewGrid builds a grid from live workstations and placeholders.  A
// workstation always takes precedence over a placeholder at the same
// coordinate.
func NewGrid(workstations []model.Workstation, slots []model.EmptySlot) *Grid {
	g := &Grid{
		cells:  make(map[model.Coord]Cell, len(workstations)+len(slots)),
		maxPos: make(map[uint64]int),
	}
	for _, s := range slots {
		c := model.Coord{RowID: s.RowID, Position: s.Position}
		g.cells[c] = Cell{Kind: CellPlaceholder, Position: s.Position, PlaceholderID: s.ID}
		g.track(c)
	}
	for _, w := range workstations {
		c := w.Coord()
		g.cells[c] = Cell{Kind: CellWorkstation, Position: w.Position, WorkstationID: w.ID}
		g.track(c)
	}
	return g
}

func (g *Grid) track(c model.Coord) {
	if cur, ok := g.maxPos[c.RowID]; !ok || c.Position > cur {
		g.maxPos[c.RowID] = c.Position
	}
}

// At returns the cell at c; unknown coordinates are Unoccupied.
func (g *Grid) At(c model.Coord) Cell {
	if cell, ok := g.cells[c]; ok {
		return cell
	}
	return Cell{Kind: CellUnoccupied, Position: c.Position}
}

// Row returns the cells of a row from position 0 up to the highest used
// position, filling holes with Unoccupied cells.
func (g *Grid) Row(rowID uint64) []Cell {
	max, ok := g.maxPos[rowID]
	if !ok {
		return []Cell{}
	}
	out := make([]Cell, 0, max+1)
	for p := 0; p <= max; p++ {
		out = append(out, g.At(model.Coord{RowID: rowID, Position: p}))
	}
	return out
}

// SortRows orders rows by name, then id.
func SortRows(rows []model.Row) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].ID < rows[j].ID
	})
}
