package grid

import (
	"github.com/matzehuels/vitalsgrid/pkg/errors"
)

// DefaultColumns is the column bound used when none is configured.
const DefaultColumns = 6

// DefaultVisibleRows is how many rows the empty-cell scan covers.
// Rows are unbounded; this only limits affordance rendering.
const DefaultVisibleRows = 20

// Occupant is anything that covers a rectangle on the grid.
type Occupant interface {
	OccupantID() string
	Bounds() Rect
}

// Grid is a bounded-width, unbounded-height cell space.
type Grid struct {
	Columns int `json:"columns"`
}

// New returns a grid with the given column bound.
// A non-positive bound falls back to [DefaultColumns].
func New(columns int) Grid {
	if columns < 1 {
		columns = DefaultColumns
	}
	return Grid{Columns: columns}
}

// Check validates a candidate placement against the grid bounds and every
// occupant except the one whose id equals excludeID.
//
// The returned error is nil for a valid placement, otherwise it carries one of
// [errors.ErrCodeBelowMinimum], [errors.ErrCodeOutOfBounds] or
// [errors.ErrCodeOverlap].
func (g Grid) Check(candidate Rect, occupants []Occupant, excludeID string) error {
	if err := g.CheckBounds(candidate); err != nil {
		return err
	}
	for _, o := range occupants {
		if o.OccupantID() == excludeID {
			continue
		}
		if Overlaps(candidate, o.Bounds()) {
			return errors.New(errors.ErrCodeOverlap, "Position %s would overlap %s", candidate.Origin(), o.OccupantID())
		}
	}
	return nil
}

// CheckBounds validates only the size minimum and the grid bounds.
func (g Grid) CheckBounds(candidate Rect) error {
	if candidate.Width < 1 || candidate.Height < 1 {
		return errors.New(errors.ErrCodeBelowMinimum, "Width and height must be at least 1")
	}
	if candidate.Col < 0 || candidate.Row < 0 {
		return errors.New(errors.ErrCodeOutOfBounds, "Position %s is outside the grid", candidate.Origin())
	}
	if candidate.Right() > g.Columns {
		return errors.New(errors.ErrCodeOutOfBounds, "Width exceeds grid bounds (max %d columns)", g.Columns)
	}
	return nil
}

// CanPlace reports whether candidate passes [Grid.Check].
func (g Grid) CanPlace(candidate Rect, occupants []Occupant, excludeID string) bool {
	return g.Check(candidate, occupants, excludeID) == nil
}

// Occupied reports whether any occupant covers c.
func (g Grid) Occupied(c Cell, occupants []Occupant) bool {
	return OccupantAt(c, occupants) != nil
}

// OccupantAt returns the occupant covering c, or nil.
func OccupantAt(c Cell, occupants []Occupant) Occupant {
	for _, o := range occupants {
		if Contains(o.Bounds(), c) {
			return o
		}
	}
	return nil
}

// EmptyCells returns the unoccupied cells in the first rows rows, row-major.
func (g Grid) EmptyCells(rows int, occupants []Occupant) []Cell {
	var cells []Cell
	for row := 0; row < rows; row++ {
		for col := 0; col < g.Columns; col++ {
			c := Cell{Col: col, Row: row}
			if !g.Occupied(c, occupants) {
				cells = append(cells, c)
			}
		}
	}
	return cells
}

// Extent returns the number of rows in use (the largest bottom edge).
func Extent(occupants []Occupant) int {
	rows := 0
	for _, o := range occupants {
		rows = max(rows, o.Bounds().Bottom())
	}
	return rows
}
