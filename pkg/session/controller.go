package session

import (
	"strconv"
	"strings"

	"github.com/matzehuels/vitalsgrid/pkg/errors"
	"github.com/matzehuels/vitalsgrid/pkg/grid"
	"github.com/matzehuels/vitalsgrid/pkg/layout"
)

// Controller owns the interaction state for one dashboard.
// It is not safe for concurrent use.
type Controller struct {
	store   *layout.Store
	state   State
	hovered *grid.Cell
}

// New returns a controller in the [Idle] state.
func New(store *layout.Store) *Controller {
	return &Controller{store: store, state: Idle{}}
}

// Store returns the layout store the controller mutates.
func (c *Controller) Store() *layout.Store { return c.store }

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Editing reports whether edit affordances are active.
func (c *Controller) Editing() bool {
	_, idle := c.state.(Idle)
	return !idle
}

// ToggleEdit switches between [Idle] and [EditMode]. Leaving edit mode
// cancels any drag or resize edit in progress.
func (c *Controller) ToggleEdit() {
	if c.Editing() {
		c.state = Idle{}
	} else {
		c.state = EditMode{}
	}
	c.hovered = nil
}

// BeginDrag starts dragging tile id. Only valid in [EditMode].
func (c *Controller) BeginDrag(id string) error {
	if _, ok := c.state.(EditMode); !ok {
		return c.invalid("begin drag")
	}
	if _, ok := c.store.Get(id); !ok {
		return errors.New(errors.ErrCodeTileNotFound, "tile not found: %s", id)
	}
	c.state = Dragging{TileID: id}
	c.hovered = nil
	return nil
}

// HoverCell records the cell under the pointer. While dragging it updates
// the drop target and reports whether the dragged tile fits there; otherwise
// it sets the hovered cell that drives the add-chart affordance.
//
// A cell covered by a tile targets that tile's origin, so hovering inside
// the dragged tile itself is a valid no-op target.
func (c *Controller) HoverCell(cell grid.Cell) DropHint {
	d, ok := c.state.(Dragging)
	if !ok {
		c.hovered = &cell
		return DropHint{Cell: cell}
	}
	target := c.dropTarget(cell)
	d.Over = &target
	c.state = d
	return DropHint{Cell: target, Valid: c.canDrop(d.TileID, target)}
}

// LeaveCell clears the hovered cell.
func (c *Controller) LeaveCell() { c.hovered = nil }

// Drop moves the dragged tile to cell. Dropping onto a tile targets that
// tile's origin: inside the dragged tile this is [layout.Unchanged], inside
// another tile it is rejected as an overlap. Whether the move is applied or
// rejected, the session returns to [EditMode].
func (c *Controller) Drop(cell grid.Cell) layout.Result {
	d, ok := c.state.(Dragging)
	if !ok {
		return layout.Result{Status: layout.Rejected, Err: c.invalid("drop")}
	}
	c.state = EditMode{}
	return c.store.Move(d.TileID, c.dropTarget(cell))
}

// DropTarget returns the cell a drop at cell would move the dragged tile to.
func (c *Controller) DropTarget(cell grid.Cell) grid.Cell { return c.dropTarget(cell) }

func (c *Controller) dropTarget(cell grid.Cell) grid.Cell {
	if o := grid.OccupantAt(cell, c.store.Occupants()); o != nil {
		return o.Bounds().Origin()
	}
	return cell
}

// EndDrag abandons a drag without moving anything.
func (c *Controller) EndDrag() error {
	if _, ok := c.state.(Dragging); !ok {
		return c.invalid("end drag")
	}
	c.state = EditMode{}
	return nil
}

// BeginResizeEdit snapshots tile id into a size draft. Only valid in
// [EditMode].
func (c *Controller) BeginResizeEdit(id string) error {
	if _, ok := c.state.(EditMode); !ok {
		return c.invalid("begin resize edit")
	}
	t, ok := c.store.Get(id)
	if !ok {
		return errors.New(errors.ErrCodeTileNotFound, "tile not found: %s", id)
	}
	c.state = ResizeEditing{Draft: Draft{TileID: t.ID, Position: t.Position, Size: t.Size}}
	return nil
}

// ChangeDraftSize sets the draft width or height from raw user input.
// Unparseable or non-positive input becomes 1.
func (c *Controller) ChangeDraftSize(field, raw string) error {
	r, ok := c.state.(ResizeEditing)
	if !ok {
		return c.invalid("change draft size")
	}
	n := ParseDimension(raw)
	switch field {
	case FieldWidth:
		r.Draft.Size.Width = n
	case FieldHeight:
		r.Draft.Size.Height = n
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown size field: %q", field)
	}
	c.state = r
	return nil
}

// ParseDimension parses a size field the way the size editor does:
// a leading integer is used, anything else counts as 1, and the result is
// never below 1.
func ParseDimension(raw string) int {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Save commits the draft size. On a violation the session stays in
// [ResizeEditing] with the draft preserved; on success it returns to
// [EditMode].
func (c *Controller) Save() layout.Result {
	r, ok := c.state.(ResizeEditing)
	if !ok {
		return layout.Result{Status: layout.Rejected, Err: c.invalid("save")}
	}
	d := r.Draft
	if err := c.store.Grid().CheckBounds(grid.RectAt(d.Position, d.Size)); err != nil {
		return layout.Result{Status: layout.Rejected, Err: err}
	}
	res := c.store.Resize(d.TileID, d.Size)
	if res.Status == layout.Rejected {
		return res
	}
	c.state = EditMode{}
	return res
}

// Cancel discards the draft.
func (c *Controller) Cancel() error {
	if _, ok := c.state.(ResizeEditing); !ok {
		return c.invalid("cancel")
	}
	c.state = EditMode{}
	return nil
}

// AddChartAt is the add-chart affordance on an empty cell. Creating tiles
// from the session is not available yet; use [layout.Store.Create].
func (c *Controller) AddChartAt(cell grid.Cell) error {
	if _, ok := c.state.(EditMode); !ok {
		return c.invalid("add chart")
	}
	if c.store.Grid().Occupied(cell, c.store.Occupants()) {
		return errors.New(errors.ErrCodeOverlap, "Cell %s is occupied", cell)
	}
	return errors.New(errors.ErrCodeUnsupported, "Add chart functionality coming soon!")
}

// Snapshot returns a read-only view of the session.
func (c *Controller) Snapshot() View {
	v := View{
		Mode:    c.state.Name(),
		Editing: c.Editing(),
		Columns: c.store.Grid().Columns,
		Version: c.store.Version(),
	}
	switch s := c.state.(type) {
	case Dragging:
		v.Dragged = s.TileID
		if s.Over != nil {
			over := *s.Over
			v.Over = &over
			v.Valid = c.canDrop(s.TileID, over)
		}
	case ResizeEditing:
		d := s.Draft
		v.Draft = &d
	}
	if c.hovered != nil {
		h := *c.hovered
		v.Hovered = &h
		_, inEdit := c.state.(EditMode)
		v.CanAdd = inEdit && !c.store.Grid().Occupied(h, c.store.Occupants())
	}
	return v
}

func (c *Controller) canDrop(id string, cell grid.Cell) bool {
	t, ok := c.store.Get(id)
	if !ok {
		return false
	}
	return c.store.CanPlace(grid.RectAt(cell, t.Size), id)
}

func (c *Controller) invalid(op string) error {
	return errors.New(errors.ErrCodeInvalidTransition, "cannot %s while %s", op, c.state.Name())
}
