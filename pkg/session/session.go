// Package session implements the dashboard interaction session.
//
// A [Controller] is a small explicit state machine layered over a
// [layout.Store]. It turns user gestures (toggle edit mode, drag a tile,
// edit a tile's size) into store mutations, all gated by the placement
// validator.
//
// # States
//
// The session is always in exactly one [State]:
//
//   - [Idle]: the board is read-only
//   - [EditMode]: tiles can be dragged or resized
//   - [Dragging]: one tile is being dragged; Over is the hovered drop cell
//   - [ResizeEditing]: one tile's size is being edited through a detached [Draft]
//
// Because Dragging and ResizeEditing are states rather than flags, at most one
// tile is dragged or edited at any time.
//
// # Errors
//
// Gestures that do not apply to the current state return an error coded
// [errors.ErrCodeInvalidTransition] and leave the session untouched.
// Placement failures are reported through [layout.Result].
package session

import (
	"github.com/matzehuels/vitalsgrid/pkg/grid"
)

// State is one of [Idle], [EditMode], [Dragging] or [ResizeEditing].
type State interface {
	// Name returns a stable lowercase identifier for the state.
	Name() string
	state()
}

// Idle is the read-only state.
type Idle struct{}

// EditMode allows drag and resize gestures.
type EditMode struct{}

// Dragging tracks the tile being dragged and the cell under the pointer.
type Dragging struct {
	TileID string
	Over   *grid.Cell
}

// ResizeEditing holds a detached size draft for one tile.
type ResizeEditing struct {
	Draft Draft
}

// Draft is a working copy of a tile's geometry. Editing the draft never
// touches the committed tile.
type Draft struct {
	TileID   string    `json:"tile_id"`
	Position grid.Cell `json:"position"`
	Size     grid.Size `json:"size"`
}

func (Idle) Name() string          { return "idle" }
func (EditMode) Name() string      { return "edit" }
func (Dragging) Name() string      { return "dragging" }
func (ResizeEditing) Name() string { return "resize_editing" }

func (Idle) state()          {}
func (EditMode) state()      {}
func (Dragging) state()      {}
func (ResizeEditing) state() {}

// DropHint is the feedback for a hovered drop target.
type DropHint struct {
	Cell  grid.Cell `json:"cell"`
	Valid bool      `json:"valid"`
}

// Draft size fields accepted by [Controller.ChangeDraftSize].
const (
	FieldWidth  = "width"
	FieldHeight = "height"
)

// View is a read-only snapshot of the session for renderers and the API.
type View struct {
	Mode    string     `json:"mode"`
	Editing bool       `json:"editing"`
	Dragged string     `json:"dragged,omitempty"`
	Over    *grid.Cell `json:"over,omitempty"`
	Valid   bool       `json:"valid"`
	Hovered *grid.Cell `json:"hovered,omitempty"`
	Draft   *Draft     `json:"draft,omitempty"`
	CanAdd  bool       `json:"can_add"`
	Columns int        `json:"columns"`
	Version uint64     `json:"version"`
}
