package session

import (
	"testing"

	"github.com/matzehuels/vitalsgrid/pkg/errors"
	"github.com/matzehuels/vitalsgrid/pkg/grid"
	"github.com/matzehuels/vitalsgrid/pkg/layout"
	"github.com/matzehuels/vitalsgrid/pkg/tile"
)

func newController(t *testing.T, cols int, tiles ...tile.Tile) *Controller {
	t.Helper()
	s, err := layout.New(grid.New(cols), tiles...)
	if err != nil {
		t.Fatalf("layout.New: %v", err)
	}
	return New(s)
}

func box(id string, col, row, w, h int) tile.Tile {
	return tile.Tile{
		ID:       id,
		Kind:     tile.KindBar,
		Position: grid.Cell{Col: col, Row: row},
		Size:     grid.Size{Width: w, Height: h},
		Config:   tile.DefaultConfig(tile.KindBar),
	}
}

func TestToggleEdit(t *testing.T) {
	c := newController(t, 6, box("A", 0, 0, 2, 2))
	if c.Editing() {
		t.Fatal("new controller is editing")
	}
	c.ToggleEdit()
	if _, ok := c.State().(EditMode); !ok {
		t.Fatalf("state = %s, want edit", c.State().Name())
	}
	if err := c.BeginDrag("A"); err != nil {
		t.Fatal(err)
	}
	c.ToggleEdit()
	if _, ok := c.State().(Idle); !ok {
		t.Fatalf("leaving edit mode while dragging: state = %s", c.State().Name())
	}
}

func TestInvalidTransitions(t *testing.T) {
	c := newController(t, 6, box("A", 0, 0, 2, 2))

	checks := map[string]error{
		"begin drag":        c.BeginDrag("A"),
		"end drag":          c.EndDrag(),
		"begin resize edit": c.BeginResizeEdit("A"),
		"change draft size": c.ChangeDraftSize(FieldWidth, "3"),
		"cancel":            c.Cancel(),
		"add chart":         c.AddChartAt(grid.Cell{Col: 4, Row: 0}),
		"drop":              c.Drop(grid.Cell{}).Err,
		"save":              c.Save().Err,
	}
	for name, err := range checks {
		if !errors.Is(err, errors.ErrCodeInvalidTransition) {
			t.Errorf("%s in idle: err = %v, want INVALID_TRANSITION", name, err)
		}
	}
	if _, ok := c.State().(Idle); !ok {
		t.Errorf("state changed to %s", c.State().Name())
	}
}

func TestBeginDragUnknownTile(t *testing.T) {
	c := newController(t, 6, box("A", 0, 0, 2, 2))
	c.ToggleEdit()
	if err := c.BeginDrag("nope"); !errors.Is(err, errors.ErrCodeTileNotFound) {
		t.Errorf("err = %v, want TILE_NOT_FOUND", err)
	}
	if _, ok := c.State().(EditMode); !ok {
		t.Errorf("state = %s", c.State().Name())
	}
}

func TestDragLifecycle(t *testing.T) {
	c := newController(t, 6, box("A", 0, 0, 2, 2), box("B", 2, 0, 2, 2))
	c.ToggleEdit()
	if err := c.BeginDrag("B"); err != nil {
		t.Fatal(err)
	}

	if h := c.HoverCell(grid.Cell{Col: 1, Row: 0}); h.Valid {
		t.Errorf("hover (1,0) valid, want invalid")
	}
	if h := c.HoverCell(grid.Cell{Col: 3, Row: 1}); !h.Valid || h.Cell != (grid.Cell{Col: 2, Row: 0}) {
		t.Errorf("hover inside B = %+v, want valid at B's origin", h)
	}
	if h := c.HoverCell(grid.Cell{Col: 4, Row: 0}); !h.Valid {
		t.Errorf("hover (4,0) invalid, want valid")
	}
	v := c.Snapshot()
	if v.Mode != "dragging" || v.Dragged != "B" || v.Over == nil || *v.Over != (grid.Cell{Col: 4, Row: 0}) || !v.Valid {
		t.Errorf("snapshot = %+v", v)
	}

	r := c.Drop(grid.Cell{Col: 1, Row: 0})
	if r.Status != layout.Rejected || !errors.Is(r.Err, errors.ErrCodeOverlap) {
		t.Errorf("drop (1,0) = %v %v", r.Status, r.Err)
	}
	if _, ok := c.State().(EditMode); !ok {
		t.Fatalf("after rejected drop state = %s, want edit", c.State().Name())
	}

	if err := c.BeginDrag("B"); err != nil {
		t.Fatal(err)
	}
	if r := c.Drop(grid.Cell{Col: 4, Row: 0}); r.Status != layout.Applied {
		t.Errorf("drop (4,0) = %v %v", r.Status, r.Err)
	}
	if b, _ := c.Store().Get("B"); b.Position != (grid.Cell{Col: 4, Row: 0}) {
		t.Errorf("B at %s", b.Position)
	}
	if v := c.Snapshot(); v.Dragged != "" || v.Over != nil {
		t.Errorf("drag state not cleared: %+v", v)
	}
}

func TestDropOntoOwnCell(t *testing.T) {
	c := newController(t, 6, box("A", 0, 0, 2, 2))
	c.ToggleEdit()
	if err := c.BeginDrag("A"); err != nil {
		t.Fatal(err)
	}
	if h := c.HoverCell(grid.Cell{Col: 1, Row: 1}); !h.Valid {
		t.Error("own cell not a valid drop target")
	}
	v := c.Store().Version()
	if r := c.Drop(grid.Cell{Col: 1, Row: 1}); r.Status != layout.Unchanged {
		t.Errorf("drop = %v %v, want unchanged", r.Status, r.Err)
	}
	if a, _ := c.Store().Get("A"); a.Position != (grid.Cell{}) {
		t.Errorf("A moved to %s", a.Position)
	}
	if c.Store().Version() != v {
		t.Error("no-op drop advanced the store version")
	}
}

func TestDropTarget(t *testing.T) {
	c := newController(t, 6, box("A", 0, 0, 2, 2), box("B", 2, 0, 2, 2))
	tests := []struct {
		name string
		cell grid.Cell
		want grid.Cell
	}{
		{"empty cell", grid.Cell{Col: 4, Row: 1}, grid.Cell{Col: 4, Row: 1}},
		{"origin", grid.Cell{Col: 2, Row: 0}, grid.Cell{Col: 2, Row: 0}},
		{"inside A", grid.Cell{Col: 1, Row: 1}, grid.Cell{Col: 0, Row: 0}},
		{"inside B", grid.Cell{Col: 3, Row: 1}, grid.Cell{Col: 2, Row: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.DropTarget(tt.cell); got != tt.want {
				t.Errorf("DropTarget(%s) = %s, want %s", tt.cell, got, tt.want)
			}
		})
	}
}

func TestDropInsideOtherTileRejected(t *testing.T) {
	c := newController(t, 6, box("A", 0, 0, 2, 2), box("B", 2, 0, 2, 2))
	c.ToggleEdit()
	_ = c.BeginDrag("A")
	r := c.Drop(grid.Cell{Col: 3, Row: 1})
	if r.Status != layout.Rejected || !errors.Is(r.Err, errors.ErrCodeOverlap) {
		t.Errorf("drop inside B = %v %v, want overlap", r.Status, r.Err)
	}
	if a, _ := c.Store().Get("A"); a.Position != (grid.Cell{}) {
		t.Errorf("A moved to %s", a.Position)
	}
}

func TestEndDrag(t *testing.T) {
	c := newController(t, 6, box("A", 0, 0, 2, 2))
	c.ToggleEdit()
	_ = c.BeginDrag("A")
	c.HoverCell(grid.Cell{Col: 4, Row: 4})
	v := c.Store().Version()
	if err := c.EndDrag(); err != nil {
		t.Fatal(err)
	}
	if c.Store().Version() != v {
		t.Error("EndDrag mutated the store")
	}
	if _, ok := c.State().(EditMode); !ok {
		t.Errorf("state = %s", c.State().Name())
	}
}

func TestResizeEdit(t *testing.T) {
	c := newController(t, 5, box("A", 4, 0, 1, 1))
	c.ToggleEdit()
	if err := c.BeginResizeEdit("A"); err != nil {
		t.Fatal(err)
	}
	if err := c.ChangeDraftSize(FieldWidth, "2"); err != nil {
		t.Fatal(err)
	}

	r := c.Save()
	if r.Status != layout.Rejected {
		t.Fatalf("save = %v, want rejected", r.Status)
	}
	if got, want := r.Message(), "Width exceeds grid bounds (max 5 columns)"; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
	rs, ok := c.State().(ResizeEditing)
	if !ok {
		t.Fatalf("state = %s, want resize_editing", c.State().Name())
	}
	if rs.Draft.Size.Width != 2 {
		t.Errorf("draft width = %d, want preserved 2", rs.Draft.Size.Width)
	}
	if a, _ := c.Store().Get("A"); a.Size.Width != 1 {
		t.Errorf("committed width = %d", a.Size.Width)
	}

	_ = c.ChangeDraftSize(FieldWidth, "1")
	_ = c.ChangeDraftSize(FieldHeight, "3")
	if r := c.Save(); r.Status != layout.Applied {
		t.Fatalf("save = %v %v", r.Status, r.Err)
	}
	if a, _ := c.Store().Get("A"); a.Size != (grid.Size{Width: 1, Height: 3}) {
		t.Errorf("size = %s", a.Size)
	}
	if _, ok := c.State().(EditMode); !ok {
		t.Errorf("state = %s, want edit", c.State().Name())
	}
}

func TestResizeEditOverlapStays(t *testing.T) {
	c := newController(t, 6, box("A", 0, 0, 2, 2), box("B", 2, 0, 2, 2))
	c.ToggleEdit()
	_ = c.BeginResizeEdit("A")
	_ = c.ChangeDraftSize(FieldWidth, "3")
	r := c.Save()
	if !errors.Is(r.Err, errors.ErrCodeOverlap) {
		t.Fatalf("err = %v, want OVERLAP", r.Err)
	}
	if _, ok := c.State().(ResizeEditing); !ok {
		t.Errorf("state = %s, want resize_editing", c.State().Name())
	}
}

func TestDraftIsDetached(t *testing.T) {
	c := newController(t, 6, box("A", 0, 0, 2, 2))
	c.ToggleEdit()
	_ = c.BeginResizeEdit("A")
	_ = c.ChangeDraftSize(FieldHeight, "5")
	if a, _ := c.Store().Get("A"); a.Size.Height != 2 {
		t.Errorf("draft leaked into tile: %s", a.Size)
	}
	if err := c.Cancel(); err != nil {
		t.Fatal(err)
	}
	if a, _ := c.Store().Get("A"); a.Size.Height != 2 {
		t.Errorf("cancel mutated tile: %s", a.Size)
	}
}

func TestChangeDraftSizeUnknownField(t *testing.T) {
	c := newController(t, 6, box("A", 0, 0, 2, 2))
	c.ToggleEdit()
	_ = c.BeginResizeEdit("A")
	if err := c.ChangeDraftSize("depth", "2"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v", err)
	}
}

func TestParseDimension(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"3", 3},
		{" 4 ", 4},
		{"2abc", 2},
		{"", 1},
		{"abc", 1},
		{"0", 1},
		{"-3", 1},
		{"+2", 2},
		{"12", 12},
	}
	for _, tt := range tests {
		if got := ParseDimension(tt.raw); got != tt.want {
			t.Errorf("ParseDimension(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestHoverAndAddChart(t *testing.T) {
	c := newController(t, 6, box("A", 0, 0, 2, 2))

	c.HoverCell(grid.Cell{Col: 3, Row: 0})
	if v := c.Snapshot(); v.CanAdd {
		t.Error("add affordance visible outside edit mode")
	}

	c.ToggleEdit()
	c.HoverCell(grid.Cell{Col: 3, Row: 0})
	if v := c.Snapshot(); !v.CanAdd || v.Hovered == nil {
		t.Errorf("snapshot = %+v, want add affordance", v)
	}
	c.HoverCell(grid.Cell{Col: 1, Row: 1})
	if v := c.Snapshot(); v.CanAdd {
		t.Error("add affordance on occupied cell")
	}
	c.LeaveCell()
	if v := c.Snapshot(); v.Hovered != nil {
		t.Error("hover not cleared")
	}

	err := c.AddChartAt(grid.Cell{Col: 3, Row: 0})
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("err = %v, want UNSUPPORTED", err)
	}
	if got := errors.UserMessage(err); got != "Add chart functionality coming soon!" {
		t.Errorf("message = %q", got)
	}
	if c.Store().Len() != 1 {
		t.Error("add chart mutated the store")
	}
}
