package grid

import "fmt"

// Cell addresses a single grid cell by column and row, both zero-based.
type Cell struct {
	Col int `json:"col" bson:"col" toml:"col"`
	Row int `json:"row" bson:"row" toml:"row"`
}

// String returns the cell as "(col,row)".
func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.Col, c.Row) }

// Size is a span in columns and rows.
type Size struct {
	Width  int `json:"width" bson:"width" toml:"width"`
	Height int `json:"height" bson:"height" toml:"height"`
}

// String returns the size as "WxH".
func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

// Rect is an axis-aligned rectangle on the grid.
type Rect struct {
	Col, Row      int
	Width, Height int
}

// RectAt builds a rectangle from an origin cell and a size.
func RectAt(origin Cell, size Size) Rect {
	return Rect{Col: origin.Col, Row: origin.Row, Width: size.Width, Height: size.Height}
}

// Right returns the first column past the rectangle.
func (r Rect) Right() int { return r.Col + r.Width }

// Bottom returns the first row past the rectangle.
func (r Rect) Bottom() int { return r.Row + r.Height }

// Origin returns the top-left cell.
func (r Rect) Origin() Cell { return Cell{Col: r.Col, Row: r.Row} }

// Size returns the rectangle span.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Cells returns every cell covered by r in row-major order.
func (r Rect) Cells() []Cell {
	if r.Width < 1 || r.Height < 1 {
		return nil
	}
	cells := make([]Cell, 0, r.Width*r.Height)
	for row := r.Row; row < r.Bottom(); row++ {
		for col := r.Col; col < r.Right(); col++ {
			cells = append(cells, Cell{Col: col, Row: row})
		}
	}
	return cells
}

// String returns the rectangle as "(col,row) WxH".
func (r Rect) String() string { return r.Origin().String() + " " + r.Size().String() }

// Overlaps reports whether a and b share at least one cell.
// Two rectangles are disjoint only when one lies entirely left, right,
// above or below the other; touching edges do not overlap.
func Overlaps(a, b Rect) bool {
	return !(a.Right() <= b.Col || a.Col >= b.Right() || a.Bottom() <= b.Row || a.Row >= b.Bottom())
}

// Contains reports whether cell c lies inside r.
func Contains(r Rect, c Cell) bool {
	return c.Col >= r.Col && c.Col < r.Right() && c.Row >= r.Row && c.Row < r.Bottom()
}
