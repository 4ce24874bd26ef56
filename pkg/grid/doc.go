// Package grid provides the integer cell space that dashboard tiles occupy.
//
// The grid has a bounded number of columns and an unbounded number of rows.
// A tile covers the half-open rectangle [col, col+width) × [row, row+height).
//
// # Geometry
//
// [Overlaps] and [Contains] are pure functions over [Rect] values. Callers
// guarantee well-formed rectangles (width and height of at least one).
//
// # Placement
//
// [Grid.Check] is the single gate for every layout mutation: a candidate
// rectangle is rejected when it leaves the grid, is smaller than one cell, or
// overlaps any occupant other than the excluded one. Excluding the moving
// tile lets it be checked against the board with itself removed:
//
//	g := grid.New(6)
//	if err := g.Check(candidate, tiles, "chart-1"); err != nil {
//	    fmt.Println(errors.UserMessage(err))
//	}
package grid
