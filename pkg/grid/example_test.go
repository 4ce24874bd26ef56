package grid_test

import (
	"fmt"

	"github.com/matzehuels/vitalsgrid/pkg/errors"
	"github.com/matzehuels/vitalsgrid/pkg/grid"
)

type chart struct {
	id   string
	rect grid.Rect
}

func (c chart) OccupantID() string { return c.id }
func (c chart) Bounds() grid.Rect  { return c.rect }

func ExampleGrid_Check() {
	g := grid.New(5)
	board := []grid.Occupant{
		chart{"A", grid.Rect{Col: 0, Row: 0, Width: 2, Height: 2}},
		chart{"B", grid.Rect{Col: 2, Row: 0, Width: 2, Height: 2}},
	}

	// Moving B one column left collides with A.
	err := g.Check(grid.Rect{Col: 1, Row: 0, Width: 2, Height: 2}, board, "B")
	fmt.Println(errors.GetCode(err))

	// Moving B one column right stays inside the five columns.
	err = g.Check(grid.Rect{Col: 3, Row: 0, Width: 2, Height: 2}, board, "B")
	fmt.Println(err == nil)
	// Output:
	// OVERLAP
	// true
}
