package layout_test

import (
	"fmt"

	"github.com/matzehuels/vitalsgrid/pkg/grid"
	"github.com/matzehuels/vitalsgrid/pkg/layout"
)

func ExampleStore_Move() {
	s, err := layout.Default(6)
	if err != nil {
		panic(err)
	}

	r := s.Move("chart-2", grid.Cell{Col: 1, Row: 0})
	fmt.Println(r.Status, r.Message())

	r = s.Move("chart-5", grid.Cell{Col: 2, Row: 4})
	fmt.Println(r.Status)
	// Output:
	// rejected Position (1,0) would overlap chart-1
	// applied
}

func ExampleStore_Resize() {
	s, err := layout.Default(6)
	if err != nil {
		panic(err)
	}

	r := s.Resize("chart-3", grid.Size{Width: 3, Height: 2})
	fmt.Println(r.Status, r.Message())
	// Output:
	// rejected Width exceeds grid bounds (max 6 columns)
}
