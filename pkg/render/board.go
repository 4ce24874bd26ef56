package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/vitalsgrid/pkg/grid"
	"github.com/matzehuels/vitalsgrid/pkg/tile"
)

// Minimum cell dimensions: a border plus one line of content.
const (
	MinCellWidth  = 8
	MinCellHeight = 3
)

// Overlay is the interaction state drawn on top of a board.
type Overlay struct {
	Editing bool
	// Dragged is the id of the tile being dragged, if any.
	Dragged string
	// Target is the cell the dragged tile would drop onto.
	Target      *grid.Cell
	TargetValid bool
	// Cursor is the keyboard cursor cell.
	Cursor *grid.Cell
}

// BoardStyles are the colors of a board.
type BoardStyles struct {
	Border   lipgloss.Color
	Selected lipgloss.Color
	Dragged  lipgloss.Color
	Title    lipgloss.Style
	Empty    lipgloss.Style
	Valid    lipgloss.Style
	Invalid  lipgloss.Style
}

// DefaultBoardStyles match the CLI theme.
func DefaultBoardStyles() BoardStyles {
	return BoardStyles{
		Border:   lipgloss.Color("240"),
		Selected: lipgloss.Color("#7D56F4"),
		Dragged:  lipgloss.Color("#FFB86C"),
		Title:    lipgloss.NewStyle().Bold(true),
		Empty:    lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		Valid:    lipgloss.NewStyle().Background(lipgloss.Color("22")),
		Invalid:  lipgloss.NewStyle().Background(lipgloss.Color("52")),
	}
}

// Board composes tiles into a text grid. Each grid cell is CellWidth by
// CellHeight characters.
type Board struct {
	CellWidth  int
	CellHeight int
	// Rows is the minimum number of grid rows drawn.
	Rows   int
	Charts Renderer
	Styles BoardStyles
}

// NewBoard returns a board with a terminal chart renderer.
func NewBoard(cellWidth, cellHeight, rows int) *Board {
	return &Board{
		CellWidth:  max(cellWidth, MinCellWidth),
		CellHeight: max(cellHeight, MinCellHeight),
		Rows:       rows,
		Charts:     NewTerminal(),
		Styles:     DefaultBoardStyles(),
	}
}

// Render draws tiles on a grid with the given number of columns.
func (b *Board) Render(tiles []tile.Tile, columns int, ov Overlay) string {
	cw, ch := max(b.CellWidth, MinCellWidth), max(b.CellHeight, MinCellHeight)
	occs := tile.Occupants(tiles)

	rows := max(b.Rows, grid.Extent(occs))
	target, hasTarget := b.targetRect(tiles, ov)
	if hasTarget {
		rows = max(rows, target.Bottom())
	}
	if ov.Cursor != nil {
		rows = max(rows, ov.Cursor.Row+1)
	}

	boxes := make(map[string][]string, len(tiles))
	for _, t := range tiles {
		boxes[t.ID] = b.box(t, cw, ch, ov)
	}

	var out strings.Builder
	for y := 0; y < rows*ch; y++ {
		r, sub := y/ch, y%ch
		for col := 0; col < columns; {
			if t, ok := startingAt(tiles, col, r); ok {
				out.WriteString(boxes[t.ID][(r-t.Position.Row)*ch+sub])
				col += t.Size.Width
				continue
			}
			cell := grid.Cell{Col: col, Row: r}
			if grid.OccupantAt(cell, occs) != nil {
				// covered by a tile that starts further left on this row
				col++
				continue
			}
			out.WriteString(b.emptyCell(cell, sub, cw, ch, ov, hasTarget && grid.Contains(target, cell)))
			col++
		}
		if y < rows*ch-1 {
			out.WriteByte('\n')
		}
	}
	return out.String()
}

func (b *Board) targetRect(tiles []tile.Tile, ov Overlay) (grid.Rect, bool) {
	if ov.Dragged == "" || ov.Target == nil {
		return grid.Rect{}, false
	}
	for _, t := range tiles {
		if t.ID == ov.Dragged {
			return grid.RectAt(*ov.Target, t.Size), true
		}
	}
	return grid.Rect{}, false
}

func startingAt(tiles []tile.Tile, col, row int) (tile.Tile, bool) {
	for _, t := range tiles {
		if t.Position.Col == col && t.Position.Row <= row && row < t.Position.Row+t.Size.Height {
			return t, true
		}
	}
	return tile.Tile{}, false
}

// box renders t as exactly Height*ch lines of Width*cw cells.
func (b *Board) box(t tile.Tile, cw, ch int, ov Overlay) []string {
	w, h := t.Size.Width*cw, t.Size.Height*ch
	innerW, innerH := w-2, h-2

	border := b.Styles.Border
	switch {
	case t.ID == ov.Dragged:
		border = b.Styles.Dragged
	case ov.Cursor != nil && grid.Contains(t.Bounds(), *ov.Cursor):
		border = b.Styles.Selected
	}

	title := truncate(t.Title, innerW)
	if title == "" {
		title = truncate(t.ID, innerW)
	}
	content := b.Styles.Title.Render(pad(title, innerW))
	if innerH > 1 && b.Charts != nil {
		content += "\n" + b.Charts.Render(t, innerW, innerH-1)
	}

	rendered := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(innerW).
		Height(innerH).
		MaxHeight(h).
		Render(content)
	return fit(strings.Split(rendered, "\n"), w, h)
}

func (b *Board) emptyCell(c grid.Cell, sub, cw, ch int, ov Overlay, inTarget bool) string {
	line := strings.Repeat(" ", cw)
	if sub == ch/2 {
		switch {
		case ov.Cursor != nil && *ov.Cursor == c && ov.Editing:
			line = centered("[+]", cw)
		case ov.Cursor != nil && *ov.Cursor == c:
			line = centered("[ ]", cw)
		case ov.Editing:
			line = centered("·", cw)
		}
	}
	switch {
	case inTarget && ov.TargetValid:
		return b.Styles.Valid.Render(line)
	case inTarget:
		return b.Styles.Invalid.Render(line)
	default:
		return b.Styles.Empty.Render(line)
	}
}

func centered(s string, w int) string {
	n := len([]rune(s))
	if n >= w {
		return truncate(s, w)
	}
	left := (w - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", w-left-n)
}
