package render

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/vitalsgrid/pkg/tile"
)

// Renderer draws one tile's chart into a w×h text block.
type Renderer interface {
	Render(t tile.Tile, w, h int) string
}

// Rating colors for bar rows that carry a "rating" field.
var ratingColors = map[string]string{
	"good":              "#0CCE6B",
	"needs-improvement": "#FFA400",
	"poor":              "#FF4E42",
}

// DefaultPalette colors series that have no configured color.
var DefaultPalette = []string{"#8884d8", "#82ca9d", "#ffc658", "#ff7300", "#0088FE"}

// Terminal renders charts with block characters and lipgloss colors.
type Terminal struct {
	Palette []string
	Muted   lipgloss.Style
}

// NewTerminal returns a renderer using [DefaultPalette].
func NewTerminal() *Terminal {
	return &Terminal{
		Palette: DefaultPalette,
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// Render draws t's chart. The result has exactly h lines, each w cells wide.
func (r *Terminal) Render(t tile.Tile, w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	var lines []string
	switch cfg := t.Config.(type) {
	case tile.BarConfig:
		lines = r.bar(t.Data, cfg, w, h)
	case tile.SeriesConfig:
		lines = r.series(t.Data, cfg, w, h)
	case tile.ScatterConfig:
		lines = r.scatter(t.Data, cfg, w, h)
	}
	if lines == nil {
		lines = r.empty(w, h)
	}
	return strings.Join(fit(lines, w, h), "\n")
}

func (r *Terminal) color(i int) string {
	if len(r.Palette) == 0 {
		return "7"
	}
	return r.Palette[i%len(r.Palette)]
}

func (r *Terminal) empty(w, h int) []string {
	lines := make([]string, h)
	msg := truncate("no data", w)
	for i := range lines {
		lines[i] = strings.Repeat(" ", w)
	}
	n := len([]rune(msg))
	left := (w - n) / 2
	lines[h/2] = strings.Repeat(" ", left) + r.Muted.Render(msg) + strings.Repeat(" ", w-left-n)
	return lines
}

// =============================================================================
// Bar
// =============================================================================

func (r *Terminal) bar(rows []tile.Row, cfg tile.BarConfig, w, h int) []string {
	key := cfg.DataKey
	if key == "" {
		key = "value"
	}
	type item struct {
		name, rating string
		value        float64
	}
	var items []item
	for _, row := range rows {
		v, ok := number(row[key])
		if !ok {
			continue
		}
		rating, _ := row["rating"].(string)
		items = append(items, item{name(row), rating, v})
	}
	if len(items) == 0 {
		return nil
	}
	if len(items) > h {
		items = items[:h]
	}

	labelW, valueW, peak := 0, 0, 0.0
	for _, it := range items {
		labelW = max(labelW, len(it.name))
		valueW = max(valueW, len(formatValue(it.value)))
		peak = max(peak, it.value)
	}
	labelW = min(labelW, w/3)
	barW := w - labelW - valueW - 2
	if barW < 1 {
		valueW, barW = 0, max(0, w-labelW-1)
	}

	lines := make([]string, 0, len(items))
	for _, it := range items {
		n := 0
		if peak > 0 && it.value > 0 {
			n = int(math.Round(it.value / peak * float64(barW)))
		}
		color := cfg.Color
		if c, ok := ratingColors[it.rating]; ok {
			color = c
		}
		if color == "" {
			color = r.color(0)
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))

		var b strings.Builder
		b.WriteString(pad(truncate(it.name, labelW), labelW))
		b.WriteByte(' ')
		b.WriteString(style.Render(strings.Repeat("█", n)))
		b.WriteString(strings.Repeat(" ", barW-n))
		if valueW > 0 {
			b.WriteByte(' ')
			b.WriteString(padLeft(formatValue(it.value), valueW))
		}
		lines = append(lines, b.String())
	}
	return lines
}

// =============================================================================
// Line and area
// =============================================================================

func (r *Terminal) series(rows []tile.Row, cfg tile.SeriesConfig, w, h int) []string {
	var data [][]float64
	for _, key := range cfg.DataKeys {
		data = append(data, resample(column(rows, key), w))
	}
	lo, hi, ok := bounds(data...)
	if !ok {
		return nil
	}
	if cfg.Area {
		lo = min(lo, 0)
	}

	plotH := h
	legend := h >= 3
	if legend {
		plotH = h - 1
	}
	c := newCanvas(w, plotH)
	for i, vs := range data {
		color := cfg.ColorAt(i, r.color(i))
		for x, v := range vs {
			y := scale(v, lo, hi, plotH)
			if cfg.Area {
				for yy := y; yy < plotH; yy++ {
					c.set(x, yy, '█', color)
				}
			} else {
				c.set(x, y, '•', color)
			}
		}
	}

	lines := c.lines()
	if legend {
		var b strings.Builder
		width := 0
		for i, key := range cfg.DataKeys {
			entry := "■ " + key + " "
			if width+len(entry) > w {
				break
			}
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.ColorAt(i, r.color(i)))).Render("■"))
			b.WriteString(" " + key + " ")
			width += len(entry)
		}
		b.WriteString(strings.Repeat(" ", w-width))
		lines = append(lines, b.String())
	}
	return lines
}

// =============================================================================
// Scatter
// =============================================================================

func (r *Terminal) scatter(rows []tile.Row, cfg tile.ScatterConfig, w, h int) []string {
	var xs, ys, zs []float64
	for _, row := range rows {
		x, okx := number(row[cfg.XKey])
		y, oky := number(row[cfg.YKey])
		if !okx || !oky {
			continue
		}
		xs, ys = append(xs, x), append(ys, y)
		if cfg.ZKey != "" {
			z, _ := number(row[cfg.ZKey])
			zs = append(zs, z)
		}
	}
	if len(xs) == 0 {
		return nil
	}

	xlo, xhi, _ := bounds(xs)
	ylo, yhi, _ := bounds(ys)
	heavy := math.Inf(1)
	if len(zs) > 0 {
		sorted := append([]float64(nil), zs...)
		sort.Float64s(sorted)
		heavy = sorted[len(sorted)/2]
	}

	color := cfg.Color
	if color == "" {
		color = r.color(0)
	}
	c := newCanvas(w, h)
	for i := range xs {
		x := (w - 1) - scale(xs[i], xlo, xhi, w)
		y := scale(ys[i], ylo, yhi, h)
		mark := '•'
		if len(zs) > 0 && zs[i] > heavy {
			mark = '●'
		}
		c.set(x, y, mark, color)
	}
	return c.lines()
}

// scale maps v in [lo,hi] to a row index in [0,n) with hi at row 0.
func scale(v, lo, hi float64, n int) int {
	if n <= 1 {
		return 0
	}
	if hi == lo {
		return n / 2
	}
	pos := int(math.Round((v - lo) / (hi - lo) * float64(n-1)))
	return (n - 1) - min(max(pos, 0), n-1)
}

// =============================================================================
// Canvas
// =============================================================================

type canvasCell struct {
	r     rune
	color string
}

type canvas struct {
	w, h  int
	cells []canvasCell
}

func newCanvas(w, h int) *canvas {
	return &canvas{w: w, h: h, cells: make([]canvasCell, w*h)}
}

func (c *canvas) set(x, y int, r rune, color string) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.cells[y*c.w+x] = canvasCell{r, color}
}

// lines renders each row, styling runs of equal color together.
func (c *canvas) lines() []string {
	out := make([]string, c.h)
	for y := 0; y < c.h; y++ {
		var b strings.Builder
		row := c.cells[y*c.w : (y+1)*c.w]
		for x := 0; x < len(row); {
			end := x
			var run strings.Builder
			for end < len(row) && row[end].color == row[x].color {
				if row[end].r == 0 {
					run.WriteByte(' ')
				} else {
					run.WriteRune(row[end].r)
				}
				end++
			}
			if row[x].color == "" {
				b.WriteString(run.String())
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(row[x].color)).Render(run.String()))
			}
			x = end
		}
		out[y] = b.String()
	}
	return out
}

// =============================================================================
// Text helpers
// =============================================================================

// fit pads or cuts lines to exactly h lines of width w.
func fit(lines []string, w, h int) []string {
	if len(lines) > h {
		lines = lines[:h]
	}
	for i, l := range lines {
		if d := w - lipgloss.Width(l); d > 0 {
			lines[i] = l + strings.Repeat(" ", d)
		}
	}
	for len(lines) < h {
		lines = append(lines, strings.Repeat(" ", w))
	}
	return lines
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func pad(s string, n int) string {
	if d := n - len([]rune(s)); d > 0 {
		return s + strings.Repeat(" ", d)
	}
	return s
}

func padLeft(s string, n int) string {
	if d := n - len([]rune(s)); d > 0 {
		return strings.Repeat(" ", d) + s
	}
	return s
}

var _ Renderer = (*Terminal)(nil)
