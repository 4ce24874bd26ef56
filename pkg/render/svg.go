package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/vitalsgrid/pkg/layout"
	"github.com/matzehuels/vitalsgrid/pkg/tile"
)

// Snapshot cell size in inches, as Graphviz measures node geometry.
const (
	snapshotCellW = 1.6
	snapshotCellH = 1.0
)

// DOT converts a layout into a neato graph with one pinned box per tile.
// Node centers are placed so boxes sit exactly on their grid cells.
func DOT(s *layout.Store) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  outputorder=nodesfirst;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fixedsize=true, fontname=\"Helvetica\", fontsize=11, pin=true];\n")
	buf.WriteString("\n")

	// corner anchors keep empty columns in the picture
	cols := s.Grid().Columns
	rows := 0
	for _, t := range s.Tiles() {
		rows = max(rows, t.Bounds().Bottom())
	}
	fmt.Fprintf(&buf, "  \"_origin\" [style=invis, width=0.01, height=0.01, label=\"\", pos=\"0,0!\"];\n")
	fmt.Fprintf(&buf, "  \"_extent\" [style=invis, width=0.01, height=0.01, label=\"\", pos=\"%s,%s!\"];\n",
		inches(float64(cols)*snapshotCellW), inches(-float64(rows)*snapshotCellH))

	for _, t := range s.Tiles() {
		fmt.Fprintf(&buf, "  %q [%s];\n", t.ID, strings.Join(nodeAttrs(t), ", "))
	}
	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(t tile.Tile) []string {
	w := float64(t.Size.Width) * snapshotCellW
	h := float64(t.Size.Height) * snapshotCellH
	cx := float64(t.Position.Col)*snapshotCellW + w/2
	cy := -(float64(t.Position.Row)*snapshotCellH + h/2)

	label := t.Title
	if label == "" {
		label = t.ID
	}
	label += fmt.Sprintf("\n%s %s", t.Kind, t.Size)

	return []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("pos=\"%s,%s!\"", inches(cx), inches(cy)),
		"width=" + inches(w-0.1),
		"height=" + inches(h-0.1),
		fmt.Sprintf("fillcolor=%q", tileColor(t)),
	}
}

func inches(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// tileColor is the tile's first configured color, or a palette color.
func tileColor(t tile.Tile) string {
	var c string
	switch cfg := t.Config.(type) {
	case tile.BarConfig:
		c = cfg.Color
	case tile.SeriesConfig:
		c = cfg.ColorAt(0, "")
	case tile.ScatterConfig:
		c = cfg.Color
	}
	if c == "" {
		c = DefaultPalette[0]
	}
	return c
}

// SVG renders the layout snapshot with Graphviz.
func SVG(ctx context.Context, s *layout.Store) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(DOT(s)))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's fixed pt dimensions with a scalable
// svg tag so the snapshot fills whatever container embeds it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
