package render

import (
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/vitalsgrid/pkg/layout"
)

// PNGOptions sizes a raster snapshot.
type PNGOptions struct {
	// Width is the image width in pixels. Height follows from the layout.
	Width int
	// CellAspect is cell height over cell width.
	CellAspect float64
	FontSize   float64
}

// DefaultPNGOptions is a 1200px wide image with 1.6:1 cells.
var DefaultPNGOptions = PNGOptions{Width: 1200, CellAspect: snapshotCellH / snapshotCellW, FontSize: 14}

// PNG rasterizes the layout snapshot and writes it to w.
func PNG(s *layout.Store, w io.Writer, opts PNGOptions) error {
	if opts.Width <= 0 {
		opts.Width = DefaultPNGOptions.Width
	}
	if opts.CellAspect <= 0 {
		opts.CellAspect = DefaultPNGOptions.CellAspect
	}
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultPNGOptions.FontSize
	}

	const margin = 8.0
	cols := max(s.Grid().Columns, 1)
	rows := 1
	for _, t := range s.Tiles() {
		rows = max(rows, t.Bounds().Bottom())
	}
	cellW := (float64(opts.Width) - 2*margin) / float64(cols)
	cellH := cellW * opts.CellAspect
	height := int(float64(rows)*cellH + 2*margin)

	dc := gg.NewContext(opts.Width, height)
	dc.SetColor(color.White)
	dc.Clear()

	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{
		Size:    opts.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	// grid lines
	dc.SetColor(color.Gray{Y: 0xE0})
	dc.SetLineWidth(1)
	for c := 0; c <= cols; c++ {
		x := margin + float64(c)*cellW
		dc.DrawLine(x, margin, x, margin+float64(rows)*cellH)
	}
	for r := 0; r <= rows; r++ {
		y := margin + float64(r)*cellH
		dc.DrawLine(margin, y, margin+float64(cols)*cellW, y)
	}
	dc.Stroke()

	for _, t := range s.Tiles() {
		x := margin + float64(t.Position.Col)*cellW + 3
		y := margin + float64(t.Position.Row)*cellH + 3
		bw := float64(t.Size.Width)*cellW - 6
		bh := float64(t.Size.Height)*cellH - 6

		dc.DrawRoundedRectangle(x, y, bw, bh, 8)
		dc.SetColor(parseHex(tileColor(t), 0x40))
		dc.FillPreserve()
		dc.SetColor(parseHex(tileColor(t), 0xFF))
		dc.SetLineWidth(2)
		dc.Stroke()

		title := t.Title
		if title == "" {
			title = t.ID
		}
		dc.SetColor(color.Black)
		lines := dc.WordWrap(title, bw-16)
		for i, line := range lines {
			dc.DrawString(line, x+8, y+8+opts.FontSize*float64(i+1))
		}
		dc.SetColor(color.Gray{Y: 0x60})
		dc.DrawStringAnchored(fmt.Sprintf("%s %s", t.Kind, t.Size), x+bw-8, y+bh-8, 1, 0)
	}

	return dc.EncodePNG(w)
}

// parseHex parses #rgb or #rrggbb. Anything else is mid gray.
func parseHex(s string, alpha uint8) color.NRGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if len(s) != 6 || err != nil {
		return color.NRGBA{0x80, 0x80, 0x80, alpha}
	}
	return color.NRGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), alpha}
}
