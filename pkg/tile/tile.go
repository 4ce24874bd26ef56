// Package tile defines the chart tiles placed on the dashboard grid.
//
// A [Tile] is a value: every mutation helper returns a modified copy and
// leaves the receiver untouched, so a renderer holding an older tile sequence
// never observes a half-updated tile.
//
// The per-kind configuration is a closed tagged union ([BarConfig],
// [SeriesConfig], [ScatterConfig]) selected by the tile [Kind].
package tile

import (
	"encoding/json"
	"maps"
	"reflect"

	"github.com/matzehuels/vitalsgrid/pkg/errors"
	"github.com/matzehuels/vitalsgrid/pkg/grid"
)

// Row is one data point: field name to number or string.
type Row map[string]any

// Tile is a positioned, sized chart instance on the grid.
type Tile struct {
	ID       string
	Kind     Kind
	Title    string
	Position grid.Cell
	Size     grid.Size
	Data     []Row
	Config   Config

	// Dataset optionally names the data set that feeds this tile.
	// Tiles with a dataset are reconciled by id instead of by kind.
	Dataset string
}

// OccupantID implements [grid.Occupant].
func (t Tile) OccupantID() string { return t.ID }

// Bounds implements [grid.Occupant].
func (t Tile) Bounds() grid.Rect { return grid.RectAt(t.Position, t.Size) }

// Clone returns a deep copy of t.
func (t Tile) Clone() Tile {
	t.Data = CloneRows(t.Data)
	if t.Config != nil {
		t.Config = t.Config.clone()
	}
	return t
}

// WithPosition returns a copy of t placed at c.
func (t Tile) WithPosition(c grid.Cell) Tile {
	out := t.Clone()
	out.Position = c
	return out
}

// WithSize returns a copy of t with size s.
func (t Tile) WithSize(s grid.Size) Tile {
	out := t.Clone()
	out.Size = s
	return out
}

// WithData returns a copy of t carrying rows.
func (t Tile) WithData(rows []Row) Tile {
	out := t.Clone()
	out.Data = CloneRows(rows)
	return out
}

// Validate checks the tile's own fields. Grid bounds and overlap are the
// layout store's concern.
func (t Tile) Validate() error {
	if err := errors.ValidateTileID(t.ID); err != nil {
		return err
	}
	if err := errors.ValidateTitle(t.Title); err != nil {
		return err
	}
	if !t.Kind.Valid() {
		return errors.New(errors.ErrCodeInvalidTile, "tile %s has invalid kind %q", t.ID, t.Kind)
	}
	if err := ValidateConfig(t.Kind, t.Config); err != nil {
		return err
	}
	if t.Size.Width < 1 || t.Size.Height < 1 {
		return errors.New(errors.ErrCodeBelowMinimum, "Width and height must be at least 1")
	}
	if t.Position.Col < 0 || t.Position.Row < 0 {
		return errors.New(errors.ErrCodeOutOfBounds, "Position %s is outside the grid", t.Position)
	}
	return nil
}

// CloneRows deep-copies a row slice. A nil slice stays nil.
func CloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = maps.Clone(r)
	}
	return out
}

// RowsEqual reports whether a and b hold the same rows in the same order.
func RowsEqual(a, b []Row) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// tileJSON is the wire form of a Tile.
type tileJSON struct {
	ID       string          `json:"id"`
	Kind     Kind            `json:"kind"`
	Title    string          `json:"title,omitempty"`
	Position grid.Cell       `json:"position"`
	Size     grid.Size       `json:"size"`
	Dataset  string          `json:"dataset,omitempty"`
	Data     []Row           `json:"data"`
	Config   json.RawMessage `json:"config,omitempty"`
}

// MarshalJSON encodes the tile with its config as a kind-tagged envelope.
func (t Tile) MarshalJSON() ([]byte, error) {
	cfg, err := marshalConfig(t.Config)
	if err != nil {
		return nil, err
	}
	data := t.Data
	if data == nil {
		data = []Row{}
	}
	return json.Marshal(tileJSON{
		ID:       t.ID,
		Kind:     t.Kind,
		Title:    t.Title,
		Position: t.Position,
		Size:     t.Size,
		Dataset:  t.Dataset,
		Data:     data,
		Config:   cfg,
	})
}

// UnmarshalJSON decodes a tile. A missing config falls back to
// [DefaultConfig] for the tile kind.
func (t *Tile) UnmarshalJSON(data []byte) error {
	var w tileJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	kind, err := ParseKind(string(w.Kind))
	if err != nil {
		return err
	}
	cfg, err := unmarshalConfig(w.Config, kind)
	if err != nil {
		return err
	}
	*t = Tile{
		ID:       w.ID,
		Kind:     kind,
		Title:    w.Title,
		Position: w.Position,
		Size:     w.Size,
		Dataset:  w.Dataset,
		Data:     w.Data,
		Config:   cfg,
	}
	return nil
}

var _ grid.Occupant = Tile{}

// Occupants adapts a tile slice for the grid validator.
func Occupants(tiles []Tile) []grid.Occupant {
	out := make([]grid.Occupant, len(tiles))
	for i, t := range tiles {
		out[i] = t
	}
	return out
}
