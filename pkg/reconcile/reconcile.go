// Package reconcile merges fetched and streamed data into dashboard tiles.
//
// Reconciliation only ever replaces tile data. Position, size and config are
// never touched, so it cannot break a layout invariant. Replacing a tile's
// data with equal rows is a no-op, which makes every function here
// idempotent.
package reconcile

import (
	"github.com/matzehuels/vitalsgrid/pkg/layout"
	"github.com/matzehuels/vitalsgrid/pkg/tile"
	"github.com/matzehuels/vitalsgrid/pkg/vitals"
)

// Batch is a set of rows keyed by chart kind and, for tiles fed by their own
// data set, by tile id.
type Batch struct {
	ByKind map[tile.Kind][]tile.Row
	ByID   map[string][]tile.Row
}

// rowsFor returns the rows for t: an id entry wins over a kind entry.
func (b Batch) rowsFor(t tile.Tile) ([]tile.Row, bool) {
	if rows, ok := b.ByID[t.ID]; ok {
		return rows, true
	}
	rows, ok := b.ByKind[t.Kind]
	return rows, ok
}

// Apply replaces the data of every tile with a matching key in b and
// returns the ids of tiles that changed, in tile order.
func Apply(s *layout.Store, b Batch) []string {
	var changed []string
	for _, t := range s.Tiles() {
		rows, ok := b.rowsFor(t)
		if !ok {
			continue
		}
		if r := s.ReplaceData(t.ID, rows); r.Status == layout.Applied {
			changed = append(changed, t.ID)
		}
	}
	return changed
}

// ApplyRecord feeds one real-time record into the bar tiles. Bars bound to
// their own data set and every series or scatter tile keep their data until
// the next full fetch. Not every bar is rewritten: a data-set bar such as the
// browser distribution keeps its counts.
func ApplyRecord(s *layout.Store, rec vitals.Record) []string {
	rows := vitals.LiveBarRows(rec.Data)
	b := Batch{ByID: make(map[string][]tile.Row)}
	for _, t := range s.Tiles() {
		if t.Kind == tile.KindBar && t.Dataset == "" {
			b.ByID[t.ID] = rows
		}
	}
	return Apply(s, b)
}

// FromBundle maps a fetched bundle onto the tiles of s. Tiles with a data
// set are keyed by id; all others by kind. Kinds whose rows the bundle does
// not carry are left out, so their tiles keep their data.
func FromBundle(b vitals.Bundle, tiles []tile.Tile) Batch {
	batch := Batch{ByKind: make(map[tile.Kind][]tile.Row), ByID: make(map[string][]tile.Row)}
	if b.Bar != nil {
		batch.ByKind[tile.KindBar] = b.Bar
	}
	if b.Line != nil {
		batch.ByKind[tile.KindLine] = b.Line
	}
	if b.Area != nil {
		batch.ByKind[tile.KindArea] = b.Area
	}
	if b.Scatter != nil {
		batch.ByKind[tile.KindScatter] = b.Scatter
	}
	for _, t := range tiles {
		if t.Dataset == "" {
			continue
		}
		if rows, ok := datasetRows(b, t.Dataset); ok {
			batch.ByID[t.ID] = rows
		}
	}
	return batch
}

func datasetRows(b vitals.Bundle, dataset string) ([]tile.Row, bool) {
	switch dataset {
	case layout.DatasetBrowsers:
		return b.Browsers, b.Browsers != nil
	case "bar":
		return b.Bar, b.Bar != nil
	case "line":
		return b.Line, b.Line != nil
	case "area":
		return b.Area, b.Area != nil
	case "scatter":
		return b.Scatter, b.Scatter != nil
	}
	return nil, false
}
