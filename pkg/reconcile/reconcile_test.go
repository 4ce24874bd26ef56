package reconcile

import (
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/vitalsgrid/pkg/layout"
	"github.com/matzehuels/vitalsgrid/pkg/tile"
	"github.com/matzehuels/vitalsgrid/pkg/vitals"
)

func defaultStore(t *testing.T) *layout.Store {
	t.Helper()
	s, err := layout.Default(6)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func data(t *testing.T, s *layout.Store, id string) []tile.Row {
	t.Helper()
	tl, ok := s.Get(id)
	if !ok {
		t.Fatalf("tile %s missing", id)
	}
	return tl.Data
}

func TestApplyByKindAndID(t *testing.T) {
	s := defaultStore(t)
	lineRows := []tile.Row{{"name": "Jan 1", "LCP": 1.0, "FCP": 2.0, "TTFB": 3.0}}
	browserRows := []tile.Row{{"name": "Chrome", "count": 10.0}}
	barRows := []tile.Row{{"name": "LCP", "value": 9.0}}

	changed := Apply(s, Batch{
		ByKind: map[tile.Kind][]tile.Row{tile.KindLine: lineRows, tile.KindBar: barRows},
		ByID:   map[string][]tile.Row{"chart-4": browserRows},
	})

	if want := []string{"chart-1", "chart-4", "chart-2"}; !slices.Equal(changed, want) {
		t.Errorf("changed = %v, want %v", changed, want)
	}
	if !tile.RowsEqual(data(t, s, "chart-4"), browserRows) {
		t.Error("id entry did not win over kind entry")
	}
	if !tile.RowsEqual(data(t, s, "chart-1"), barRows) {
		t.Error("bar kind not applied")
	}
	if len(data(t, s, "chart-3")) != 4 {
		t.Error("area tile without a key was touched")
	}
}

func TestApplyKeepsGeometry(t *testing.T) {
	s := defaultStore(t)
	before := s.Tiles()
	Apply(s, Batch{ByKind: map[tile.Kind][]tile.Row{tile.KindScatter: {{"lcp": 1.0, "fid": 2.0}}}})
	for i, tl := range s.Tiles() {
		if tl.Bounds() != before[i].Bounds() {
			t.Errorf("tile %s moved from %s to %s", tl.ID, before[i].Bounds(), tl.Bounds())
		}
	}
}

func TestApplyIdempotent(t *testing.T) {
	s := defaultStore(t)
	b := Batch{ByKind: map[tile.Kind][]tile.Row{
		tile.KindLine: {{"name": "a", "LCP": 1.0}},
		tile.KindArea: {{"name": "a", "TTI": 2.0}},
	}}

	Apply(s, b)
	once := s.Tiles()
	v := s.Version()

	if changed := Apply(s, b); len(changed) != 0 {
		t.Errorf("second apply changed %v", changed)
	}
	if s.Version() != v {
		t.Error("second apply advanced the version")
	}
	for i, tl := range s.Tiles() {
		if !tile.RowsEqual(tl.Data, once[i].Data) {
			t.Errorf("tile %s data differs after second apply", tl.ID)
		}
	}
}

func TestApplyRecord(t *testing.T) {
	s := defaultStore(t)
	lineBefore := data(t, s, "chart-2")
	browsersBefore := data(t, s, "chart-4")

	rec := vitals.Record{Datetime: time.Now(), Data: vitals.Metrics{LCP: 1800, FID: 70, CLS: 0.05, INP: 150}}
	changed := ApplyRecord(s, rec)
	if !slices.Equal(changed, []string{"chart-1"}) {
		t.Errorf("changed = %v", changed)
	}

	got := data(t, s, "chart-1")
	if len(got) != 4 || got[0]["value"] != 1800.0 || got[2]["value"] != 50.0 {
		t.Errorf("bar rows = %v", got)
	}
	if !tile.RowsEqual(data(t, s, "chart-2"), lineBefore) {
		t.Error("line tile changed by a live record")
	}
	if !tile.RowsEqual(data(t, s, "chart-4"), browsersBefore) {
		t.Error("dataset-bound bar changed by a live record")
	}

	if changed := ApplyRecord(s, rec); len(changed) != 0 {
		t.Errorf("replaying the record changed %v", changed)
	}
}

func TestFromBundle(t *testing.T) {
	s := defaultStore(t)
	b := vitals.Bundle{
		Bar:      []tile.Row{{"name": "LCP", "value": 1.0}},
		Browsers: []tile.Row{{"name": "Safari", "count": 3.0}},
		Line:     []tile.Row{{"name": "x", "LCP": 1.0}},
		Area:     []tile.Row{{"name": "x", "TTI": 1.0}},
	}
	batch := FromBundle(b, s.Tiles())

	if _, ok := batch.ByKind[tile.KindScatter]; ok {
		t.Error("scatter key present without scatter rows")
	}
	if !tile.RowsEqual(batch.ByID["chart-4"], b.Browsers) {
		t.Error("browsers data set not keyed by id")
	}

	Apply(s, batch)
	if !tile.RowsEqual(data(t, s, "chart-4"), b.Browsers) {
		t.Error("chart-4 did not receive browser rows")
	}
	if !tile.RowsEqual(data(t, s, "chart-1"), b.Bar) {
		t.Error("chart-1 did not receive bar rows")
	}
	if len(data(t, s, "chart-5")) != 0 {
		t.Error("scatter tile changed without scatter rows")
	}
}

func TestMarketBundleFitsCryptoBoard(t *testing.T) {
	s, err := layout.Crypto(layout.CryptoColumns)
	if err != nil {
		t.Fatal(err)
	}
	b := vitals.Bundle{
		Bar:  []tile.Row{{"name": "BTC", "value": 61000.0}},
		Line: []tile.Row{{"name": "Mar 1", "btc": 61000.0, "eth": 3400.0}},
		Area: []tile.Row{{"name": "Mar 1", "portfolio": 1.2e6, "profit": 3.1e4}},
	}
	if changed := Apply(s, FromBundle(b, s.Tiles())); len(changed) != 3 {
		t.Fatalf("changed = %v, want all three tiles", changed)
	}
	for _, tl := range s.Tiles() {
		sc, ok := tl.Config.(tile.SeriesConfig)
		if !ok {
			continue
		}
		for _, key := range sc.DataKeys {
			if _, ok := tl.Data[0][key]; !ok {
				t.Errorf("%s: row has no %q", tl.ID, key)
			}
		}
	}
}
