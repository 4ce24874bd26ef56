package tile

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/vitalsgrid/pkg/errors"
	"github.com/matzehuels/vitalsgrid/pkg/grid"
)

func barTile() Tile {
	return Tile{
		ID:       "chart-1",
		Kind:     KindBar,
		Title:    "Core Web Vitals",
		Position: grid.Cell{Col: 0, Row: 0},
		Size:     grid.Size{Width: 2, Height: 2},
		Data:     []Row{{"name": "LCP", "value": 2450.0}},
		Config:   BarConfig{DataKey: "value", Color: "#8884d8"},
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"bar", KindBar, false},
		{" Line ", KindLine, false},
		{"AREA", KindArea, false},
		{"scatter", KindScatter, false},
		{"pie", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Tile)
		wantCode errors.Code
	}{
		{"valid", func(*Tile) {}, ""},
		{"empty id", func(t *Tile) { t.ID = "" }, errors.ErrCodeInvalidTile},
		{"bad kind", func(t *Tile) { t.Kind = "pie" }, errors.ErrCodeInvalidTile},
		{"config mismatch", func(t *Tile) { t.Config = ScatterConfig{XKey: "x", YKey: "y"} }, errors.ErrCodeInvalidTile},
		{"missing config", func(t *Tile) { t.Config = nil }, errors.ErrCodeInvalidTile},
		{"bar without data key", func(t *Tile) { t.Config = BarConfig{} }, errors.ErrCodeInvalidTile},
		{"zero width", func(t *Tile) { t.Size.Width = 0 }, errors.ErrCodeBelowMinimum},
		{"negative row", func(t *Tile) { t.Position.Row = -1 }, errors.ErrCodeOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := barTile()
			tt.mutate(&tl)
			if got := errors.GetCode(tl.Validate()); got != tt.wantCode {
				t.Errorf("Validate() code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestWithHelpersDoNotMutateReceiver(t *testing.T) {
	orig := barTile()

	moved := orig.WithPosition(grid.Cell{Col: 3, Row: 1})
	if orig.Position != (grid.Cell{}) {
		t.Errorf("WithPosition mutated receiver: %v", orig.Position)
	}
	if moved.Position != (grid.Cell{Col: 3, Row: 1}) {
		t.Errorf("WithPosition() position = %v", moved.Position)
	}

	resized := orig.WithSize(grid.Size{Width: 4, Height: 1})
	if orig.Size != (grid.Size{Width: 2, Height: 2}) {
		t.Errorf("WithSize mutated receiver: %v", orig.Size)
	}
	if resized.Size != (grid.Size{Width: 4, Height: 1}) {
		t.Errorf("WithSize() size = %v", resized.Size)
	}

	rows := []Row{{"name": "FID", "value": 85.0}}
	updated := orig.WithData(rows)
	rows[0]["value"] = 1.0
	if updated.Data[0]["value"] != 85.0 {
		t.Error("WithData should copy the supplied rows")
	}
	if orig.Data[0]["name"] != "LCP" {
		t.Error("WithData mutated receiver data")
	}

	moved.Data[0]["value"] = 0.0
	if orig.Data[0]["value"] != 2450.0 {
		t.Error("copies must not share row maps with the original")
	}
}

func TestCloneSeriesConfigIsDeep(t *testing.T) {
	orig := Tile{
		ID:     "chart-2",
		Kind:   KindLine,
		Size:   grid.Size{Width: 1, Height: 1},
		Config: SeriesConfig{DataKeys: []string{"LCP", "FCP"}, Colors: []string{"#111", "#222"}},
	}
	c := orig.Clone()
	c.Config.(SeriesConfig).DataKeys[0] = "TTFB"
	if orig.Config.(SeriesConfig).DataKeys[0] != "LCP" {
		t.Error("Clone() shares series keys with the original")
	}
}

func TestRowsEqual(t *testing.T) {
	a := []Row{{"name": "LCP", "value": 1.0}}
	if !RowsEqual(a, CloneRows(a)) {
		t.Error("RowsEqual(a, clone) = false")
	}
	if RowsEqual(a, []Row{{"name": "LCP", "value": 2.0}}) {
		t.Error("RowsEqual with different values = true")
	}
	if RowsEqual(a, nil) {
		t.Error("RowsEqual with nil = true")
	}
	if !RowsEqual(nil, []Row{}) {
		t.Error("RowsEqual(nil, empty) = false")
	}
}

func TestJSONKeepsConfigVariant(t *testing.T) {
	orig := Tile{
		ID:       "chart-5",
		Kind:     KindScatter,
		Title:    "LCP vs FID Correlation",
		Position: grid.Cell{Col: 2, Row: 2},
		Size:     grid.Size{Width: 4, Height: 2},
		Config:   ScatterConfig{XKey: "lcp", YKey: "fid", ZKey: "cls", Color: "#ff8042"},
	}

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got Tile
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	cfg, ok := got.Config.(ScatterConfig)
	if !ok {
		t.Fatalf("Config type = %T, want ScatterConfig", got.Config)
	}
	if cfg.ZKey != "cls" || got.Position != orig.Position || got.Size != orig.Size {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if got.Data == nil {
		t.Error("Data should decode as an empty slice, not nil")
	}
}

func TestUnmarshalDefaultsConfig(t *testing.T) {
	var got Tile
	if err := json.Unmarshal([]byte(`{"id":"x","kind":"area","position":{"col":0,"row":0},"size":{"width":1,"height":1}}`), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Config.Kind() != KindArea {
		t.Errorf("default config kind = %v, want area", got.Config.Kind())
	}
	if err := json.Unmarshal([]byte(`{"id":"x","kind":"pie"}`), &got); err == nil {
		t.Error("Unmarshal of unknown kind should fail")
	}
}

func TestSeriesColorAt(t *testing.T) {
	c := SeriesConfig{Colors: []string{"a", "b"}}
	if c.ColorAt(3, "z") != "b" {
		t.Errorf("ColorAt(3) = %q, want b", c.ColorAt(3, "z"))
	}
	if (SeriesConfig{}).ColorAt(0, "z") != "z" {
		t.Error("ColorAt with empty palette should return fallback")
	}
}
