package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/vitalsgrid/pkg/layout"
	"github.com/matzehuels/vitalsgrid/pkg/tile"
)

type document struct {
	Columns int         `json:"columns"`
	Tiles   []tile.Tile `json:"tiles"`
}

// WriteJSON encodes the store's grid width and tiles as indented JSON.
func WriteJSON(s *layout.Store, w io.Writer) error {
	doc := document{Columns: s.Grid().Columns, Tiles: s.Tiles()}
	if doc.Tiles == nil {
		doc.Tiles = []tile.Tile{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes the layout to a JSON file at path.
func ExportJSON(s *layout.Store, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(s, f)
}
