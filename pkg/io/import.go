package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/vitalsgrid/pkg/grid"
	"github.com/matzehuels/vitalsgrid/pkg/layout"
)

// ReadJSON decodes a layout document from r into a new store.
//
// Decoding errors are wrapped with "decode:". Layout violations are returned
// as the coded errors produced by [layout.New]. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*layout.Store, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return layout.New(grid.New(doc.Columns), doc.Tiles...)
}

// ImportJSON reads a layout file at path.
func ImportJSON(path string) (*layout.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
