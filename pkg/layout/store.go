package layout

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/matzehuels/vitalsgrid/pkg/errors"
	"github.com/matzehuels/vitalsgrid/pkg/grid"
	"github.com/matzehuels/vitalsgrid/pkg/observability"
	"github.com/matzehuels/vitalsgrid/pkg/tile"
)

// Store is the layout state: an ordered tile sequence on a grid.
type Store struct {
	grid    grid.Grid
	tiles   []tile.Tile
	version uint64
}

// New builds a store from seed tiles. The seed must already satisfy every
// layout invariant; the first violation is returned as a coded error.
func New(g grid.Grid, tiles ...tile.Tile) (*Store, error) {
	if g.Columns < 1 {
		g = grid.New(g.Columns)
	}
	seen := make(map[string]bool, len(tiles))
	placed := make([]tile.Tile, 0, len(tiles))
	for _, t := range tiles {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if seen[t.ID] {
			return nil, errors.New(errors.ErrCodeDuplicateTile, "duplicate tile id: %s", t.ID)
		}
		if err := g.Check(t.Bounds(), tile.Occupants(placed), t.ID); err != nil {
			return nil, fmt.Errorf("seed tile %s: %w", t.ID, err)
		}
		seen[t.ID] = true
		placed = append(placed, t.Clone())
	}
	return &Store{grid: g, tiles: placed}, nil
}

// Grid returns the grid the store validates against.
func (s *Store) Grid() grid.Grid { return s.grid }

// Len returns the number of tiles.
func (s *Store) Len() int { return len(s.tiles) }

// Version increases by one on every applied mutation.
func (s *Store) Version() uint64 { return s.version }

// Tiles returns the tile sequence in insertion order.
// The slice is shared with the store but never modified after it is handed out.
func (s *Store) Tiles() []tile.Tile { return s.tiles }

// Get returns the tile with the given id.
func (s *Store) Get(id string) (tile.Tile, bool) {
	i := s.index(id)
	if i < 0 {
		return tile.Tile{}, false
	}
	return s.tiles[i], true
}

// Occupants returns the tiles as grid occupants.
func (s *Store) Occupants() []grid.Occupant { return tile.Occupants(s.tiles) }

// CanPlace reports whether the tile id could occupy rect.
func (s *Store) CanPlace(rect grid.Rect, id string) bool {
	return s.grid.CanPlace(rect, s.Occupants(), id)
}

// Move relocates tile id so its top-left corner is at to.
// The size is unchanged.
func (s *Store) Move(id string, to grid.Cell) Result {
	return s.record("move", id, s.move(id, to))
}

func (s *Store) move(id string, to grid.Cell) Result {
	i := s.index(id)
	if i < 0 {
		return notFound(id)
	}
	cur := s.tiles[i]
	if err := s.grid.Check(grid.RectAt(to, cur.Size), s.Occupants(), id); err != nil {
		return rejected(err)
	}
	if cur.Position == to {
		return unchanged()
	}
	s.replace(i, cur.WithPosition(to))
	return applied()
}

// Resize changes the size of tile id, keeping its top-left corner.
func (s *Store) Resize(id string, size grid.Size) Result {
	return s.record("resize", id, s.resize(id, size))
}

func (s *Store) resize(id string, size grid.Size) Result {
	i := s.index(id)
	if i < 0 {
		return notFound(id)
	}
	cur := s.tiles[i]
	if err := s.grid.Check(grid.RectAt(cur.Position, size), s.Occupants(), id); err != nil {
		return rejected(err)
	}
	if cur.Size == size {
		return unchanged()
	}
	s.replace(i, cur.WithSize(size))
	return applied()
}

// ReplaceData swaps the data rows of tile id. Geometry is untouched, so no
// placement check is needed. Equal rows leave the store unchanged.
func (s *Store) ReplaceData(id string, rows []tile.Row) Result {
	return s.record("replace_data", id, s.replaceData(id, rows))
}

func (s *Store) replaceData(id string, rows []tile.Row) Result {
	i := s.index(id)
	if i < 0 {
		return notFound(id)
	}
	cur := s.tiles[i]
	if tile.RowsEqual(cur.Data, rows) {
		return unchanged()
	}
	s.replace(i, cur.WithData(rows))
	return applied()
}

// CreateSpec describes a new tile. ID may be empty; one is minted.
// A nil Config falls back to [tile.DefaultConfig].
type CreateSpec struct {
	ID       string
	Kind     tile.Kind
	Title    string
	Position grid.Cell
	Size     grid.Size
	Config   tile.Config
	Dataset  string
}

// Create adds a tile at the end of the sequence, subject to the same
// placement rules as every other mutation.
func (s *Store) Create(spec CreateSpec) (tile.Tile, Result) {
	t, res := s.create(spec)
	return t, s.record("create", t.ID, res)
}

func (s *Store) create(spec CreateSpec) (tile.Tile, Result) {
	if spec.ID == "" {
		spec.ID = "chart-" + uuid.NewString()
	}
	if spec.Size == (grid.Size{}) {
		spec.Size = grid.Size{Width: 2, Height: 2}
	}
	if spec.Config == nil {
		spec.Config = tile.DefaultConfig(spec.Kind)
	}
	t := tile.Tile{
		ID:       spec.ID,
		Kind:     spec.Kind,
		Title:    spec.Title,
		Position: spec.Position,
		Size:     spec.Size,
		Config:   spec.Config,
		Dataset:  spec.Dataset,
	}
	if err := t.Validate(); err != nil {
		return t, rejected(err)
	}
	if s.index(t.ID) >= 0 {
		return t, rejected(errors.New(errors.ErrCodeDuplicateTile, "duplicate tile id: %s", t.ID))
	}
	if err := s.grid.Check(t.Bounds(), s.Occupants(), ""); err != nil {
		return t, rejected(err)
	}
	next := make([]tile.Tile, len(s.tiles), len(s.tiles)+1)
	copy(next, s.tiles)
	s.tiles = append(next, t.Clone())
	s.version++
	return t, applied()
}

func (s *Store) index(id string) int {
	for i, t := range s.tiles {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// replace installs a fresh slice with tile i swapped for t.
func (s *Store) replace(i int, t tile.Tile) {
	next := make([]tile.Tile, len(s.tiles))
	copy(next, s.tiles)
	next[i] = t
	s.tiles = next
	s.version++
}

func (s *Store) record(op, id string, r Result) Result {
	observability.Layout().OnMutation(op, id, r.Status.String())
	return r
}
