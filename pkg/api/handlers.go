package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/vitalsgrid/pkg/cache"
	"github.com/matzehuels/vitalsgrid/pkg/errors"
	"github.com/matzehuels/vitalsgrid/pkg/grid"
	"github.com/matzehuels/vitalsgrid/pkg/io"
	"github.com/matzehuels/vitalsgrid/pkg/layout"
	"github.com/matzehuels/vitalsgrid/pkg/observability"
	"github.com/matzehuels/vitalsgrid/pkg/render"
	"github.com/matzehuels/vitalsgrid/pkg/tile"
	"github.com/matzehuels/vitalsgrid/pkg/vitals"
)

// =============================================================================
// Tiles
// =============================================================================

type tilesBody struct {
	Columns int         `json:"columns"`
	Version uint64      `json:"version"`
	Tiles   []tile.Tile `json:"tiles"`
}

func (s *Server) listTiles(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	store := s.dash.Store
	body := tilesBody{Columns: store.Grid().Columns, Version: store.Version(), Tiles: store.Tiles()}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) getTile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	t, ok := s.dash.Store.Get(id)
	s.mu.Unlock()
	if !ok {
		writeError(w, errors.New(errors.ErrCodeTileNotFound, "tile not found: %s", id))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type cellBody struct {
	Col *int `json:"col"`
	Row *int `json:"row"`
}

func (b cellBody) cell() (grid.Cell, error) {
	if b.Col == nil || b.Row == nil {
		return grid.Cell{}, errors.New(errors.ErrCodeInvalidInput, "col and row are required")
	}
	return grid.Cell{Col: *b.Col, Row: *b.Row}, nil
}

func (s *Server) moveTile(w http.ResponseWriter, r *http.Request) {
	var body cellBody
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	cell, err := body.cell()
	if err != nil {
		writeError(w, err)
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.dash.Store.Move(id, cell)
	t, _ := s.dash.Store.Get(id)
	writeResult(w, res, resultBody{Version: s.dash.Store.Version(), Tile: t})
}

type sizeBody struct {
	Width  *int `json:"width"`
	Height *int `json:"height"`
}

func (s *Server) resizeTile(w http.ResponseWriter, r *http.Request) {
	var body sizeBody
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Width == nil || body.Height == nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "width and height are required"))
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.dash.Store.Resize(id, grid.Size{Width: *body.Width, Height: *body.Height})
	t, _ := s.dash.Store.Get(id)
	writeResult(w, res, resultBody{Version: s.dash.Store.Version(), Tile: t})
}

type createBody struct {
	ID       string          `json:"id"`
	Kind     string          `json:"kind"`
	Title    string          `json:"title"`
	Position grid.Cell       `json:"position"`
	Size     grid.Size       `json:"size"`
	Dataset  string          `json:"dataset"`
	Config   json.RawMessage `json:"config"`
}

func (s *Server) createTile(w http.ResponseWriter, r *http.Request) {
	var body createBody
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	kind, err := tile.ParseKind(body.Kind)
	if err != nil {
		writeError(w, err)
		return
	}
	cfg, err := tile.ParseConfig(body.Config, kind)
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, res := s.dash.Store.Create(layout.CreateSpec{
		ID:       body.ID,
		Kind:     kind,
		Title:    body.Title,
		Position: body.Position,
		Size:     body.Size,
		Config:   cfg,
		Dataset:  body.Dataset,
	})
	if !res.OK() {
		writeError(w, res.Err)
		return
	}
	writeJSON(w, http.StatusCreated, resultBody{Status: res.Status.String(), Version: s.dash.Store.Version(), Tile: t})
}

// =============================================================================
// Session
// =============================================================================

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	st := s.dash.Status()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, st)
}

// sessionOp runs op under the lock and answers with the session view.
func (s *Server) sessionOp(w http.ResponseWriter, op func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := op(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.dash.Controller.Snapshot())
}

func (s *Server) toggleEdit(w http.ResponseWriter, r *http.Request) {
	s.sessionOp(w, func() error {
		s.dash.Controller.ToggleEdit()
		return nil
	})
}

type idBody struct {
	ID string `json:"id"`
}

func (s *Server) beginDrag(w http.ResponseWriter, r *http.Request) {
	var body idBody
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	s.sessionOp(w, func() error { return s.dash.Controller.BeginDrag(body.ID) })
}

func (s *Server) hoverCell(w http.ResponseWriter, r *http.Request) {
	var body cellBody
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	cell, err := body.cell()
	if err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	hint := s.dash.Controller.HoverCell(cell)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, hint)
}

func (s *Server) drop(w http.ResponseWriter, r *http.Request) {
	var body cellBody
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	cell, err := body.cell()
	if err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.dash.Controller.Drop(cell)
	writeResult(w, res, resultBody{Version: s.dash.Store.Version()})
}

// cancel ends a drag or discards a resize draft, whichever is active.
func (s *Server) cancel(w http.ResponseWriter, r *http.Request) {
	s.sessionOp(w, func() error {
		if err := s.dash.Controller.EndDrag(); err == nil {
			return nil
		}
		return s.dash.Controller.Cancel()
	})
}

func (s *Server) beginResize(w http.ResponseWriter, r *http.Request) {
	var body idBody
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	s.sessionOp(w, func() error { return s.dash.Controller.BeginResizeEdit(body.ID) })
}

type draftBody struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (s *Server) changeDraft(w http.ResponseWriter, r *http.Request) {
	var body draftBody
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	s.sessionOp(w, func() error { return s.dash.Controller.ChangeDraftSize(body.Field, body.Value) })
}

func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.dash.Controller.Save()
	writeResult(w, res, resultBody{Version: s.dash.Store.Version()})
}

// =============================================================================
// Data
// =============================================================================

func rangeParam(r *http.Request) (vitals.TimeRange, error) {
	return vitals.ParseTimeRange(r.URL.Query().Get("range"))
}

func (s *Server) getVitals(w http.ResponseWriter, r *http.Request) {
	if s.fetcher == nil {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "no data source configured"))
		return
	}
	tr, err := rangeParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := s.fetcher.Fetch(r.Context(), tr)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type refreshBody struct {
	Changed []string `json:"changed"`
	Stale   bool     `json:"stale,omitempty"`
	Status  any      `json:"status"`
}

// refresh fetches outside the lock. If another refresh starts meanwhile,
// this one completes as stale and changes nothing.
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	if s.fetcher == nil {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "no data source configured"))
		return
	}
	tr, err := rangeParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	ticket := s.dash.BeginFetch(tr)
	s.mu.Unlock()

	b, ferr := s.fetcher.Fetch(r.Context(), tr)

	s.mu.Lock()
	stale := !s.dash.Pending(ticket)
	changed := s.dash.CompleteFetch(ticket, b, ferr)
	st := s.dash.Status()
	s.mu.Unlock()

	if ferr != nil && !stale {
		writeError(w, ferr)
		return
	}
	writeJSON(w, http.StatusOK, refreshBody{Changed: changed, Stale: stale, Status: st})
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "statistics need a record source"))
		return
	}
	tr, err := rangeParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	st, err := s.stats.Stats(r.Context(), tr, vitals.Filter{
		Browser:    q.Get("browser"),
		DeviceType: q.Get("device"),
		Country:    q.Get("country"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// =============================================================================
// Snapshots
// =============================================================================

func (s *Server) snapshotSVG(w http.ResponseWriter, r *http.Request) {
	s.snapshot(w, r, "svg", "image/svg+xml", func(ctx context.Context, st *layout.Store) ([]byte, error) {
		return render.SVG(ctx, st)
	})
}

func (s *Server) snapshotPNG(w http.ResponseWriter, r *http.Request) {
	s.snapshot(w, r, "png", "image/png", func(ctx context.Context, st *layout.Store) ([]byte, error) {
		var buf bytes.Buffer
		err := render.PNG(st, &buf, render.DefaultPNGOptions)
		return buf.Bytes(), err
	})
}

// snapshot renders a private copy of the layout outside the lock, caching
// by layout content so unchanged boards are rendered once.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request, format, contentType string,
	draw func(context.Context, *layout.Store) ([]byte, error)) {
	s.mu.Lock()
	var doc bytes.Buffer
	err := io.WriteJSON(s.dash.Store, &doc)
	s.mu.Unlock()
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "encode layout"))
		return
	}

	ctx := r.Context()
	key := s.keyer.SnapshotKey(cache.Hash(doc.Bytes()), format)
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			observability.Cache().OnCacheHit(ctx, "snapshot")
			w.Header().Set("Content-Type", contentType)
			_, _ = w.Write(data)
			return
		}
		observability.Cache().OnCacheMiss(ctx, "snapshot")
	}

	copyStore, err := io.ReadJSON(&doc)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "copy layout"))
		return
	}
	data, err := draw(ctx, copyStore)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format))
		return
	}
	if s.cache != nil && s.cache.Set(ctx, key, data, 0) == nil {
		observability.Cache().OnCacheSet(ctx, "snapshot", len(data))
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}
