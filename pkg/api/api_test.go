package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/vitalsgrid/pkg/cache"
	"github.com/matzehuels/vitalsgrid/pkg/dashboard"
	"github.com/matzehuels/vitalsgrid/pkg/errors"
	"github.com/matzehuels/vitalsgrid/pkg/feed"
	"github.com/matzehuels/vitalsgrid/pkg/grid"
	"github.com/matzehuels/vitalsgrid/pkg/layout"
	"github.com/matzehuels/vitalsgrid/pkg/vitals"
)

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	store, err := layout.Default(grid.DefaultColumns)
	if err != nil {
		t.Fatal(err)
	}
	opts.Dashboard = dashboard.New(store, nil)
	opts.Logger = log.New(io.Discard)
	if opts.Fetcher == nil {
		svc := vitals.NewService(vitals.NewMemorySource(vitals.MemoryOptions{Records: 60, Days: 10, Seed: 7}))
		opts.Fetcher = svc
		opts.Stats = svc
	}
	s := New(opts)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = s.Close()
	})
	return s, ts
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func errorCode(t *testing.T, data []byte) errors.Code {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode error body %s: %v", data, err)
	}
	return body.Code
}

func TestListTiles(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	resp, data := do(t, http.MethodGet, ts.URL+"/api/tiles", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Columns int               `json:"columns"`
		Tiles   []json.RawMessage `json:"tiles"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatal(err)
	}
	if body.Columns != grid.DefaultColumns || len(body.Tiles) != 5 {
		t.Errorf("columns = %d, tiles = %d", body.Columns, len(body.Tiles))
	}
}

func TestGetTileNotFound(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	resp, data := do(t, http.MethodGet, ts.URL+"/api/tiles/nope", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if code := errorCode(t, data); code != errors.ErrCodeTileNotFound {
		t.Errorf("code = %s", code)
	}
}

func TestMoveTile(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"free cell", `{"col":0,"row":4}`, http.StatusOK, ""},
		{"overlap", `{"col":1,"row":0}`, http.StatusConflict, errors.ErrCodeOverlap},
		{"out of bounds", `{"col":5,"row":4}`, http.StatusConflict, errors.ErrCodeOutOfBounds},
		{"missing row", `{"col":0}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", `{"col":0,"row":4,"x":1}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ts := newTestServer(t, Options{})
			resp, data := do(t, http.MethodPost, ts.URL+"/api/tiles/chart-1/move", tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, body = %s", resp.StatusCode, data)
			}
			if tt.code != "" {
				if code := errorCode(t, data); code != tt.code {
					t.Errorf("code = %s, want %s", code, tt.code)
				}
			}
		})
	}
}

func TestResizeTile(t *testing.T) {
	s, ts := newTestServer(t, Options{})

	resp, data := do(t, http.MethodPost, ts.URL+"/api/tiles/chart-2/resize", `{"width":1,"height":2}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, data)
	}
	if got, _ := s.dash.Store.Get("chart-2"); got.Size != (grid.Size{Width: 1, Height: 2}) {
		t.Errorf("size = %+v", got.Size)
	}

	resp, data = do(t, http.MethodPost, ts.URL+"/api/tiles/chart-2/resize", `{"width":0,"height":2}`)
	if resp.StatusCode != http.StatusConflict || errorCode(t, data) != errors.ErrCodeBelowMinimum {
		t.Errorf("status = %d, body = %s", resp.StatusCode, data)
	}
}

func TestCreateTile(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, data := do(t, http.MethodPost, ts.URL+"/api/tiles",
		`{"id":"chart-6","kind":"line","title":"New","position":{"col":0,"row":4},"size":{"width":2,"height":1}}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, data)
	}

	resp, data = do(t, http.MethodPost, ts.URL+"/api/tiles",
		`{"id":"chart-6","kind":"bar","position":{"col":4,"row":4},"size":{"width":1,"height":1}}`)
	if resp.StatusCode != http.StatusConflict || errorCode(t, data) != errors.ErrCodeDuplicateTile {
		t.Errorf("duplicate: status = %d, body = %s", resp.StatusCode, data)
	}

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/tiles", `{"kind":"pie"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad kind: status = %d", resp.StatusCode)
	}
}

func TestSessionDragAndDrop(t *testing.T) {
	s, ts := newTestServer(t, Options{})

	resp, data := do(t, http.MethodPost, ts.URL+"/api/session/drag", `{"id":"chart-1"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("drag outside edit mode: status = %d, body = %s", resp.StatusCode, data)
	}

	do(t, http.MethodPost, ts.URL+"/api/session/edit", "")
	resp, data = do(t, http.MethodPost, ts.URL+"/api/session/drag", `{"id":"chart-1"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("drag: status = %d, body = %s", resp.StatusCode, data)
	}

	_, data = do(t, http.MethodPost, ts.URL+"/api/session/hover", `{"col":3,"row":1}`)
	var hint struct {
		Valid bool `json:"valid"`
	}
	if err := json.Unmarshal(data, &hint); err != nil {
		t.Fatal(err)
	}
	if hint.Valid {
		t.Error("hover over chart-2 should be invalid")
	}

	resp, data = do(t, http.MethodPost, ts.URL+"/api/session/drop", `{"col":1,"row":1}`)
	var res struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || res.Status != "unchanged" {
		t.Fatalf("drop inside own tile: status = %d, body = %s", resp.StatusCode, data)
	}
	do(t, http.MethodPost, ts.URL+"/api/session/drag", `{"id":"chart-1"}`)

	resp, data = do(t, http.MethodPost, ts.URL+"/api/session/drop", `{"col":0,"row":4}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("drop: status = %d, body = %s", resp.StatusCode, data)
	}
	if got, _ := s.dash.Store.Get("chart-1"); got.Position != (grid.Cell{Col: 0, Row: 4}) {
		t.Errorf("position = %+v", got.Position)
	}
}

func TestSessionResizeDraft(t *testing.T) {
	s, ts := newTestServer(t, Options{})
	do(t, http.MethodPost, ts.URL+"/api/session/edit", "")

	steps := []struct {
		path, body string
	}{
		{"/api/session/resize", `{"id":"chart-4"}`},
		{"/api/session/draft", `{"field":"height","value":"3"}`},
		{"/api/session/save", ""},
	}
	for _, st := range steps {
		resp, data := do(t, http.MethodPost, ts.URL+st.path, st.body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status = %d, body = %s", st.path, resp.StatusCode, data)
		}
	}
	if got, _ := s.dash.Store.Get("chart-4"); got.Size.Height != 3 {
		t.Errorf("height = %d", got.Size.Height)
	}

	resp, data := do(t, http.MethodPost, ts.URL+"/api/session/cancel", "")
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("cancel with nothing active: status = %d, body = %s", resp.StatusCode, data)
	}
}

func TestRefreshAppliesBundle(t *testing.T) {
	s, ts := newTestServer(t, Options{})
	resp, data := do(t, http.MethodPost, ts.URL+"/api/refresh?range=ALL", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, data)
	}
	var body struct {
		Changed []string `json:"changed"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Changed) == 0 {
		t.Error("no tiles changed")
	}
	if s.dash.Source != "memory" {
		t.Errorf("source = %q", s.dash.Source)
	}

	resp, data = do(t, http.MethodPost, ts.URL+"/api/refresh?range=2W", "")
	if resp.StatusCode != http.StatusBadRequest || errorCode(t, data) != errors.ErrCodeInvalidTimeRange {
		t.Errorf("bad range: status = %d, body = %s", resp.StatusCode, data)
	}
}

type failingFetcher struct{}

func (failingFetcher) Fetch(context.Context, vitals.TimeRange) (vitals.Bundle, error) {
	return vitals.Bundle{}, errors.New(errors.ErrCodeDataSource, "Failed to fetch current prices")
}

func TestRefreshError(t *testing.T) {
	s, ts := newTestServer(t, Options{Fetcher: failingFetcher{}})
	resp, data := do(t, http.MethodPost, ts.URL+"/api/refresh", "")
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, data)
	}
	if s.dash.FetchError != "Failed to fetch current prices" {
		t.Errorf("fetch error = %q", s.dash.FetchError)
	}
}

func TestStats(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	resp, data := do(t, http.MethodGet, ts.URL+"/api/stats?range=ALL&browser=chrome", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, data)
	}

	_, ts = newTestServer(t, Options{Fetcher: failingFetcher{}})
	resp, _ = do(t, http.MethodGet, ts.URL+"/api/stats", "")
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("stats without service: status = %d", resp.StatusCode)
	}
}

func TestSnapshotPNGCached(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_, ts := newTestServer(t, Options{Cache: fc})

	resp, first := do(t, http.MethodGet, ts.URL+"/api/snapshot.png", "")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("status = %d, type = %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !bytes.HasPrefix(first, []byte("\x89PNG")) {
		t.Fatal("not a PNG")
	}
	_, second := do(t, http.MethodGet, ts.URL+"/api/snapshot.png", "")
	if !bytes.Equal(first, second) {
		t.Error("cached snapshot differs")
	}
}

func TestFeedWebSocket(t *testing.T) {
	sim := feed.NewSimulator(5*time.Millisecond, vitals.NewGenerator(3))
	s, ts := newTestServer(t, Options{Feed: sim})

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws/feed"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.hub.len() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var rec vitals.Record
	if err := conn.ReadJSON(&rec); err != nil {
		t.Fatal(err)
	}
	if rec.AppName != vitals.DefaultAppName {
		t.Errorf("app = %q", rec.AppName)
	}

	_ = s.Close()
	s.mu.Lock()
	enabled := s.dash.FeedEnabled()
	s.mu.Unlock()
	if enabled {
		t.Error("feed still enabled after Close")
	}
}
