// Package api serves a dashboard over HTTP and WebSocket.
//
// # Routes
//
//	GET  /api/tiles                 layout: columns, version and tiles
//	GET  /api/tiles/{id}            one tile
//	POST /api/tiles                 create a tile
//	POST /api/tiles/{id}/move       {"col":1,"row":0}
//	POST /api/tiles/{id}/resize     {"width":2,"height":1}
//	GET  /api/session               dashboard status and session view
//	POST /api/session/edit          toggle edit mode
//	POST /api/session/drag          {"id":"chart-1"}
//	POST /api/session/hover         {"col":1,"row":0}
//	POST /api/session/drop          {"col":1,"row":0}
//	POST /api/session/cancel        end a drag or discard a resize draft
//	POST /api/session/resize        {"id":"chart-1"}
//	POST /api/session/draft         {"field":"width","value":"3"}
//	POST /api/session/save          commit the resize draft
//	GET  /api/vitals?range=1W       fetch a data bundle
//	POST /api/refresh?range=1W      fetch and apply a bundle to the tiles
//	GET  /api/stats?range=1W        metric statistics (record sources only)
//	GET  /api/snapshot.svg          layout snapshot
//	GET  /api/snapshot.png          layout snapshot
//	GET  /ws/feed                   real-time records as JSON text frames
//
// Placement violations answer 409, unknown tiles 404 and malformed input
// 400, always with a {"code","message"} body.
//
// # Concurrency
//
// The dashboard is guarded by one mutex. Fetches run outside the lock and
// complete through the dashboard's tickets, so a slow fetch never blocks
// layout edits and a superseded fetch is dropped.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/vitalsgrid/pkg/cache"
	"github.com/matzehuels/vitalsgrid/pkg/dashboard"
	"github.com/matzehuels/vitalsgrid/pkg/feed"
	"github.com/matzehuels/vitalsgrid/pkg/vitals"
)

// Options configures a [Server]. Only Dashboard is required.
type Options struct {
	Dashboard *dashboard.Dashboard
	// Fetcher serves /api/vitals and /api/refresh.
	Fetcher vitals.Fetcher
	// Stats serves /api/stats. It is usually the same *vitals.Service as
	// Fetcher and is nil for sources without raw records.
	Stats *vitals.Service
	// Feed drives /ws/feed and real-time tile updates once Start is called.
	Feed feed.Feed
	// Cache stores rendered snapshots. Nil disables snapshot caching.
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// Server is the HTTP front of one dashboard.
type Server struct {
	mu   sync.Mutex
	dash *dashboard.Dashboard

	fetcher vitals.Fetcher
	stats   *vitals.Service
	feed    feed.Feed
	cache   cache.Cache
	keyer   cache.Keyer
	logger  *log.Logger

	hub    *hub
	handle *feed.Handle
	wg     sync.WaitGroup
}

// New returns a server for opts.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	keyer := opts.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Server{
		dash:    opts.Dashboard,
		fetcher: opts.Fetcher,
		stats:   opts.Stats,
		feed:    opts.Feed,
		cache:   opts.Cache,
		keyer:   keyer,
		logger:  logger,
		hub:     newHub(logger),
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/tiles", func(r chi.Router) {
			r.Get("/", s.listTiles)
			r.Post("/", s.createTile)
			r.Get("/{id}", s.getTile)
			r.Post("/{id}/move", s.moveTile)
			r.Post("/{id}/resize", s.resizeTile)
		})
		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Post("/edit", s.toggleEdit)
			r.Post("/drag", s.beginDrag)
			r.Post("/hover", s.hoverCell)
			r.Post("/drop", s.drop)
			r.Post("/cancel", s.cancel)
			r.Post("/resize", s.beginResize)
			r.Post("/draft", s.changeDraft)
			r.Post("/save", s.save)
		})
		r.Get("/vitals", s.getVitals)
		r.Post("/refresh", s.refresh)
		r.Get("/stats", s.getStats)
		r.Get("/snapshot.svg", s.snapshotSVG)
		r.Get("/snapshot.png", s.snapshotPNG)
	})
	r.Get("/ws/feed", s.serveFeed)
	return r
}

// Start subscribes to the feed, if any. Records update the dashboard and are
// broadcast to WebSocket clients until ctx ends or Close is called.
func (s *Server) Start(ctx context.Context) error {
	if s.feed == nil {
		return nil
	}

	records := make(chan vitals.Record, 64)
	s.mu.Lock()
	token, _ := s.dash.EnableFeed()
	s.mu.Unlock()

	h, err := s.feed.Subscribe(ctx,
		func(rec vitals.Record) {
			select {
			case records <- rec:
			default:
				s.logger.Warn("dropping feed record: consumer behind")
			}
		},
		func(err error) {
			s.mu.Lock()
			s.dash.HandleFeedError(token, err)
			s.mu.Unlock()
		})
	if err != nil {
		s.mu.Lock()
		s.dash.DisableFeed()
		s.mu.Unlock()
		return err
	}
	s.handle = h
	s.logger.Info("feed subscribed", "feed", s.feed.Name())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-h.Done():
				return
			case rec := <-records:
				s.mu.Lock()
				changed := s.dash.HandleRecord(token, rec)
				s.mu.Unlock()
				if len(changed) > 0 {
					s.logger.Debug("applied feed record", "changed", changed)
				}
				s.hub.broadcast(rec)
			}
		}
	}()
	return nil
}

// Close stops the feed and disconnects WebSocket clients.
func (s *Server) Close() error {
	if s.handle != nil {
		s.handle.Stop()
		s.wg.Wait()
		s.mu.Lock()
		s.dash.DisableFeed()
		s.mu.Unlock()
	}
	s.hub.close()
	return nil
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.hub.close()
	return srv.Shutdown(shutdownCtx)
}
