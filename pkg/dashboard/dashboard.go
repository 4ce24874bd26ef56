// Package dashboard ties a layout, its interaction session, the fetched data
// and the real-time feed into one event target.
//
// A Dashboard is owned by a single goroutine: the TUI's update loop or an
// HTTP server holding a mutex. Asynchronous work (fetches, feed records) runs
// elsewhere and reports back through tickets and tokens, so results that
// arrive after they stopped mattering are dropped instead of applied.
//
//	d := dashboard.New(store, logger)
//	ticket := d.BeginFetch(vitals.Range1W)
//	go func() { b, err := svc.Fetch(ctx, ticket.Range); results <- fetched{ticket, b, err} }()
//	// later, on the owning goroutine
//	d.CompleteFetch(r.ticket, r.bundle, r.err)
package dashboard

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vitalsgrid/pkg/errors"
	"github.com/matzehuels/vitalsgrid/pkg/layout"
	"github.com/matzehuels/vitalsgrid/pkg/reconcile"
	"github.com/matzehuels/vitalsgrid/pkg/session"
	"github.com/matzehuels/vitalsgrid/pkg/vitals"
)

// MaxRecent is how many feed records the dashboard keeps.
const MaxRecent = 50

// FetchTicket identifies one fetch. Only the most recent ticket completes.
type FetchTicket struct {
	seq   uint64
	Range vitals.TimeRange
}

// FeedToken identifies one feed subscription. The zero token is never active.
type FeedToken uint64

// Dashboard is the state behind one board.
type Dashboard struct {
	Store      *layout.Store
	Controller *session.Controller

	TimeRange  vitals.TimeRange
	Loading    bool
	FetchError string
	LastUpdate time.Time
	Source     string

	FeedConnected bool
	FeedError     string
	LastRecord    *vitals.Record
	// Recent holds the last MaxRecent feed records, newest last.
	Recent []vitals.Record

	fetchSeq  uint64
	feedSeq   uint64
	feedToken FeedToken

	logger *log.Logger
}

// New returns a dashboard over store showing [vitals.RangeAll]. A nil logger
// discards output.
func New(store *layout.Store, logger *log.Logger) *Dashboard {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Dashboard{
		Store:      store,
		Controller: session.New(store),
		TimeRange:  vitals.RangeAll,
		logger:     logger,
	}
}

// =============================================================================
// Fetching
// =============================================================================

// BeginFetch marks the dashboard as loading tr and returns the ticket the
// result must be completed with. Any earlier ticket becomes stale.
func (d *Dashboard) BeginFetch(tr vitals.TimeRange) FetchTicket {
	d.fetchSeq++
	d.TimeRange = tr
	d.Loading = true
	d.FetchError = ""
	return FetchTicket{seq: d.fetchSeq, Range: tr}
}

// Pending reports whether t is the fetch the dashboard is waiting for.
func (d *Dashboard) Pending(t FetchTicket) bool {
	return d.Loading && t.seq == d.fetchSeq
}

// CompleteFetch applies the result of the fetch identified by t and returns
// the ids of tiles whose data changed. Stale tickets are ignored. On error
// the tiles keep their previous data and the message is kept in FetchError.
func (d *Dashboard) CompleteFetch(t FetchTicket, b vitals.Bundle, err error) []string {
	if !d.Pending(t) {
		d.logger.Debug("dropping stale fetch", "range", t.Range)
		return nil
	}
	d.Loading = false
	if err != nil {
		d.FetchError = errors.UserMessage(err)
		d.logger.Warn("fetch failed", "range", t.Range, "error", err)
		return nil
	}
	if b.Empty() {
		d.logger.Debug("fetch returned no data", "range", t.Range)
		return nil
	}
	changed := reconcile.Apply(d.Store, reconcile.FromBundle(b, d.Store.Tiles()))
	d.LastUpdate = b.LastUpdate
	d.Source = b.Source
	d.logger.Info("fetched vitals", "range", t.Range, "records", b.Records, "changed", len(changed))
	return changed
}

// =============================================================================
// Real-time feed
// =============================================================================

// EnableFeed activates real-time updates and returns the token the feed's
// records must carry. If the feed is already active it returns the current
// token and false.
func (d *Dashboard) EnableFeed() (FeedToken, bool) {
	if d.feedToken != 0 {
		return d.feedToken, false
	}
	d.feedSeq++
	d.feedToken = FeedToken(d.feedSeq)
	d.FeedConnected = true
	d.FeedError = ""
	return d.feedToken, true
}

// FeedEnabled reports whether real-time updates are active.
func (d *Dashboard) FeedEnabled() bool { return d.feedToken != 0 }

// FeedToken returns the active token, or zero.
func (d *Dashboard) FeedToken() FeedToken { return d.feedToken }

// HandleRecord applies a feed record delivered under token and returns the
// ids of tiles that changed. Records for any token other than the active one
// are ignored, including everything delivered after DisableFeed.
func (d *Dashboard) HandleRecord(token FeedToken, rec vitals.Record) []string {
	if token == 0 || token != d.feedToken {
		return nil
	}
	r := rec
	d.LastRecord = &r
	d.Recent = append(d.Recent, rec)
	if n := len(d.Recent); n > MaxRecent {
		d.Recent = append([]vitals.Record(nil), d.Recent[n-MaxRecent:]...)
	}
	d.LastUpdate = rec.Datetime
	return reconcile.ApplyRecord(d.Store, rec)
}

// HandleFeedError records a terminal feed error for token. The feed stays
// enabled but disconnected until it is disabled.
func (d *Dashboard) HandleFeedError(token FeedToken, err error) {
	if token == 0 || token != d.feedToken || err == nil {
		return
	}
	d.FeedConnected = false
	d.FeedError = errors.UserMessage(err)
	d.logger.Warn("feed disconnected", "error", err)
}

// DisableFeed deactivates real-time updates. The caller stops the
// subscription; any record still in flight is dropped by HandleRecord.
func (d *Dashboard) DisableFeed() {
	d.feedToken = 0
	d.FeedConnected = false
	d.FeedError = ""
	d.LastRecord = nil
	d.Recent = nil
}

// =============================================================================
// Status
// =============================================================================

// Status is a read-only summary of the dashboard.
type Status struct {
	Range         vitals.TimeRange `json:"range"`
	Loading       bool             `json:"loading"`
	FetchError    string           `json:"fetch_error,omitempty"`
	LastUpdate    time.Time        `json:"last_update,omitzero"`
	Source        string           `json:"source,omitempty"`
	FeedEnabled   bool             `json:"feed_enabled"`
	FeedConnected bool             `json:"feed_connected"`
	FeedError     string           `json:"feed_error,omitempty"`
	LastRecord    *vitals.Record   `json:"last_record,omitempty"`
	Version       uint64           `json:"version"`
	Session       session.View     `json:"session"`
}

// Status summarizes the dashboard.
func (d *Dashboard) Status() Status {
	return Status{
		Range:         d.TimeRange,
		Loading:       d.Loading,
		FetchError:    d.FetchError,
		LastUpdate:    d.LastUpdate,
		Source:        d.Source,
		FeedEnabled:   d.FeedEnabled(),
		FeedConnected: d.FeedConnected,
		FeedError:     d.FeedError,
		LastRecord:    d.LastRecord,
		Version:       d.Store.Version(),
		Session:       d.Controller.Snapshot(),
	}
}
