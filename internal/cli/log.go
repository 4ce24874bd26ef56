// Package cli implements the vitalsgrid command-line interface.
//
// Commands share one [CLI] value holding the logger and the loaded config.
// The board itself lives in pkg/dashboard; this package only wires sources,
// caches and feeds to it and presents the result.
//
// # Commands
//
//   - dashboard: interactive terminal board
//   - serve: HTTP and WebSocket API over the same board
//   - layout: show, check, export and import layouts
//   - vitals: statistics, hourly series and dataset generation
//   - cache: manage the response cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// routes engine events (layout mutations, fetches, cache and feed activity)
// to the logger. Loggers travel through context.Context.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vitalsgrid/pkg/observability"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps filtering at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// attachLogger puts the CLI logger on ctx. At debug level it also routes
// engine events to that logger; the level is final by the time the root
// pre-run calls this.
func (c *CLI) attachLogger(ctx context.Context) context.Context {
	if c.Logger.GetLevel() <= log.DebugLevel {
		installLogHooks(c.Logger)
	}
	return withLogger(ctx, c.Logger)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Progress
// =============================================================================

// progress times one long step (a fetch, a bulk insert, the initial load of
// serve) and reports it once at info level.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs the formatted message with an elapsed field, e.g.
// "Fetched 1W bundle elapsed=412ms".
func (p *progress) done(format string, args ...any) {
	p.logger.Info(fmt.Sprintf(format, args...), "elapsed", time.Since(p.start).Round(time.Millisecond))
}

// =============================================================================
// Engine hooks
// =============================================================================

// logHooks reports engine events through the CLI logger.
type logHooks struct {
	logger *log.Logger
}

func installLogHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetLayoutHooks(h)
	observability.SetDataHooks(h)
	observability.SetCacheHooks(h)
	observability.SetFeedHooks(h)
}

func (h logHooks) OnMutation(op, id, status string) {
	h.logger.Debug("layout", "op", op, "tile", id, "status", status)
}

func (h logHooks) OnFetchStart(_ context.Context, source, timeRange string) {
	h.logger.Debug("fetch start", "source", source, "range", timeRange)
}

func (h logHooks) OnFetchComplete(_ context.Context, source, timeRange string, records int, elapsed time.Duration, err error) {
	if err != nil {
		h.logger.Debug("fetch failed", "source", source, "range", timeRange, "error", err)
		return
	}
	h.logger.Debug("fetch done", "source", source, "range", timeRange, "records", records, "elapsed", elapsed.Round(time.Millisecond))
}

func (h logHooks) OnCacheHit(_ context.Context, kind string) {
	h.logger.Debug("cache hit", "kind", kind)
}

func (h logHooks) OnCacheMiss(_ context.Context, kind string) {
	h.logger.Debug("cache miss", "kind", kind)
}

func (h logHooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.logger.Debug("cache set", "kind", kind, "bytes", size)
}

func (h logHooks) OnSubscribe(name string)   { h.logger.Debug("feed subscribed", "feed", name) }
func (h logHooks) OnRecord(name string)      { h.logger.Debug("feed record", "feed", name) }
func (h logHooks) OnUnsubscribe(name string) { h.logger.Debug("feed stopped", "feed", name) }
func (h logHooks) OnError(name string, err error) {
	h.logger.Debug("feed error", "feed", name, "error", err)
}
