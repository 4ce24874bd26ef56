// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about layout mutations, data fetches, cache operations,
// and the real-time feed.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnMutation("move", id, "rejected")
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the layout store.
type LayoutHooks interface {
	// OnMutation records a move, resize, data replacement or create attempt
	// and its outcome ("applied", "unchanged", "rejected", "not_found").
	OnMutation(op, tileID, status string)
}

// =============================================================================
// Data Hooks
// =============================================================================

// DataHooks receives events from data sources.
type DataHooks interface {
	OnFetchStart(ctx context.Context, source, timeRange string)
	OnFetchComplete(ctx context.Context, source, timeRange string, records int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Feed Hooks
// =============================================================================

// FeedHooks receives events from real-time feeds.
type FeedHooks interface {
	OnSubscribe(feed string)
	OnRecord(feed string)
	OnUnsubscribe(feed string)
	OnError(feed string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnMutation(string, string, string) {}

// NoopDataHooks is a no-op implementation of DataHooks.
type NoopDataHooks struct{}

func (NoopDataHooks) OnFetchStart(context.Context, string, string) {}
func (NoopDataHooks) OnFetchComplete(context.Context, string, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopFeedHooks is a no-op implementation of FeedHooks.
type NoopFeedHooks struct{}

func (NoopFeedHooks) OnSubscribe(string)    {}
func (NoopFeedHooks) OnRecord(string)       {}
func (NoopFeedHooks) OnUnsubscribe(string)  {}
func (NoopFeedHooks) OnError(string, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	dataHooks   DataHooks   = NoopDataHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	feedHooks   FeedHooks   = NoopFeedHooks{}
	hooksMu     sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetDataHooks registers custom data source hooks.
func SetDataHooks(h DataHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		dataHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetFeedHooks registers custom feed hooks.
func SetFeedHooks(h FeedHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		feedHooks = h
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Data returns the registered data source hooks.
func Data() DataHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return dataHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Feed returns the registered feed hooks.
func Feed() FeedHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return feedHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	layoutHooks = NoopLayoutHooks{}
	dataHooks = NoopDataHooks{}
	cacheHooks = NoopCacheHooks{}
	feedHooks = NoopFeedHooks{}
}
