// Package feed delivers real-time web vitals records.
//
// A [Feed] is subscribed with two callbacks and returns a [Handle]. Records
// arrive on a background goroutine until the handle is stopped or the feed
// fails. Stopping is idempotent, releases the ticker or connection, and
// waits for any in-flight callback: once [Handle.Stop] returns no callback
// runs again.
//
// Callbacks must not block and must not call Stop themselves. Hand the
// record to your event loop (a buffered channel or a tea.Cmd) and return.
package feed

import (
	"context"
	"sync"

	"github.com/matzehuels/vitalsgrid/pkg/vitals"
)

// RecordFunc receives one record.
type RecordFunc func(vitals.Record)

// ErrorFunc receives a terminal feed error. No records follow it.
type ErrorFunc func(error)

// Feed is a source of real-time records.
type Feed interface {
	// Name identifies the feed in logs and hooks.
	Name() string
	// Subscribe starts delivery. ctx bounds connection setup and the
	// lifetime of the subscription.
	Subscribe(ctx context.Context, onRecord RecordFunc, onError ErrorFunc) (*Handle, error)
}

// Handle controls one subscription.
type Handle struct {
	mu      sync.Mutex
	stopped bool

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func newHandle(parent context.Context) (*Handle, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	return &Handle{cancel: cancel, done: make(chan struct{})}, ctx
}

// emit runs fn unless the handle is stopped. It holds the lock while fn
// runs so Stop can wait for it.
func (h *Handle) emit(fn func()) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}
	fn()
	return true
}

// finish marks the delivery goroutine as exited.
func (h *Handle) finish() { close(h.done) }

// Stop ends the subscription and waits for the delivery goroutine to exit.
func (h *Handle) Stop() {
	h.once.Do(func() {
		h.mu.Lock()
		h.stopped = true
		h.mu.Unlock()
		h.cancel()
		<-h.done
	})
}

// Stopped reports whether Stop has been called.
func (h *Handle) Stopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

// Done is closed when the delivery goroutine exits, either after Stop or
// after a terminal error.
func (h *Handle) Done() <-chan struct{} { return h.done }
