package feed

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/vitalsgrid/pkg/errors"
	"github.com/matzehuels/vitalsgrid/pkg/observability"
	"github.com/matzehuels/vitalsgrid/pkg/vitals"
)

// WebSocket reads JSON records from a vitalsgrid server's /ws/feed
// endpoint. There is no automatic reconnect; a dropped connection ends the
// subscription with a FEED_DISCONNECTED error.
type WebSocket struct {
	URL    string
	Header http.Header
	// HandshakeTimeout defaults to 10s.
	HandshakeTimeout time.Duration
}

// NewWebSocket returns a client for url (ws:// or wss://).
func NewWebSocket(url string) *WebSocket {
	return &WebSocket{URL: url}
}

func (w *WebSocket) Name() string { return "websocket" }

func (w *WebSocket) Subscribe(ctx context.Context, onRecord RecordFunc, onError ErrorFunc) (*Handle, error) {
	if err := errors.ValidateURL(w.URL); err != nil {
		return nil, err
	}
	timeout := w.HandshakeTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dialer := websocket.Dialer{HandshakeTimeout: timeout}

	conn, _, err := dialer.DialContext(ctx, w.URL, w.Header)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFeedDisconnected, err, "WebSocket connection error")
	}

	h, ctx := newHandle(ctx)
	hooks := observability.Feed()
	hooks.OnSubscribe(w.Name())

	// closing the connection unblocks ReadJSON
	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	go func() {
		defer h.finish()
		defer hooks.OnUnsubscribe(w.Name())

		for {
			var rec vitals.Record
			if err := conn.ReadJSON(&rec); err != nil {
				if ctx.Err() != nil {
					return
				}
				ferr := errors.Wrap(errors.ErrCodeFeedDisconnected, err, "WebSocket connection error")
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					ferr = errors.Wrap(errors.ErrCodeFeedDisconnected, err, "WebSocket closed by server")
				}
				if h.emit(func() { onError(ferr) }) {
					hooks.OnError(w.Name(), ferr)
				}
				h.cancel()
				return
			}
			if h.emit(func() { onRecord(rec) }) {
				hooks.OnRecord(w.Name())
			}
		}
	}()
	return h, nil
}

var _ Feed = (*WebSocket)(nil)
