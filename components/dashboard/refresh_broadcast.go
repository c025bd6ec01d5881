package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	subscriberBuffer = 8
	socketWriteWait  = 10 * time.Second
	socketPingEvery  = 30 * time.Second
)

// BroadcastHook fans widget events out to the open dashboard tabs that
// subscribed over WebSocket or SSE. Slow subscribers drop events rather
// than blocking the publisher.
type BroadcastHook struct {
	mu     sync.RWMutex
	subs   map[int]chan WidgetEvent
	next   int
	closed bool
}

// NewBroadcastHook creates an empty hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{subs: make(map[int]chan WidgetEvent)}
}

// WidgetUpdated satisfies RefreshHook and delivers the event to every
// live subscriber.
func (h *BroadcastHook) WidgetUpdated(ctx context.Context, event WidgetEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe registers a listener and returns its event channel plus a
// cancel func. Cancel is idempotent; after Close the channel arrives
// already closed.
func (h *BroadcastHook) Subscribe() (<-chan WidgetEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		ch := make(chan WidgetEvent)
		close(ch)
		return ch, func() {}
	}
	id := h.next
	h.next++
	ch := make(chan WidgetEvent, subscriberBuffer)
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Subscribers reports how many listeners are currently registered.
func (h *BroadcastHook) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber and rejects future subscriptions.
func (h *BroadcastHook) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// RefreshEnvelope is the wire shape streamed to browsers. Every push
// transport (WebSocket, SSE, router adapters) shares it.
type RefreshEnvelope struct {
	Area         string `json:"area"`
	WidgetID     string `json:"widget_id"`
	DefinitionID string `json:"definition_id"`
	Reason       string `json:"reason"`
}

// EnvelopeOf flattens a widget event for the wire.
func EnvelopeOf(event WidgetEvent) RefreshEnvelope {
	return RefreshEnvelope{
		Area:         event.AreaCode,
		WidgetID:     event.Instance.ID,
		DefinitionID: event.Instance.DefinitionID,
		Reason:       event.Reason,
	}
}

// Same-origin enforcement is left to the host; the dashboard may be
// mounted behind any hostname.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams widget events as JSON
// envelopes. Pings keep intermediaries from dropping idle connections.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe()
	defer cancel()

	ticker := time.NewTicker(socketPingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
			if err := conn.WriteJSON(EnvelopeOf(event)); err != nil {
				return
			}
		}
	}
}

// ServeSSE streams widget events as Server-Sent Events named "widget".
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, cancel := h.Subscribe()
	defer cancel()

	encoder := json.NewEncoder(w)
	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			w.Write([]byte("event: widget\ndata: "))
			if err := encoder.Encode(EnvelopeOf(event)); err != nil {
				return
			}
			w.Write([]byte("\n"))
			flusher.Flush()
		}
	}
}
