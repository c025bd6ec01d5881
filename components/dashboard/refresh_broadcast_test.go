package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestBroadcastHookSubscribe(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()

	event := WidgetEvent{
		AreaCode: AreaMain,
		Instance: WidgetInstance{ID: "w1", DefinitionID: WidgetTopArtists},
		Reason:   "refreshed",
	}
	if err := hook.WidgetUpdated(context.Background(), event); err != nil {
		t.Fatalf("WidgetUpdated returned error: %v", err)
	}
	select {
	case got := <-ch:
		if got.AreaCode != AreaMain || got.Instance.ID != "w1" {
			t.Fatalf("unexpected event delivered: %#v", got)
		}
	default:
		t.Fatal("expected event to be delivered")
	}
}

func TestBroadcastHookDropsWhenSubscriberIsFull(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+3; i++ {
		if err := hook.WidgetUpdated(context.Background(), WidgetEvent{Reason: "burst"}); err != nil {
			t.Fatalf("WidgetUpdated returned error: %v", err)
		}
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	if received != subscriberBuffer {
		t.Fatalf("expected %d buffered events, got %d", subscriberBuffer, received)
	}
}

func TestBroadcastHookCancelStopsDelivery(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	cancel()
	cancel()

	if err := hook.WidgetUpdated(context.Background(), WidgetEvent{Reason: "late"}); err != nil {
		t.Fatalf("WidgetUpdated returned error: %v", err)
	}
	if _, ok := <-ch; ok {
		t.Fatal("expected channel closed after cancel")
	}
	if hook.Subscribers() != 0 {
		t.Fatalf("expected no subscribers, got %d", hook.Subscribers())
	}
}

func TestBroadcastHookClose(t *testing.T) {
	hook := NewBroadcastHook()
	ch, _ := hook.Subscribe()
	hook.Close()

	if _, ok := <-ch; ok {
		t.Fatal("expected subscriber channel closed")
	}
	late, cancel := hook.Subscribe()
	defer cancel()
	if _, ok := <-late; ok {
		t.Fatal("expected closed channel for late subscriber")
	}
}

type flushSignal struct {
	*httptest.ResponseRecorder
	flushed chan struct{}
	once    sync.Once
}

func (f *flushSignal) Flush() {
	f.ResponseRecorder.Flush()
	f.once.Do(func() { close(f.flushed) })
}

func TestBroadcastHookServeSSE(t *testing.T) {
	hook := NewBroadcastHook()
	ctx, stop := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/dashboard/events", nil).WithContext(ctx)
	rec := &flushSignal{
		ResponseRecorder: httptest.NewRecorder(),
		flushed:          make(chan struct{}),
	}

	done := make(chan struct{})
	go func() {
		hook.ServeSSE(rec, req)
		close(done)
	}()

	waitForSubscribers(t, hook, 1)
	event := WidgetEvent{
		AreaCode: AreaSidebar,
		Instance: WidgetInstance{ID: "w9", DefinitionID: WidgetRecent},
		Reason:   "assigned",
	}
	if err := hook.WidgetUpdated(context.Background(), event); err != nil {
		t.Fatalf("WidgetUpdated returned error: %v", err)
	}

	select {
	case <-rec.flushed:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the event to flush")
	}
	stop()
	<-done

	body := rec.Body.String()
	if !strings.Contains(body, "event: widget") {
		t.Fatalf("expected named SSE event, got %q", body)
	}
	if !strings.Contains(body, `"definition_id":"`+WidgetRecent+`"`) {
		t.Fatalf("expected envelope payload, got %q", body)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("expected SSE content type, got %q", got)
	}
}

func TestBroadcastHookServeWebSocket(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	waitForSubscribers(t, hook, 1)
	event := WidgetEvent{
		AreaCode: AreaMain,
		Instance: WidgetInstance{ID: "w3", DefinitionID: WidgetGenres},
		Reason:   "refreshed",
	}
	if err := hook.WidgetUpdated(context.Background(), event); err != nil {
		t.Fatalf("WidgetUpdated returned error: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var envelope map[string]any
	if err := conn.ReadJSON(&envelope); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if envelope["definition_id"] != WidgetGenres || envelope["area"] != AreaMain {
		t.Fatalf("unexpected envelope: %#v", envelope)
	}
}

func waitForSubscribers(t *testing.T, hook *BroadcastHook, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hook.Subscribers() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d subscribers, got %d", want, hook.Subscribers())
}
