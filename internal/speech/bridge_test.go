package speech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func bridgeServer(t *testing.T, events []bridgeEvent) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		for _, ev := range events {
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
		// Keep the connection open until the client closes it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func TestBridge_UnsupportedWhenUnconfigured(t *testing.T) {
	b := NewBridge("")
	if err := b.Start(context.Background()); err != ErrUnsupported {
		t.Fatalf("expected ErrUnsupported, got: %v", err)
	}
}

func TestBridge_StreamsEvents(t *testing.T) {
	server := bridgeServer(t, []bridgeEvent{
		{Kind: "partial", Text: "defini"},
		{Kind: "final", Text: "definitely agree", Confidence: 0.91},
	})
	defer server.Close()

	b := NewBridge(wsURL(server))
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer b.Stop()

	var got []Event
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case ev := <-b.Events():
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("timed out waiting for events, got %v", got)
		}
	}

	if got[0].Kind != EventPartial || got[0].Text != "defini" {
		t.Errorf("event 0 = %+v, want partial 'defini'", got[0])
	}
	if got[1].Kind != EventFinal || got[1].Text != "definitely agree" || got[1].Confidence != 0.91 {
		t.Errorf("event 1 = %+v, want final 'definitely agree' @0.91", got[1])
	}
}

func TestBridge_StopClosesStream(t *testing.T) {
	server := bridgeServer(t, nil)
	defer server.Close()

	b := NewBridge(wsURL(server))
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	if err := b.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	// Second Stop is a no-op.
	if err := b.Stop(); err != nil {
		t.Fatalf("second Stop() should be a no-op, got: %v", err)
	}

	// The event channel must drain to EventEnd and close.
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-b.Events():
			if !ok {
				return
			}
			if ev.Kind == EventError {
				t.Errorf("unexpected error event after clean stop: %+v", ev)
			}
		case <-timeout:
			t.Fatal("event channel never closed after Stop")
		}
	}
}

func TestBridge_ErrorEventMapped(t *testing.T) {
	server := bridgeServer(t, []bridgeEvent{
		{Kind: "error", Code: "no-speech"},
	})
	defer server.Close()

	b := NewBridge(wsURL(server))
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer b.Stop()

	select {
	case ev := <-b.Events():
		if ev.Kind != EventError || ev.Code != CodeNoSpeech {
			t.Errorf("event = %+v, want error/no-speech", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error event")
	}
}
