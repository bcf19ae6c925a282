package speech

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/dhakal07/ai-health-agent/internal/observability"
)

// bridgeEvent is the wire shape emitted by a recognition bridge: a small JSON
// protocol carrying interim/final transcripts and error codes.
type bridgeEvent struct {
	Kind       string  `json:"kind"` // "partial", "final" or "error"
	Text       string  `json:"text,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Code       string  `json:"code,omitempty"`
}

// Bridge is a Recognizer backed by a remote websocket recognition bridge. The
// bridge owns the microphone and the actual recognition engine; this client
// only consumes its event stream.
type Bridge struct {
	url    string
	logger zerolog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	events chan Event
	active bool
}

// NewBridge creates a websocket bridge recognizer. An empty URL means no
// recognition backend is configured; Start will return ErrUnsupported.
func NewBridge(url string) *Bridge {
	return &Bridge{
		url:    url,
		logger: observability.WithComponent("speech-bridge"),
	}
}

// Start dials the bridge and begins streaming events. Returns ErrUnsupported
// when no bridge URL is configured.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.url == "" {
		return ErrUnsupported
	}
	if b.active {
		return fmt.Errorf("speech bridge is already active")
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, b.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to speech bridge: %w", err)
	}

	b.conn = conn
	b.events = make(chan Event, 16)
	b.active = true

	b.logger.Info().Str("url", b.url).Msg("speech bridge connected")
	go b.readLoop(conn, b.events)
	return nil
}

// Stop closes the bridge connection. Idempotent when not capturing.
func (b *Bridge) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.active {
		return nil
	}
	b.active = false

	deadline := time.Now().Add(time.Second)
	_ = b.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return b.conn.Close()
}

// Events delivers normalized recognizer events. Closed when the session ends.
func (b *Bridge) Events() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.events
}

func (b *Bridge) readLoop(conn *websocket.Conn, events chan Event) {
	defer close(events)

	for {
		var ev bridgeEvent
		if err := conn.ReadJSON(&ev); err != nil {
			b.mu.Lock()
			active := b.active
			b.active = false
			b.mu.Unlock()

			if active && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				b.logger.Warn().Err(err).Msg("speech bridge read failed")
				events <- Event{Kind: EventError, Code: CodeNetwork}
			}
			events <- Event{Kind: EventEnd}
			return
		}

		switch ev.Kind {
		case "partial":
			events <- Event{Kind: EventPartial, Text: ev.Text, Confidence: ev.Confidence}
		case "final":
			events <- Event{Kind: EventFinal, Text: ev.Text, Confidence: ev.Confidence}
		case "error":
			events <- Event{Kind: EventError, Code: ErrorCode(ev.Code)}
		default:
			b.logger.Debug().Str("kind", ev.Kind).Msg("ignoring unknown bridge event")
		}
	}
}
