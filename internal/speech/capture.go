package speech

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dhakal07/ai-health-agent/internal/observability"
)

// Callbacks receives capture events. Nil callbacks are skipped. All callbacks
// are invoked from a single consumer goroutine, one at a time.
type Callbacks struct {
	// OnPartial receives interim transcript hypotheses, informational only.
	OnPartial func(text string)
	// OnFinal receives each complete transcript together with the backend's
	// reported confidence.
	OnFinal func(text string, confidence float64)
	// OnListening receives the listening state transition on start and on
	// natural end.
	OnListening func(listening bool)
	// OnError receives backend-reported recognition failures.
	OnError func(code ErrorCode)
}

// Capture bridges a streaming Recognizer to discrete callback events and owns
// the idle timer that drives the supportive prompter. Each Capture instance
// owns its own timer state; there are no process-wide singletons.
type Capture struct {
	rec      Recognizer
	prompter *Prompter
	cb       Callbacks
	logger   zerolog.Logger

	mu        sync.Mutex
	listening bool
	done      chan struct{}
}

// NewCapture wraps a recognizer. The prompter may be nil when idle prompts are
// not wanted (tests, manual mode).
func NewCapture(rec Recognizer, prompter *Prompter, cb Callbacks) *Capture {
	return &Capture{
		rec:      rec,
		prompter: prompter,
		cb:       cb,
		logger:   observability.WithComponent("capture"),
	}
}

// Start begins capture. Starting while already listening is a no-op. Returns
// ErrUnsupported when no recognition backend is available; callers must treat
// that as a display-only condition, not a fatal one.
func (c *Capture) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.listening {
		c.mu.Unlock()
		return nil
	}
	if c.rec == nil {
		c.mu.Unlock()
		return ErrUnsupported
	}
	c.mu.Unlock()

	if err := c.rec.Start(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	c.listening = true
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	c.logger.Debug().Msg("capture started")
	if c.cb.OnListening != nil {
		c.cb.OnListening(true)
	}
	c.armIdle()

	go c.consume(done)
	return nil
}

// Stop requests termination. The idle timer is cancelled first, without
// waiting for any in-flight recognition callback. Idempotent when not
// capturing.
func (c *Capture) Stop() error {
	c.mu.Lock()
	if !c.listening {
		c.mu.Unlock()
		return nil
	}
	c.listening = false
	c.mu.Unlock()

	if c.prompter != nil {
		c.prompter.Cancel()
	}

	err := c.rec.Stop()

	c.logger.Debug().Msg("capture stopped")
	if c.cb.OnListening != nil {
		c.cb.OnListening(false)
	}
	return err
}

// Listening reports whether a capture session is active.
func (c *Capture) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listening
}

// Wait blocks until the current capture session's event stream has drained.
// Returns immediately when no session ran.
func (c *Capture) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (c *Capture) consume(done chan struct{}) {
	defer close(done)

	for ev := range c.rec.Events() {
		switch ev.Kind {
		case EventPartial:
			if c.cb.OnPartial != nil {
				c.cb.OnPartial(ev.Text)
			}

		case EventFinal:
			// Every final transcript resets the idle countdown.
			c.armIdle()
			c.logger.Debug().Str("transcript", ev.Text).Float64("confidence", ev.Confidence).Msg("final transcript")
			if c.cb.OnFinal != nil {
				c.cb.OnFinal(ev.Text, ev.Confidence)
			}

		case EventError:
			c.logger.Warn().Str("code", string(ev.Code)).Msg("recognition error")
			if c.cb.OnError != nil {
				c.cb.OnError(ev.Code)
			}

		case EventEnd:
			// Stream close follows; handled below.
		}
	}

	c.finish()
}

// finish handles a backend-driven end of speech. When Stop already ran the
// listening transition was emitted there and this is a no-op.
func (c *Capture) finish() {
	c.mu.Lock()
	wasListening := c.listening
	c.listening = false
	c.mu.Unlock()

	if !wasListening {
		return
	}

	if c.prompter != nil {
		c.prompter.Cancel()
	}
	c.logger.Debug().Msg("capture ended by backend")
	if c.cb.OnListening != nil {
		c.cb.OnListening(false)
	}
}

func (c *Capture) armIdle() {
	if c.prompter != nil {
		c.prompter.Arm()
	}
}
