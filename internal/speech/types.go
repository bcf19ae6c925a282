package speech

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by Start when no recognition backend is available
// in the runtime environment. Callers surface it as a display-only condition
// and continue in manual-select mode.
var ErrUnsupported = errors.New("speech recognition is not available in this environment")

// EventKind identifies the kind of a recognizer event.
type EventKind string

const (
	// EventPartial is an interim transcript hypothesis, informational only.
	EventPartial EventKind = "partial"
	// EventFinal is a transcript marked complete/stable by the backend.
	EventFinal EventKind = "final"
	// EventEnd signals the backend ended the capture session.
	EventEnd EventKind = "end"
	// EventError carries a backend-reported recognition failure.
	EventError EventKind = "error"
)

// ErrorCode identifies a backend-reported recognition failure.
type ErrorCode string

const (
	CodeNoSpeech     ErrorCode = "no-speech"
	CodeAudioCapture ErrorCode = "audio-capture"
	CodeNetwork      ErrorCode = "network"
	CodeAborted      ErrorCode = "aborted"
)

// Event is the normalized recognizer event shape. Any recognition backend that
// produces this shape can drive the capture adapter.
type Event struct {
	Kind       EventKind
	Text       string
	Confidence float64
	Code       ErrorCode
}

// Recognizer is an injected speech-to-text capability.
type Recognizer interface {
	// Start begins recognition. Returns ErrUnsupported when no backend exists.
	Start(ctx context.Context) error

	// Stop requests termination; idempotent when not capturing.
	Stop() error

	// Events delivers partial/final/error events. The channel is closed when
	// the session ends, either by Stop or by a backend-driven end of speech.
	Events() <-chan Event
}

// Utterance is a single spoken message handed to a Synthesizer. The lifecycle
// hooks are optional.
type Utterance struct {
	Text    string
	OnStart func()
	OnEnd   func()
}

// Synthesizer is an injected text-to-speech sink.
type Synthesizer interface {
	Speak(u Utterance) error
}
