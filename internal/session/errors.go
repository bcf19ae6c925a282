package session

import (
	"errors"
	"fmt"
)

// ErrNoActiveSession is returned when an operation requires an active session.
var ErrNoActiveSession = errors.New("no active session")

// ErrPersistInFlight is returned when a second answer persist is attempted
// while one is still outstanding for the session. Persists must be serialized
// to keep per-question ordering at the collaborator.
var ErrPersistInFlight = errors.New("an answer persist is already in flight")

// StartError reports a failed session start. The state machine stays in
// Unconsented and the user may retry.
type StartError struct {
	Err error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("session start failed: %v", e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// EndError reports a failed session end. The state machine stays Active and
// the user may retry.
type EndError struct {
	Err error
}

func (e *EndError) Error() string {
	return fmt.Sprintf("session end failed: %v", e.Err)
}

func (e *EndError) Unwrap() error { return e.Err }

// PersistError reports a failed answer persist. The local answer record is
// kept optimistically; it is never rolled back.
type PersistError struct {
	QuestionID int
	Err        error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to save answer for question %d: %v", e.QuestionID, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
