package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dhakal07/ai-health-agent/internal/observability"
	"github.com/dhakal07/ai-health-agent/internal/survey"
)

// State is the session lifecycle state.
type State int

const (
	// StateUnconsented is the mandatory initial state; no collaborator call
	// has been made yet.
	StateUnconsented State = iota
	// StateActive means a session identifier was issued and answers may be
	// recorded.
	StateActive
	// StateEnded is terminal; starting over requires a fresh controller.
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateUnconsented:
		return "unconsented"
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Controller orchestrates the session lifecycle against the collaborator and
// routes confirmed answers to persistence. Collaborator failures are returned
// as typed errors and never mutate state.
type Controller struct {
	client *Client
	logger zerolog.Logger

	mu        sync.Mutex
	state     State
	sessionID string
	summary   *EndResponse
	inflight  bool
}

// NewController creates a controller in the Unconsented state.
func NewController(client *Client) *Controller {
	return &Controller{
		client: client,
		logger: observability.WithComponent("session"),
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SessionID returns the identifier issued by the collaborator, empty before
// Begin succeeds.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Summary returns the aggregate stored by End, nil before the session ended.
func (c *Controller) Summary() *EndResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary
}

// Begin starts a session with the collaborator. On success the state moves
// Unconsented -> Active and any previous summary is cleared. On failure a
// StartError is returned and the state stays Unconsented so the user may
// retry.
func (c *Controller) Begin(ctx context.Context, locale string) error {
	c.mu.Lock()
	if c.state != StateUnconsented {
		c.mu.Unlock()
		return &StartError{Err: fmt.Errorf("cannot begin from state %s", c.state)}
	}
	c.mu.Unlock()

	sessionID, err := c.client.StartSession(ctx, locale)
	if err != nil {
		c.logger.Warn().Err(err).Msg("session start failed")
		return &StartError{Err: err}
	}

	c.mu.Lock()
	c.state = StateActive
	c.sessionID = sessionID
	c.summary = nil
	c.logger = observability.WithSession(sessionID).With().Str("component", "session").Logger()
	c.mu.Unlock()

	c.logger.Info().Str("locale", locale).Msg("session started")
	return nil
}

// RecordAnswer persists one confirmed answer. Valid only while Active with a
// session identifier. A one-slot guard serializes persists per session so the
// collaborator observes answers in confirm order; a second call while one is
// in flight returns ErrPersistInFlight. On PersistError the local answer
// record is kept; nothing is rolled back.
func (c *Controller) RecordAnswer(ctx context.Context, answer survey.Answer) error {
	c.mu.Lock()
	if c.state != StateActive || c.sessionID == "" {
		c.mu.Unlock()
		return ErrNoActiveSession
	}
	if c.inflight {
		c.mu.Unlock()
		return ErrPersistInFlight
	}
	c.inflight = true
	sessionID := c.sessionID
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inflight = false
		c.mu.Unlock()
	}()

	req := AnswerRequest{
		SessionID:     sessionID,
		QuestionID:    answer.QuestionID,
		RawTranscript: answer.Transcript,
		MappedOption:  answer.Option.Label(),
		Confidence:    answer.Confidence,
	}
	if err := c.client.PostAnswer(ctx, req); err != nil {
		c.logger.Warn().Err(err).Int("question_id", answer.QuestionID).Msg("answer persist failed")
		return &PersistError{QuestionID: answer.QuestionID, Err: err}
	}

	c.logger.Debug().
		Int("question_id", answer.QuestionID).
		Str("mapped_option", answer.Option.Label()).
		Msg("answer persisted")
	return nil
}

// End finishes the session. On success the state moves Active -> Ended and the
// returned summary is stored. On failure an EndError is returned and the state
// stays Active so the user may retry.
func (c *Controller) End(ctx context.Context) (*EndResponse, error) {
	c.mu.Lock()
	if c.state != StateActive || c.sessionID == "" {
		c.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	sessionID := c.sessionID
	c.mu.Unlock()

	resp, err := c.client.EndSession(ctx, sessionID)
	if err != nil {
		c.logger.Warn().Err(err).Msg("session end failed")
		return nil, &EndError{Err: err}
	}

	c.mu.Lock()
	c.state = StateEnded
	c.summary = resp
	c.mu.Unlock()

	c.logger.Info().
		Str("session_id", sessionID).
		Int("answer_count", resp.Summary.Count).
		Msg("session ended")
	return resp, nil
}
