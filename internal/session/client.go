package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dhakal07/ai-health-agent/internal/observability"
	"github.com/dhakal07/ai-health-agent/internal/survey"
)

// StartRequest is the session start payload.
type StartRequest struct {
	Locale  string `json:"locale"`
	Consent bool   `json:"consent"`
}

type startResponse struct {
	SessionID string `json:"session_id"`
}

// AnswerRequest is the answer persist payload. MappedOption is the option's
// string label or the literal "none".
type AnswerRequest struct {
	SessionID     string  `json:"session_id"`
	QuestionID    int     `json:"question_id"`
	RawTranscript string  `json:"raw_transcript"`
	MappedOption  string  `json:"mapped_option"`
	Confidence    float64 `json:"confidence"`
}

type endRequest struct {
	SessionID string `json:"session_id"`
}

// SummaryAnswer is one answer echo in the end-of-session summary.
type SummaryAnswer struct {
	QuestionID   int     `json:"question_id"`
	MappedOption string  `json:"mapped_option"`
	Confidence   float64 `json:"confidence"`
}

// Summary is the lightweight per-session aggregate.
type Summary struct {
	Count   int             `json:"count"`
	Answers []SummaryAnswer `json:"answers"`
}

// EndResponse is the session end payload: the summary plus the derived
// analysis.
type EndResponse struct {
	Summary  Summary         `json:"summary"`
	Analysis survey.Analysis `json:"analysis"`
}

// HealthResponse reports collaborator liveness. Diagnostics only; never gates
// the questionnaire flow.
type HealthResponse struct {
	Status string `json:"status"`
	DB     bool   `json:"db"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	OK     bool   `json:"ok"`
	Answer string `json:"answer"`
}

// Client talks to the collaborator API. Every call carries a bounded timeout
// and there are no automatic retries; failures are reported to the caller.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	persistTimeout time.Duration
	healthTimeout  time.Duration
	correlationID  string
	logger         zerolog.Logger
}

// NewClient creates a collaborator client. persistTimeout bounds persistence
// calls (session start/end, answers, chat); healthTimeout bounds liveness
// probes.
func NewClient(baseURL string, persistTimeout, healthTimeout time.Duration) *Client {
	correlationID := observability.NewCorrelationID()
	return &Client{
		baseURL:        baseURL,
		httpClient:     &http.Client{},
		persistTimeout: persistTimeout,
		healthTimeout:  healthTimeout,
		correlationID:  correlationID,
		logger:         observability.WithCorrelationID(correlationID).With().Str("component", "api-client").Logger(),
	}
}

// StartSession creates a session and returns its identifier. An empty
// session_id in a 2xx response is treated as a failure.
func (c *Client) StartSession(ctx context.Context, locale string) (string, error) {
	var resp startResponse
	err := c.postJSON(ctx, c.persistTimeout, "/session/start", StartRequest{Locale: locale, Consent: true}, &resp)
	if err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("session start returned no session_id")
	}
	return resp.SessionID, nil
}

// PostAnswer persists one answer.
func (c *Client) PostAnswer(ctx context.Context, req AnswerRequest) error {
	return c.postJSON(ctx, c.persistTimeout, "/answer", req, nil)
}

// EndSession finishes a session and returns its summary and analysis.
func (c *Client) EndSession(ctx context.Context, sessionID string) (*EndResponse, error) {
	var resp EndResponse
	if err := c.postJSON(ctx, c.persistTimeout, "/session/end", endRequest{SessionID: sessionID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health probes collaborator liveness.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Correlation-ID", c.correlationID)

	var resp HealthResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Chat forwards a free-text message. A chat failure never affects the
// questionnaire state; callers display the error and move on.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var resp chatResponse
	if err := c.postJSON(ctx, c.persistTimeout, "/chat", chatRequest{Message: message}, &resp); err != nil {
		return "", err
	}
	if !resp.OK {
		return "", fmt.Errorf("chat request was rejected")
	}
	return resp.Answer, nil
}

func (c *Client) postJSON(ctx context.Context, timeout time.Duration, path string, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Correlation-ID", c.correlationID)

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", req.URL.Path).Msg("collaborator call failed")
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("collaborator call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("collaborator returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
