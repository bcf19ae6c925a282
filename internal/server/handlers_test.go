package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dhakal07/ai-health-agent/internal/config"
	"github.com/dhakal07/ai-health-agent/internal/observability"
	"github.com/dhakal07/ai-health-agent/internal/store"
)

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*store.Session
	nextID   int
	failing  bool
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*store.Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, locale string, consent bool) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return "", errors.New("connection refused")
	}
	r.nextID++
	id := fmt.Sprintf("session-%d", r.nextID)
	now := time.Now().UTC()
	r.sessions[id] = &store.Session{ID: id, Locale: locale, Consent: consent, StartedAt: now, LastActivity: now}
	return id, nil
}

func (r *fakeSessionRepo) Get(ctx context.Context, id string) (*store.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

func (r *fakeSessionRepo) Touch(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.LastActivity = time.Now().UTC()
	}
	return nil
}

func (r *fakeSessionRepo) Finish(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		now := time.Now().UTC()
		s.FinishedAt = &now
	}
	return nil
}

type fakeAnswerRepo struct {
	mu      sync.Mutex
	answers []store.Answer
	failing bool
}

func (r *fakeAnswerRepo) Create(ctx context.Context, answer *store.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errors.New("connection refused")
	}
	answer.CreatedAt = time.Now().UTC()
	r.answers = append(r.answers, *answer)
	return nil
}

func (r *fakeAnswerRepo) ListBySession(ctx context.Context, sessionID string) ([]store.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return nil, errors.New("connection refused")
	}
	var out []store.Answer
	for _, a := range r.answers {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func newTestServer(sessions *fakeSessionRepo, answers *fakeAnswerRepo) *httptest.Server {
	cfg := &config.Config{AllowedOrigin: "*", MetricsEnabled: false}
	h := NewHandler(sessions, answers, nil)
	return httptest.NewServer(NewRouter(cfg, h, nil))
}

func postJSON(t *testing.T, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	payload, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	var out map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestStartSession(t *testing.T) {
	server := newTestServer(newFakeSessionRepo(), &fakeAnswerRepo{})
	defer server.Close()

	resp, body := postJSON(t, server.URL+"/session/start", map[string]interface{}{
		"locale": "en-US", "consent": true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["session_id"] == "" || body["session_id"] == nil {
		t.Errorf("expected session_id in response, got %v", body)
	}
}

func TestStartSession_StoreDown(t *testing.T) {
	sessions := newFakeSessionRepo()
	sessions.failing = true
	server := newTestServer(sessions, &fakeAnswerRepo{})
	defer server.Close()

	resp, body := postJSON(t, server.URL+"/session/start", map[string]interface{}{})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
	if body["detail"] != "database_unavailable" {
		t.Errorf("detail = %v, want database_unavailable", body["detail"])
	}
}

func TestPostAnswer(t *testing.T) {
	sessions := newFakeSessionRepo()
	answers := &fakeAnswerRepo{}
	server := newTestServer(sessions, answers)
	defer server.Close()

	_, startBody := postJSON(t, server.URL+"/session/start", map[string]interface{}{})
	sessionID := startBody["session_id"].(string)

	resp, body := postJSON(t, server.URL+"/answer", map[string]interface{}{
		"session_id":     sessionID,
		"question_id":    1,
		"raw_transcript": "I definitely agree",
		"mapped_option":  "Definitely Agree",
		"confidence":     0.9,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["ok"] != true {
		t.Errorf("expected ok=true, got %v", body)
	}

	answers.mu.Lock()
	defer answers.mu.Unlock()
	if len(answers.answers) != 1 {
		t.Fatalf("stored answers = %d, want 1", len(answers.answers))
	}
	if answers.answers[0].MappedOption != "Definitely Agree" {
		t.Errorf("mapped option = %q", answers.answers[0].MappedOption)
	}
}

func TestPostAnswer_MissingSession(t *testing.T) {
	server := newTestServer(newFakeSessionRepo(), &fakeAnswerRepo{})
	defer server.Close()

	resp, _ := postJSON(t, server.URL+"/answer", map[string]interface{}{
		"question_id": 1,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestEndSession_SummaryAndAnalysis(t *testing.T) {
	sessions := newFakeSessionRepo()
	answers := &fakeAnswerRepo{}
	server := newTestServer(sessions, answers)
	defer server.Close()

	_, startBody := postJSON(t, server.URL+"/session/start", map[string]interface{}{})
	sessionID := startBody["session_id"].(string)

	posted := []map[string]interface{}{
		{"question_id": 1, "mapped_option": "Definitely Agree", "confidence": 0.9},
		{"question_id": 2, "mapped_option": "none", "confidence": 0.0},
		{"question_id": 3, "mapped_option": "none", "confidence": 0.0},
		{"question_id": 4, "mapped_option": "none", "confidence": 0.0},
	}
	for _, p := range posted {
		p["session_id"] = sessionID
		postJSON(t, server.URL+"/answer", p)
	}

	resp, body := postJSON(t, server.URL+"/session/end", map[string]interface{}{
		"session_id": sessionID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	summary := body["summary"].(map[string]interface{})
	if summary["count"].(float64) != 4 {
		t.Errorf("summary count = %v, want 4", summary["count"])
	}

	analysis := body["analysis"].(map[string]interface{})
	if analysis["total"].(float64) != 1 {
		t.Errorf("analysis total = %v, want 1 (skips excluded)", analysis["total"])
	}
	if analysis["score"].(float64) != 1 {
		t.Errorf("analysis score = %v, want 1", analysis["score"])
	}
	if analysis["ratio"].(float64) != 1.0 {
		t.Errorf("analysis ratio = %v, want 1.0", analysis["ratio"])
	}

	// The session document is marked finished.
	s, err := sessions.Get(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("session lookup failed: %v", err)
	}
	if s.FinishedAt == nil {
		t.Error("expected finished_at to be set")
	}
}

func TestListAnswers(t *testing.T) {
	sessions := newFakeSessionRepo()
	answers := &fakeAnswerRepo{}
	server := newTestServer(sessions, answers)
	defer server.Close()

	_, startBody := postJSON(t, server.URL+"/session/start", map[string]interface{}{})
	sessionID := startBody["session_id"].(string)
	postJSON(t, server.URL+"/answer", map[string]interface{}{
		"session_id": sessionID, "question_id": 1, "mapped_option": "Slightly Agree",
	})

	resp, err := http.Get(server.URL + "/session/" + sessionID + "/answers")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&body)
	if body["ok"] != true {
		t.Errorf("expected ok=true, got %v", body)
	}
	if len(body["answers"].([]interface{})) != 1 {
		t.Errorf("answers = %v, want 1 entry", body["answers"])
	}
}

func TestListAnswers_UnknownSession(t *testing.T) {
	server := newTestServer(newFakeSessionRepo(), &fakeAnswerRepo{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/session/nope/answers")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestChatEndpoint(t *testing.T) {
	server := newTestServer(newFakeSessionRepo(), &fakeAnswerRepo{})
	defer server.Close()

	resp, body := postJSON(t, server.URL+"/chat", map[string]string{"message": "I can't sleep"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["ok"] != true {
		t.Errorf("expected ok=true, got %v", body)
	}
	if body["answer"] == "" || body["answer"] == nil {
		t.Error("expected a chat answer")
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(newFakeSessionRepo(), &fakeAnswerRepo{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&body)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
}

func TestLivenessEndpoint(t *testing.T) {
	server := newTestServer(newFakeSessionRepo(), &fakeAnswerRepo{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&body)
	if body["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", body["status"])
	}
}

func TestReadinessEndpoint_DependencyDown(t *testing.T) {
	cfg := &config.Config{AllowedOrigin: "*"}
	h := NewHandler(newFakeSessionRepo(), &fakeAnswerRepo{}, nil)
	checks := map[string]observability.HealthCheckFunc{
		"mongodb": func(ctx context.Context) (bool, error) {
			return false, errors.New("connection refused")
		},
	}
	server := httptest.NewServer(NewRouter(cfg, h, checks))
	defer server.Close()

	resp, err := http.Get(server.URL + "/ready")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}

	var body map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&body)
	if body["status"] != "not_ready" {
		t.Errorf("status = %v, want not_ready", body["status"])
	}
}

func TestCORSPreflight(t *testing.T) {
	server := newTestServer(newFakeSessionRepo(), &fakeAnswerRepo{})
	defer server.Close()

	req, _ := http.NewRequest(http.MethodOptions, server.URL+"/session/start", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS header")
	}
}
