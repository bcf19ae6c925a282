package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/dhakal07/ai-health-agent/internal/observability"
	"github.com/dhakal07/ai-health-agent/internal/store"
	"github.com/dhakal07/ai-health-agent/internal/survey"
)

// Handler serves the collaborator API consumed by the questionnaire agent.
type Handler struct {
	sessions store.SessionRepo
	answers  store.AnswerRepo
	cache    *store.SessionCache
	logger   zerolog.Logger
}

// NewHandler wires the API handlers. cache may be nil to disable the session
// cache.
func NewHandler(sessions store.SessionRepo, answers store.AnswerRepo, cache *store.SessionCache) *Handler {
	return &Handler{
		sessions: sessions,
		answers:  answers,
		cache:    cache,
		logger:   observability.WithComponent("api"),
	}
}

type startSessionBody struct {
	Locale  string `json:"locale"`
	Consent bool   `json:"consent"`
}

type postAnswerBody struct {
	SessionID     string  `json:"session_id"`
	QuestionID    int     `json:"question_id"`
	RawTranscript string  `json:"raw_transcript"`
	MappedOption  string  `json:"mapped_option"`
	Confidence    float64 `json:"confidence"`
}

type endSessionBody struct {
	SessionID string `json:"session_id"`
}

type chatBody struct {
	Message string `json:"message"`
}

type summaryAnswer struct {
	QuestionID   int     `json:"question_id"`
	MappedOption string  `json:"mapped_option"`
	Confidence   float64 `json:"confidence"`
}

type sessionSummary struct {
	Count   int             `json:"count"`
	Answers []summaryAnswer `json:"answers"`
}

// StartSession creates a session document and returns its identifier.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	body := startSessionBody{Locale: "en-US", Consent: true}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	id, err := h.sessions.Create(r.Context(), body.Locale, body.Consent)
	if err != nil {
		h.logger.Error().Err(err).Msg("session create failed")
		observability.RecordStoreError("session_create")
		writeError(w, http.StatusServiceUnavailable, "database_unavailable")
		return
	}

	if session, err := h.sessions.Get(r.Context(), id); err == nil {
		if err := h.cache.Set(r.Context(), session); err != nil {
			h.logger.Warn().Err(err).Msg("session cache set failed")
		}
	}

	observability.RecordSessionStart()
	writeJSON(w, http.StatusOK, map[string]string{"session_id": id})
}

// PostAnswer stores an answer and refreshes the session's last activity.
func (h *Handler) PostAnswer(w http.ResponseWriter, r *http.Request) {
	var body postAnswerBody
	if err := decodeBody(r, &body); err != nil || body.SessionID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	answer := &store.Answer{
		SessionID:     body.SessionID,
		QuestionID:    body.QuestionID,
		RawTranscript: body.RawTranscript,
		MappedOption:  body.MappedOption,
		Confidence:    body.Confidence,
	}
	if err := h.answers.Create(r.Context(), answer); err != nil {
		h.logger.Error().Err(err).Str("session_id", body.SessionID).Msg("answer create failed")
		observability.RecordStoreError("answer_create")
		writeError(w, http.StatusServiceUnavailable, "database_unavailable")
		return
	}

	if err := h.sessions.Touch(r.Context(), body.SessionID); err != nil {
		// Answer is already stored; a stale last_activity is acceptable.
		h.logger.Warn().Err(err).Str("session_id", body.SessionID).Msg("session touch failed")
	}

	observability.RecordAnswer(body.MappedOption)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ListAnswers returns the answers recorded for a session in creation order.
func (h *Handler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	if _, err := h.lookupSession(r, sessionID); err != nil {
		writeError(w, http.StatusNotFound, "session_not_found")
		return
	}

	answers, err := h.answers.ListBySession(r.Context(), sessionID)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("answer list failed")
		observability.RecordStoreError("answer_list")
		writeError(w, http.StatusServiceUnavailable, "database_unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "answers": answers})
}

// EndSession marks a session finished and returns its summary and the derived
// analysis.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	var body endSessionBody
	if err := decodeBody(r, &body); err != nil || body.SessionID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	answers, err := h.answers.ListBySession(r.Context(), body.SessionID)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", body.SessionID).Msg("answer list failed")
		observability.RecordStoreError("answer_list")
		writeError(w, http.StatusServiceUnavailable, "database_unavailable")
		return
	}

	items := make([]summaryAnswer, 0, len(answers))
	options := make([]survey.Option, 0, len(answers))
	for _, a := range answers {
		items = append(items, summaryAnswer{
			QuestionID:   a.QuestionID,
			MappedOption: a.MappedOption,
			Confidence:   a.Confidence,
		})
		options = append(options, survey.OptionFromLabel(a.MappedOption))
	}

	if err := h.sessions.Finish(r.Context(), body.SessionID); err != nil {
		h.logger.Warn().Err(err).Str("session_id", body.SessionID).Msg("session finish failed")
	}
	if err := h.cache.Delete(r.Context(), body.SessionID); err != nil {
		h.logger.Warn().Err(err).Msg("session cache delete failed")
	}

	observability.RecordSessionEnd()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"summary":  sessionSummary{Count: len(items), Answers: items},
		"analysis": survey.Score(options),
	})
}

// Chat maps a free-text message to a canned triage answer. Chat failures are
// isolated from questionnaire state by design.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var body chatBody
	if err := decodeBody(r, &body); err != nil {
		observability.RecordChat(false)
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	observability.RecordChat(true)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"answer": Triage(body.Message),
	})
}

// lookupSession resolves a session, consulting the cache first.
func (h *Handler) lookupSession(r *http.Request, id string) (*store.Session, error) {
	if session, err := h.cache.Get(r.Context(), id); err == nil {
		observability.RecordCacheLookup(true)
		return session, nil
	}
	observability.RecordCacheLookup(false)

	session, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if err := h.cache.Set(r.Context(), session); err != nil {
		h.logger.Warn().Err(err).Msg("session cache set failed")
	}
	return session, nil
}

func decodeBody(r *http.Request, out interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
