package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dhakal07/ai-health-agent/internal/config"
	"github.com/dhakal07/ai-health-agent/internal/observability"
)

// NewRouter builds the API router. checks feed the readiness endpoint.
func NewRouter(cfg *config.Config, h *Handler, checks map[string]observability.HealthCheckFunc) http.Handler {
	r := mux.NewRouter()

	r.Use(corsMiddleware(cfg.AllowedOrigin))
	r.Use(requestLogMiddleware)
	r.Use(metricsMiddleware)

	r.HandleFunc("/session/start", h.StartSession).Methods("POST", "OPTIONS")
	r.HandleFunc("/answer", h.PostAnswer).Methods("POST", "OPTIONS")
	r.HandleFunc("/session/{id}/answers", h.ListAnswers).Methods("GET", "OPTIONS")
	r.HandleFunc("/session/end", h.EndSession).Methods("POST", "OPTIONS")
	r.HandleFunc("/chat", h.Chat).Methods("POST", "OPTIONS")

	r.HandleFunc("/health", healthHandler(checks)).Methods("GET")
	r.HandleFunc("/healthz", observability.HealthCheckHandler("health-agent-api")).Methods("GET")
	r.HandleFunc("/ready", observability.ReadinessHandler("health-agent-api", checks)).Methods("GET")

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	return r
}

// healthHandler reports API liveness plus a best-effort db flag without
// hanging; it never gates the questionnaire flow.
func healthHandler(checks map[string]observability.HealthCheckFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbOK := true
		if check, ok := checks["mongodb"]; ok && check != nil {
			healthy, err := check(r.Context())
			dbOK = healthy && err == nil
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "db": dbOK})
	}
}

func corsMiddleware(origin string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogMiddleware tags each request log line with the caller-supplied
// correlation id, generating one when the header is absent.
func requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := observability.WithCorrelationID(r.Header.Get("X-Correlation-ID"))
		next.ServeHTTP(w, r)
		logger.Debug().Str("path", r.URL.Path).Str("method", r.Method).Msg("request handled")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		observability.RecordRequest(path, r.Method, strconv.Itoa(rec.status), time.Since(start))
	})
}
