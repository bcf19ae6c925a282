package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session metrics
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "health_agent_active_sessions",
		Help: "Number of questionnaire sessions currently open",
	})

	sessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "health_agent_sessions_started_total",
		Help: "Total number of questionnaire sessions started",
	})

	sessionsEnded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "health_agent_sessions_ended_total",
		Help: "Total number of questionnaire sessions ended",
	})

	// Answer metrics
	answersRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "health_agent_answers_total",
		Help: "Total number of answers recorded",
	}, []string{"option"})

	// Matcher metrics
	matchResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "health_agent_match_results_total",
		Help: "Keyword matcher outcomes",
	}, []string{"outcome"}) // outcome: "matched" or "unmatched"

	// HTTP metrics
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "health_agent_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
	}, []string{"path", "method", "status"})

	// Chat metrics
	chatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "health_agent_chat_requests_total",
		Help: "Total number of chat requests",
	}, []string{"status"})

	// Store metrics
	storeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "health_agent_store_errors_total",
		Help: "Total number of document store failures",
	}, []string{"operation"})

	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "health_agent_cache_requests_total",
		Help: "Session cache lookups",
	}, []string{"result"}) // result: "hit" or "miss"
)

// RecordSessionStart records a new questionnaire session
func RecordSessionStart() {
	activeSessions.Inc()
	sessionsStarted.Inc()
}

// RecordSessionEnd records a finished questionnaire session
func RecordSessionEnd() {
	activeSessions.Dec()
	sessionsEnded.Inc()
}

// RecordAnswer records an answer by its mapped option label
func RecordAnswer(option string) {
	answersRecorded.WithLabelValues(option).Inc()
}

// RecordMatch records a keyword matcher outcome
func RecordMatch(matched bool) {
	outcome := "matched"
	if !matched {
		outcome = "unmatched"
	}
	matchResults.WithLabelValues(outcome).Inc()
}

// RecordRequest records an HTTP request duration
func RecordRequest(path, method, status string, elapsed time.Duration) {
	requestDuration.WithLabelValues(path, method, status).Observe(elapsed.Seconds())
}

// RecordChat records a chat request outcome
func RecordChat(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	chatRequests.WithLabelValues(status).Inc()
}

// RecordStoreError records a document store failure
func RecordStoreError(operation string) {
	storeErrors.WithLabelValues(operation).Inc()
}

// RecordCacheLookup records a session cache lookup result
func RecordCacheLookup(hit bool) {
	result := "hit"
	if !hit {
		result = "miss"
	}
	cacheHits.WithLabelValues(result).Inc()
}
