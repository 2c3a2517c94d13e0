// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "search_worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	QueriesParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_queries_parsed_total",
			Help: "Queries parsed, by outcome",
		},
		[]string{"outcome"},
	)

	QueryParseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_query_parse_duration_seconds",
			Help:    "Time spent parsing one query",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	QueryValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_query_validation_failures_total",
			Help: "Queries rejected before extraction, by error code",
		},
		[]string{"code"},
	)

	ParseRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_query_parse_retries_total",
			Help: "Parse attempts retried after a transient failure",
		},
	)

	ParseFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_query_parse_fallbacks_total",
			Help: "Parses that fell back to context-free after exhausting retries",
		},
	)

	AmbiguitiesDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_ambiguities_detected_total",
			Help: "Parse results that needed a clarifying question, by field",
		},
		[]string{"field"},
	)

	Refinements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_refinements_total",
			Help: "Refinement utterances, by result (applied, reset, new_search, no_session)",
		},
		[]string{"result"},
	)

	RefinementOperators = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_refinement_operators_total",
			Help: "Refinement operators extracted, by kind",
		},
		[]string{"kind"},
	)

	SessionEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_session_events_total",
			Help: "Conversation session lifecycle events",
		},
		[]string{"event"},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "search_sessions_active",
			Help: "Conversation sessions currently held in memory",
		},
	)

	SessionsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_sessions_evicted_total",
			Help: "Sessions removed by the periodic expiry sweep",
		},
	)

	ResultCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_result_cache_requests_total",
			Help: "Result cache lookups, by status (hit, miss, bypass, error)",
		},
		[]string{"status"},
	)
)
