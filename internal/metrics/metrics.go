// Package metrics defines the Prometheus instrumentation for the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collection metrics
var (
	// CollectorFetchesTotal tracks upstream fetches by source and status
	CollectorFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_fetches_total",
			Help: "Total upstream data fetches by source (yahoo_chart/yahoo_screener/naver_news/yahoo_news) and status",
		},
		[]string{"source", "status"},
	)

	// CollectorFetchDuration tracks upstream fetch latency by source
	CollectorFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collector_fetch_duration_seconds",
			Help:    "Upstream data fetch duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)

	// NewsItemsCollected tracks collected news items by source
	NewsItemsCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_items_collected_total",
			Help: "Total news items collected by source",
		},
		[]string{"source"},
	)
)

// Analysis metrics
var (
	// AnalyzerRequestsTotal tracks chat-completion calls by kind and status
	AnalyzerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyzer_requests_total",
			Help: "Total chat-completion requests by kind (commentary/refine/title) and status",
		},
		[]string{"kind", "status"},
	)

	// AnalyzerRequestDuration tracks chat-completion latency
	AnalyzerRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analyzer_request_duration_seconds",
			Help:    "Chat-completion request duration in seconds",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 20, 40, 60},
		},
		[]string{"kind"},
	)

	// AnalyzerFallbacksTotal tracks runs that fell back to template content
	AnalyzerFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analyzer_fallbacks_total",
			Help: "Total runs that used the deterministic fallback content",
		},
	)
)

// Publishing metrics
var (
	// PublishAttemptsTotal tracks publish attempts by result
	PublishAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publish_attempts_total",
			Help: "Total blog publish attempts by result (published/dry_run/failed)",
		},
		[]string{"result"},
	)

	// PublishDuration tracks end-to-end publish latency
	PublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "publish_duration_seconds",
			Help:    "Blog publish duration in seconds",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 30},
		},
	)
)

// Scheduler metrics
var (
	// SchedulerRunsTotal tracks scheduled runs by outcome
	SchedulerRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_runs_total",
			Help: "Total scheduled runs by outcome (completed/skipped_quiet/skipped_slot_taken/failed)",
		},
		[]string{"outcome"},
	)

	// SchedulerRunDuration tracks full pipeline run duration
	SchedulerRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scheduler_run_duration_seconds",
			Help:    "Full collect-analyze-publish run duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	// SchedulerNextRunTimestamp exposes the next planned slot as unix seconds
	SchedulerNextRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_next_run_timestamp_seconds",
			Help: "Unix timestamp of the next planned posting slot",
		},
	)
)

// Redis metrics
var (
	// RedisOpsTotal tracks total Redis operations by operation and status
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total Redis operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis operation latency in seconds
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// CircuitBreakerStateChanges tracks circuit breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks current circuit breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)

// Database metrics
var (
	// DBQueryDuration tracks database query duration by query name
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"query"},
	)

	// DBErrorsTotal tracks database errors by query name
	DBErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Total database errors by query",
		},
		[]string{"query"},
	)
)

// Coordination metrics
var (
	// LeaderElections tracks successful leader elections
	LeaderElections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leader_elections_total",
			Help: "Total successful leader elections",
		},
	)

	// IsLeader tracks whether this instance currently holds leadership
	IsLeader = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "is_leader",
			Help: "1 if this instance is the posting leader, 0 otherwise",
		},
	)

	// SlotLocksTotal tracks slot lock acquisitions by result
	SlotLocksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slot_locks_total",
			Help: "Slot lock acquisition attempts by result (acquired/taken/error)",
		},
		[]string{"result"},
	)
)

// Build information
var (
	// BuildInfo is a gauge that always returns 1, with build metadata as labels
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Build information with version, commit, build_time, and go_version labels (value is always 1)",
		},
		[]string{"version", "commit", "build_time", "go_version"},
	)
)

// HTTP request metrics are provided by the echoprometheus middleware:
// http_requests_total{method, path, status} and
// http_request_duration_seconds{method, path}.
// http_errors_total{type} is provided by internal/errors.
