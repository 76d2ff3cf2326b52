// Package metrics provides Prometheus metrics for the tatami ranking service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Data-quality reasons recorded by RecordMatchesFlagged.
const (
	ReasonIncompletePairing  = "incomplete_pairing"
	ReasonWinnerMismatch     = "winner_mismatch"
	ReasonUnknownVictoryType = "unknown_victory_type"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Result entry pipeline
	resultsSubmitted prometheus.Counter
	resultsDuplicate prometheus.Counter
	resultsRejected  *prometheus.CounterVec
	resultsApplied   prometheus.Counter
	applyLatency     prometheus.Histogram

	// Ranking computation
	rankingsComputed *prometheus.CounterVec
	rankingDuration  *prometheus.HistogramVec
	matchesFlagged   *prometheus.CounterVec

	// Operational health
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	workerCount   prometheus.Gauge
	workerErrors  prometheus.Counter
	storePhases   prometheus.Gauge
	storeMatches  prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByComponent   *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tatami",
		subsystem:        "ranking",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics on the configured registry.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.resultsSubmitted = auto.NewCounter(m.counterOpts("results_submitted_total",
		"Result entries accepted into the pipeline"))
	m.resultsDuplicate = auto.NewCounter(m.counterOpts("results_duplicate_total",
		"Result entries dropped as duplicates of an earlier submission"))
	m.resultsRejected = auto.NewCounterVec(m.counterOpts("results_rejected_total",
		"Result entries rejected at the API by reason"), []string{"reason"})
	m.resultsApplied = auto.NewCounter(m.counterOpts("results_applied_total",
		"Result entries written to the match store"))
	m.applyLatency = auto.NewHistogram(m.histogramOpts("result_apply_latency_milliseconds",
		"Time from submission acceptance to the match store write"))

	m.rankingsComputed = auto.NewCounterVec(m.counterOpts("computations_total",
		"Ranking computations by view"), []string{"view"})
	m.rankingDuration = auto.NewHistogramVec(m.histogramOpts("computation_duration_milliseconds",
		"Ranking computation duration by view"), []string{"view"})
	m.matchesFlagged = auto.NewCounterVec(m.counterOpts("matches_flagged_total",
		"Matches flagged by a data-quality condition during a computation"), []string{"reason"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Result entries waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum result entries the queue holds"))
	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Result entry workers running"))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total",
		"Result entries a worker failed to apply"))
	m.storePhases = auto.NewGauge(m.gaugeOpts("store_phases", "Phases held by the match store"))
	m.storeMatches = auto.NewGauge(m.gaugeOpts("store_matches", "Matches held by the match store"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_total",
		"Errors by component and type"), []string{"component", "type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Goroutines running"))
}

// RecordResultSubmitted increments the accepted submissions counter.
func (m *Manager) RecordResultSubmitted() { m.resultsSubmitted.Inc() }

// RecordResultDuplicate increments the duplicate submissions counter.
func (m *Manager) RecordResultDuplicate() { m.resultsDuplicate.Inc() }

// RecordResultRejected counts a submission rejected for reason.
func (m *Manager) RecordResultRejected(reason string) {
	m.resultsRejected.WithLabelValues(reason).Inc()
}

// RecordResultApplied counts a store write and its latency since acceptance.
func (m *Manager) RecordResultApplied(latencyMs float64) {
	m.resultsApplied.Inc()
	m.applyLatency.Observe(latencyMs)
}

// RecordRankingComputed counts a computation of view and its duration.
func (m *Manager) RecordRankingComputed(view string, durationMs float64) {
	m.rankingsComputed.WithLabelValues(view).Inc()
	m.rankingDuration.WithLabelValues(view).Observe(durationMs)
}

// RecordMatchesFlagged adds n flagged matches for reason. n <= 0 is ignored.
func (m *Manager) RecordMatchesFlagged(reason string, n int) {
	if n > 0 {
		m.matchesFlagged.WithLabelValues(reason).Add(float64(n))
	}
}

// Package-level recorders delegate to the global manager.

// RecordResultSubmitted increments the accepted submissions counter.
func RecordResultSubmitted() { globalManager.RecordResultSubmitted() }

// RecordResultDuplicate increments the duplicate submissions counter.
func RecordResultDuplicate() { globalManager.RecordResultDuplicate() }

// RecordResultRejected counts a submission rejected for reason.
func RecordResultRejected(reason string) { globalManager.RecordResultRejected(reason) }

// RecordResultApplied counts a store write and its latency since acceptance.
func RecordResultApplied(latencyMs float64) { globalManager.RecordResultApplied(latencyMs) }

// RecordRankingComputed counts a computation of view and its duration.
func RecordRankingComputed(view string, durationMs float64) {
	globalManager.RecordRankingComputed(view, durationMs)
}

// RecordMatchesFlagged adds n flagged matches for reason.
func RecordMatchesFlagged(reason string, n int) { globalManager.RecordMatchesFlagged(reason, n) }

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// UpdateStoreSize sets the phase and match gauges of the match store.
func UpdateStoreSize(phases, matches int) {
	globalManager.storePhases.Set(float64(phases))
	globalManager.storeMatches.Set(float64(matches))
}

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
