// Package metrics provides Prometheus metrics for the WolfWise collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultRefreshInterval = 10 * time.Second

// Manager owns every collector the service exposes.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Lineup reconstruction
	gamesProcessed   prometheus.Counter
	gamesFailed      prometheus.Counter
	snapshotsEmitted prometheus.Counter
	lineupAnomalies  *prometheus.CounterVec
	lineupRepairs    prometheus.Counter

	// Sources
	fetchLatency *prometheus.HistogramVec
	fetchErrors  *prometheus.CounterVec
	fetchRetries *prometheus.CounterVec

	// Sinks
	sinkRows    *prometheus.CounterVec
	sinkLatency *prometheus.HistogramVec
	sinkErrors  *prometheus.CounterVec

	// Jobs
	jobRuns     *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec

	// Queue and workers
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors prometheus.Counter
	workerCount        prometheus.Gauge
	workerLatency      prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps the default Go collectors out of the exposition.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "wolfwise",
		subsystem:        "etl",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// RefreshInterval reports how often gauge updaters should run.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: m.histogramBuckets, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: m.histogramBuckets, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.gamesProcessed = m.counter("games_processed_total", "Games whose lineups were reconstructed and stored")
	m.gamesFailed = m.counter("games_failed_total", "Games that could not be processed")
	m.snapshotsEmitted = m.counter("lineup_snapshots_total", "Lineup snapshots emitted by the reconstructor")
	m.lineupAnomalies = m.counterVec("lineup_anomalies_total", "Substitution events skipped as anomalies", "kind")
	m.lineupRepairs = m.counter("lineup_repairs_total", "Lineups rebuilt from the recent-in ledger")

	m.fetchLatency = m.histogramVec("fetch_latency_milliseconds", "Source request latency in milliseconds", "source")
	m.fetchErrors = m.counterVec("fetch_errors_total", "Source requests that failed after retries", "source")
	m.fetchRetries = m.counterVec("fetch_retries_total", "Source request retries", "source")

	m.sinkRows = m.counterVec("sink_rows_written_total", "Rows inserted into the sink", "table")
	m.sinkLatency = m.histogramVec("sink_write_latency_milliseconds", "Replace-partition latency in milliseconds", "table")
	m.sinkErrors = m.counterVec("sink_errors_total", "Failed replace-partition writes", "table")

	m.jobRuns = m.counterVec("job_runs_total", "Collector runs by outcome", "job", "status")
	m.jobDuration = m.histogramVec("job_duration_milliseconds", "Collector run duration in milliseconds", "job")

	m.queueSize = m.gauge("queue_size", "Jobs waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Queue capacity")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Jobs rejected by a full or closed queue")
	m.workerCount = m.gauge("worker_count", "Running workers")
	m.workerLatency = m.histogram("worker_processing_latency_milliseconds", "Time a worker spends on one job")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		"endpoint", "method", "status_code")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes in use")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
}

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }

// RecordGameProcessed counts a stored game and its reconstruction output.
func RecordGameProcessed(snapshots, repairs int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.gamesProcessed.Inc()
		globalManager.snapshotsEmitted.Add(float64(snapshots))
		globalManager.lineupRepairs.Add(float64(repairs))
	}
}

// RecordGameFailed counts a game that could not be processed.
func RecordGameFailed() {
	if globalManager != nil && globalManager.enabled {
		globalManager.gamesFailed.Inc()
	}
}

// RecordLineupAnomaly counts a skipped substitution by kind.
func RecordLineupAnomaly(kind string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.lineupAnomalies.WithLabelValues(kind).Inc()
	}
}

// RecordFetch records the latency of a source request and whether it failed.
func RecordFetch(source string, took time.Duration, err error) {
	if globalManager == nil || !globalManager.enabled {
		return
	}
	globalManager.fetchLatency.WithLabelValues(source).Observe(ms(took))
	if err != nil {
		globalManager.fetchErrors.WithLabelValues(source).Inc()
	}
}

// RecordFetchRetry counts a retried source request.
func RecordFetchRetry(source string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.fetchRetries.WithLabelValues(source).Inc()
	}
}

// RecordSinkWrite records a replace-partition write.
func RecordSinkWrite(table string, rows int, took time.Duration, err error) {
	if globalManager == nil || !globalManager.enabled {
		return
	}
	globalManager.sinkLatency.WithLabelValues(table).Observe(ms(took))
	if err != nil {
		globalManager.sinkErrors.WithLabelValues(table).Inc()
		return
	}
	globalManager.sinkRows.WithLabelValues(table).Add(float64(rows))
}

// RecordJobRun records a collector run.
func RecordJobRun(job string, took time.Duration, err error) {
	if globalManager == nil || !globalManager.enabled {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	globalManager.jobRuns.WithLabelValues(job, status).Inc()
	globalManager.jobDuration.WithLabelValues(job).Observe(ms(took))
}

// UpdateQueueSize sets the current queue depth.
func UpdateQueueSize(size int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError() {
	if globalManager != nil && globalManager.enabled {
		globalManager.queueEnqueueErrors.Inc()
	}
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.workerCount.Set(float64(count))
	}
}

// RecordWorkerProcessingLatency records how long a worker spent on a job.
func RecordWorkerProcessingLatency(took time.Duration) {
	if globalManager != nil && globalManager.enabled {
		globalManager.workerLatency.Observe(ms(took))
	}
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// UpdateSystemMemoryUsage sets heap bytes in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Global returns the global manager.
func Global() *Manager {
	return globalManager
}
