// Package metrics provides Prometheus metrics for the birdie count service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// fetchBuckets cover feed latencies from a fast cache hit to the client timeout.
var fetchBuckets = []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000} //nolint:gochecknoglobals // static bucket layout

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Poll pipeline
	pollCycles      *prometheus.CounterVec
	fetchRequests   *prometheus.CounterVec
	fetchLatency    prometheus.Histogram
	sessionsStarted prometheus.Counter
	sessionsStopped prometheus.Counter
	discardedCycles prometheus.Counter

	// Published board
	birdies       prometheus.Gauge
	eagles        prometheus.Gauge
	totalDeployed prometheus.Gauge
	engineState   *prometheus.GaugeVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     prometheus.Counter

	// Config
	configReloads *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "birdiecount",
		subsystem:        "board",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// RefreshInterval is how often callers should refresh sampled gauges.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// Enabled reports whether recording is active.
func (m *Manager) Enabled() bool { return m.enabled }

func (m *Manager) name(n string) string { return m.metricPrefix + n }

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collector definitions
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.pollCycles = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("poll_cycles_total"),
		Help: "Completed poll cycles by decision rule",
	}, []string{"rule"})

	m.fetchRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("feed_requests_total"),
		Help: "Hole-by-hole feed requests by outcome",
	}, []string{"outcome"})

	m.fetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("feed_request_duration_milliseconds"),
		Help:    "Feed request latency in milliseconds",
		Buckets: fetchBuckets,
	})

	m.sessionsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("sessions_started_total"),
		Help: "Polling sessions started",
	})

	m.sessionsStopped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("sessions_stopped_total"),
		Help: "Polling sessions torn down",
	})

	m.discardedCycles = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("discarded_cycles_total"),
		Help: "Cycles whose result arrived after the session was stopped",
	})

	m.birdies = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("birdies"),
		Help: "Birdies on the published score",
	})

	m.eagles = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("eagles"),
		Help: "Eagles on the published score",
	})

	m.totalDeployed = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("balls_deployed"),
		Help: "Balls deployed on the published score (birdies + 2*eagles)",
	})

	m.engineState = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("engine_state"),
		Help: "1 for the current engine state, 0 for the others",
	}, []string{"state"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("http_requests_total"),
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("http_request_duration_milliseconds"),
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRateLimited = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("http_rate_limited_total"),
		Help: "Requests rejected by the per-IP rate limiter",
	})

	m.configReloads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("config_reloads_total"),
		Help: "Config file reloads by result",
	}, []string{"result"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("system_memory_usage_bytes"),
		Help: "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("system_goroutine_count"),
		Help: "Number of goroutines",
	})
}

// stateLabels are the engine_state label values, one per state kind.
var stateLabels = []string{"idle", "loading", "ready", "error"} //nolint:gochecknoglobals // fixed label set

// RecordPollCycle counts a completed cycle under its decision rule.
func RecordPollCycle(rule string) {
	if !globalManager.enabled {
		return
	}
	globalManager.pollCycles.WithLabelValues(rule).Inc()
}

// RecordFetch records one feed request and its latency.
func RecordFetch(ok bool, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	globalManager.fetchRequests.WithLabelValues(outcome).Inc()
	globalManager.fetchLatency.Observe(latencyMs)
}

// RecordSessionStarted counts a new polling session.
func RecordSessionStarted() {
	if !globalManager.enabled {
		return
	}
	globalManager.sessionsStarted.Inc()
}

// RecordSessionStopped counts a torn-down polling session.
func RecordSessionStopped() {
	if !globalManager.enabled {
		return
	}
	globalManager.sessionsStopped.Inc()
}

// RecordDiscardedCycle counts a late result dropped after teardown.
func RecordDiscardedCycle() {
	if !globalManager.enabled {
		return
	}
	globalManager.discardedCycles.Inc()
}

// UpdatePublishedScore sets the board gauges.
func UpdatePublishedScore(birdies, eagles int) {
	if !globalManager.enabled {
		return
	}
	globalManager.birdies.Set(float64(birdies))
	globalManager.eagles.Set(float64(eagles))
	globalManager.totalDeployed.Set(float64(birdies + 2*eagles))
}

// UpdateEngineState marks state as current and clears the others.
func UpdateEngineState(state string) {
	if !globalManager.enabled {
		return
	}
	for _, s := range stateLabels {
		v := 0.0
		if s == state {
			v = 1
		}
		globalManager.engineState.WithLabelValues(s).Set(v)
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited counts a rejected request.
func RecordRateLimited() {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRateLimited.Inc()
}

// RecordConfigReload counts a config reload attempt.
func RecordConfigReload(ok bool) {
	if !globalManager.enabled {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	globalManager.configReloads.WithLabelValues(result).Inc()
}

// UpdateSystemMemoryUsage sets memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Configure rebuilds the global manager with opts on a fresh custom registry.
// Call it once at startup, before serving /metrics or recording.
func Configure(opts ...Option) *Manager {
	customRegistry = prometheus.NewRegistry()
	opts = append(opts, WithPrometheusRegistry(customRegistry))
	globalManager = NewManager(opts...)
	return globalManager
}

// Global returns the manager the package-level recorders write to.
func Global() *Manager {
	return globalManager
}
