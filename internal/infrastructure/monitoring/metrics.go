// Package monitoring collects Prometheus metrics for the dashboard
// backend: HTTP traffic, item mutations, background tasks and WebSocket
// connections.
package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. Each Metrics instance carries its
// own registry so tests can create collectors without colliding.
type Metrics struct {
	Registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Item metrics
	ItemsStored   prometheus.Gauge
	ItemMutations *prometheus.CounterVec

	// Task metrics
	TasksActive prometheus.Gauge
	TasksTotal  *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Snapshot for the JSON stats endpoint
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current metric values for the JSON stats endpoint.
type Snapshot struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	TotalDuration float64 `json:"-"`
	RequestCount  int64   `json:"-"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		Registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backend_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backend_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		ItemsStored: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "backend_items_stored",
				Help: "Number of items in the store",
			},
		),
		ItemMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_item_mutations_total",
				Help: "Total number of item mutations",
			},
			[]string{"operation"},
		),

		TasksActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "backend_tasks_active",
				Help: "Number of pending or running background tasks",
			},
		),
		TasksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_tasks_total",
				Help: "Total number of background tasks started",
			},
			[]string{"type"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "backend_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "backend_uptime_seconds",
				Help: "Backend uptime in seconds",
			},
		),
	}
	return m
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if len(status) > 0 && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordMutation records one item mutation (create, move, copy, ...).
func (m *Metrics) RecordMutation(operation string) {
	m.ItemMutations.WithLabelValues(operation).Inc()
}

// SetItemsStored sets the current item count.
func (m *Metrics) SetItemsStored(count int) {
	m.ItemsStored.Set(float64(count))
}

// RecordTaskStarted records a new background task.
func (m *Metrics) RecordTaskStarted(taskType string) {
	m.TasksTotal.WithLabelValues(taskType).Inc()
}

// SetTasksActive sets the number of in-flight tasks.
func (m *Metrics) SetTasksActive(count int) {
	m.TasksActive.Set(float64(count))
}

// RecordWSMessage records a WebSocket message.
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections.
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections.
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}

// CurrentSnapshot returns current values for the JSON stats endpoint.
func (m *Metrics) CurrentSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := m.snapshot
	if snap.RequestCount > 0 {
		snap.AvgDurationMS = snap.TotalDuration / float64(snap.RequestCount) * 1000
	}
	return snap
}

// UptimeSeconds refreshes and returns the uptime gauge.
func (m *Metrics) UptimeSeconds() float64 {
	uptime := time.Since(m.startTime).Seconds()
	m.Uptime.Set(uptime)
	return uptime
}
