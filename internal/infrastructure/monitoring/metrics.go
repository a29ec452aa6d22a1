package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Session metrics
	SessionsActive prometheus.Gauge
	SessionsTotal  prometheus.Counter
	TabsOpened     prometheus.Counter
	Crashes        prometheus.Counter

	// Script window metrics
	SandboxesActive prometheus.Gauge
	SandboxesTotal  prometheus.Counter
	FramesDrawn     prometheus.Counter
	SandboxErrors   *prometheus.CounterVec

	// Dataset metrics
	DataReloads prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current metric values for the JSON health endpoint
type Snapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	ActiveSessions    int64   `json:"active_sessions"`
	ActiveSandboxes   int64   `json:"active_sandboxes"`
	ActiveConnections int64   `json:"active_connections"`
	Crashes           int64   `json:"crashes"`
	AvgDuration       float64 `json:"avg_duration_seconds"`
	UptimeSeconds     float64 `json:"uptime_seconds"`

	totalDuration float64
}

// NewMetrics creates a metrics collector registered on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portfolio_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portfolio_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portfolio_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "portfolio_sessions_active",
			Help: "Number of live visitor sessions",
		}),
		SessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_sessions_total",
			Help: "Total number of visitor sessions created",
		}),
		TabsOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_tabs_opened_total",
			Help: "Total number of editor tabs opened",
		}),
		Crashes: factory.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_crashes_total",
			Help: "Total number of fake crashes shown",
		}),

		SandboxesActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "portfolio_sandboxes_active",
			Help: "Number of mounted script windows",
		}),
		SandboxesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_sandboxes_total",
			Help: "Total number of script windows started",
		}),
		FramesDrawn: factory.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_sandbox_frames_total",
			Help: "Total number of draw calls completed",
		}),
		SandboxErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_sandbox_errors_total",
				Help: "Script window failures by kind",
			},
			[]string{"kind"},
		),

		DataReloads: factory.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_data_reloads_total",
			Help: "Total number of dataset reloads",
		}),

		WSConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "portfolio_ws_connections",
			Help: "Number of active WebSocket connections",
		}),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		Uptime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "portfolio_uptime_seconds",
			Help: "Backend uptime in seconds",
		}),
	}

	return m
}

// RunUptime updates the uptime gauge every second until stop is closed
func (m *Metrics) RunUptime(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.Uptime.Set(time.Since(m.startTime).Seconds())
		}
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.adjust(&m.snapshot.ActiveConnections, 1)
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.adjust(&m.snapshot.ActiveConnections, -1)
}

// IncDataReloads counts a dataset reload
func (m *Metrics) IncDataReloads() {
	m.DataReloads.Inc()
}

// SessionOpened counts a new visitor session
func (m *Metrics) SessionOpened() {
	m.SessionsActive.Inc()
	m.SessionsTotal.Inc()
	m.adjust(&m.snapshot.ActiveSessions, 1)
}

// SessionClosed counts a session teardown
func (m *Metrics) SessionClosed() {
	m.SessionsActive.Dec()
	m.adjust(&m.snapshot.ActiveSessions, -1)
}

// TabOpened counts a newly opened tab
func (m *Metrics) TabOpened() {
	m.TabsOpened.Inc()
}

// CrashTriggered counts a fake crash
func (m *Metrics) CrashTriggered() {
	m.Crashes.Inc()
	m.adjust(&m.snapshot.Crashes, 1)
}

// SandboxStarted counts a mounted script window
func (m *Metrics) SandboxStarted() {
	m.SandboxesActive.Inc()
	m.SandboxesTotal.Inc()
	m.adjust(&m.snapshot.ActiveSandboxes, 1)
}

// SandboxStopped counts an unmounted script window
func (m *Metrics) SandboxStopped() {
	m.SandboxesActive.Dec()
	m.adjust(&m.snapshot.ActiveSandboxes, -1)
}

// FrameDrawn counts a completed draw call
func (m *Metrics) FrameDrawn() {
	m.FramesDrawn.Inc()
}

// SandboxFailed counts a script failure by kind
func (m *Metrics) SandboxFailed(kind string) {
	m.SandboxErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) adjust(field *int64, delta int64) {
	m.mu.Lock()
	*field += delta
	m.mu.Unlock()
}

// Snapshot returns current values for the JSON health endpoint
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	if s.TotalRequests > 0 {
		s.AvgDuration = s.totalDuration / float64(s.TotalRequests)
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
