package monitoring

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "netsession"

// Metrics holds all Prometheus metrics. Collectors live on a private
// registry so several instances can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Session metrics
	SessionsSaved    prometheus.Counter
	SessionsRestored prometheus.Counter
	SessionErrors    *prometheus.CounterVec
	SaveDuration     prometheus.Histogram
	OpenDuration     prometheus.Histogram
	ArchiveBytes     prometheus.Histogram
	SkippedEntries   *prometheus.CounterVec

	// Workspace metrics
	LiveNetworks prometheus.Gauge
	LiveViews    prometheus.Gauge
	LiveTables   prometheus.Gauge

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Snapshot for JSON API
	snapshot Snapshot // Protected by mu
	mu       sync.RWMutex
}

// Snapshot holds current metric values for the JSON API
type Snapshot struct {
	TotalRequests    int64   `json:"total_requests"`
	TotalErrors      int64   `json:"total_errors"`
	SessionsSaved    int64   `json:"sessions_saved"`
	SessionsRestored int64   `json:"sessions_restored"`
	LastArchiveBytes int64   `json:"last_archive_bytes"`
	AvgRequestMs     float64 `json:"avg_request_ms"`
	UptimeSeconds    float64 `json:"uptime_seconds"`

	totalDuration float64
}

// NewMetrics creates a metrics collector with its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	sizeBuckets := prometheus.ExponentialBuckets(1024, 4, 10)
	durationBuckets := []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

	return &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   durationBuckets,
			},
			[]string{"method", "path"},
		),

		SessionsSaved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_saved_total",
			Help:      "Sessions written to an archive",
		}),
		SessionsRestored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_restored_total",
			Help:      "Sessions applied to the workspace",
		}),
		SessionErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_errors_total",
				Help:      "Failed session operations",
			},
			[]string{"operation"},
		),
		SaveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_save_duration_seconds",
			Help:      "Time to capture and write a session",
			Buckets:   durationBuckets,
		}),
		OpenDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_open_duration_seconds",
			Help:      "Time to read and apply a session",
			Buckets:   durationBuckets,
		}),
		ArchiveBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_archive_bytes",
			Help:      "Size of written session archives",
			Buckets:   sizeBuckets,
		}),
		SkippedEntries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_skipped_items_total",
				Help:      "Items left out of written archives",
			},
			[]string{"kind"},
		),

		LiveNetworks: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workspace_networks",
			Help:      "Networks in the live workspace",
		}),
		LiveViews: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workspace_views",
			Help:      "Network views in the live workspace",
		}),
		LiveTables: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workspace_tables",
			Help:      "Tables in the live workspace",
		}),

		WSConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections",
			Help:      "Open event stream connections",
		}),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "websocket_messages_total",
				Help:      "Event stream messages sent",
			},
			[]string{"type"},
		),

		Uptime: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Process uptime in seconds",
		}),
	}
}

// Registry returns the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Run refreshes the uptime gauge until ctx is done
func (m *Metrics) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Uptime.Set(time.Since(m.startTime).Seconds())
		}
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordSave records a finished save. skipped maps item kind to count.
func (m *Metrics) RecordSave(duration time.Duration, bytes int64, skipped map[string]int) {
	m.SessionsSaved.Inc()
	m.SaveDuration.Observe(duration.Seconds())
	m.ArchiveBytes.Observe(float64(bytes))
	for kind, n := range skipped {
		m.SkippedEntries.WithLabelValues(kind).Add(float64(n))
	}

	m.mu.Lock()
	m.snapshot.SessionsSaved++
	m.snapshot.LastArchiveBytes = bytes
	m.mu.Unlock()
}

// RecordRestore records a session applied to the workspace
func (m *Metrics) RecordRestore(duration time.Duration) {
	m.SessionsRestored.Inc()
	m.OpenDuration.Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.SessionsRestored++
	m.mu.Unlock()
}

// RecordError records a failed session operation
func (m *Metrics) RecordError(operation string) {
	m.SessionErrors.WithLabelValues(operation).Inc()
}

// SetWorkspace publishes live workspace sizes
func (m *Metrics) SetWorkspace(networks, views, tables int) {
	m.LiveNetworks.Set(float64(networks))
	m.LiveViews.Set(float64(views))
	m.LiveTables.Set(float64(tables))
}

// RecordWSMessage records an event stream message
func (m *Metrics) RecordWSMessage(msgType string) {
	m.WSMessages.WithLabelValues(msgType).Inc()
}

// IncWSConnections increments event stream connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements event stream connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}

// Snapshot returns current values for the JSON API
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	if s.TotalRequests > 0 {
		s.AvgRequestMs = s.totalDuration / float64(s.TotalRequests) * 1000
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
