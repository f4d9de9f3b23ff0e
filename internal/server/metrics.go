package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the snapshot server.
type Metrics struct {
	Requests     *prometheus.CounterVec
	Latency      *prometheus.HistogramVec
	SnapshotSize prometheus.Gauge
	BulkWrites   prometheus.Counter
}

// NewMetrics registers the server metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmapd_http_requests_total",
			Help: "HTTP requests by method, route, and status code",
		}, []string{"method", "route", "code"}),

		Latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roadmapd_http_request_duration_seconds",
			Help:    "HTTP request duration by route",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route"}),

		SnapshotSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "roadmapd_snapshot_records",
			Help: "Number of module records in the stored snapshot",
		}),

		BulkWrites: factory.NewCounter(prometheus.CounterOpts{
			Name: "roadmapd_bulk_writes_total",
			Help: "Total snapshot replacements",
		}),
	}
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.Latency.WithLabelValues(route).Observe(d.Seconds())
}

// SetSnapshotSize updates the stored record gauge.
func (m *Metrics) SetSnapshotSize(n int) {
	if m != nil {
		m.SnapshotSize.Set(float64(n))
	}
}

// IncrementBulkWrites counts one snapshot replacement.
func (m *Metrics) IncrementBulkWrites() {
	if m != nil {
		m.BulkWrites.Inc()
	}
}
