// Package metrics holds the Prometheus collectors of the org chart server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is a private Prometheus registry with every collector registered.
type Registry struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	ConnectionMutationsTotal *prometheus.CounterVec
	PositionBatchSize        prometheus.Histogram
	LayoutResetsTotal        prometheus.Counter
	ChartRendersTotal        *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry with all metrics initialized.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initHTTPMetrics()
	r.initChartMetrics()
	return r
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgchart_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orgchart_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "orgchart_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)
}

func (r *Registry) initChartMetrics() {
	r.ConnectionMutationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgchart_connection_mutations_total",
			Help: "Connector creates, patches and deletes by outcome",
		},
		[]string{"action", "status"},
	)

	r.PositionBatchSize = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orgchart_position_batch_size",
			Help:    "Number of members in a saved position batch",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		},
	)

	r.LayoutResetsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "orgchart_layout_resets_total",
			Help: "Total number of layout resets",
		},
	)

	r.ChartRendersTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgchart_chart_renders_total",
			Help: "SVG chart renders by outcome",
		},
		[]string{"status"},
	)
}

// RecordHTTPRequest records an HTTP request with its duration.
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordConnectionMutation counts a connector write.
func (r *Registry) RecordConnectionMutation(action string, err error) {
	r.ConnectionMutationsTotal.WithLabelValues(action, outcome(err)).Inc()
}

// RecordRender counts an SVG render.
func (r *Registry) RecordRender(err error) {
	r.ChartRendersTotal.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
