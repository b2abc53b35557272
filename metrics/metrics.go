// Package metrics provides Prometheus metrics for the assist pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes.
const (
	OutcomeGenerated       = "generated"
	OutcomeNotFound        = "not_found"
	OutcomeUnsupportedMode = "unsupported_mode"
	OutcomeError           = "error"
)

// Collector exports assist pipeline metrics. A nil Collector is a no-op,
// so callers never need to guard their recording calls.
type Collector struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	streamChunks    prometheus.Counter
	weatherDegraded prometheus.Counter
}

// NewCollector creates a Collector on its own registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopguide_requests_total",
			Help: "Assist requests by mode and outcome.",
		}, []string{"mode", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shopguide_request_duration_seconds",
			Help:    "Assist request duration in seconds.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"mode"}),
		streamChunks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shopguide_stream_chunks_total",
			Help: "Generation chunks forwarded to callers.",
		}),
		weatherDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shopguide_weather_degraded_total",
			Help: "Weather lookups degraded to a placeholder.",
		}),
	}

	registry.MustRegister(c.requests, c.requestDuration, c.streamChunks, c.weatherDegraded)
	return c
}

// Handler returns the /metrics HTTP handler.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) RecordRequest(mode, outcome string) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(mode, outcome).Inc()
}

func (c *Collector) ObserveRequestDuration(mode string, d time.Duration) {
	if c == nil {
		return
	}
	c.requestDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (c *Collector) AddStreamChunks(n int) {
	if c == nil {
		return
	}
	c.streamChunks.Add(float64(n))
}

func (c *Collector) RecordWeatherDegraded() {
	if c == nil {
		return
	}
	c.weatherDegraded.Inc()
}
