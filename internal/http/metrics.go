package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors on a private registry. It
// implements core.MetricsRecorder.
type Metrics struct {
	registry *prometheus.Registry

	ShufflesTotal    *prometheus.CounterVec
	ShuffledTracks   *prometheus.CounterVec
	ShuffleDuration  *prometheus.HistogramVec
	DeclusterSwaps   *prometheus.CounterVec
	RecencyAnomalies prometheus.Counter
	QueuedTotal      prometheus.Counter
	RateLimitedTotal prometheus.Counter
	ErrorsTotal      *prometheus.CounterVec
	RequestsTotal    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ShufflesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartshuffle_shuffles_total",
				Help: "Total number of shuffle calls",
			},
			[]string{"mode"},
		),
		ShuffledTracks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartshuffle_shuffled_tracks_total",
				Help: "Total number of tracks returned by shuffle calls",
			},
			[]string{"mode"},
		),
		ShuffleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartshuffle_shuffle_duration_seconds",
				Help:    "Time spent in a shuffle call",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"mode"},
		),
		DeclusterSwaps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartshuffle_decluster_swaps_total",
				Help: "Total number of swaps made to break up same-key runs",
			},
			[]string{"key"},
		),
		RecencyAnomalies: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "smartshuffle_recency_anomalies_total",
				Help: "Recently played tracks found without a usable rank",
			},
		),
		QueuedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "smartshuffle_queued_tracks_total",
				Help: "Total number of tracks added to the playback queue",
			},
		),
		RateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "smartshuffle_rate_limited_total",
				Help: "Total number of API requests rejected by the rate gate",
			},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartshuffle_errors_total",
				Help: "Total number of errors",
			},
			[]string{"component", "type"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartshuffle_api_requests_total",
				Help: "Total number of shuffle API requests by endpoint and status code",
			},
			[]string{"endpoint", "code"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ShufflesTotal,
		m.ShuffledTracks,
		m.ShuffleDuration,
		m.DeclusterSwaps,
		m.RecencyAnomalies,
		m.QueuedTotal,
		m.RateLimitedTotal,
		m.ErrorsTotal,
		m.RequestsTotal,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordShuffle(mode string, tracks int, duration time.Duration) {
	m.ShufflesTotal.WithLabelValues(mode).Inc()
	m.ShuffledTracks.WithLabelValues(mode).Add(float64(tracks))
	m.ShuffleDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

func (m *Metrics) RecordDeclusterSwaps(key string, swaps int) {
	m.DeclusterSwaps.WithLabelValues(key).Add(float64(swaps))
}

func (m *Metrics) RecordRecencyAnomaly() {
	m.RecencyAnomalies.Inc()
}

func (m *Metrics) RecordQueued(count int) {
	m.QueuedTotal.Add(float64(count))
}

func (m *Metrics) RecordError(component, errorType string) {
	m.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

func (m *Metrics) RecordRateLimited() {
	m.RateLimitedTotal.Inc()
}

func (m *Metrics) RecordRequest(endpoint string, code int) {
	m.RequestsTotal.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
}
