package export

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeDelivered = "delivered"
	outcomeService   = "service_error"
	outcomeTransport = "transport_error"
	outcomeIO        = "io_error"
)

// Metrics tracks export outcomes. A nil *Metrics records nothing.
type Metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	payloadBytes *prometheus.HistogramVec
}

// NewMetrics registers the export collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rab_export_requests_total",
				Help: "Export requests by variant and outcome.",
			},
			[]string{"variant", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rab_export_duration_seconds",
				Help:    "Time from request to delivery or failure.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"variant"},
		),
		payloadBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rab_export_payload_bytes",
				Help:    "Size of delivered export artifacts.",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
			},
			[]string{"variant"},
		),
	}
	reg.MustRegister(m.requests, m.duration, m.payloadBytes)
	return m
}

func (m *Metrics) observe(variant, outcome string, started time.Time, size int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(variant, outcome).Inc()
	m.duration.WithLabelValues(variant).Observe(time.Since(started).Seconds())
	if outcome == outcomeDelivered {
		m.payloadBytes.WithLabelValues(variant).Observe(float64(size))
	}
}
