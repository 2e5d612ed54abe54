package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for contract authorization.
type Metrics struct {
	AuthFailures        *prometheus.CounterVec
	Identifications     prometheus.Counter
	AuthorizeDurationMs prometheus.Histogram
}

// New registers and returns auth metrics collectors on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the collectors on reg.
func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AuthFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vertical_auth_failures_total",
			Help: "Total number of rejected authorizations, labeled by failure kind",
		}, []string{"kind"}),
		Identifications: f.NewCounter(prometheus.CounterOpts{
			Name: "vertical_identifications_total",
			Help: "Total number of requests linked to a contract",
		}),
		AuthorizeDurationMs: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vertical_authorize_duration_ms",
			Help:    "Duration of contract authorization in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}
}

func (m *Metrics) IncrementAuthFailure(kind string) {
	m.AuthFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementIdentifications() {
	m.Identifications.Inc()
}

func (m *Metrics) ObserveAuthorizeDuration(durationMs float64) {
	m.AuthorizeDurationMs.Observe(durationMs)
}
