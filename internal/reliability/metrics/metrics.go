package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for verifications.
const (
	OutcomeReliable   = "reliable"
	OutcomeSuspicious = "suspicious"
	OutcomeTimeout    = "timeout"
	OutcomeError      = "error"
)

// Metrics holds Prometheus collectors for the reliability evaluator.
type Metrics struct {
	Verifications *prometheus.CounterVec
	QueryLatency  *prometheus.HistogramVec
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vertical_reliability_verifications_total",
			Help: "Total number of phone reliability checks by outcome",
		}, []string{"outcome"}),
		QueryLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vertical_hunter_query_duration_seconds",
			Help:    "Latency of submissions aggregate queries",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
	}
}

func (m *Metrics) IncVerification(outcome string) {
	m.Verifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveQueryLatency(query string, seconds float64) {
	m.QueryLatency.WithLabelValues(query).Observe(seconds)
}
