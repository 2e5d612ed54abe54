package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	RecordRequest  = "request"
	RecordResponse = "response"
)

// Metrics holds Prometheus collectors for audit persistence.
type Metrics struct {
	PersistDuration *prometheus.HistogramVec
	PersistFailures *prometheus.CounterVec
	Skipped         prometheus.Counter
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the collectors on reg.
func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PersistDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vertical_audit_persist_duration_seconds",
			Help:    "Time taken to persist an audit record",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"record"}),
		PersistFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vertical_audit_persist_failures_total",
			Help: "Total number of audit records that could not be persisted",
		}, []string{"record"}),
		Skipped: f.NewCounter(prometheus.CounterOpts{
			Name: "vertical_audit_skipped_total",
			Help: "Total number of requests on paths exempt from auditing",
		}),
	}
}

func (m *Metrics) ObservePersistDuration(record string, seconds float64) {
	m.PersistDuration.WithLabelValues(record).Observe(seconds)
}

func (m *Metrics) IncPersistFailure(record string) {
	m.PersistFailures.WithLabelValues(record).Inc()
}

func (m *Metrics) IncSkipped() {
	m.Skipped.Inc()
}
