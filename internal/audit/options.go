package audit

import (
	"log/slog"
	"time"

	auditmetrics "vertical/internal/audit/metrics"
)

// Option configures a Recorder.
type Option func(*Recorder)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithAccessLogger sets the logger that receives one line per recorded exchange.
func WithAccessLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.access = NewAccessLogger(logger)
	}
}

func WithMetrics(m *auditmetrics.Metrics) Option {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// WithIgnorePaths exempts exact paths from persistence and access logging.
func WithIgnorePaths(paths ...string) Option {
	return func(r *Recorder) {
		for _, p := range paths {
			r.ignore[p] = struct{}{}
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}
