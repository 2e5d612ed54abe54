package service

import (
	"log/slog"

	authmetrics "vertical/internal/auth/metrics"
)

// Option configures a Service.
type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *authmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTokenGenerator replaces the random token source used by Provision.
func WithTokenGenerator(gen func() (string, error)) Option {
	return func(s *Service) {
		s.newToken = gen
	}
}
