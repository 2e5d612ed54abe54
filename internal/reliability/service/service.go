package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Hasher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"vertical/internal/platform/tracer"
	relmetrics "vertical/internal/reliability/metrics"
	"vertical/internal/reliability/models"
	dErrors "vertical/pkg/domain-errors"
	"vertical/pkg/requestcontext"
)

const (
	queryPeriod = "period"
	queryStatus = "status"

	hashPrefixLen = 8
)

// Store answers the two aggregates over the submissions table.
type Store interface {
	FetchPeriod(ctx context.Context, phoneHash string) (*models.Period, error)
	HasLongLivedGroup(ctx context.Context, phoneHash string, days int) (bool, error)
}

// Hasher derives the stored digest of a phone number.
type Hasher interface {
	Hash(value string) string
}

// Service evaluates phone number reliability against submission history.
type Service struct {
	store     Store
	hasher    Hasher
	deltaDays int
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *relmetrics.Metrics
	tracer    tracer.Tracer
}

// New builds a Service. deltaDays is the span a single person-key group must
// strictly exceed to be reported as suspicious.
func New(store Store, hasher Hasher, deltaDays int, opts ...Option) *Service {
	s := &Service{
		store:     store,
		hasher:    hasher,
		deltaDays: deltaDays,
		logger:    slog.Default(),
		tracer:    tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify hashes phone and runs the period and status aggregates concurrently
// under the configured timeout. No partial result is returned.
func (s *Service) Verify(ctx context.Context, phone string) (result *models.Reliability, err error) {
	phoneHash := s.hasher.Hash(phone)
	ctx, span := s.tracer.Start(ctx, tracer.SpanReliabilityVerify,
		tracer.String(tracer.AttrPhoneHashPrefix, prefix(phoneHash)),
		tracer.Int64(tracer.AttrDeltaDays, int64(s.deltaDays)),
		tracer.Duration(tracer.AttrTimeout, s.timeout),
	)
	defer func() { span.End(err) }()

	period, status, err := s.gather(ctx, phoneHash)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	result = &models.Reliability{Status: status && period != nil, Period: period}
	span.SetAttributes(
		tracer.Bool(tracer.AttrStatus, result.Status),
		tracer.Bool(tracer.AttrHasPeriod, period != nil),
	)
	s.report(ctx, result)
	return result, nil
}

func (s *Service) gather(ctx context.Context, phoneHash string) (*models.Period, bool, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	g, gctx := errgroup.WithContext(ctx)

	// Each goroutine writes only its own variable.
	var (
		period *models.Period
		status bool
	)
	g.Go(func() error {
		var err error
		period, err = traced(gctx, s, tracer.SpanHunterPeriod, queryPeriod, func(qctx context.Context) (*models.Period, error) {
			return s.store.FetchPeriod(qctx, phoneHash)
		})
		return err
	})
	g.Go(func() error {
		var err error
		status, err = traced(gctx, s, tracer.SpanHunterStatus, queryStatus, func(qctx context.Context) (bool, error) {
			return s.store.HasLongLivedGroup(qctx, phoneHash, s.deltaDays)
		})
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
			return nil, false, dErrors.Wrap(err, dErrors.CodeTimeout, "reliability query timed out")
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "reliability query failed")
	}
	return period, status, nil
}

func traced[T any](ctx context.Context, s *Service, span, query string, fn func(context.Context) (T, error)) (out T, err error) {
	ctx, sp := s.tracer.Start(ctx, span)
	defer func() { sp.End(err) }()

	start := time.Now()
	out, err = fn(ctx)
	if s.metrics != nil {
		s.metrics.ObserveQueryLatency(query, time.Since(start).Seconds())
	}
	return out, err
}

func (s *Service) fail(ctx context.Context, err error) error {
	outcome := relmetrics.OutcomeError
	if dErrors.HasCode(err, dErrors.CodeTimeout) {
		outcome = relmetrics.OutcomeTimeout
	}
	s.logger.ErrorContext(ctx, "reliability check failed",
		"error", err,
		"outcome", outcome,
		"timeout", s.timeout,
		"request_id", requestcontext.RequestIDString(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncVerification(outcome)
	}
	return err
}

func (s *Service) report(ctx context.Context, r *models.Reliability) {
	requestID := requestcontext.RequestIDString(ctx)
	switch {
	case r.Period == nil:
		s.logger.InfoContext(ctx, "no submissions were found", "request_id", requestID)
	case r.Status:
		s.logger.InfoContext(ctx, "day rule was triggered",
			"delta_days", s.deltaDays,
			"request_id", requestID,
		)
	default:
		s.logger.InfoContext(ctx, "no rules were triggered",
			"days", r.Period.Days(),
			"request_id", requestID,
		)
	}
	if s.metrics == nil {
		return
	}
	if r.Status {
		s.metrics.IncVerification(relmetrics.OutcomeSuspicious)
	} else {
		s.metrics.IncVerification(relmetrics.OutcomeReliable)
	}
}

func prefix(hash string) string {
	if len(hash) > hashPrefixLen {
		return hash[:hashPrefixLen]
	}
	return hash
}
