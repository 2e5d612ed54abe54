// Package audit records every inbound request and its response, keyed by the
// correlation id, around the handler chain.
package audit

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	auditmetrics "vertical/internal/audit/metrics"
	"vertical/internal/audit/models"
	dErrors "vertical/pkg/domain-errors"
	"vertical/pkg/platform/httputil"
	"vertical/pkg/platform/middleware/requesttime"
	"vertical/pkg/requestcontext"
)

// Store persists audit records.
type Store interface {
	SaveRequest(ctx context.Context, req *models.Request) error
	SaveResponse(ctx context.Context, resp *models.Response) error
}

// Recorder is the audit middleware. It must run after the format gate so the
// correlation id and parsed body are already in the request context.
type Recorder struct {
	store   Store
	logger  *slog.Logger
	access  *AccessLogger
	metrics *auditmetrics.Metrics
	ignore  map[string]struct{}
	now     func() time.Time
}

func New(store Store, opts ...Option) *Recorder {
	r := &Recorder{
		store:  store,
		logger: slog.Default(),
		ignore: make(map[string]struct{}),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Middleware persists the request row before calling next, buffers the
// response, persists the response row and only then writes to the client.
// A failed request write aborts the call with a 500; a failed response write
// is logged and the response is returned anyway.
func (rc *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, skip := rc.ignore[r.URL.Path]; skip {
			if rc.metrics != nil {
				rc.metrics.IncSkipped()
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx, principal := requestcontext.WithPrincipal(r.Context())
		requestID := requestcontext.RequestID(ctx)
		remoteAddr := requestcontext.ClientIP(ctx)
		if remoteAddr == "" {
			remoteAddr = r.RemoteAddr
		}

		record := &models.Request{
			ID:         requestID,
			RemoteAddr: remoteAddr,
			Method:     r.Method,
			Path:       r.URL.Path,
			CreatedAt:  requesttime.Now(ctx),
		}
		if body, ok := requestcontext.RequestBody(ctx); ok {
			record.Body = body.Raw
		}

		if err := rc.persist(auditmetrics.RecordRequest, func() error {
			return rc.store.SaveRequest(ctx, record)
		}); err != nil {
			rc.logger.ErrorContext(ctx, "failed to record request",
				"error", err,
				"request_id", requestID.String(),
				"path", r.URL.Path,
			)
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record request"))
			return
		}

		buf := newBufferedWriter(w)
		next.ServeHTTP(buf, r.WithContext(ctx))

		response := &models.Response{
			RequestID:  requestID,
			Body:       buf.Bytes(),
			StatusCode: buf.Status(),
			CreatedAt:  rc.now().UTC(),
		}
		// The client may already be gone; the row is still owed.
		err := rc.persist(auditmetrics.RecordResponse, func() error {
			return rc.store.SaveResponse(context.WithoutCancel(ctx), response)
		})
		if err != nil {
			rc.logger.ErrorContext(ctx, "failed to record response",
				"error", err,
				"request_id", requestID.String(),
				"response_code", response.StatusCode,
			)
		} else {
			entry := entryFrom(r, requestID.String(), remoteAddr)
			entry.ResponseLength = len(response.Body)
			entry.ResponseCode = response.StatusCode
			entry.ContractID = principal.ContractID
			rc.access.Log(ctx, entry)
		}

		if err := buf.flush(); err != nil {
			rc.logger.DebugContext(ctx, "failed to write response",
				"error", err,
				"request_id", requestID.String(),
			)
		}
	})
}

func (rc *Recorder) persist(record string, save func() error) error {
	start := time.Now()
	err := save()
	if rc.metrics == nil {
		return err
	}
	rc.metrics.ObservePersistDuration(record, time.Since(start).Seconds())
	if err != nil {
		rc.metrics.IncPersistFailure(record)
	}
	return err
}
