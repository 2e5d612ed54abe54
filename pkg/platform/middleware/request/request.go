package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	id "vertical/pkg/domain"
	dErrors "vertical/pkg/domain-errors"
	"vertical/pkg/platform/httputil"
	"vertical/pkg/requestcontext"
)

// HeaderRequestID carries the correlation id in both directions.
const HeaderRequestID = "X-Request-Id"

const jsonMediaType = "application/json"

// Format gate messages rendered to the caller.
const (
	MessageInvalidRequestID  = "X-Request-Id header must be in UUID format"
	MessageMissingContent    = "Content-Type header not recognized"
	MessageUnparseableBody   = "Could not parse request body"
	MessageUnsupportedFormat = httputil.MessageUnsupportedMediaType
)

// Recovery recovers from panics and renders the generic 500 envelope.
// The panic value is logged with its type; nothing of it reaches the caller.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				ctx := r.Context()
				logger.ErrorContext(ctx, fmt.Sprintf("Caught unhandled %T exception: %v", rec, rec),
					"stack", string(debug.Stack()),
					"path", r.URL.Path,
					"method", r.Method,
					"request_id", requestcontext.RequestIDString(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "panic"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestID resolves the correlation id and stores it with the caller address in the context.
// An absent X-Request-Id is generated server-side; a supplied one must be a canonical UUID
// or the request is rejected before anything else runs.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := id.NewRequestID()
		if supplied := r.Header.Get(HeaderRequestID); supplied != "" {
			parsed, err := id.ParseRequestID(supplied)
			if err != nil {
				httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, MessageInvalidRequestID))
				return
			}
			requestID = parsed
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithClientIP(ctx, r.RemoteAddr)
		w.Header().Set(HeaderRequestID, requestID.String())

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ContentTypeJSON requires a declared Content-Type that starts with application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, MessageMissingContent))
			return
		}
		if !strings.HasPrefix(ct, jsonMediaType) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnsupportedMediaType, MessageUnsupportedFormat))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ParseJSONBody reads the whole body once and stores it in the context.
// An empty body parses as an empty object. The body is replayed for handlers
// that read r.Body directly.
func ParseJSONBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw []byte
		if r.Body != nil {
			var err error
			raw, err = io.ReadAll(r.Body)
			if err != nil {
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, MessageUnparseableBody))
				return
			}
		}

		body := requestcontext.Body{Parsed: map[string]any{}}
		if len(raw) > 0 {
			var parsed any
			if err := json.Unmarshal(raw, &parsed); err != nil {
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, MessageUnparseableBody))
				return
			}
			body = requestcontext.Body{Raw: raw, Parsed: parsed}
		}

		r.Body = io.NopCloser(bytes.NewReader(raw))
		next.ServeHTTP(w, r.WithContext(requestcontext.WithBody(r.Context(), body)))
	})
}

// LatencyMiddleware observes handler latency per route pattern.
func LatencyMiddleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			if m != nil {
				m.ObserveEndpointLatency(routePattern(r), time.Since(start).Seconds())
			}
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
