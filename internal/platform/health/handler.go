// Package health provides the dependency status endpoint.
package health

import (
	"context"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"vertical/pkg/platform/httputil"
	"vertical/pkg/requestcontext"
)

// MessageUnavailable is rendered when any dependency check fails.
const MessageUnavailable = "Service unavailable"

// CheckFunc checks the health of a dependency.
// It returns nil if healthy, or an error describing the issue.
type CheckFunc func(ctx context.Context) error

// Handler provides the health endpoint.
type Handler struct {
	startTime time.Time
	logger    *slog.Logger
	timeout   time.Duration

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// New creates a new health handler. Each check runs under timeout.
func New(logger *slog.Logger, timeout time.Duration) *Handler {
	return &Handler{
		startTime: time.Now(),
		logger:    logger,
		timeout:   timeout,
		checks:    make(map[string]CheckFunc),
	}
}

// RegisterCheck adds a named dependency check.
func (h *Handler) RegisterCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Status is the data payload of the health envelope.
type Status struct {
	Checks        map[string]string `json:"checks"`
	UptimeSeconds int64             `json:"uptime_seconds"`
}

// HandleHealth runs every registered check and returns 503 if any is down.
// Failure detail stays in the log; the caller only sees "down".
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.mu.RLock()
	checks := make(map[string]CheckFunc, len(h.checks))
	maps.Copy(checks, h.checks)
	h.mu.RUnlock()

	status := Status{
		Checks:        make(map[string]string, len(checks)),
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}

	allHealthy := true
	for _, name := range slices.Sorted(maps.Keys(checks)) {
		if err := h.run(ctx, checks[name]); err != nil {
			h.logger.ErrorContext(ctx, "health check failed",
				"check", name,
				"error", err,
				"request_id", requestcontext.RequestIDString(ctx),
			)
			status.Checks[name] = "down"
			allHealthy = false
			continue
		}
		status.Checks[name] = "up"
	}

	if !allHealthy {
		httputil.WriteMessage(w, http.StatusServiceUnavailable, MessageUnavailable, status)
		return
	}
	httputil.WriteOK(w, status)
}

func (h *Handler) run(ctx context.Context, check CheckFunc) error {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	return check(ctx)
}
