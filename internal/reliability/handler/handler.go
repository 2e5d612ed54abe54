package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vertical/internal/reliability/models"
	"vertical/pkg/platform/httputil"
	"vertical/pkg/requestcontext"
)

// ReliabilityService evaluates a phone number against submission history.
type ReliabilityService interface {
	Verify(ctx context.Context, phone string) (*models.Reliability, error)
}

// Handler serves reliability checks.
type Handler struct {
	service ReliabilityService
	logger  *slog.Logger
}

func New(service ReliabilityService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the handler routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/reliability/phone", h.HandlePhone)
}

// HandlePhone handles POST /reliability/phone.
func (h *Handler) HandlePhone(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodePayload[models.PhoneRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.service.Verify(ctx, *req.Number)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to verify phone reliability",
			"error", err,
			"request_id", requestcontext.RequestIDString(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteOK(w, result)
}
