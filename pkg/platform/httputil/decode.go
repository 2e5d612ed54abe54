package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "vertical/pkg/domain-errors"
	"vertical/pkg/requestcontext"
	"vertical/pkg/validation"
)

// DecodePayload decodes the body parsed by the format gate into the target type
// and validates it. An empty body decodes as an empty object.
// On failure, writes an error response and returns nil, false.
//
// Usage:
//
//	req, ok := httputil.DecodePayload[models.PhoneRequest](w, r, h.logger)
//	if !ok {
//	    return
//	}
func DecodePayload[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	ctx := r.Context()
	req, err := decode[T](ctx)
	if err == nil {
		err = PrepareRequest(req)
	}
	if err != nil {
		logger.InfoContext(ctx, "invalid request payload",
			"error", err,
			"request_id", requestcontext.RequestIDString(ctx),
		)
		WriteError(w, err)
		return nil, false
	}
	return req, true
}

func decode[T any](ctx context.Context) (*T, error) {
	var req T
	body, ok := requestcontext.RequestBody(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInternal, "request body was not parsed")
	}
	if len(body.Raw) == 0 {
		return &req, nil
	}
	if bytes.Equal(bytes.TrimSpace(body.Raw), []byte("null")) {
		return nil, validation.InvalidInputType()
	}
	if err := json.Unmarshal(body.Raw, &req); err != nil {
		return nil, validation.FromDecodeError(err)
	}
	return &req, nil
}

// Validatable is implemented by request types that support validation.
type Validatable interface {
	Validate() error
}

// Normalizable is implemented by request types that support normalization.
type Normalizable interface {
	Normalize()
}

// PrepareRequest normalizes and validates a request. Types without their own
// Validate method are checked against their struct tags.
func PrepareRequest(req any) error {
	if n, ok := req.(Normalizable); ok {
		n.Normalize()
	}
	if v, ok := req.(Validatable); ok {
		return v.Validate()
	}
	return validation.Validate(req)
}
