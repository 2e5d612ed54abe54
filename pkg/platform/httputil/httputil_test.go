package httputil

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "vertical/pkg/domain-errors"
	"vertical/pkg/validation"
)

func TestWriteOK(t *testing.T) {
	w := httptest.NewRecorder()
	WriteOK(w, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"OK","data":{}}`, w.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))
	assert.Equal(t, "0", w.Header().Get("Expires"))
	assert.Equal(t, "no-cache", w.Header().Get("Pragma"))
	assert.Equal(t, "Vertical", w.Header().Get("Server"))
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"bad request", dErrors.New(dErrors.CodeBadRequest, "Content-Type header not recognized"), 400, `{"message":"Content-Type header not recognized"}`},
		{"unsupported media type", dErrors.New(dErrors.CodeUnsupportedMediaType, "Unsupported media type"), 415, `{"message":"Unsupported media type"}`},
		{"unauthorized", dErrors.New(dErrors.CodeUnauthorized, "Invalid access token"), 401, `{"message":"Invalid access token"}`},
		{"not found without message", dErrors.New(dErrors.CodeNotFound, ""), 404, `{"message":"Not Found"}`},
		{"method not allowed", dErrors.New(dErrors.CodeMethodNotAllowed, "Method Not Allowed"), 405, `{"message":"Method Not Allowed"}`},
		{"unavailable", dErrors.New(dErrors.CodeUnavailable, "Service unavailable"), 503, `{"message":"Service unavailable"}`},
		{"timeout hides detail", dErrors.New(dErrors.CodeTimeout, "hunter query timed out"), 500, `{"message":"Internal server error"}`},
		{"internal hides detail", dErrors.Wrap(errors.New("pq: boom"), dErrors.CodeInternal, "db failed"), 500, `{"message":"Internal server error"}`},
		{"plain error", fmt.Errorf("unexpected"), 500, `{"message":"Internal server error"}`},
		{"validation", validation.NewFieldError("number", "Missing data for required field."), 422,
			`{"message":"Input payload validation failed","errors":{"number":["Missing data for required field."]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
			assert.Equal(t, "Vertical", w.Header().Get("Server"))
		})
	}
}
