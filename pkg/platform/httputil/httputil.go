package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "vertical/pkg/domain-errors"
)

// ServerName is advertised in the Server header of every envelope.
const ServerName = "Vertical"

const (
	MessageOK                   = "OK"
	MessageInternal             = "Internal server error"
	MessageUnsupportedMediaType = "Unsupported media type"
)

// Envelope is the single wire shape for every outcome.
type Envelope struct {
	Message string              `json:"message"`
	Data    any                 `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

type fieldErrors interface {
	FieldErrors() map[string][]string
}

// SetHeaders applies the fixed envelope headers.
func SetHeaders(h http.Header) {
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Expires", "0")
	h.Set("Pragma", "no-cache")
	h.Set("Server", ServerName)
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	SetHeaders(w.Header())
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteOK renders a success envelope. A nil data renders as an empty object.
func WriteOK(w http.ResponseWriter, data any) {
	WriteMessage(w, http.StatusOK, MessageOK, data)
}

// WriteMessage renders a success-shaped envelope with a custom message and status.
func WriteMessage(w http.ResponseWriter, status int, message string, data any) {
	if data == nil {
		data = struct{}{}
	}
	WriteJSON(w, status, Envelope{Message: message, Data: data})
}

// WriteError centralizes domain error translation to HTTP responses.
// Internal detail never reaches the caller: unknown errors, timeouts, and
// internal codes all render the same generic message.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		WriteJSON(w, http.StatusInternalServerError, Envelope{Message: MessageInternal})
		return
	}

	status := DomainCodeToHTTPStatus(domainErr.Code)
	if status == http.StatusInternalServerError {
		WriteJSON(w, status, Envelope{Message: MessageInternal})
		return
	}

	response := Envelope{Message: domainErr.Message}
	if response.Message == "" {
		response.Message = http.StatusText(status)
	}
	if domainErr.Code == dErrors.CodeValidation {
		var fe fieldErrors
		if errors.As(err, &fe) {
			response.Errors = fe.FieldErrors()
		}
	}
	WriteJSON(w, status, response)
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeValidation:
		return http.StatusUnprocessableEntity
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	case dErrors.CodeTimeout, dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
