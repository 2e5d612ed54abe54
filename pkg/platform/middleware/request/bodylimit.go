package request

import (
	"net/http"
)

// BodyLimit returns middleware that limits the size of request bodies.
// Uses http.MaxBytesReader so an oversized body fails on read; ParseJSONBody
// turns that failure into the unparseable-body response.
// Should be applied before ParseJSONBody.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
