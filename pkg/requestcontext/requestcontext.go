// Package requestcontext carries request-scoped values set by the middleware
// chain and read by handlers, services, and the audit recorder.
package requestcontext

import (
	"context"

	id "vertical/pkg/domain"
)

type (
	requestIDKey struct{}
	bodyKey      struct{}
	clientIPKey  struct{}
	principalKey struct{}
)

// Body is the request payload as read by the format gate.
// Raw is nil for an empty body; Parsed is then an empty object.
type Body struct {
	Raw    []byte
	Parsed any
}

// WithRequestID stores the resolved correlation id.
func WithRequestID(ctx context.Context, requestID id.RequestID) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the correlation id, or the zero id when unset.
func RequestID(ctx context.Context) id.RequestID {
	if v, ok := ctx.Value(requestIDKey{}).(id.RequestID); ok {
		return v
	}
	return id.RequestID{}
}

// RequestIDString is RequestID rendered for logs; empty when unset.
func RequestIDString(ctx context.Context) string {
	v := RequestID(ctx)
	if v.IsNil() {
		return ""
	}
	return v.String()
}

// WithBody stores the parsed request body.
func WithBody(ctx context.Context, body Body) context.Context {
	return context.WithValue(ctx, bodyKey{}, body)
}

// RequestBody returns the body stored by the format gate.
func RequestBody(ctx context.Context) (Body, bool) {
	b, ok := ctx.Value(bodyKey{}).(Body)
	return b, ok
}

// WithClientIP stores the caller address as seen by the server.
func WithClientIP(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, addr)
}

// ClientIP returns the caller address or empty string.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey{}).(string); ok {
		return v
	}
	return ""
}

// Principal is filled in by the authorizer deep in the chain and read back by
// middleware that wraps it, such as the access log.
type Principal struct {
	ContractID string
}

// WithPrincipal installs an empty principal slot.
func WithPrincipal(ctx context.Context) (context.Context, *Principal) {
	p := &Principal{}
	return context.WithValue(ctx, principalKey{}, p), p
}

// PrincipalFrom returns the slot installed by WithPrincipal, or nil.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
