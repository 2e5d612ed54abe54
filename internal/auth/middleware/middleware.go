package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"vertical/internal/auth/models"
	id "vertical/pkg/domain"
	"vertical/pkg/platform/httputil"
	"vertical/pkg/requestcontext"
)

// Authorizer resolves an Authorization header value to an identification.
type Authorizer interface {
	Authorize(ctx context.Context, authorization string) (*models.Identification, error)
}

type contextKeyContractID struct{}

// GetContractID returns the contract that authorized the request, or the zero id.
func GetContractID(ctx context.Context) id.ContractID {
	if v, ok := ctx.Value(contextKeyContractID{}).(id.ContractID); ok {
		return v
	}
	return id.ContractID{}
}

// RequireContract runs the authorizer before the wrapped handler. A rejected
// request never reaches the handler and is answered with the rendered failure.
func RequireContract(authorizer Authorizer, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ident, err := authorizer.Authorize(ctx, r.Header.Get("Authorization"))
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access",
					"error", err,
					"path", r.URL.Path,
					"request_id", requestcontext.RequestIDString(ctx),
				)
				httputil.WriteError(w, err)
				return
			}

			if p := requestcontext.PrincipalFrom(ctx); p != nil {
				p.ContractID = ident.ContractID.String()
			}
			ctx = context.WithValue(ctx, contextKeyContractID{}, ident.ContractID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
