package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"

	"vertical/internal/audit"
	authmw "vertical/internal/auth/middleware"
	"vertical/internal/platform/health"
	relhandler "vertical/internal/reliability/handler"
	"vertical/pkg/platform/httputil"
	"vertical/pkg/platform/middleware/metadata"
	"vertical/pkg/platform/middleware/request"
	"vertical/pkg/platform/middleware/requesttime"
)

const (
	MessagePong             = "pong"
	MessageNotFound         = "Not Found"
	MessageMethodNotAllowed = "Method Not Allowed"
)

// Dependencies are the collaborators the router mounts. Latency is optional.
type Dependencies struct {
	Logger       *slog.Logger
	AuthLogger   *slog.Logger
	Recorder     *audit.Recorder
	Authorizer   authmw.Authorizer
	Health       *health.Handler
	Reliability  *relhandler.Handler
	Latency      *request.Metrics
	MaxBodyBytes int64

	// TrustedProxies may set X-Forwarded-For / X-Real-IP.
	TrustedProxies []netip.Prefix
}

// NewRouter wires the public endpoints. /ping sits in front of the gate; every
// other path, including unknown ones, goes through the format gate and the
// audit recorder.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	if deps.Latency != nil {
		r.Use(request.LatencyMiddleware(deps.Latency))
	}
	r.HandleFunc("/ping", handlePing)

	gated := chi.NewRouter()
	gated.Use(request.RequestID)
	gated.Use(request.Recovery(deps.Logger))
	gated.Use(requesttime.Middleware)
	gated.Use(metadata.ClientAddress(deps.TrustedProxies))
	gated.Use(request.ContentTypeJSON)
	gated.Use(request.BodyLimit(deps.MaxBodyBytes))
	gated.Use(request.ParseJSONBody)
	gated.Use(deps.Recorder.Middleware)

	gated.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.Envelope{Message: MessageNotFound})
	})
	gated.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.Envelope{Message: MessageMethodNotAllowed})
	})

	gated.Group(func(r chi.Router) {
		r.Use(authmw.RequireContract(deps.Authorizer, deps.AuthLogger))
		r.HandleFunc("/health", deps.Health.HandleHealth)
		deps.Reliability.Register(r)
	})

	r.Mount("/", gated)
	return r
}

func handlePing(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteMessage(w, http.StatusOK, MessagePong, struct{}{})
}
