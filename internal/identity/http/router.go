package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/quillboard/quillboard/internal/identity/service"
	"github.com/quillboard/quillboard/internal/identity/store"
	"github.com/quillboard/quillboard/pkg/httpx"
	"github.com/quillboard/quillboard/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	cookieSecure bool

	store             store.KV
	CredentialService *service.CredentialService
	SessionService    *service.SessionService
	ResetService      *service.ResetService
	DirectoryService  *service.DirectoryService

	// ResetDelivery carries freshly minted reset tokens to the user
	// out of band. Nil means tokens are issued but not delivered.
	ResetDelivery func(ctx context.Context, email, token string)
}

func NewRouter(
	buildVersion string,
	st store.KV,
	logger *slog.Logger,
	cookieSecure bool,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		cookieSecure: cookieSecure,
		store:        st,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerSessions()
	r.registerResets()
	r.registerDirectories()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAccounts() {
	registerHandler := &RegisterHandler{
		Credentials: r.CredentialService,
		Sessions:    r.SessionService,
		Router:      r,
	}
	loginHandler := &LoginHandler{
		Credentials: r.CredentialService,
		Sessions:    r.SessionService,
		Router:      r,
	}
	deleteHandler := &AccountDeleteHandler{
		Credentials: r.CredentialService,
		Sessions:    r.SessionService,
		Router:      r,
	}

	// Credential endpoints take the strict limit to slow brute force.
	r.Mux.Handle("POST /v1/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/account",
		httpx.Chain(deleteHandler,
			AuthnMiddleware(r.SessionService),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSessions() {
	logoutHandler := &LogoutHandler{Sessions: r.SessionService, Router: r}
	refreshHandler := &RefreshHandler{Sessions: r.SessionService, Router: r}
	invalidateHandler := &InvalidateHandler{Sessions: r.SessionService}

	r.Mux.Handle("POST /v1/logout",
		httpx.Chain(logoutHandler,
			AuthnMiddleware(r.SessionService),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/session/refresh",
		httpx.Chain(refreshHandler,
			AuthnMiddleware(r.SessionService),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/session/invalidate",
		httpx.Chain(invalidateHandler,
			AuthnMiddleware(r.SessionService),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerResets() {
	requestHandler := &ResetRequestHandler{Resets: r.ResetService, Deliver: r.ResetDelivery}
	resetHandler := &ResetPasswordHandler{
		Resets:   r.ResetService,
		Sessions: r.SessionService,
		Router:   r,
	}

	// Both are unauthenticated by design, so they share the strict
	// per-IP limit with login.
	r.Mux.Handle("POST /v1/password/request-reset",
		httpx.Chain(requestHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/password/reset",
		httpx.Chain(resetHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerDirectories() {
	h := &DirectoryHandler{Directories: r.DirectoryService}

	secured := func(handler http.Handler) http.Handler {
		return httpx.Chain(handler,
			AuthnMiddleware(r.SessionService),
			httpx.RateLimitByAccount(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("POST /v1/directories", secured(http.HandlerFunc(h.HandleAssociate)))
	r.Mux.Handle("GET /v1/directories/{uuid}", secured(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("DELETE /v1/directories", secured(http.HandlerFunc(h.HandleRemove)))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.SessionService),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
