package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/quillboard/quillboard/internal/identity/service"
	"github.com/quillboard/quillboard/pkg/httpx"
	"github.com/quillboard/quillboard/pkg/notesdk"
)

// AuthnMiddleware verifies the session token on each request and
// places the account identity in the request context. The token is
// read from the session cookie first, falling back to an
// Authorization: Bearer header for non-browser clients. Missing,
// invalid, expired, and revoked tokens all fail the same way.
func AuthnMiddleware(sessions *service.SessionService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractSessionToken(r)
			if token == "" {
				notesdk.ErrUnauthenticated.WriteError(w)
				return
			}

			claims, err := sessions.Verify(r.Context(), token)
			if err != nil {
				notesdk.ErrUnauthenticated.WriteError(w)
				return
			}

			ctx := context.WithValue(r.Context(), httpx.CtxKeyAccountUUID, claims.UUID())
			ctx = context.WithValue(ctx, httpx.CtxKeyEmail, claims.Email)
			ctx = context.WithValue(ctx, httpx.CtxKeySession, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractSessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func emailFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(httpx.CtxKeyEmail).(string); ok {
		return v
	}
	return ""
}

func sessionTokenFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(httpx.CtxKeySession).(string); ok {
		return v
	}
	return ""
}
