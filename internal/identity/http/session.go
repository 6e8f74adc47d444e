package http

import (
	"net/http"

	"github.com/quillboard/quillboard/internal/identity/domain"
	"github.com/quillboard/quillboard/internal/identity/service"
	"github.com/quillboard/quillboard/pkg/httpx"
	"github.com/quillboard/quillboard/pkg/notesdk"
	"github.com/quillboard/quillboard/pkg/slogx"
)

type LogoutHandler struct {
	Sessions *service.SessionService
	Router   *Router
}

// ServeHTTP revokes the current session and clears the cookie. Logout
// of an already-revoked token still succeeds.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Sessions.Revoke(ctx, sessionTokenFromCtx(ctx), domain.RevokeReasonLogout); err != nil {
		slogx.FromContext(ctx).Error("logout revocation failed", "error", err)
		notesdk.ErrServerError.WriteError(w)
		return
	}

	h.Router.clearSessionCookie(w)
	httpx.WriteJSON(w, http.StatusOK, notesdk.AckResponse{Status: "ok"})
}

type RefreshHandler struct {
	Sessions *service.SessionService
	Router   *Router
}

// ServeHTTP exchanges the current session token for a fresh one with a
// full lifetime. The old token is blacklisted first, so it cannot be
// replayed after the exchange.
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token, err := h.Sessions.Refresh(ctx, sessionTokenFromCtx(ctx))
	if err != nil {
		// The middleware verified the token moments ago, so a verify
		// failure here means it was revoked in between.
		log.Info("refresh rejected", "error", err)
		notesdk.ErrUnauthenticated.WriteError(w)
		return
	}

	claims := h.Sessions.Signer.Verify(token)
	if claims == nil {
		log.Error("refresh produced an unverifiable token")
		notesdk.ErrServerError.WriteError(w)
		return
	}

	h.Router.setSessionCookie(w, token, h.Sessions.Signer.TTL())
	httpx.WriteJSON(w, http.StatusOK, notesdk.IdentityResponse{
		UUID:         claims.UUID(),
		Email:        claims.Email,
		SessionToken: token,
	})
}

type InvalidateHandler struct {
	Sessions *service.SessionService
}

// ServeHTTP revokes the current session without issuing a replacement
// and without touching the cookie, for clients that manage their own
// token storage.
func (h *InvalidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Sessions.Revoke(ctx, sessionTokenFromCtx(ctx), domain.RevokeReasonManual); err != nil {
		slogx.FromContext(ctx).Error("session invalidation failed", "error", err)
		notesdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, notesdk.AckResponse{Status: "ok"})
}
