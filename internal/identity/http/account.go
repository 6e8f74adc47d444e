package http

import (
	"net/http"

	"github.com/quillboard/quillboard/internal/identity/domain"
	"github.com/quillboard/quillboard/internal/identity/service"
	"github.com/quillboard/quillboard/pkg/httpx"
	"github.com/quillboard/quillboard/pkg/notesdk"
	"github.com/quillboard/quillboard/pkg/slogx"
)

type AccountDeleteHandler struct {
	Credentials *service.CredentialService
	Sessions    *service.SessionService
	Router      *Router
}

// ServeHTTP removes the caller's account record and revokes the
// session that authorized the call. The email is free for
// re-registration immediately afterwards; the new account gets a new
// uuid.
func (h *AccountDeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := h.Credentials.Delete(ctx, emailFromCtx(ctx)); err != nil {
		log.Error("account deletion failed", "error", err)
		notesdk.ErrServerError.WriteError(w)
		return
	}

	if err := h.Sessions.Revoke(ctx, sessionTokenFromCtx(ctx), domain.RevokeReasonAccountDeleted); err != nil {
		log.Error("post-deletion revocation failed", "error", err)
		notesdk.ErrServerError.WriteError(w)
		return
	}

	h.Router.clearSessionCookie(w)
	httpx.WriteJSON(w, http.StatusOK, notesdk.AckResponse{Status: "ok"})
}
