package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quillboard/quillboard/internal/identity/service"
	"github.com/quillboard/quillboard/pkg/httpx"
	"github.com/quillboard/quillboard/pkg/notesdk"
	"github.com/quillboard/quillboard/pkg/slogx"
)

type LoginHandler struct {
	Credentials *service.CredentialService
	Sessions    *service.SessionService
	Router      *Router
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeHTTP authenticates the account, recovers the stored plaintext
// secret, and opens a session. Unknown emails and wrong passwords are
// both a plain 401.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		notesdk.ErrInvalidBody.WriteError(w)
		return
	}
	if req.Email == "" || req.Password == "" {
		notesdk.ErrInvalidBody.WriteError(w)
		return
	}

	user, err := h.Credentials.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			notesdk.ErrInvalidCredentials.WriteError(w)
			return
		}
		log.Error("login failed", "error", err)
		notesdk.ErrServerError.WriteError(w)
		return
	}

	secret, err := h.Credentials.RecoverSecret(ctx, user, req.Password)
	if err != nil {
		log.Error("secret recovery failed", "error", err)
		notesdk.ErrServerError.WriteError(w)
		return
	}

	token, err := h.Sessions.Issue(ctx, user.UUID, user.Email)
	if err != nil {
		log.Error("session issue failed", "error", err)
		notesdk.ErrServerError.WriteError(w)
		return
	}

	h.Router.setSessionCookie(w, token, h.Sessions.Signer.TTL())
	httpx.WriteJSON(w, http.StatusOK, notesdk.LoginResponse{
		UUID:         user.UUID,
		Email:        user.Email,
		Secret:       secret,
		SessionToken: token,
	})
}
