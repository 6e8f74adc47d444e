package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/quillboard/quillboard/internal/identity/service"
	"github.com/quillboard/quillboard/pkg/httpx"
	"github.com/quillboard/quillboard/pkg/notesdk"
	"github.com/quillboard/quillboard/pkg/slogx"
)

type RegisterHandler struct {
	Credentials *service.CredentialService
	Sessions    *service.SessionService
	Router      *Router
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeHTTP creates a new account and opens its first session. The
// email key is claimed atomically, so two racing registrations for the
// same address yield exactly one 201 and one 409.
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		notesdk.ErrInvalidBody.WriteError(w)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		notesdk.ErrInvalidBody.WriteError(w)
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		notesdk.ErrInvalidBody.WriteError(w)
		return
	}

	user, err := h.Credentials.Register(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWeakPassword):
			notesdk.ErrWeakPassword.WriteError(w)
		case errors.Is(err, service.ErrEmailTaken):
			notesdk.ErrEmailTaken.WriteError(w)
		default:
			log.Error("registration failed", "error", err)
			notesdk.ErrServerError.WriteError(w)
		}
		return
	}

	token, err := h.Sessions.Issue(ctx, user.UUID, user.Email)
	if err != nil {
		log.Error("session issue failed", "error", err)
		notesdk.ErrServerError.WriteError(w)
		return
	}

	h.Router.setSessionCookie(w, token, h.Sessions.Signer.TTL())
	httpx.WriteJSON(w, http.StatusCreated, notesdk.IdentityResponse{
		UUID:         user.UUID,
		Email:        user.Email,
		SessionToken: token,
	})
}
