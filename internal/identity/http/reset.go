package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/quillboard/quillboard/internal/identity/service"
	"github.com/quillboard/quillboard/pkg/httpx"
	"github.com/quillboard/quillboard/pkg/notesdk"
	"github.com/quillboard/quillboard/pkg/slogx"
)

type ResetRequestHandler struct {
	Resets *service.ResetService

	// Deliver hands a freshly minted token to the out-of-band channel
	// (an email sender in production). Nil means issue-only.
	Deliver func(ctx context.Context, email, token string)
}

type resetRequestRequest struct {
	Email string `json:"email"`
}

// ServeHTTP mints a password reset token and hands it to the delivery
// hook. The response is 200 with an identical body whether or not the
// email has an account, so the endpoint cannot be used to probe for
// registered addresses. The token never appears in the response.
func (h *ResetRequestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req resetRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		notesdk.ErrInvalidBody.WriteError(w)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		notesdk.ErrInvalidBody.WriteError(w)
		return
	}

	token, err := h.Resets.Request(ctx, req.Email)
	if err != nil {
		slogx.FromContext(ctx).Error("reset request failed", "error", err)
		notesdk.ErrServerError.WriteError(w)
		return
	}

	if token != "" && h.Deliver != nil {
		h.Deliver(ctx, req.Email, token)
	}

	httpx.WriteJSON(w, http.StatusOK, notesdk.AckResponse{Status: "ok"})
}

type ResetPasswordHandler struct {
	Resets   *service.ResetService
	Sessions *service.SessionService
	Router   *Router
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ServeHTTP redeems a reset token, rotates the password, and opens a
// fresh session for the recovered account.
func (h *ResetPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		notesdk.ErrInvalidBody.WriteError(w)
		return
	}
	if req.Token == "" || req.NewPassword == "" {
		notesdk.ErrInvalidBody.WriteError(w)
		return
	}

	user, err := h.Resets.Consume(ctx, req.Token, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResetNotFound):
			notesdk.ErrNotFound.WriteError(w)
		case errors.Is(err, service.ErrResetExpired):
			notesdk.ErrResetExpired.WriteError(w)
		case errors.Is(err, service.ErrWeakPassword):
			notesdk.ErrWeakPassword.WriteError(w)
		case errors.Is(err, service.ErrNotFound):
			// Account deleted between request and redeem.
			notesdk.ErrNotFound.WriteError(w)
		default:
			log.Error("password reset failed", "error", err)
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
	httpx.WriteJSON(w, http.StatusOK, notesdk.IdentityResponse{
		UUID:         user.UUID,
		Email:        user.Email,
		SessionToken: token,
	})
}
