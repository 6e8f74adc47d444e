package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/quillboard/quillboard/internal/identity/service"
	"github.com/quillboard/quillboard/pkg/httpx"
	"github.com/quillboard/quillboard/pkg/notesdk"
	"github.com/quillboard/quillboard/pkg/slogx"
)

type DirectoryHandler struct {
	Directories *service.DirectoryService
}

type associateRequest struct {
	DirectoryPath string `json:"directory_path"`
}

// HandleAssociate binds the caller's account to a storage directory.
// The account uuid comes from the verified session, never from the
// request body.
func (h *DirectoryHandler) HandleAssociate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req associateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		notesdk.ErrInvalidBody.WriteError(w)
		return
	}
	if strings.TrimSpace(req.DirectoryPath) == "" {
		notesdk.ErrInvalidBody.WriteError(w)
		return
	}

	if _, err := h.Directories.Associate(ctx, httpx.AccountUUIDFromCtx(ctx), req.DirectoryPath); err != nil {
		slogx.FromContext(ctx).Error("directory association failed", "error", err)
		notesdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, notesdk.AckResponse{Status: "ok"})
}

// HandleGet returns the directory association for the uuid in the
// path. Callers may only read their own mapping; any other uuid is
// Forbidden regardless of whether it exists.
func (h *DirectoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requested := r.PathValue("uuid")
	if requested != httpx.AccountUUIDFromCtx(ctx) {
		notesdk.ErrForbidden.WriteError(w)
		return
	}

	assoc, err := h.Directories.Get(ctx, requested)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			notesdk.ErrNotFound.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("directory lookup failed", "error", err)
		notesdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, notesdk.DirectoryResponse{
		DirectoryPath:  assoc.DirectoryPath,
		LastAccessTime: assoc.LastAccessTime.Format(time.RFC3339),
	})
}

// HandleRemove drops the caller's directory association. Removing an
// absent association still succeeds.
func (h *DirectoryHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Directories.Remove(ctx, httpx.AccountUUIDFromCtx(ctx)); err != nil {
		slogx.FromContext(ctx).Error("directory removal failed", "error", err)
		notesdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, notesdk.AckResponse{Status: "ok"})
}
