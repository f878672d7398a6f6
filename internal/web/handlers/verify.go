package handlers

import (
	"errors"
	"net/http"

	"github.com/mrameshirs/face-gate/internal/dropbox"
	"github.com/mrameshirs/face-gate/internal/facematch"
	"github.com/mrameshirs/face-gate/internal/verify"
)

// VerifyHandler handles the face verification endpoint.
type VerifyHandler struct {
	svc VerifyService
}

// NewVerifyHandler creates a new verify handler.
func NewVerifyHandler(svc VerifyService) *VerifyHandler {
	return &VerifyHandler{svc: svc}
}

// Verify accepts a multipart probe image and returns the verification result.
// A probe that matches nobody is a 200 with matched=false, not an error.
func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	probe, ok := readImageFile(w, r)
	if !ok {
		return
	}

	result, err := h.svc.Verify(r.Context(), probe)
	if err != nil {
		switch {
		case errors.Is(err, facematch.ErrNoFace):
			respondError(w, http.StatusUnprocessableEntity, "no face detected in image")
		case errors.Is(err, verify.ErrInconsistent):
			respondError(w, http.StatusConflict, "matched identity has no record")
		case dropbox.IsAuthError(err):
			respondError(w, http.StatusBadGateway, "storage authentication failed")
		default:
			respondError(w, http.StatusInternalServerError, "verification failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, result)
}
