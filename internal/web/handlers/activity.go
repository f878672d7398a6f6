package handlers

import (
	"net/http"

	"github.com/mrameshirs/face-gate/internal/activity"
)

// ActivityHandler handles the activity log endpoint.
type ActivityHandler struct {
	log ActivityLog
}

// NewActivityHandler creates a new activity handler.
func NewActivityHandler(log ActivityLog) *ActivityHandler {
	return &ActivityHandler{log: log}
}

// List returns every logged event in append order.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.log.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load activity log")
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}
