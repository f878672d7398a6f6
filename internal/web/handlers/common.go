// Package handlers contains the HTTP handlers for the JSON API.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/mrameshirs/face-gate/internal/activity"
	"github.com/mrameshirs/face-gate/internal/records"
	"github.com/mrameshirs/face-gate/internal/verify"
)

// maxUploadMemory caps in-memory multipart parsing for image uploads.
const maxUploadMemory = 32 << 20

// VerifyService is the verification service surface the handlers need.
// Deletion goes through the service so the enrollment photo is removed
// together with the record.
type VerifyService interface {
	Verify(ctx context.Context, probe []byte) (*verify.Verification, error)
	Register(ctx context.Context, attrs map[string]string, image []byte) (int, error)
	Deregister(ctx context.Context, id int) error
}

// RecordStore is the record store surface the handlers need.
type RecordStore interface {
	All(ctx context.Context) ([]records.Student, error)
	Get(ctx context.Context, id int) (*records.Student, error)
	Query(ctx context.Context, predicates map[string]string) ([]records.Student, error)
	Update(ctx context.Context, id int, attrs map[string]string) error
}

// ActivityLog is the activity log surface the handlers need.
type ActivityLog interface {
	List(ctx context.Context) ([]activity.Entry, error)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// readImageFile pulls the "image" part out of a multipart request.
func readImageFile(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return nil, false
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file is required")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read image file")
		return nil, false
	}
	if len(data) == 0 {
		respondError(w, http.StatusBadRequest, "image file is empty")
		return nil, false
	}
	return data, true
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
