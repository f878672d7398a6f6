package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mrameshirs/face-gate/internal/records"
)

// StudentsHandler handles student record endpoints.
type StudentsHandler struct {
	svc   VerifyService
	store RecordStore
}

// NewStudentsHandler creates a new students handler.
func NewStudentsHandler(svc VerifyService, store RecordStore) *StudentsHandler {
	return &StudentsHandler{svc: svc, store: store}
}

// Register creates a new student record and enrolls the attached photo. The
// multipart form carries the record attributes as regular fields plus the
// enrollment photo as the "image" file.
func (h *StudentsHandler) Register(w http.ResponseWriter, r *http.Request) {
	image, ok := readImageFile(w, r)
	if !ok {
		return
	}

	attrs := make(map[string]string)
	for key, values := range r.MultipartForm.Value {
		if len(values) > 0 {
			attrs[key] = values[0]
		}
	}
	if attrs["name"] == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	id, err := h.svc.Register(r.Context(), attrs, image)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]int{"id": id})
}

// List returns student records, filtered by query parameters. Each parameter
// is a substring predicate on the column of the same name; unknown columns
// are ignored.
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	predicates := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			predicates[key] = values[0]
		}
	}

	var (
		students []records.Student
		err      error
	)
	if len(predicates) == 0 {
		students, err = h.store.All(r.Context())
	} else {
		students, err = h.store.Query(r.Context(), predicates)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load records")
		return
	}
	if students == nil {
		students = []records.Student{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"students": students,
		"count":    len(students),
	})
}

// Get returns one student record by id.
func (h *StudentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := studentID(w, r)
	if !ok {
		return
	}

	student, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, records.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "student not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load record")
		return
	}

	respondJSON(w, http.StatusOK, student)
}

// Update applies the supplied attributes to a student record.
func (h *StudentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := studentID(w, r)
	if !ok {
		return
	}

	var attrs map[string]string
	if err := json.NewDecoder(r.Body).Decode(&attrs); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.Update(r.Context(), id, attrs); err != nil {
		if errors.Is(err, records.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "student not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to update record")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Delete removes a student record together with its enrollment photo.
func (h *StudentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := studentID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Deregister(r.Context(), id); err != nil {
		if errors.Is(err, records.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "student not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete record")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func studentID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid student id")
		return 0, false
	}
	return id, true
}
