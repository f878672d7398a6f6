package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/mrameshirs/face-gate/internal/activity"
	"github.com/mrameshirs/face-gate/internal/dropbox/mock"
	"github.com/mrameshirs/face-gate/internal/gallery"
	"github.com/mrameshirs/face-gate/internal/records"
	"github.com/mrameshirs/face-gate/internal/verify"
)

func TestRegister(t *testing.T) {
	svc := &fakeService{registeredID: 3}
	handler := NewStudentsHandler(svc, &fakeStore{})

	req := multipartImageRequest(t, "/api/v1/students", []byte("photo"), map[string]string{
		"name": "Kumar",
		"city": "Chennai",
	})
	recorder := httptest.NewRecorder()
	handler.Register(recorder, req)

	assertStatusCode(t, recorder, http.StatusCreated)

	var got map[string]int
	parseJSONResponse(t, recorder, &got)
	if got["id"] != 3 {
		t.Errorf("expected id 3, got %d", got["id"])
	}
	if svc.registeredAttrs["city"] != "Chennai" {
		t.Errorf("expected attrs to reach the service, got %v", svc.registeredAttrs)
	}
	if string(svc.registeredImage) != "photo" {
		t.Error("expected the image to reach the service")
	}
}

func TestRegister_MissingName(t *testing.T) {
	handler := NewStudentsHandler(&fakeService{}, &fakeStore{})

	req := multipartImageRequest(t, "/api/v1/students", []byte("photo"), map[string]string{"city": "Chennai"})
	recorder := httptest.NewRecorder()
	handler.Register(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "name is required")
}

func TestRegister_ServiceError(t *testing.T) {
	handler := NewStudentsHandler(&fakeService{registerErr: errBoom}, &fakeStore{})

	req := multipartImageRequest(t, "/api/v1/students", []byte("photo"), map[string]string{"name": "Kumar"})
	recorder := httptest.NewRecorder()
	handler.Register(recorder, req)

	assertStatusCode(t, recorder, http.StatusInternalServerError)
}

func TestList_All(t *testing.T) {
	store := &fakeStore{students: []records.Student{
		{ID: 1, Name: "Anitha"},
		{ID: 2, Name: "Kumar"},
	}}
	handler := NewStudentsHandler(&fakeService{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students", nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var got struct {
		Students []records.Student `json:"students"`
		Count    int               `json:"count"`
	}
	parseJSONResponse(t, recorder, &got)
	if got.Count != 2 || len(got.Students) != 2 {
		t.Errorf("expected 2 students, got %+v", got)
	}
}

func TestList_Filtered(t *testing.T) {
	store := &fakeStore{students: []records.Student{
		{ID: 1, Name: "Anitha"},
		{ID: 2, Name: "Kumar"},
	}}
	handler := NewStudentsHandler(&fakeService{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students?name=Kumar", nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	if !strings.Contains(recorder.Body.String(), "Kumar") || strings.Contains(recorder.Body.String(), "Anitha") {
		t.Errorf("expected only Kumar in response: %s", recorder.Body.String())
	}
}

func TestList_EmptyIsArray(t *testing.T) {
	handler := NewStudentsHandler(&fakeService{}, &fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students", nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	if !strings.Contains(recorder.Body.String(), `"students":[]`) {
		t.Errorf("expected empty array, got %s", recorder.Body.String())
	}
}

func TestGet(t *testing.T) {
	store := &fakeStore{students: []records.Student{{ID: 5, Name: "Anitha"}}}
	handler := NewStudentsHandler(&fakeService{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/5", nil)
	req = requestWithChiParams(req, map[string]string{"id": "5"})
	recorder := httptest.NewRecorder()
	handler.Get(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var got records.Student
	parseJSONResponse(t, recorder, &got)
	if got.ID != 5 || got.Name != "Anitha" {
		t.Errorf("unexpected student: %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	handler := NewStudentsHandler(&fakeService{}, &fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/99", nil)
	req = requestWithChiParams(req, map[string]string{"id": "99"})
	recorder := httptest.NewRecorder()
	handler.Get(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)
	assertJSONError(t, recorder, "student not found")
}

func TestGet_InvalidID(t *testing.T) {
	handler := NewStudentsHandler(&fakeService{}, &fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/abc", nil)
	req = requestWithChiParams(req, map[string]string{"id": "abc"})
	recorder := httptest.NewRecorder()
	handler.Get(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "invalid student id")
}

func TestUpdate(t *testing.T) {
	store := &fakeStore{students: []records.Student{{ID: 5, Name: "Anitha"}}}
	handler := NewStudentsHandler(&fakeService{}, store)

	body := strings.NewReader(`{"city":"Chennai"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/students/5", body)
	req = requestWithChiParams(req, map[string]string{"id": "5"})
	recorder := httptest.NewRecorder()
	handler.Update(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	if store.updatedID != 5 || store.updatedAttrs["city"] != "Chennai" {
		t.Errorf("expected update to reach the store, got id=%d attrs=%v", store.updatedID, store.updatedAttrs)
	}
}

func TestUpdate_InvalidBody(t *testing.T) {
	handler := NewStudentsHandler(&fakeService{}, &fakeStore{})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/students/5", strings.NewReader("not json"))
	req = requestWithChiParams(req, map[string]string{"id": "5"})
	recorder := httptest.NewRecorder()
	handler.Update(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "invalid request body")
}

func TestUpdate_NotFound(t *testing.T) {
	handler := NewStudentsHandler(&fakeService{}, &fakeStore{})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/students/99", strings.NewReader(`{"city":"Chennai"}`))
	req = requestWithChiParams(req, map[string]string{"id": "99"})
	recorder := httptest.NewRecorder()
	handler.Update(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)
}

func TestDelete(t *testing.T) {
	svc := &fakeService{}
	handler := NewStudentsHandler(svc, &fakeStore{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/students/5", nil)
	req = requestWithChiParams(req, map[string]string{"id": "5"})
	recorder := httptest.NewRecorder()
	handler.Delete(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	if svc.deregisteredID != 5 {
		t.Errorf("expected delete to go through the service, got id=%d", svc.deregisteredID)
	}
}

func TestDelete_NotFound(t *testing.T) {
	handler := NewStudentsHandler(&fakeService{deregisterErr: records.ErrRecordNotFound}, &fakeStore{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/students/99", nil)
	req = requestWithChiParams(req, map[string]string{"id": "99"})
	recorder := httptest.NewRecorder()
	handler.Delete(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)
}

func TestDelete_RemovesEnrollmentPhoto(t *testing.T) {
	blob := mock.NewBlob()
	store := records.NewStore(records.NewBlobStorage(blob, "/face_gate"), false)
	gal := gallery.New(blob, "/face_gate")
	svc := verify.NewService(nil, store, gal, activity.NewLog(blob, "/face_gate"), blob, "/face_gate")

	ctx := context.Background()
	id, err := store.Insert(ctx, map[string]string{"name": "Anitha"})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := gal.Enroll(ctx, id, []byte("photo")); err != nil {
		t.Fatalf("enroll failed: %v", err)
	}

	handler := NewStudentsHandler(svc, store)
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/students/"+strconv.Itoa(id), nil)
	req = requestWithChiParams(req, map[string]string{"id": strconv.Itoa(id)})
	recorder := httptest.NewRecorder()
	handler.Delete(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	if _, err := store.Get(ctx, id); !errors.Is(err, records.ErrRecordNotFound) {
		t.Errorf("expected the record to be gone, got %v", err)
	}
	if blob.Exists(gal.ImagePath(id)) {
		t.Errorf("enrollment photo %s still exists after identity deletion", gal.ImagePath(id))
	}
}
