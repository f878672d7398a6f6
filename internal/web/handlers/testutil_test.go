package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mrameshirs/face-gate/internal/activity"
	"github.com/mrameshirs/face-gate/internal/records"
	"github.com/mrameshirs/face-gate/internal/verify"
)

// fakeService implements VerifyService with canned results.
type fakeService struct {
	verification *verify.Verification
	verifyErr    error

	registeredID    int
	registeredAttrs map[string]string
	registeredImage []byte
	registerErr     error

	deregisteredID int
	deregisterErr  error
}

func (f *fakeService) Verify(ctx context.Context, probe []byte) (*verify.Verification, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.verification, nil
}

func (f *fakeService) Register(ctx context.Context, attrs map[string]string, image []byte) (int, error) {
	if f.registerErr != nil {
		return 0, f.registerErr
	}
	f.registeredAttrs = attrs
	f.registeredImage = image
	return f.registeredID, nil
}

func (f *fakeService) Deregister(ctx context.Context, id int) error {
	if f.deregisterErr != nil {
		return f.deregisterErr
	}
	f.deregisteredID = id
	return nil
}

// fakeStore implements RecordStore over a slice.
type fakeStore struct {
	students []records.Student
	err      error

	updatedID    int
	updatedAttrs map[string]string
}

func (f *fakeStore) All(ctx context.Context) ([]records.Student, error) {
	return f.students, f.err
}

func (f *fakeStore) Get(ctx context.Context, id int) (*records.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.students {
		if f.students[i].ID == id {
			return &f.students[i], nil
		}
	}
	return nil, records.ErrRecordNotFound
}

func (f *fakeStore) Query(ctx context.Context, predicates map[string]string) ([]records.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []records.Student
	for _, s := range f.students {
		if name, ok := predicates["name"]; !ok || name == s.Name {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(ctx context.Context, id int, attrs map[string]string) error {
	if f.err != nil {
		return f.err
	}
	if _, err := f.Get(ctx, id); err != nil {
		return err
	}
	f.updatedID = id
	f.updatedAttrs = attrs
	return nil
}

// fakeActivity implements ActivityLog.
type fakeActivity struct {
	entries []activity.Entry
	err     error
}

func (f *fakeActivity) List(ctx context.Context) ([]activity.Entry, error) {
	return f.entries, f.err
}

var errBoom = errors.New("boom")

// multipartImageRequest builds a multipart request with an image part and
// optional form fields.
func multipartImageRequest(t *testing.T, path string, image []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if image != nil {
		part, err := mw.CreateFormFile("image", "probe.jpg")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(image); err != nil {
			t.Fatalf("failed to write image: %v", err)
		}
	}
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// requestWithChiParams creates a request with chi URL parameters.
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type.
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code.
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message.
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
