package gallery

import (
	"context"
	"errors"
	"testing"

	"github.com/mrameshirs/face-gate/internal/dropbox/mock"
)

func TestEnrollAndFetch(t *testing.T) {
	blob := mock.NewBlob()
	repo := New(blob, "/face_gate")
	ctx := context.Background()

	image := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	if err := repo.Enroll(ctx, 7, image); err != nil {
		t.Fatalf("enroll failed: %v", err)
	}

	if !blob.Exists("/face_gate/known_users/7.jpg") {
		t.Error("expected image at /face_gate/known_users/7.jpg")
	}

	got, found, err := repo.Fetch(ctx, 7)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if !found {
		t.Fatal("expected image to be found")
	}
	if string(got) != string(image) {
		t.Error("fetched image differs from enrolled image")
	}
}

func TestEnroll_Overwrites(t *testing.T) {
	blob := mock.NewBlob()
	repo := New(blob, "/face_gate")
	ctx := context.Background()

	if err := repo.Enroll(ctx, 1, []byte("old")); err != nil {
		t.Fatalf("enroll failed: %v", err)
	}
	if err := repo.Enroll(ctx, 1, []byte("new")); err != nil {
		t.Fatalf("re-enroll failed: %v", err)
	}

	got, _, err := repo.Fetch(ctx, 1)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("expected 'new', got '%s'", got)
	}
}

func TestFetch_Absent(t *testing.T) {
	repo := New(mock.NewBlob(), "/face_gate")

	_, found, err := repo.Fetch(context.Background(), 42)
	if err != nil {
		t.Fatalf("absent image must not be an error, got %v", err)
	}
	if found {
		t.Error("expected found=false for missing image")
	}
}

func TestListEnrolledIDs(t *testing.T) {
	blob := mock.NewBlob()
	blob.Seed("/face_gate/known_users/1.jpg", []byte("a"))
	blob.Seed("/face_gate/known_users/2.jpg", []byte("b"))
	blob.Seed("/face_gate/known_users/10.jpg", []byte("c"))
	blob.Seed("/face_gate/known_users/readme.txt", []byte("not an id"))
	repo := New(blob, "/face_gate")

	ids, err := repo.ListEnrolledIDs(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d (%v)", len(ids), ids)
	}
	want := map[int]bool{1: true, 2: true, 10: true}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected id %d", id)
		}
	}
}

func TestListEnrolledIDs_MissingFolder(t *testing.T) {
	repo := New(mock.NewBlob(), "/face_gate")

	ids, err := repo.ListEnrolledIDs(context.Background())
	if err != nil {
		t.Fatalf("missing folder must not be an error, got %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected empty id list, got %v", ids)
	}
}

func TestRemove(t *testing.T) {
	blob := mock.NewBlob()
	blob.Seed("/face_gate/known_users/3.jpg", []byte("img"))
	repo := New(blob, "/face_gate")
	ctx := context.Background()

	if err := repo.Remove(ctx, 3); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if blob.Exists("/face_gate/known_users/3.jpg") {
		t.Error("expected image to be deleted")
	}

	// Removing again is not an error.
	if err := repo.Remove(ctx, 3); err != nil {
		t.Errorf("re-remove should succeed, got %v", err)
	}
}

func TestEnroll_UploadFailure(t *testing.T) {
	blob := mock.NewBlob()
	blob.UploadError = errors.New("network down")
	repo := New(blob, "/face_gate")

	if err := repo.Enroll(context.Background(), 1, []byte("img")); err == nil {
		t.Error("expected enroll to fail when upload fails")
	}
}
