// Package gallery manages enrollment images in the blob store. Each enrolled
// identity owns exactly one reference photo at known_users/<id>.jpg.
package gallery

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mrameshirs/face-gate/internal/dropbox"
)

const galleryFolder = "known_users"

// BlobStore is the subset of the Dropbox client the gallery needs.
type BlobStore interface {
	Download(ctx context.Context, path string) ([]byte, string, error)
	Upload(ctx context.Context, path string, content []byte) (string, error)
	Delete(ctx context.Context, path string) error
	ListFolder(ctx context.Context, path string) ([]dropbox.FileMetadata, error)
	CreateFolder(ctx context.Context, path string) error
}

// Repository maps identity IDs to enrollment images.
type Repository struct {
	blob BlobStore
	root string
}

// New creates a gallery repository rooted at root (e.g. /face_gate).
func New(blob BlobStore, root string) *Repository {
	return &Repository{blob: blob, root: root}
}

// Folder returns the gallery folder path.
func (r *Repository) Folder() string {
	return dropbox.JoinPath(r.root, galleryFolder)
}

// ImagePath returns the blob path for an identity's enrollment image.
func (r *Repository) ImagePath(id int) string {
	return dropbox.JoinPath(r.root, galleryFolder, strconv.Itoa(id)+".jpg")
}

// Enroll stores image as the enrollment photo for id, overwriting any
// previous photo.
func (r *Repository) Enroll(ctx context.Context, id int, image []byte) error {
	if err := r.blob.CreateFolder(ctx, r.Folder()); err != nil {
		return fmt.Errorf("could not ensure gallery folder: %w", err)
	}
	if _, err := r.blob.Upload(ctx, r.ImagePath(id), image); err != nil {
		return fmt.Errorf("could not upload enrollment image for id %d: %w", id, err)
	}
	return nil
}

// Fetch returns the enrollment image for id. The second return value is
// false when no image exists, which is an expected state for identities that
// were never enrolled or were deleted.
func (r *Repository) Fetch(ctx context.Context, id int) ([]byte, bool, error) {
	content, _, err := r.blob.Download(ctx, r.ImagePath(id))
	if err != nil {
		if dropbox.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("could not download enrollment image for id %d: %w", id, err)
	}
	return content, true, nil
}

// ListEnrolledIDs returns the identity IDs that currently have an enrollment
// image, in folder listing order. A missing gallery folder means nobody is
// enrolled yet and yields an empty list.
func (r *Repository) ListEnrolledIDs(ctx context.Context) ([]int, error) {
	entries, err := r.blob.ListFolder(ctx, r.Folder())
	if err != nil {
		if dropbox.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not list gallery folder: %w", err)
	}

	ids := make([]int, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name
		if dot := strings.LastIndex(name, "."); dot >= 0 {
			name = name[:dot]
		}
		id, err := strconv.Atoi(name)
		if err != nil {
			continue // foreign file in the gallery folder
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Remove deletes the enrollment image for id. Removing an identity that has
// no image is not an error.
func (r *Repository) Remove(ctx context.Context, id int) error {
	if err := r.blob.Delete(ctx, r.ImagePath(id)); err != nil {
		if dropbox.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("could not delete enrollment image for id %d: %w", id, err)
	}
	return nil
}
