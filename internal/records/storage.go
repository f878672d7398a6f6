package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrameshirs/face-gate/internal/dropbox"
)

const datasetFile = "user_data.csv"

// ErrConflict is returned by Save when an expected revision was supplied and
// the dataset changed underneath the writer.
var ErrConflict = errors.New("records: dataset modified concurrently")

// Storage persists the serialized dataset as one opaque object. It is the
// single seam between the record store and its backend, so a transactional
// store can replace the blob store without touching any call sites.
type Storage interface {
	// Load returns the dataset bytes, its revision token, and whether the
	// dataset exists at all.
	Load(ctx context.Context) (data []byte, rev string, found bool, err error)
	// Save writes the full dataset. A non-empty expectedRev makes the write
	// conditional: ErrConflict is returned when the stored revision differs.
	Save(ctx context.Context, data []byte, expectedRev string) (newRev string, err error)
}

// BlobClient is the subset of the Dropbox client the blob storage needs.
type BlobClient interface {
	Download(ctx context.Context, path string) ([]byte, string, error)
	Upload(ctx context.Context, path string, content []byte) (string, error)
	UploadIfRev(ctx context.Context, path string, content []byte, expectedRev string) (string, error)
}

// blobStorage keeps the dataset as a single object in the blob store,
// rewritten in full on every save. Dropbox file revisions serve as the
// optimistic concurrency token.
type blobStorage struct {
	blob BlobClient
	path string
}

// NewBlobStorage creates dataset storage at <root>/user_data.csv.
func NewBlobStorage(blob BlobClient, root string) Storage {
	return &blobStorage{blob: blob, path: dropbox.JoinPath(root, datasetFile)}
}

func (b *blobStorage) Load(ctx context.Context) ([]byte, string, bool, error) {
	data, rev, err := b.blob.Download(ctx, b.path)
	if err != nil {
		if dropbox.IsNotFound(err) {
			return nil, "", false, nil
		}
		return nil, "", false, fmt.Errorf("could not load dataset: %w", err)
	}
	return data, rev, true, nil
}

func (b *blobStorage) Save(ctx context.Context, data []byte, expectedRev string) (string, error) {
	if expectedRev == "" {
		rev, err := b.blob.Upload(ctx, b.path, data)
		if err != nil {
			return "", fmt.Errorf("could not save dataset: %w", err)
		}
		return rev, nil
	}

	rev, err := b.blob.UploadIfRev(ctx, b.path, data, expectedRev)
	if err != nil {
		if dropbox.IsConflict(err) {
			return "", ErrConflict
		}
		return "", fmt.Errorf("could not save dataset: %w", err)
	}
	return rev, nil
}
