// Package mock provides an in-memory stand-in for the Dropbox client,
// used by package tests across the repository.
package mock

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/mrameshirs/face-gate/internal/dropbox"
)

// Blob is an in-memory blob store implementing the same method set as
// dropbox.Client. Error injection fields force the next matching call to
// fail, which lets tests exercise transport failure paths.
type Blob struct {
	mu      sync.Mutex
	files   map[string][]byte
	revs    map[string]int
	folders map[string]bool

	DownloadError error
	UploadError   error
	DeleteError   error
	ListError     error
	FolderError   error
}

// NewBlob creates an empty in-memory blob store.
func NewBlob() *Blob {
	return &Blob{
		files:   make(map[string][]byte),
		revs:    make(map[string]int),
		folders: make(map[string]bool),
	}
}

// Seed places a file into the store without going through Upload.
func (b *Blob) Seed(path string, content []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files[path] = content
	b.revs[path]++
}

// Exists reports whether a file is present.
func (b *Blob) Exists(path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.files[path]
	return ok
}

// Content returns the stored bytes for path.
func (b *Blob) Content(path string) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.files[path]
}

func (b *Blob) rev(path string) string {
	return "rev-" + strconv.Itoa(b.revs[path])
}

func (b *Blob) Download(ctx context.Context, path string) ([]byte, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.DownloadError != nil {
		return nil, "", b.DownloadError
	}
	content, ok := b.files[path]
	if !ok {
		return nil, "", dropbox.ErrNotFound
	}
	return content, b.rev(path), nil
}

func (b *Blob) Upload(ctx context.Context, path string, content []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.UploadError != nil {
		return "", b.UploadError
	}
	b.files[path] = content
	b.revs[path]++
	return b.rev(path), nil
}

func (b *Blob) UploadIfRev(ctx context.Context, path string, content []byte, expectedRev string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.UploadError != nil {
		return "", b.UploadError
	}
	if b.rev(path) != expectedRev {
		return "", &dropbox.ConflictError{Path: path}
	}
	b.files[path] = content
	b.revs[path]++
	return b.rev(path), nil
}

func (b *Blob) Delete(ctx context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.DeleteError != nil {
		return b.DeleteError
	}
	if _, ok := b.files[path]; !ok {
		return dropbox.ErrNotFound
	}
	delete(b.files, path)
	return nil
}

func (b *Blob) ListFolder(ctx context.Context, path string) ([]dropbox.FileMetadata, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ListError != nil {
		return nil, b.ListError
	}

	var names []string
	for p := range b.files {
		if strings.HasPrefix(p, path+"/") {
			names = append(names, p)
		}
	}
	if len(names) == 0 && !b.folders[path] {
		return nil, dropbox.ErrNotFound
	}
	sort.Strings(names)

	entries := make([]dropbox.FileMetadata, 0, len(names))
	for _, p := range names {
		entries = append(entries, dropbox.FileMetadata{
			Tag:  "file",
			Name: p[strings.LastIndex(p, "/")+1:],
			Path: p,
			Rev:  b.rev(p),
		})
	}
	return entries, nil
}

func (b *Blob) CreateFolder(ctx context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FolderError != nil {
		return b.FolderError
	}
	b.folders[path] = true
	return nil
}

func (b *Blob) GetRev(ctx context.Context, path string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.DownloadError != nil {
		return "", b.DownloadError
	}
	if _, ok := b.files[path]; !ok {
		return "", dropbox.ErrNotFound
	}
	return b.rev(path), nil
}
