// Package verify implements the two user-facing flows: verifying a probe
// image against enrolled identities, and registering a new identity with its
// enrollment photo.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mrameshirs/face-gate/internal/dropbox"
	"github.com/mrameshirs/face-gate/internal/facematch"
	"github.com/mrameshirs/face-gate/internal/records"
)

const pendingFolder = "pending"

// ErrInconsistent reports a gallery/dataset divergence: the matcher resolved
// the probe to an enrolled identity, but no record with that id exists.
var ErrInconsistent = errors.New("verify: matched identity has no record")

// Matcher resolves a probe image to an enrolled identity.
type Matcher interface {
	Match(ctx context.Context, probe []byte) (*facematch.Result, error)
}

// Records is the subset of the record store the service needs.
type Records interface {
	Insert(ctx context.Context, attrs map[string]string) (int, error)
	Get(ctx context.Context, id int) (*records.Student, error)
	Delete(ctx context.Context, id int) error
}

// Gallery stores enrollment images.
type Gallery interface {
	Enroll(ctx context.Context, id int, image []byte) error
	Remove(ctx context.Context, id int) error
}

// ActivityLog records audit events.
type ActivityLog interface {
	Append(ctx context.Context, username, role string) error
}

// BlobClient is the subset of the Dropbox client used for pending markers.
type BlobClient interface {
	Upload(ctx context.Context, path string, content []byte) (string, error)
	Delete(ctx context.Context, path string) error
	ListFolder(ctx context.Context, path string) ([]dropbox.FileMetadata, error)
	Download(ctx context.Context, path string) ([]byte, string, error)
}

// Verification is the outcome of a verify flow.
type Verification struct {
	Matched      bool             `json:"matched"`
	Student      *records.Student `json:"student,omitempty"`
	Distance     float64          `json:"distance,omitempty"`
	EmptyGallery bool             `json:"empty_gallery,omitempty"`
}

// Service orchestrates verification and registration.
type Service struct {
	matcher Matcher
	store   Records
	gallery Gallery
	log     ActivityLog
	blob    BlobClient
	root    string
}

// NewService wires the verification service together.
func NewService(matcher Matcher, store Records, gallery Gallery, activityLog ActivityLog, blob BlobClient, root string) *Service {
	return &Service{
		matcher: matcher,
		store:   store,
		gallery: gallery,
		log:     activityLog,
		blob:    blob,
		root:    root,
	}
}

// Verify matches the probe against the gallery and resolves the matched
// identity to its record. Propagates facematch.ErrNoFace when the probe has
// no detectable face. A successful verification is logged best-effort; a
// failed log write never fails the verification.
func (s *Service) Verify(ctx context.Context, probe []byte) (*Verification, error) {
	result, err := s.matcher.Match(ctx, probe)
	if err != nil {
		return nil, err
	}

	if !result.Matched {
		return &Verification{EmptyGallery: result.EmptyGallery}, nil
	}

	student, err := s.store.Get(ctx, result.IdentityID)
	if err != nil {
		if errors.Is(err, records.ErrRecordNotFound) {
			return nil, fmt.Errorf("identity %d: %w", result.IdentityID, ErrInconsistent)
		}
		return nil, fmt.Errorf("could not load record for identity %d: %w", result.IdentityID, err)
	}

	if err := s.log.Append(ctx, student.Name, "Login"); err != nil {
		log.Printf("could not log login for %q: %v", student.Name, err)
	}

	return &Verification{
		Matched:  true,
		Student:  student,
		Distance: result.Distance,
	}, nil
}

// Register creates a record for the new identity and enrolls its photo. The
// two writes are not atomic; a pending marker written between them makes a
// half-finished registration discoverable. On enrollment failure the record
// and the marker are left in place for a later reconciliation pass.
func (s *Service) Register(ctx context.Context, attrs map[string]string, image []byte) (int, error) {
	id, err := s.store.Insert(ctx, attrs)
	if err != nil {
		return 0, fmt.Errorf("could not create record: %w", err)
	}

	markerPath := dropbox.JoinPath(s.root, pendingFolder, uuid.NewString())
	if _, err := s.blob.Upload(ctx, markerPath, []byte(strconv.Itoa(id))); err != nil {
		// The marker only exists to aid reconciliation; losing it does not
		// block the registration.
		log.Printf("could not write pending marker for id %d: %v", id, err)
		markerPath = ""
	}

	if err := s.gallery.Enroll(ctx, id, image); err != nil {
		return 0, fmt.Errorf("record %d created but enrollment failed: %w", id, err)
	}

	if markerPath != "" {
		if err := s.blob.Delete(ctx, markerPath); err != nil {
			log.Printf("could not clear pending marker for id %d: %v", id, err)
		}
	}

	if err := s.log.Append(ctx, attrs["name"], "Registration"); err != nil {
		log.Printf("could not log registration for id %d: %v", id, err)
	}
	return id, nil
}

// Deregister deletes the identity's record and its enrollment photo. The
// record goes first; a photo left behind by a failed removal is reported to
// the caller and later found by reconciliation.
func (s *Service) Deregister(ctx context.Context, id int) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.gallery.Remove(ctx, id); err != nil {
		return fmt.Errorf("record %d deleted but photo removal failed: %w", id, err)
	}
	return nil
}

// PendingIDs returns the record ids named by leftover pending markers. These
// are registrations that created a record but never finished enrolling.
func (s *Service) PendingIDs(ctx context.Context) ([]int, error) {
	entries, err := s.blob.ListFolder(ctx, dropbox.JoinPath(s.root, pendingFolder))
	if err != nil {
		if dropbox.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not list pending markers: %w", err)
	}

	var ids []int
	for _, entry := range entries {
		content, _, err := s.blob.Download(ctx, entry.Path)
		if err != nil {
			log.Printf("skipping unreadable marker %s: %v", entry.Name, err)
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(string(content)))
		if err != nil {
			log.Printf("skipping malformed marker %s", entry.Name)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
