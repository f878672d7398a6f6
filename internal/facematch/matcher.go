// Package facematch decides whether a probe image belongs to a known
// identity by comparing face embeddings against the enrollment gallery.
package facematch

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Strategy selects how the candidate loop accepts a match.
type Strategy string

const (
	// StrategyFirstMatch accepts the first candidate under the threshold,
	// in gallery listing order. This bounds the cost of a large gallery but
	// is not deterministic when two enrolled faces are near-duplicates.
	StrategyFirstMatch Strategy = "first-match"
	// StrategyBestMatch scans the whole gallery and accepts the closest
	// candidate under the threshold.
	StrategyBestMatch Strategy = "best-match"
)

// ParseStrategy maps a config string to a Strategy, defaulting to first-match.
func ParseStrategy(s string) Strategy {
	if Strategy(s) == StrategyBestMatch {
		return StrategyBestMatch
	}
	return StrategyFirstMatch
}

// Embedder computes a face embedding for an image.
type Embedder interface {
	EmbedFace(ctx context.Context, imageData []byte) ([]float32, error)
}

// Gallery is the subset of the gallery repository the matcher needs.
type Gallery interface {
	ListEnrolledIDs(ctx context.Context) ([]int, error)
	Fetch(ctx context.Context, id int) ([]byte, bool, error)
}

// Result describes the outcome of a match attempt.
type Result struct {
	Matched    bool
	IdentityID int
	Distance   float64
	// EmptyGallery distinguishes "nobody is enrolled" from "no candidate was
	// close enough". Both are non-matches to callers, but they mean different
	// things when diagnosing a deployment.
	EmptyGallery bool
	// Skipped counts candidates that could not be processed (missing image,
	// corrupt file, no detectable face) and were passed over.
	Skipped int
}

// Matcher finds the enrolled identity for a probe image, if any.
type Matcher struct {
	gallery   Gallery
	embedder  Embedder
	threshold float64
	strategy  Strategy
}

// NewMatcher creates a matcher. A non-positive threshold falls back to 0.4,
// the validated default for the face server's embedding model.
func NewMatcher(gallery Gallery, embedder Embedder, threshold float64, strategy Strategy) *Matcher {
	if threshold <= 0 {
		threshold = 0.4
	}
	return &Matcher{
		gallery:   gallery,
		embedder:  embedder,
		threshold: threshold,
		strategy:  strategy,
	}
}

// Match compares the probe image against every enrolled identity.
//
// Returns ErrNoFace when the probe itself contains no detectable face; this
// is checked before any candidate is touched. Candidates that fail to
// process are skipped, never aborting the whole match.
func (m *Matcher) Match(ctx context.Context, probe []byte) (*Result, error) {
	candidates, err := m.gallery.ListEnrolledIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list enrolled identities: %w", err)
	}
	if len(candidates) == 0 {
		return &Result{EmptyGallery: true}, nil
	}

	probeEmbedding, err := m.embedder.EmbedFace(ctx, probe)
	if err != nil {
		if errors.Is(err, ErrNoFace) {
			return nil, ErrNoFace
		}
		return nil, fmt.Errorf("could not embed probe image: %w", err)
	}

	result := &Result{}
	bestID := 0
	bestDistance := 0.0
	for _, id := range candidates {
		image, found, err := m.gallery.Fetch(ctx, id)
		if err != nil || !found {
			if err != nil {
				log.Printf("skipping candidate %d: %v", id, err)
			}
			result.Skipped++
			continue
		}

		candidateEmbedding, err := m.embedder.EmbedFace(ctx, image)
		if err != nil {
			// Corrupt enrollment image or no detectable face in it.
			log.Printf("skipping candidate %d: %v", id, err)
			result.Skipped++
			continue
		}

		distance := CosineDistance(probeEmbedding, candidateEmbedding)
		if distance >= m.threshold {
			continue
		}

		if m.strategy == StrategyFirstMatch {
			result.Matched = true
			result.IdentityID = id
			result.Distance = distance
			return result, nil
		}
		if !result.Matched || distance < bestDistance {
			result.Matched = true
			bestID = id
			bestDistance = distance
		}
	}

	if result.Matched {
		result.IdentityID = bestID
		result.Distance = bestDistance
	}
	return result, nil
}
