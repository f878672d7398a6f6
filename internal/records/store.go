// Package records holds the identity-attribute dataset: one flat table,
// loaded in full, held in memory for the session, and rewritten in full on
// every mutation. There are no partial writes and no transactions across the
// read-modify-write cycle; two sessions mutating concurrently race unless
// optimistic writes are enabled.
package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrRecordNotFound is returned when an operation references an id that is
// not in the dataset.
var ErrRecordNotFound = errors.New("records: record not found")

// Store owns the in-memory dataset for one session. It is not safe for
// concurrent use; each session owns its own Store.
type Store struct {
	storage    Storage
	optimistic bool

	loaded   bool
	students []Student
	rev      string
}

// NewStore creates a record store over the given storage backend. With
// optimistic enabled, saves are revision-checked and retried once on
// conflict; otherwise the last writer wins.
func NewStore(storage Storage, optimistic bool) *Store {
	return &Store{storage: storage, optimistic: optimistic}
}

// Load fetches the dataset on first use. An absent dataset is synthesized as
// an empty table with the full declared column set. Safe to call repeatedly.
func (s *Store) Load(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.reload(ctx)
}

// reload unconditionally refetches the dataset, discarding in-memory state.
func (s *Store) reload(ctx context.Context) error {
	data, rev, found, err := s.storage.Load(ctx)
	if err != nil {
		return err
	}
	if !found {
		s.students = nil
		s.rev = ""
		s.loaded = true
		return nil
	}

	students, err := decodeDataset(data)
	if err != nil {
		return err
	}
	s.students = students
	s.rev = rev
	s.loaded = true
	return nil
}

// persist writes the whole table back. The in-memory state already reflects
// the mutation when this runs; a failure here must surface to the caller as
// a failed mutation, because durability was not achieved.
func (s *Store) persist(ctx context.Context) error {
	data, err := encodeDataset(s.students)
	if err != nil {
		return err
	}

	expectedRev := ""
	if s.optimistic {
		expectedRev = s.rev
	}
	rev, err := s.storage.Save(ctx, data, expectedRev)
	if err != nil {
		return err
	}
	s.rev = rev
	return nil
}

// commit applies a mutation and persists the result. Under optimistic
// writes a conflicting save triggers one reload-reapply-retry cycle; the
// conflict propagates if the retry loses again.
func (s *Store) commit(ctx context.Context, apply func() error) error {
	if err := s.Load(ctx); err != nil {
		return err
	}
	if err := apply(); err != nil {
		return err
	}

	err := s.persist(ctx)
	if err == nil {
		return nil
	}
	if !s.optimistic || !errors.Is(err, ErrConflict) {
		return err
	}

	if err := s.reload(ctx); err != nil {
		return fmt.Errorf("could not reload after write conflict: %w", err)
	}
	if err := apply(); err != nil {
		return err
	}
	return s.persist(ctx)
}

// Insert adds a new record and returns its id: one greater than the current
// maximum, or 1 for an empty table. Unspecified attributes default to empty
// strings; an existing id is never overwritten.
func (s *Store) Insert(ctx context.Context, attrs map[string]string) (int, error) {
	var id int
	err := s.commit(ctx, func() error {
		id = 1
		for i := range s.students {
			if s.students[i].ID >= id {
				id = s.students[i].ID + 1
			}
		}
		s.students = append(s.students, newStudent(id, attrs))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update applies the supplied attributes to an existing record. The id
// column is immutable and silently ignored if present in attrs.
func (s *Store) Update(ctx context.Context, id int, attrs map[string]string) error {
	return s.commit(ctx, func() error {
		for i := range s.students {
			if s.students[i].ID == id {
				s.students[i].Apply(attrs)
				return nil
			}
		}
		return fmt.Errorf("update id %d: %w", id, ErrRecordNotFound)
	})
}

// Delete removes exactly one record. Deleting an absent id yields
// ErrRecordNotFound, so a repeated delete reports cleanly instead of
// succeeding twice.
func (s *Store) Delete(ctx context.Context, id int) error {
	return s.commit(ctx, func() error {
		for i := range s.students {
			if s.students[i].ID == id {
				s.students = append(s.students[:i], s.students[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("delete id %d: %w", id, ErrRecordNotFound)
	})
}

// Get returns the record with the given id.
func (s *Store) Get(ctx context.Context, id int) (*Student, error) {
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	for i := range s.students {
		if s.students[i].ID == id {
			record := s.students[i]
			return &record, nil
		}
	}
	return nil, fmt.Errorf("get id %d: %w", id, ErrRecordNotFound)
}

// All returns every record in insertion order.
func (s *Store) All(ctx context.Context) ([]Student, error) {
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	out := make([]Student, len(s.students))
	copy(out, s.students)
	return out, nil
}

// Query returns records matching all supplied predicates: each predicate is
// a case- and diacritic-insensitive substring test on one column. Unknown
// column names are ignored; an empty predicate set returns everything.
func (s *Store) Query(ctx context.Context, predicates map[string]string) ([]Student, error) {
	if err := s.Load(ctx); err != nil {
		return nil, err
	}

	folded := make(map[string]string, len(predicates))
	for column, needle := range predicates {
		if needle == "" {
			continue
		}
		if _, known := (&Student{}).Field(column); !known {
			continue
		}
		folded[column] = foldString(needle)
	}

	var out []Student
	for i := range s.students {
		matches := true
		for column, needle := range folded {
			value, _ := s.students[i].Field(column)
			if !strings.Contains(foldString(value), needle) {
				matches = false
				break
			}
		}
		if matches {
			out = append(out, s.students[i])
		}
	}
	return out, nil
}

// foldString lowercases and strips diacritics so "Dĕlhi" matches "delhi".
func foldString(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return strings.ToLower(result)
}
