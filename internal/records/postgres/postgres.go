// Package postgres stores the serialized dataset in a Postgres table instead
// of the blob store. The dataset is still one opaque object rewritten in
// full; what Postgres adds is a native version column, so optimistic writes
// don't depend on blob revision semantics.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/lib/pq"

	"github.com/mrameshirs/face-gate/internal/records"
)

const datasetName = "user_data"

// Storage implements records.Storage on a Postgres database.
type Storage struct {
	db *sql.DB
}

// New opens a connection pool and ensures the dataset table exists.
func New(databaseURL string) (*Storage, error) {
	if databaseURL == "" {
		return nil, errors.New("database URL is required")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the connection pool.
func (s *Storage) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database connection: %w", err)
	}
	return nil
}

func (s *Storage) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS datasets (
			name       TEXT PRIMARY KEY,
			content    BYTEA NOT NULL,
			version    BIGINT NOT NULL DEFAULT 1,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to run migration: %w", err)
	}
	return nil
}

// Load fetches the dataset bytes and version.
func (s *Storage) Load(ctx context.Context) ([]byte, string, bool, error) {
	var content []byte
	var version int64
	err := s.db.QueryRowContext(ctx,
		`SELECT content, version FROM datasets WHERE name = $1`, datasetName,
	).Scan(&content, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", false, nil
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("could not load dataset: %w", err)
	}
	return content, strconv.FormatInt(version, 10), true, nil
}

// Save writes the dataset. With a non-empty expectedRev the write only
// succeeds if the stored version still matches; otherwise
// records.ErrConflict is returned.
func (s *Storage) Save(ctx context.Context, data []byte, expectedRev string) (string, error) {
	if expectedRev == "" {
		var version int64
		err := s.db.QueryRowContext(ctx, `
			INSERT INTO datasets (name, content) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE
				SET content = EXCLUDED.content,
				    version = datasets.version + 1,
				    updated_at = now()
			RETURNING version`, datasetName, data,
		).Scan(&version)
		if err != nil {
			return "", fmt.Errorf("could not save dataset: %w", err)
		}
		return strconv.FormatInt(version, 10), nil
	}

	expected, err := strconv.ParseInt(expectedRev, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid revision token %q: %w", expectedRev, err)
	}

	var version int64
	err = s.db.QueryRowContext(ctx, `
		UPDATE datasets
		SET content = $2, version = version + 1, updated_at = now()
		WHERE name = $1 AND version = $3
		RETURNING version`, datasetName, data, expected,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", records.ErrConflict
	}
	if err != nil {
		return "", fmt.Errorf("could not save dataset: %w", err)
	}
	return strconv.FormatInt(version, 10), nil
}
