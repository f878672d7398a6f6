// Package activity keeps the append-only audit trail of logins and
// registrations. The ledger shares the record store's consistency model:
// load the whole log, append one entry, write the whole log back.
package activity

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/mrameshirs/face-gate/internal/dropbox"
)

const (
	logFile         = "activity_log.csv"
	timestampFormat = "2006-01-02 15:04:05"
)

var header = []string{"timestamp", "username", "role"}

// Entry is one audit event. Entries are never mutated or deleted; their
// order is append order.
type Entry struct {
	Timestamp string `json:"timestamp"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}

// BlobClient is the subset of the Dropbox client the log needs.
type BlobClient interface {
	Download(ctx context.Context, path string) ([]byte, string, error)
	Upload(ctx context.Context, path string, content []byte) (string, error)
}

// Log is the append-only activity ledger.
type Log struct {
	blob BlobClient
	path string
	now  func() time.Time
}

// NewLog creates an activity log stored at <root>/activity_log.csv.
func NewLog(blob BlobClient, root string) *Log {
	return &Log{
		blob: blob,
		path: dropbox.JoinPath(root, logFile),
		now:  time.Now,
	}
}

// Append records one event with a server-generated timestamp. Callers treat
// failures as warnings only; a lost log entry never blocks or rolls back the
// action being logged.
func (l *Log) Append(ctx context.Context, username, role string) error {
	entries, err := l.List(ctx)
	if err != nil {
		return err
	}

	entries = append(entries, Entry{
		Timestamp: l.now().Format(timestampFormat),
		Username:  username,
		Role:      role,
	})

	data, err := encodeLog(entries)
	if err != nil {
		return err
	}
	if _, err := l.blob.Upload(ctx, l.path, data); err != nil {
		return fmt.Errorf("could not save activity log: %w", err)
	}
	return nil
}

// List returns all entries in append order. A missing log file means no
// activity yet, not an error.
func (l *Log) List(ctx context.Context) ([]Entry, error) {
	data, _, err := l.blob.Download(ctx, l.path)
	if err != nil {
		if dropbox.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not load activity log: %w", err)
	}
	return decodeLog(data)
}

func encodeLog(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("could not write log header: %w", err)
	}
	for _, e := range entries {
		if err := w.Write([]string{e.Timestamp, e.Username, e.Role}); err != nil {
			return nil, fmt.Errorf("could not write log entry: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("could not flush activity log: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeLog(data []byte) ([]Entry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not parse activity log: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	entries := make([]Entry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var e Entry
		if len(row) > 0 {
			e.Timestamp = row[0]
		}
		if len(row) > 1 {
			e.Username = row[1]
		}
		if len(row) > 2 {
			e.Role = row[2]
		}
		entries = append(entries, e)
	}
	return entries, nil
}
