package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mrameshirs/face-gate/internal/dropbox/mock"
)

func fixedClock(t *testing.T, l *Log, stamp string) {
	t.Helper()
	parsed, err := time.Parse(timestampFormat, stamp)
	if err != nil {
		t.Fatalf("bad test timestamp: %v", err)
	}
	l.now = func() time.Time { return parsed }
}

func TestAppendAndList(t *testing.T) {
	blob := mock.NewBlob()
	log := NewLog(blob, "/face_gate")
	fixedClock(t, log, "2026-08-29 10:30:00")
	ctx := context.Background()

	if err := log.Append(ctx, "Anitha", "Login"); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := log.Append(ctx, "Kumar", "Registration"); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	entries, err := log.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Username != "Anitha" || entries[0].Role != "Login" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[0].Timestamp != "2026-08-29 10:30:00" {
		t.Errorf("unexpected timestamp: %s", entries[0].Timestamp)
	}
	if entries[1].Username != "Kumar" {
		t.Errorf("entries out of append order: %+v", entries)
	}
}

func TestList_MissingLog(t *testing.T) {
	log := NewLog(mock.NewBlob(), "/face_gate")

	entries, err := log.List(context.Background())
	if err != nil {
		t.Fatalf("missing log must not be an error, got %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestAppend_SurvivesAcrossInstances(t *testing.T) {
	blob := mock.NewBlob()
	ctx := context.Background()

	first := NewLog(blob, "/face_gate")
	if err := first.Append(ctx, "Anitha", "Login"); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	second := NewLog(blob, "/face_gate")
	if err := second.Append(ctx, "Kumar", "Login"); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	entries, err := second.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected both entries preserved, got %d", len(entries))
	}
}

func TestAppend_ReportsUploadFailure(t *testing.T) {
	blob := mock.NewBlob()
	blob.UploadError = errors.New("network down")
	log := NewLog(blob, "/face_gate")

	if err := log.Append(context.Background(), "Anitha", "Login"); err == nil {
		t.Error("expected append to report the failure")
	}
}
