package cmd

import (
	"fmt"
	"strings"

	"github.com/mrameshirs/face-gate/internal/activity"
	"github.com/mrameshirs/face-gate/internal/config"
	"github.com/mrameshirs/face-gate/internal/dropbox"
	"github.com/mrameshirs/face-gate/internal/facematch"
	"github.com/mrameshirs/face-gate/internal/gallery"
	"github.com/mrameshirs/face-gate/internal/records"
	"github.com/mrameshirs/face-gate/internal/records/postgres"
	"github.com/mrameshirs/face-gate/internal/verify"
)

// services bundles the wired application components shared by commands.
type services struct {
	blob    *dropbox.Client
	gallery *gallery.Repository
	store   *records.Store
	log     *activity.Log
	svc     *verify.Service
	close   func()
}

// buildServices wires the full application from config. The record dataset
// lives in Dropbox unless RECORDS_DATABASE_URL selects the Postgres backend.
func buildServices(cfg *config.Config) (*services, error) {
	blob, err := dropbox.NewClient(cfg.Dropbox.AppKey, cfg.Dropbox.AppSecret, cfg.Dropbox.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Dropbox client: %w", err)
	}

	var storage records.Storage
	closer := func() {}
	if cfg.Storage.PostgresURL != "" {
		pg, err := postgres.New(cfg.Storage.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		storage = pg
		closer = func() { _ = pg.Close() }
		fmt.Println("Using PostgreSQL record storage")
	} else {
		storage = records.NewBlobStorage(blob, cfg.Dropbox.Root)
	}

	store := records.NewStore(storage, cfg.Storage.Optimistic)
	gal := gallery.New(blob, cfg.Dropbox.Root)
	embedder := facematch.NewFaceClient(cfg.FaceServer.URL)
	matcher := facematch.NewMatcher(gal, embedder, cfg.Match.Threshold, facematch.ParseStrategy(cfg.Match.Strategy))
	logbook := activity.NewLog(blob, cfg.Dropbox.Root)
	svc := verify.NewService(matcher, store, gal, logbook, blob, cfg.Dropbox.Root)

	return &services{
		blob:    blob,
		gallery: gal,
		store:   store,
		log:     logbook,
		svc:     svc,
		close:   closer,
	}, nil
}

// parseAttrPairs turns repeated key=value flags into an attribute map.
func parseAttrPairs(pairs []string) (map[string]string, error) {
	attrs := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q, expected key=value", pair)
		}
		attrs[key] = value
	}
	return attrs, nil
}
