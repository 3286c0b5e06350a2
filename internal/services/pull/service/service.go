// Package service implements the feed pull pipeline: download the raw CSV
// with URL fallback, dedupe by content hash, and keep a dated snapshot
// trail plus an append-only manifest of every attempt
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/BabakRosewater/inventory-history/internal/adapters/feed"
	"github.com/BabakRosewater/inventory-history/internal/platform/logger"
	"github.com/BabakRosewater/inventory-history/internal/services/pull/domain"
)

// Service runs one pull against its fetch and storage ports
type Service struct {
	repo    domain.StorageRepo
	fetcher feed.Fetcher

	now func() time.Time
}

// New builds a Service; both ports are required
func New(repo domain.StorageRepo, fetcher feed.Fetcher) *Service {
	if repo == nil {
		panic("pull: Service requires a non-nil StorageRepo")
	}
	if fetcher == nil {
		panic("pull: Service requires a non-nil Fetcher")
	}
	return &Service{repo: repo, fetcher: fetcher, now: time.Now}
}

// Run downloads the feed once. An unchanged body (same sha256 as the
// current latest file) is a logged no-op; only runs that replace the
// latest file land in the manifest
func (s *Service) Run(ctx context.Context) (domain.Result, error) {
	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID)
	l := logger.C(ctx)

	now := s.now().UTC()
	res := domain.Result{RunID: runID}

	url, body, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return res, err
	}
	sum := sha256.Sum256(body)
	res.URL = url
	res.SHA256 = hex.EncodeToString(sum[:])
	res.Bytes = len(body)
	rows, err := feed.CountRows(body)
	if err != nil {
		return res, err
	}
	res.Rows = rows

	prev, err := s.repo.LatestSHA()
	if err != nil {
		return res, err
	}
	res.Changed = res.SHA256 != prev

	if res.Changed {
		if err := s.repo.WriteLatest(body); err != nil {
			return res, err
		}
		snap, err := s.repo.WriteSnapshot(body, now)
		if err != nil {
			return res, err
		}
		res.Snapshot = snap

		if err := s.repo.AppendManifest(domain.ManifestEntry{
			TsUTC:    now.Format(time.RFC3339Nano),
			RunID:    runID,
			URL:      url,
			SHA256:   res.SHA256,
			Bytes:    res.Bytes,
			Rows:     res.Rows,
			Snapshot: res.Snapshot,
		}); err != nil {
			return res, err
		}
	}

	l.Info().
		Str("url", url).
		Str("sha256", res.SHA256).
		Int("bytes", res.Bytes).
		Int("rows", res.Rows).
		Bool("changed", res.Changed).
		Msg("feed pull complete")
	return res, nil
}
