// Package service implements the app-ready build pipeline: one run reads
// the raw feed, folds in first-seen history, projects computed columns,
// and persists the output table plus its delta and meta sidecars
package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/BabakRosewater/inventory-history/internal/core/identity"
	perr "github.com/BabakRosewater/inventory-history/internal/platform/errors"
	"github.com/BabakRosewater/inventory-history/internal/platform/logger"
	"github.com/BabakRosewater/inventory-history/internal/services/appready/domain"
)

// DefaultPriceTolerance is the absolute dollar difference below which two
// sale prices are considered unchanged
const DefaultPriceTolerance = 0.1

var validate = validator.New()

// Config carries the per-run knobs for the build pipeline
type Config struct {
	// SourcePath and OutputPath are recorded in meta.json verbatim
	SourcePath string `validate:"required"`
	OutputPath string `validate:"required"`

	// PriceTolerance is the absolute threshold for price_changed detection
	PriceTolerance float64 `validate:"gte=0"`

	// PreserveRaw appends every raw feed column after the computed block
	PreserveRaw bool
}

// Service runs the build pipeline against its storage and feed ports
type Service struct {
	repo domain.StorageRepo
	feed domain.FeedReader
	cfg  Config

	// now is swappable for tests
	now func() time.Time
}

// New builds a Service. Ports are required; config is validated up front
func New(repo domain.StorageRepo, fr domain.FeedReader, cfg Config) (*Service, error) {
	if repo == nil {
		panic("appready: Service requires a non-nil StorageRepo")
	}
	if fr == nil {
		panic("appready: Service requires a non-nil FeedReader")
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeConfig, "invalid appready config")
	}
	return &Service{repo: repo, feed: fr, cfg: cfg, now: time.Now}, nil
}

// Run executes one full pipeline pass and reports what changed.
// The pass is idempotent: an unchanged feed on the same day produces
// byte-identical output and leaves meta/delta untouched
func (s *Service) Run(ctx context.Context) (domain.RunSummary, error) {
	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID)
	l := logger.C(ctx)

	now := s.now().UTC()
	ts := now.Format(time.RFC3339Nano)
	sum := domain.RunSummary{RunID: runID}

	firstSeen, err := s.repo.LoadFirstSeen()
	if err != nil {
		return sum, err
	}
	prior, err := s.repo.LoadPriorOutput()
	if err != nil {
		return sum, err
	}

	tbl, err := s.feed.ReadFeed()
	if err != nil {
		return sum, err
	}
	if err := identity.Keyable(tbl.Headers); err != nil {
		return sum, err
	}

	rows := make([]domain.Row, 0, len(tbl.Rows))
	for _, rec := range tbl.Rows {
		key := identity.Key(rec)
		if key == "" {
			sum.Skipped++
			l.Debug().Msg("dropping row without identity value")
			continue
		}
		first := observe(firstSeen, key, now)
		rows = append(rows, s.project(rec, tbl.Headers, key, first, ageDays(first, now)))
	}
	sortRows(rows)
	sum.Rows = len(rows)

	fields := make([]string, 0, len(domain.ComputedFields)+len(tbl.Headers))
	fields = append(fields, domain.ComputedFields...)
	if s.cfg.PreserveRaw {
		fields = append(fields, tbl.Headers...)
	}

	outChanged, err := s.repo.WriteOutput(fields, rows)
	if err != nil {
		return sum, err
	}
	stateChanged, err := s.repo.SaveFirstSeen(firstSeen)
	if err != nil {
		return sum, err
	}

	d := s.delta(rows, prior, ts, runID)
	sum.Added = len(d.Added)
	sum.Removed = len(d.Removed)
	sum.PriceChanged = len(d.PriceChanged)
	sum.Changed = outChanged || stateChanged

	if sum.Changed {
		if err := s.repo.WriteDelta(d); err != nil {
			return sum, err
		}
		if err := s.repo.WriteMeta(domain.Meta{
			TsUTC:          ts,
			RunID:          runID,
			Rows:           len(rows),
			Source:         s.cfg.SourcePath,
			Out:            s.cfg.OutputPath,
			ComputedFields: domain.ComputedFields,
			RawHeaders:     tbl.Headers,
			OutFields:      fields,
		}); err != nil {
			return sum, err
		}
	}

	l.Info().
		Int("rows", sum.Rows).
		Int("skipped", sum.Skipped).
		Int("added", sum.Added).
		Int("removed", sum.Removed).
		Int("price_changed", sum.PriceChanged).
		Bool("changed", sum.Changed).
		Msg("app-ready build complete")
	return sum, nil
}
