// Command invhist-build turns the latest raw inventory feed into the
// app-ready CSV plus its delta and meta sidecars
package main

import (
	"context"
	"flag"
	"os"

	"github.com/BabakRosewater/inventory-history/internal/core/version"
	"github.com/BabakRosewater/inventory-history/internal/platform/config"
	perr "github.com/BabakRosewater/inventory-history/internal/platform/errors"
	"github.com/BabakRosewater/inventory-history/internal/platform/logger"
	"github.com/BabakRosewater/inventory-history/internal/services/appready/repo"
	"github.com/BabakRosewater/inventory-history/internal/services/appready/service"
)

func mustSetEnv(k, v string) {
	if v != "" {
		_ = os.Setenv(k, v)
	}
}

func main() {
	var (
		input     = flag.String("input", "", "raw feed CSV path (overrides APPREADY_INPUT)")
		output    = flag.String("output", "", "app-ready CSV path (overrides APPREADY_OUTPUT)")
		state     = flag.String("state", "", "first-seen state path (overrides APPREADY_STATE)")
		tolerance = flag.String("price-tolerance", "", "price change threshold in dollars (overrides APPREADY_PRICE_TOLERANCE)")
		preserve  = flag.String("preserve-raw", "", "append raw feed columns, true|false (overrides APPREADY_PRESERVE_RAW)")
	)
	flag.Parse()

	// CLI flags win over the environment
	mustSetEnv("APPREADY_INPUT", *input)
	mustSetEnv("APPREADY_OUTPUT", *output)
	mustSetEnv("APPREADY_STATE", *state)
	mustSetEnv("APPREADY_PRICE_TOLERANCE", *tolerance)
	mustSetEnv("APPREADY_PRESERVE_RAW", *preserve)

	l := logger.Get()
	bi := version.Info("invhist-build")
	l.Info().Str("version", bi.Version).Str("commit", bi.Commit).Msg("starting invhist-build")

	cfg := config.New().Prefix("APPREADY_")
	rcfg := repo.Config{
		Input:  cfg.MayString("INPUT", "data/latest/MP16607.csv"),
		Output: cfg.MayString("OUTPUT", "data/latest/app_ready.csv"),
		State:  cfg.MayString("STATE", "data/state/first_seen.json"),
		Meta:   cfg.MayString("META", "data/latest/meta.json"),
		Delta:  cfg.MayString("DELTA", "data/latest/delta.json"),
	}
	r := repo.New(rcfg)

	svc, err := service.New(r, r, service.Config{
		SourcePath:     rcfg.Input,
		OutputPath:     rcfg.Output,
		PriceTolerance: cfg.MayFloat64("PRICE_TOLERANCE", service.DefaultPriceTolerance),
		PreserveRaw:    cfg.MayBool("PRESERVE_RAW", true),
	})
	if err != nil {
		l.Error().Err(err).Msg("invalid configuration")
		os.Exit(perr.ExitCode(err))
	}

	if _, err := svc.Run(context.Background()); err != nil {
		l.Error().Err(err).Msg("build failed")
		os.Exit(perr.ExitCode(err))
	}
}
