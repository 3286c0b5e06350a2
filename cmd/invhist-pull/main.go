// Command invhist-pull downloads the raw inventory feed, dedupes it by
// content hash, and maintains the snapshot trail and pull manifest
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/BabakRosewater/inventory-history/internal/adapters/feed"
	"github.com/BabakRosewater/inventory-history/internal/core/version"
	"github.com/BabakRosewater/inventory-history/internal/platform/config"
	perr "github.com/BabakRosewater/inventory-history/internal/platform/errors"
	"github.com/BabakRosewater/inventory-history/internal/platform/logger"
	"github.com/BabakRosewater/inventory-history/internal/services/pull/repo"
	"github.com/BabakRosewater/inventory-history/internal/services/pull/service"
)

// https first; plain http is the fallback for upstream cert trouble
var defaultFeedURLs = []string{
	"https://dtfeed.camclarkautogroup.com/ftp/MP16607.csv",
	"http://dtfeed.camclarkautogroup.com/ftp/MP16607.csv",
}

func mustSetEnv(k, v string) {
	if v != "" {
		_ = os.Setenv(k, v)
	}
}

func main() {
	var (
		urls     = flag.String("urls", "", "comma-separated feed URLs, tried in order (overrides PULL_URLS)")
		latest   = flag.String("latest", "", "canonical feed copy path (overrides PULL_LATEST)")
		timeout  = flag.String("timeout", "", "per-request timeout, e.g. 90s (overrides PULL_TIMEOUT)")
		insecure = flag.String("insecure-https", "", "skip TLS verification, true|false (overrides PULL_INSECURE_HTTPS)")
	)
	flag.Parse()

	// CLI flags win over the environment
	mustSetEnv("PULL_URLS", *urls)
	mustSetEnv("PULL_LATEST", *latest)
	mustSetEnv("PULL_TIMEOUT", *timeout)
	mustSetEnv("PULL_INSECURE_HTTPS", *insecure)

	l := logger.Get()
	bi := version.Info("invhist-pull")
	l.Info().Str("version", bi.Version).Str("commit", bi.Commit).Msg("starting invhist-pull")

	cfg := config.New().Prefix("PULL_")
	fetcher, err := feed.NewHTTPFetcher(
		cfg.MayCSV("URLS", defaultFeedURLs),
		cfg.MayDuration("TIMEOUT", 60*time.Second),
		cfg.MayBool("INSECURE_HTTPS", false),
	)
	if err != nil {
		l.Error().Err(err).Msg("invalid configuration")
		os.Exit(perr.ExitCode(err))
	}

	svc := service.New(repo.New(repo.Config{
		Latest:      cfg.MayString("LATEST", "data/latest/MP16607.csv"),
		SnapshotDir: cfg.MayString("SNAPSHOT_DIR", "data/snapshots"),
		Manifest:    cfg.MayString("MANIFEST", "data/manifest.csv"),
	}), fetcher)

	if _, err := svc.Run(context.Background()); err != nil {
		l.Error().Err(err).Msg("pull failed")
		os.Exit(perr.ExitCode(err))
	}
}
