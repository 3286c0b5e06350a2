package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	kit "github.com/BabakRosewater/inventory-history/internal/platform/testkit"
	"github.com/BabakRosewater/inventory-history/internal/services/pull/repo"
)

type stubFetcher struct {
	url  string
	body []byte
	err  error
}

func (s *stubFetcher) Fetch(ctx context.Context) (string, []byte, error) {
	return s.url, s.body, s.err
}

func newFixture(t *testing.T, body string) (*Service, *stubFetcher, repo.Config) {
	t.Helper()
	dir := t.TempDir()
	rcfg := repo.Config{
		Latest:      dir + "/latest.csv",
		SnapshotDir: dir + "/snapshots",
		Manifest:    dir + "/manifest.csv",
	}
	fetcher := &stubFetcher{url: "https://feed/a.csv", body: []byte(body)}
	svc := New(repo.New(rcfg), fetcher)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 28, 14, 30, 5, 0, time.UTC)
	}
	return svc, fetcher, rcfg
}

func TestRunFirstPull(t *testing.T) {
	body := "vin,price\n1FA123,100\nAB99,200\n"
	svc, _, rcfg := newFixture(t, body)

	res, err := svc.Run(context.Background())
	kit.MustNoErr(t, err)
	kit.MustEqual(t, res.Changed, true)
	kit.MustEqual(t, res.Bytes, len(body))
	kit.MustEqual(t, res.Rows, 3) // header included

	want := sha256.Sum256([]byte(body))
	kit.MustEqual(t, res.SHA256, hex.EncodeToString(want[:]))

	kit.MustEqual(t, kit.ReadFile(t, rcfg.Latest), body)
	kit.MustContain(t, res.Snapshot, "2026-08-28")

	manifest := kit.ReadFile(t, rcfg.Manifest)
	kit.MustContain(t, manifest, res.SHA256)
	kit.MustContain(t, manifest, res.RunID)
}

func TestRunUnchangedBodyIsNoOp(t *testing.T) {
	svc, _, rcfg := newFixture(t, "vin\n1FA123\n")

	_, err := svc.Run(context.Background())
	kit.MustNoErr(t, err)

	res, err := svc.Run(context.Background())
	kit.MustNoErr(t, err)
	kit.MustEqual(t, res.Changed, false)
	kit.MustEqual(t, res.Snapshot, "")

	// only the run that replaced latest is in the log
	lines := strings.Split(strings.TrimRight(kit.ReadFile(t, rcfg.Manifest), "\n"), "\n")
	kit.MustEqual(t, len(lines), 2)
}

func TestRunChangedBodyReplacesLatest(t *testing.T) {
	svc, fetcher, rcfg := newFixture(t, "vin\n1FA123\n")
	_, err := svc.Run(context.Background())
	kit.MustNoErr(t, err)

	fetcher.body = []byte("vin\n1FA123\nAB99\n")
	res, err := svc.Run(context.Background())
	kit.MustNoErr(t, err)
	kit.MustEqual(t, res.Changed, true)
	kit.MustEqual(t, kit.ReadFile(t, rcfg.Latest), "vin\n1FA123\nAB99\n")
	if res.Snapshot == "" {
		t.Fatal("changed body must produce a snapshot")
	}
}

func TestRunFetchFailure(t *testing.T) {
	svc, fetcher, rcfg := newFixture(t, "")
	fetcher.err = errors.New("boom")

	_, err := svc.Run(context.Background())
	if err == nil {
		t.Fatal("fetch failure must surface")
	}
	// nothing written on failure
	if _, statErr := os.Stat(rcfg.Latest); !os.IsNotExist(statErr) {
		t.Fatal("latest must not exist after a failed pull")
	}
}

func TestNewPanicsOnNilPorts(t *testing.T) {
	_, fetcher, rcfg := newFixture(t, "x")
	kit.MustPanic(t, func() { New(nil, fetcher) })
	kit.MustPanic(t, func() { New(repo.New(rcfg), nil) })
}
