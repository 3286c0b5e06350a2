package repo

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
	"testing"
	"time"

	kit "github.com/BabakRosewater/inventory-history/internal/platform/testkit"
	"github.com/BabakRosewater/inventory-history/internal/services/pull/domain"
)

func testRepo(t *testing.T) *Repo {
	t.Helper()
	dir := t.TempDir()
	return New(Config{
		Latest:      dir + "/data/latest.csv",
		SnapshotDir: dir + "/data/snapshots",
		Manifest:    dir + "/data/manifest.csv",
	})
}

func TestLatestSHA(t *testing.T) {
	r := testRepo(t)

	sha, err := r.LatestSHA()
	kit.MustNoErr(t, err)
	kit.MustEqual(t, sha, "")

	body := []byte("vin\n1FA123\n")
	kit.MustNoErr(t, r.WriteLatest(body))

	want := sha256.Sum256(body)
	sha, err = r.LatestSHA()
	kit.MustNoErr(t, err)
	kit.MustEqual(t, sha, hex.EncodeToString(want[:]))
}

func TestWriteSnapshotRoundTrip(t *testing.T) {
	r := testRepo(t)
	body := []byte("vin,price\n1FA123,100\n")
	now := time.Date(2026, 8, 28, 14, 30, 5, 0, time.UTC)

	path, err := r.WriteSnapshot(body, now)
	kit.MustNoErr(t, err)
	kit.MustContain(t, path, "snapshots/2026-08-28/latest_20260828_143005Z.csv.gz")

	zr, err := gzip.NewReader(bytes.NewReader([]byte(kit.ReadFile(t, path))))
	kit.MustNoErr(t, err)
	got, err := io.ReadAll(zr)
	kit.MustNoErr(t, err)
	kit.MustEqual(t, string(got), string(body))
}

func TestAppendManifestHeaderOnce(t *testing.T) {
	r := testRepo(t)
	e := domain.ManifestEntry{
		TsUTC: "2026-08-28T14:30:05Z", RunID: "run-1", URL: "https://feed/a.csv",
		SHA256: "abc", Bytes: 10, Rows: 3, Snapshot: "s.gz",
	}
	kit.MustNoErr(t, r.AppendManifest(e))
	e.RunID = "run-2"
	kit.MustNoErr(t, r.AppendManifest(e))

	lines := strings.Split(strings.TrimRight(kit.ReadFile(t, r.cfg.Manifest), "\n"), "\n")
	kit.MustEqual(t, len(lines), 3)
	kit.MustEqual(t, lines[0], "timestamp_utc,run_id,url_used,sha256,bytes,csv_rows_including_header,latest_path,snapshot_path")
	kit.MustContain(t, lines[1], "run-1")
	kit.MustContain(t, lines[1], "data/latest.csv")
	kit.MustContain(t, lines[2], "run-2")
}
