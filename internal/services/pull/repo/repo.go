// Package repo is the filesystem adapter for the feed pull pipeline
package repo

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	perr "github.com/BabakRosewater/inventory-history/internal/platform/errors"
	"github.com/BabakRosewater/inventory-history/internal/services/pull/domain"
)

var manifestHeader = []string{
	"timestamp_utc", "run_id", "url_used", "sha256",
	"bytes", "csv_rows_including_header", "latest_path", "snapshot_path",
}

// Config names the pull pipeline's on-disk layout
type Config struct {
	// Latest is the canonical feed copy consumed by the build step
	Latest string
	// SnapshotDir holds dated gzip copies, one subdirectory per day
	SnapshotDir string
	// Manifest is the append-only CSV pull log
	Manifest string
}

// Repo implements domain.StorageRepo over local files
type Repo struct {
	cfg Config
}

func New(cfg Config) *Repo {
	return &Repo{cfg: cfg}
}

// LatestSHA hashes the current latest file; a missing file hashes to ""
func (r *Repo) LatestSHA() (string, error) {
	b, err := os.ReadFile(r.cfg.Latest)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "read latest feed copy")
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// WriteLatest atomically replaces the latest file
func (r *Repo) WriteLatest(body []byte) error {
	return writeFileAtomic(r.cfg.Latest, body)
}

// WriteSnapshot gzips the body into SnapshotDir/YYYY-MM-DD/ with a
// timestamped name derived from the latest file's stem
func (r *Repo) WriteSnapshot(body []byte, now time.Time) (string, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "init gzip writer")
	}
	if _, err := zw.Write(body); err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "gzip snapshot")
	}
	if err := zw.Close(); err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "finish gzip snapshot")
	}

	base := filepath.Base(r.cfg.Latest)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	ts := now.UTC()
	name := fmt.Sprintf("%s_%s.csv.gz", stem, ts.Format("20060102_150405")+"Z")
	path := filepath.Join(r.cfg.SnapshotDir, ts.Format("2006-01-02"), name)
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

// AppendManifest appends one CSV row to the pull log, writing the header
// first when the log is new or empty
func (r *Repo) AppendManifest(e domain.ManifestEntry) error {
	if dir := filepath.Dir(r.cfg.Manifest); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return perr.Wrap(err, perr.ErrorCodeUnknown, "mkdir for manifest")
		}
	}
	f, err := os.OpenFile(r.cfg.Manifest, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "open manifest")
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "stat manifest")
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(manifestHeader); err != nil {
			return perr.Wrap(err, perr.ErrorCodeUnknown, "write manifest header")
		}
	}
	if err := w.Write([]string{
		e.TsUTC,
		e.RunID,
		e.URL,
		e.SHA256,
		strconv.Itoa(e.Bytes),
		strconv.Itoa(e.Rows),
		filepath.ToSlash(r.cfg.Latest),
		filepath.ToSlash(e.Snapshot),
	}); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "write manifest entry")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "flush manifest")
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return perr.Wrap(err, perr.ErrorCodeUnknown, "mkdir for output")
		}
	}
	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "promote %s", path)
	}
	return nil
}
