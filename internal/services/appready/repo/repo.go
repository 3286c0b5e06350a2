// Package repo is the filesystem adapter for the app-ready build pipeline:
// CSV in, CSV + JSON sidecars out, with atomic write-if-changed semantics
package repo

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BabakRosewater/inventory-history/internal/adapters/feed"
	perr "github.com/BabakRosewater/inventory-history/internal/platform/errors"
	"github.com/BabakRosewater/inventory-history/internal/services/appready/domain"
)

// Config names every file one pipeline run touches
type Config struct {
	Input  string
	Output string
	State  string
	Meta   string
	Delta  string
}

// Repo implements domain.StorageRepo and domain.FeedReader over local files
type Repo struct {
	cfg Config
}

func New(cfg Config) *Repo {
	return &Repo{cfg: cfg}
}

// ReadFeed parses the raw input CSV
func (r *Repo) ReadFeed() (*feed.Table, error) {
	return feed.ReadTable(r.cfg.Input)
}

// LoadFirstSeen reads the persisted state; a missing file is an empty map,
// a corrupt file is a Parse error so history is never silently reset
func (r *Repo) LoadFirstSeen() (domain.FirstSeen, error) {
	b, err := os.ReadFile(r.cfg.State)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.FirstSeen{}, nil
		}
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "read first-seen state")
	}
	fs := domain.FirstSeen{}
	if err := json.Unmarshal(b, &fs); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeParse, "first-seen state is corrupt")
	}
	return fs, nil
}

// SaveFirstSeen rewrites the state file when its bytes changed
func (r *Repo) SaveFirstSeen(fs domain.FirstSeen) (bool, error) {
	b, err := marshalJSON(fs)
	if err != nil {
		return false, err
	}
	return writeIfChanged(r.cfg.State, b)
}

// LoadPriorOutput re-parses the previous output keyed by identity key.
// No prior output means an empty map, so the first run reports every
// key as added
func (r *Repo) LoadPriorOutput() (map[string]domain.Row, error) {
	tbl, err := feed.ReadTable(r.cfg.Output)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return map[string]domain.Row{}, nil
		}
		return nil, err
	}
	out := make(map[string]domain.Row, len(tbl.Rows))
	for _, rec := range tbl.Rows {
		if k := strings.TrimSpace(rec["key"]); k != "" {
			out[k] = rec
		}
	}
	return out, nil
}

// WriteOutput encodes and writes the output table when its bytes changed
func (r *Repo) WriteOutput(fields []string, rows []domain.Row) (bool, error) {
	b, err := feed.Encode(fields, rows)
	if err != nil {
		return false, err
	}
	return writeIfChanged(r.cfg.Output, b)
}

// WriteMeta fully replaces the run metadata sidecar
func (r *Repo) WriteMeta(m domain.Meta) error {
	b, err := marshalJSON(m)
	if err != nil {
		return err
	}
	return writeFileAtomic(r.cfg.Meta, b)
}

// WriteDelta fully replaces the run delta sidecar
func (r *Repo) WriteDelta(d domain.Delta) error {
	b, err := marshalJSON(d)
	if err != nil {
		return err
	}
	return writeFileAtomic(r.cfg.Delta, b)
}

func marshalJSON(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "marshal json")
	}
	return append(b, '\n'), nil
}

// writeIfChanged skips the write entirely when the target already holds
// exactly these bytes, keeping mtimes stable across no-op runs
func writeIfChanged(path string, data []byte) (bool, error) {
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, data) {
		return false, nil
	}
	if err := writeFileAtomic(path, data); err != nil {
		return false, err
	}
	return true, nil
}

// writeFileAtomic stages into a .part sibling and renames into place so
// readers never observe a half-written file
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
