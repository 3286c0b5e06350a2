// Package domain holds the core types for the feed pull pipeline
package domain

import "time"

// ManifestEntry is one row of the append-only pull log. Rows counts CSV
// rows including the header, matching what a human sees in the file
type ManifestEntry struct {
	TsUTC    string
	RunID    string
	URL      string
	SHA256   string
	Bytes    int
	Rows     int
	Snapshot string
}

// Result reports what one pull did
type Result struct {
	RunID    string
	URL      string
	SHA256   string
	Bytes    int
	Rows     int
	Changed  bool
	Snapshot string
}

// StorageRepo is the persistence port for pulled feed bytes
type StorageRepo interface {
	// LatestSHA hashes the current latest file; empty string when absent
	LatestSHA() (string, error)

	// WriteLatest atomically replaces the latest file
	WriteLatest(body []byte) error

	// WriteSnapshot writes a dated gzip copy and returns its path
	WriteSnapshot(body []byte, now time.Time) (string, error)

	// AppendManifest appends one entry to the pull log. The repo fills in
	// the latest-file path column from its own layout
	AppendManifest(e ManifestEntry) error
}
