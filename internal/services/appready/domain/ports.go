package domain

import (
	"github.com/BabakRosewater/inventory-history/internal/adapters/feed"
)

// FeedReader supplies the raw input table for one run
type FeedReader interface {
	ReadFeed() (*feed.Table, error)
}

// StorageRepo is the persistence port for everything the pipeline reads
// and writes besides the raw feed
type StorageRepo interface {
	// LoadFirstSeen returns the persisted first-seen state; empty when absent
	LoadFirstSeen() (FirstSeen, error)

	// SaveFirstSeen rewrites the state; reports whether bytes actually changed
	SaveFirstSeen(fs FirstSeen) (changed bool, err error)

	// LoadPriorOutput re-parses the previous run's output keyed by identity
	// key; empty when no prior output exists
	LoadPriorOutput() (map[string]Row, error)

	// WriteOutput atomically writes the sorted output table; reports whether
	// bytes actually changed
	WriteOutput(fields []string, rows []Row) (changed bool, err error)

	// WriteMeta persists the run metadata record
	WriteMeta(m Meta) error

	// WriteDelta persists the run delta record
	WriteDelta(d Delta) error
}
