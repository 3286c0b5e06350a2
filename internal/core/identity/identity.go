// Package identity derives the stable key that correlates an inventory item
// across feed refreshes.
package identity

import (
	"strings"

	"github.com/BabakRosewater/inventory-history/internal/core/record"
	perr "github.com/BabakRosewater/inventory-history/internal/platform/errors"
)

// Identity-bearing columns, in priority order. Matching is case-insensitive
const (
	PrimaryColumn   = "vin"
	SecondaryColumn = "vehicle_id"
)

// Key derives the identity key for one row: trimmed, upper-cased vin,
// falling back to vehicle_id. Returns "" when both are absent or blank;
// such rows are dropped by the pipeline, not treated as errors
func Key(rec record.Record) string {
	v := record.PickFold(rec, PrimaryColumn)
	if v == "" {
		v = record.PickFold(rec, SecondaryColumn)
	}
	return strings.ToUpper(v)
}

// Keyable validates once per table that the header carries at least one
// identity column. A feed with neither is unusable and the run must abort
// before producing any output
func Keyable(headers []string) error {
	for _, h := range headers {
		if strings.EqualFold(h, PrimaryColumn) || strings.EqualFold(h, SecondaryColumn) {
			return nil
		}
	}
	return perr.Configf("feed is not keyable: no %s or %s column in header", PrimaryColumn, SecondaryColumn)
}
