// Package domain holds the core types for the app-ready build pipeline
package domain

import (
	"github.com/BabakRosewater/inventory-history/internal/core/record"
)

// Row is one projected output row, column name -> rendered string value
type Row = record.Record

// ComputedFields is the fixed computed column block, in output order.
// Raw feed headers follow in their original order when raw preservation is on
var ComputedFields = []string{
	"key",
	"stock",
	"trim",
	"state_of_vehicle_norm",
	"age_days",
	"age_days_since_first_seen",
	"price_usd",
	"sale_price_usd",
	"discount_usd",
	"image_url",
	"first_seen_utc",
}

// FirstSeen maps identity key -> ISO-8601 UTC timestamp of the first run
// that observed it. Entries are only ever added, never mutated or pruned
type FirstSeen map[string]string

// Counts summarizes key-set sizes on both sides of a delta
type Counts struct {
	Now  int `json:"now"`
	Prev int `json:"prev"`
}

// Delta is the change summary between the current run and the prior output.
// It is computed fresh every run and fully replaces the previous file
type Delta struct {
	TsUTC        string   `json:"ts_utc"`
	RunID        string   `json:"run_id"`
	Added        []string `json:"added"`
	Removed      []string `json:"removed"`
	PriceChanged []string `json:"price_changed"`
	Counts       Counts   `json:"counts"`
}

// Meta is the per-run observability record, fully replaced each run
type Meta struct {
	TsUTC          string   `json:"ts_utc"`
	RunID          string   `json:"run_id"`
	Rows           int      `json:"rows"`
	Source         string   `json:"source"`
	Out            string   `json:"out"`
	ComputedFields []string `json:"computed_fields"`
	RawHeaders     []string `json:"raw_headers"`
	OutFields      []string `json:"out_fields"`
}

// RunSummary reports what one pipeline run did, for CLI logging
type RunSummary struct {
	RunID        string
	Rows         int
	Skipped      int
	Added        int
	Removed      int
	PriceChanged int
	Changed      bool
}
