package service

import (
	"testing"
	"time"

	kit "github.com/BabakRosewater/inventory-history/internal/platform/testkit"
)

func TestObserveStampsNewKeysOnly(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	fs := map[string]string{"OLD1": "2026-01-02T00:00:00Z"}

	kit.MustEqual(t, observe(fs, "OLD1", now), "2026-01-02T00:00:00Z")

	got := observe(fs, "NEW1", now)
	kit.MustEqual(t, got, now.Format(time.RFC3339Nano))
	kit.MustEqual(t, fs["NEW1"], got)

	// second sighting must not move the stamp
	later := now.Add(48 * time.Hour)
	kit.MustEqual(t, observe(fs, "NEW1", later), got)
}

func TestAgeDays(t *testing.T) {
	today := time.Date(2026, 8, 28, 1, 0, 0, 0, time.UTC)

	kit.MustEqual(t, ageDays("2026-08-28T23:59:00Z", today), 0)
	kit.MustEqual(t, ageDays("2026-08-27T23:59:00Z", today), 1)
	kit.MustEqual(t, ageDays("2026-08-18T06:00:00Z", today), 10)

	// clock skew must never go negative
	kit.MustEqual(t, ageDays("2026-08-30T00:00:00Z", today), 0)

	// garbage state counts as first seen today
	kit.MustEqual(t, ageDays("not-a-timestamp", today), 0)
}
