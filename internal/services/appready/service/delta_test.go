package service

import (
	"testing"

	kit "github.com/BabakRosewater/inventory-history/internal/platform/testkit"
	"github.com/BabakRosewater/inventory-history/internal/services/appready/domain"
)

func deltaFixture(tol float64) *Service {
	return &Service{cfg: Config{SourcePath: "in", OutputPath: "out", PriceTolerance: tol}}
}

func TestDeltaAddedRemoved(t *testing.T) {
	s := deltaFixture(DefaultPriceTolerance)
	rows := []domain.Row{
		{"key": "A1", "sale_price_usd": "100.0"},
		{"key": "B2", "sale_price_usd": "200.0"},
	}
	prior := map[string]domain.Row{
		"B2": {"key": "B2", "sale_price_usd": "200.0"},
		"C3": {"key": "C3", "sale_price_usd": "300.0"},
	}

	d := s.delta(rows, prior, "ts", "run")
	kit.MustEqual(t, len(d.Added), 1)
	kit.MustEqual(t, d.Added[0], "A1")
	kit.MustEqual(t, len(d.Removed), 1)
	kit.MustEqual(t, d.Removed[0], "C3")
	kit.MustEqual(t, len(d.PriceChanged), 0)
	kit.MustEqual(t, d.Counts.Now, 2)
	kit.MustEqual(t, d.Counts.Prev, 2)
}

func TestDeltaPriceTolerance(t *testing.T) {
	s := deltaFixture(0.1)
	prior := map[string]domain.Row{
		"A1": {"key": "A1", "sale_price_usd": "100.0"},
		"B2": {"key": "B2", "sale_price_usd": "200.0"},
	}

	// within tolerance: not a change
	d := s.delta([]domain.Row{
		{"key": "A1", "sale_price_usd": "100.05"},
		{"key": "B2", "sale_price_usd": "200.0"},
	}, prior, "ts", "run")
	kit.MustEqual(t, len(d.PriceChanged), 0)

	// outside tolerance
	d = s.delta([]domain.Row{
		{"key": "A1", "sale_price_usd": "100.25"},
		{"key": "B2", "sale_price_usd": "200.0"},
	}, prior, "ts", "run")
	kit.MustEqual(t, len(d.PriceChanged), 1)
	kit.MustEqual(t, d.PriceChanged[0], "A1")
}

func TestDeltaIgnoresUnparseablePrices(t *testing.T) {
	s := deltaFixture(0.1)
	prior := map[string]domain.Row{
		"A1": {"key": "A1", "sale_price_usd": ""},
		"B2": {"key": "B2", "sale_price_usd": "200.0"},
	}
	d := s.delta([]domain.Row{
		{"key": "A1", "sale_price_usd": "150.0"}, // price appeared
		{"key": "B2", "sale_price_usd": ""},      // price vanished
	}, prior, "ts", "run")
	kit.MustEqual(t, len(d.PriceChanged), 0)
}

func TestDeltaListsAreSortedAndNonNil(t *testing.T) {
	s := deltaFixture(0.1)
	d := s.delta([]domain.Row{
		{"key": "Z9", "sale_price_usd": "1.0"},
		{"key": "A1", "sale_price_usd": "1.0"},
	}, map[string]domain.Row{}, "ts", "run")
	kit.MustEqual(t, d.Added[0], "A1")
	kit.MustEqual(t, d.Added[1], "Z9")
	if d.Removed == nil || d.PriceChanged == nil {
		t.Fatal("empty lists must marshal as [], not null")
	}
}
