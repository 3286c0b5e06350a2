package service

import (
	"math"
	"sort"

	"github.com/BabakRosewater/inventory-history/internal/core/record"
	"github.com/BabakRosewater/inventory-history/internal/services/appready/domain"
)

// delta compares the current key set and sale prices against the prior
// output. Key lists come back sorted so the JSON is diffable run to run
func (s *Service) delta(rows []domain.Row, prior map[string]domain.Row, ts, runID string) domain.Delta {
	cur := make(map[string]string, len(rows))
	for _, r := range rows {
		cur[r["key"]] = r["sale_price_usd"]
	}

	added := []string{}
	removed := []string{}
	priceChanged := []string{}

	for k := range cur {
		if _, ok := prior[k]; !ok {
			added = append(added, k)
		}
	}
	for k := range prior {
		if _, ok := cur[k]; !ok {
			removed = append(removed, k)
		}
	}
	for k, cs := range cur {
		pr, ok := prior[k]
		if !ok {
			continue
		}
		oldV, oldOK := record.Float(pr["sale_price_usd"])
		newV, newOK := record.Float(cs)
		// a price appearing or vanishing is not a change; only two
		// comparable numbers outside tolerance count
		if oldOK && newOK && math.Abs(oldV-newV) > s.cfg.PriceTolerance {
			priceChanged = append(priceChanged, k)
		}
	}

	sort.Strings(added)
	sort.Strings(removed)
	sort.Strings(priceChanged)

	return domain.Delta{
		TsUTC:        ts,
		RunID:        runID,
		Added:        added,
		Removed:      removed,
		PriceChanged: priceChanged,
		Counts:       domain.Counts{Now: len(cur), Prev: len(prior)},
	}
}
