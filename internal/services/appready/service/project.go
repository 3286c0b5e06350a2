package service

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/BabakRosewater/inventory-history/internal/core/record"
	"github.com/BabakRosewater/inventory-history/internal/services/appready/domain"
)

// project renders one feed record into an output row. Every value is a
// string; numerics that fail to parse render as empty, never as zero
func (s *Service) project(rec record.Record, headers []string, key, firstSeen string, ageSince int) domain.Row {
	row := make(domain.Row, len(domain.ComputedFields)+len(headers))

	stock := record.Pick(rec, "Stock #", "stock_number", "stock")
	if stock == "" {
		stock = key
	}

	// feed-reported age wins when present; our own observation is the fallback
	age := ageSince
	if v, ok := record.Int(record.Pick(rec, "Age")); ok {
		age = v
	}

	price, priceOK := record.Float(record.Pick(rec, "price"))
	sale, saleOK := record.Float(record.Pick(rec, "sale_price"))
	if !saleOK && priceOK {
		// a single published price is the effective sale price
		sale, saleOK = price, true
	}

	row["key"] = key
	row["stock"] = stock
	row["trim"] = record.Pick(rec, "Trim", "trim")
	row["state_of_vehicle_norm"] = record.NormCondition(record.Pick(rec, "state_of_vehicle", "condition", "availability"))
	row["age_days"] = strconv.Itoa(age)
	row["age_days_since_first_seen"] = strconv.Itoa(ageSince)
	row["price_usd"] = ""
	row["sale_price_usd"] = ""
	row["discount_usd"] = ""
	if priceOK {
		row["price_usd"] = fmtUSD(round2(price))
	}
	if saleOK {
		row["sale_price_usd"] = fmtUSD(round2(sale))
	}
	if priceOK && saleOK {
		if d := round2(price - sale); d > 0 {
			row["discount_usd"] = fmtUSD(d)
		}
	}
	row["image_url"] = imageURL(rec, headers)
	row["first_seen_utc"] = firstSeen

	if s.cfg.PreserveRaw {
		for _, h := range headers {
			row[h] = strings.TrimSpace(rec[h])
		}
	}
	return row
}

var imageColRe = regexp.MustCompile(`^image\[(\d+)\]\.url$`)

// imageURL picks the primary photo: the lowest-index image[N].url column
// with a value, then the first entry of "Photo Url List", then "Photo Url"
func imageURL(rec record.Record, headers []string) string {
	type indexed struct {
		n   int
		col string
	}
	var cols []indexed
	for _, h := range headers {
		if m := imageColRe.FindStringSubmatch(h); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			cols = append(cols, indexed{n, h})
		}
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].n < cols[j].n })
	for _, c := range cols {
		if v := strings.TrimSpace(rec[c.col]); v != "" {
			return v
		}
	}
	if list := record.Pick(rec, "Photo Url List"); list != "" {
		for _, p := range strings.Split(list, ",") {
			if v := strings.TrimSpace(p); v != "" {
				return v
			}
		}
	}
	return record.Pick(rec, "Photo Url")
}

// sortRows orders output deterministically: normalized condition, then
// raw model when preserved, then identity key as the tiebreaker
func sortRows(rows []domain.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a["state_of_vehicle_norm"] != b["state_of_vehicle_norm"] {
			return a["state_of_vehicle_norm"] < b["state_of_vehicle_norm"]
		}
		am, bm := record.Pick(a, "model", "Model"), record.Pick(b, "model", "Model")
		if am != bm {
			return am < bm
		}
		return a["key"] < b["key"]
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// fmtUSD renders a dollar amount with at most two decimals and at least
// one: 32570 -> "32570.0", 19999.5 -> "19999.5", 104.25 -> "104.25"
func fmtUSD(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}
