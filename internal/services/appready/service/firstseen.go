package service

import "time"

// observe returns the first-seen timestamp for key, stamping now for keys
// never observed before. Existing entries are never overwritten, so the
// timestamp survives a vehicle leaving and re-entering the feed
func observe(fs map[string]string, key string, now time.Time) string {
	if ts, ok := fs[key]; ok {
		return ts
	}
	ts := now.UTC().Format(time.RFC3339Nano)
	fs[key] = ts
	return ts
}

// ageDays is whole calendar days between first-seen and today, clamped at
// zero. Unparseable state timestamps count as first seen today
func ageDays(firstSeen string, today time.Time) int {
	from, err := time.Parse(time.RFC3339Nano, firstSeen)
	if err != nil {
		from = today
	}
	if d := calendarDays(from, today); d > 0 {
		return d
	}
	return 0
}

func calendarDays(from, to time.Time) int {
	f, t := from.UTC(), to.UTC()
	fd := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.UTC)
	td := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(td.Sub(fd) / (24 * time.Hour))
}
