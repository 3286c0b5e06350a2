// Package record provides field resolution over raw feed rows.
// A feed row is a bag of named string values whose column set is not fixed;
// callers resolve what they need through ordered candidate lists and treat
// "no value" as distinct from zero.
package record

import (
	"sort"
	"strconv"
	"strings"
)

// Record is one raw feed row, column name -> raw value as read
type Record map[string]string

// Pick returns the first candidate whose trimmed value is non-empty.
// Column names are matched exactly. Returns "" when nothing matches
func Pick(rec Record, names ...string) string {
	for _, n := range names {
		if v := strings.TrimSpace(rec[n]); v != "" {
			return v
		}
	}
	return ""
}

// PickFold is Pick with case-insensitive column-name matching. When
// several case variants of a candidate exist, matches are tried in sorted
// column-name order so the winner never depends on map iteration order
func PickFold(rec Record, names ...string) string {
	for _, n := range names {
		var cols []string
		for col := range rec {
			if strings.EqualFold(col, n) {
				cols = append(cols, col)
			}
		}
		sort.Strings(cols)
		for _, col := range cols {
			if v := strings.TrimSpace(rec[col]); v != "" {
				return v
			}
		}
	}
	return ""
}

// Float coerces a currency/quantity string to a float.
// Strips every character that is not a digit, a decimal point, or a leading
// minus sign, so "$32,570", "32570 USD" and "32570" all parse. Returns
// ok=false for blank or unparsable input; callers must not conflate that with zero
func Float(s string) (float64, bool) {
	c := cleanNumeric(s, true)
	if c == "" || c == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(c, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Int coerces a count-like string to an int with the same no-value semantics as Float
func Int(s string) (int, bool) {
	c := cleanNumeric(s, false)
	if c == "" || c == "-" {
		return 0, false
	}
	v, err := strconv.Atoi(c)
	if err != nil {
		return 0, false
	}
	return v, true
}

// cleanNumeric keeps digits, optionally dots, and minus signs. Interior
// minuses are kept on purpose: they make the parse fail, so garbage like
// phone numbers or dates in a price column degrades to "no value" instead
// of collapsing into a wrong number
func cleanNumeric(s string, keepDot bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= '0' && ch <= '9':
			b.WriteByte(ch)
		case ch == '.' && keepDot:
			b.WriteByte(ch)
		case ch == '-':
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// NormCondition maps vehicle condition synonyms onto NEW/USED.
// Any other non-blank value passes through upper-cased; blank stays blank
func NormCondition(s string) string {
	u := strings.ToUpper(strings.TrimSpace(s))
	switch u {
	case "NEW", "N":
		return "NEW"
	case "USED", "U", "PREOWNED", "PRE-OWNED", "CPO":
		return "USED"
	}
	return u
}
