package repository

import "time"

// Range is the query window selector exposed by the API.
type Range string

const (
	Range1M  Range = "1M"
	Range3M  Range = "3M"
	Range6M  Range = "6M"
	Range1Y  Range = "1Y"
	RangeYTD Range = "YTD"
)

// IsValidRange returns true if r is a supported window.
func IsValidRange(r Range) bool {
	switch r {
	case Range1M, Range3M, Range6M, Range1Y, RangeYTD:
		return true
	default:
		return false
	}
}

// DefaultRange returns the default window.
func DefaultRange() Range { return Range3M }

// NormalizeRange converts a raw string to a valid window (or default).
func NormalizeRange(s string) Range {
	if s == "" {
		return DefaultRange()
	}
	r := Range(s)
	if IsValidRange(r) {
		return r
	}
	return DefaultRange()
}

// Days maps the window to a day count. YTD depends on the current date and
// never returns less than one day.
func (r Range) Days(now time.Time) int {
	switch r {
	case Range1M:
		return 30
	case Range6M:
		return 180
	case Range1Y:
		return 365
	case RangeYTD:
		start := time.Date(now.UTC().Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		days := int(now.UTC().Sub(start).Hours() / 24)
		if days < 1 {
			return 1
		}
		return days
	default:
		return 90
	}
}
