// Package calendar holds day-granularity date arithmetic.
// All goal windows are expressed as civil.Date values; formatted strings are only
// produced at the edges (JSON, SQL).
package calendar

import (
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/civil"
)

// Layout is the wire format for dates (YYYY-MM-DD).
const Layout = "2006-01-02"

// Today returns the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) civil.Date {
	if loc == nil {
		loc = time.UTC
	}
	return civil.DateOf(now.In(loc))
}

// Parse parses a YYYY-MM-DD date.
func Parse(s string) (civil.Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// DaysBetween returns to - from in calendar days. Negative when to is before from.
func DaysBetween(from, to civil.Date) int {
	return to.DaysSince(from)
}

// InclusiveDayCount counts the days in [start, end], both endpoints included.
func InclusiveDayCount(start, end civil.Date) int {
	if end.Before(start) {
		return 0
	}
	return DaysBetween(start, end) + 1
}

// Within reports whether d lies in the closed interval [start, end].
func Within(d, start, end civil.Date) bool {
	return !d.Before(start) && !d.After(end)
}

// Max returns the later of a and b.
func Max(a, b civil.Date) civil.Date {
	if a.After(b) {
		return a
	}
	return b
}

func Contains(dates []civil.Date, d civil.Date) bool {
	for _, x := range dates {
		if x == d {
			return true
		}
	}
	return false
}

// Sorted returns an ascending copy of dates.
func Sorted(dates []civil.Date) []civil.Date {
	out := make([]civil.Date, len(dates))
	copy(out, dates)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Before(out[j])
	})
	return out
}
