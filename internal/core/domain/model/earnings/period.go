package earnings

import (
	"fmt"
	"time"

	"dispatch/internal/pkg/errs"
)

// Period selects a window of the ledger ending now.
type Period string

const (
	// Today starts at local midnight.
	Today Period = "today"
	// Week starts on Monday 00:00 local time.
	Week Period = "week"
	// Month starts on the 1st at 00:00 local time.
	Month Period = "month"
	// All covers the whole ledger.
	All Period = "all"
)

// ParsePeriod converts a wire value into a Period.
func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	switch p {
	case Today, Week, Month, All:
		return p, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("period", fmt.Errorf("%q is not a period", s))
	}
}

// Since returns the inclusive start of the period for the calendar of now's
// location, and false for All.
func (p Period) Since(now time.Time) (time.Time, bool) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case Today:
		return midnight, true
	case Week:
		offset := (int(midnight.Weekday()) + 6) % 7
		return midnight.AddDate(0, 0, -offset), true
	case Month:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), true
	case All:
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// Contains reports whether ts falls inside the period ending at now.
func (p Period) Contains(ts, now time.Time) bool {
	since, bounded := p.Since(now)
	if !bounded {
		return true
	}
	return !ts.Before(since)
}
