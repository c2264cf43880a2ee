package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/apperrors"
)

// Period is the calendar granularity of a valuation snapshot series.
type Period int

const (
	Daily Period = iota
	Monthly
	Quarterly
	Yearly
)

func (p Period) String() string {
	switch p {
	case Daily:
		return "Daily"
	case Monthly:
		return "Monthly"
	case Quarterly:
		return "Quarterly"
	case Yearly:
		return "Yearly"
	default:
		return fmt.Sprintf("Period(%d)", int(p))
	}
}

// Step advances t by one period.
// An unsupported period is a programming error and panics.
func (p Period) Step(t time.Time) time.Time {
	return p.Advance(t, 1)
}

// Advance returns the date n periods after anchor. Monthly, quarterly and yearly
// steps keep the anchor's day of month, clamped to the last day of a shorter month,
// so Jan 31 advances to Feb 29, Mar 31, Apr 30 instead of rolling into the next month.
// An unsupported period is a programming error and panics.
func (p Period) Advance(anchor time.Time, n int) time.Time {
	switch p {
	case Daily:
		return anchor.AddDate(0, 0, n)
	case Monthly:
		return addMonths(anchor, n)
	case Quarterly:
		return addMonths(anchor, 3*n)
	case Yearly:
		return addMonths(anchor, 12*n)
	default:
		panic(fmt.Sprintf("model: unsupported period %d", int(p)))
	}
}

func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	return first.AddDate(0, 0, min(d, daysIn(first))-1)
}

// daysIn returns the number of days in t's month.
func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// ParsePeriod accepts the period names used in configuration, case-insensitively.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day":
		return Daily, nil
	case "monthly", "month":
		return Monthly, nil
	case "quarterly", "quarter":
		return Quarterly, nil
	case "yearly", "year", "annual":
		return Yearly, nil
	default:
		return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidPeriod, s)
	}
}

// Day truncates t to midnight UTC, the granularity every engine works at.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
