package analytics

import (
	"time"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

// Trailing window lengths. They carry trading-day names but are applied as
// calendar-day offsets from the as-of date.
const (
	Window1M = 21
	Window3M = 63
	Window6M = 126
	Window1Y = 252
	Window3Y = 756
)

// TrailingReturn links the returns dated in (asOf - days, asOf].
func TrailingReturn(series []model.DailyReturn, asOf time.Time, days int) float64 {
	sorted := SortByDate(series)
	return Link(between(sorted, asOf.AddDate(0, 0, -days), asOf, false))
}

// RollingReturns computes the trailing-window return set ending at asOf.
// inception marks the start of the since-inception window; a zero inception
// falls back to the first date of the series.
func RollingReturns(series []model.DailyReturn, asOf, inception time.Time) model.RollingReturnSet {
	sorted := SortByDate(series)
	asOf = model.Day(asOf)

	window := func(days int) float64 {
		return Link(between(sorted, asOf.AddDate(0, 0, -days), asOf, false))
	}

	if inception.IsZero() && len(sorted) > 0 {
		inception = sorted[0].Date
	}
	yearStart := time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	return model.RollingReturnSet{
		AsOf: asOf,
		R1M:  window(Window1M),
		R3M:  window(Window3M),
		R6M:  window(Window6M),
		RYTD: Link(between(sorted, yearStart, asOf, true)),
		R1Y:  window(Window1Y),
		R3Y:  window(Window3Y),
		RSI:  Link(between(sorted, inception, asOf, true)),
	}
}
