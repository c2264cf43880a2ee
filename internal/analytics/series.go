package analytics

import (
	"sort"
	"time"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

// SortByDate returns a copy of series ordered by date ascending.
// Callers are not trusted to pass sorted input.
func SortByDate(series []model.DailyReturn) []model.DailyReturn {
	sorted := make([]model.DailyReturn, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// Values extracts the return values in series order.
func Values(series []model.DailyReturn) []float64 {
	values := make([]float64, len(series))
	for i, r := range series {
		values[i] = r.Return
	}
	return values
}

// between returns the values of a sorted series whose day lies in [from, to] when
// fromInclusive, or (from, to] otherwise.
func between(sorted []model.DailyReturn, from, to time.Time, fromInclusive bool) []float64 {
	from, to = model.Day(from), model.Day(to)
	var values []float64
	for _, r := range sorted {
		d := model.Day(r.Date)
		if d.After(to) {
			break
		}
		if d.Before(from) || (!fromInclusive && d.Equal(from)) {
			continue
		}
		values = append(values, r.Return)
	}
	return values
}
