package analytics

import "github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"

// MonthlyReturns groups a daily series by calendar month and links each group.
// The result is ordered chronologically and only contains months with data.
func MonthlyReturns(series []model.DailyReturn) []model.MonthlyReturn {
	sorted := SortByDate(series)

	var months []model.MonthlyReturn
	var bucket []float64
	flush := func(r model.DailyReturn) {
		months = append(months, model.MonthlyReturn{
			Year:   r.Date.Year(),
			Month:  r.Date.Month(),
			Return: Link(bucket),
		})
	}

	for i, r := range sorted {
		if i > 0 {
			prev := sorted[i-1].Date
			if prev.Year() != r.Date.Year() || prev.Month() != r.Date.Month() {
				flush(sorted[i-1])
				bucket = bucket[:0]
			}
		}
		bucket = append(bucket, r.Return)
	}
	if len(sorted) > 0 {
		flush(sorted[len(sorted)-1])
	}
	return months
}
