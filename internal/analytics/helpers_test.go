package analytics_test

import (
	"time"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dailySeries builds a contiguous daily series starting at start.
func dailySeries(start time.Time, returns ...float64) []model.DailyReturn {
	series := make([]model.DailyReturn, len(returns))
	for i, r := range returns {
		series[i] = model.DailyReturn{
			Date:       start.AddDate(0, 0, i),
			EntityKind: model.EntityAccount,
			EntityID:   "acc-1",
			Currency:   model.MustCurrency("EUR"),
			Return:     r,
		}
	}
	return series
}
