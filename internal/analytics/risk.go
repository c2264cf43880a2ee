package analytics

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

// TradingDaysPerYear annualizes daily volatility.
const TradingDaysPerYear = 252

// AnnualizedVolatility is the sample standard deviation (N-1) of the daily returns
// scaled by √252. Fewer than two observations give 0.
func AnnualizedVolatility(returns []float64) float64 {
	if len(returns) <= 1 {
		return 0
	}
	sd := stat.StdDev(returns, nil)
	if math.IsNaN(sd) {
		return 0
	}
	return sd * math.Sqrt(TradingDaysPerYear)
}

// Drawdown describes the deepest peak-to-trough decline of a wealth index.
type Drawdown struct {
	Max        float64
	PeakDate   *time.Time
	TroughDate *time.Time
}

// MaxDrawdown simulates a wealth index starting at 1 and compounding each daily
// return in date order. The drawdown of a day is wealth/peak - 1; the result is the
// most negative one seen together with its trough date and the peak that preceded it.
//
// The starting wealth of 1 is dated the day before the first return. A series that
// never falls below a prior peak has Max 0 and no dates.
func MaxDrawdown(series []model.DailyReturn) Drawdown {
	sorted := SortByDate(series)
	if len(sorted) == 0 {
		return Drawdown{}
	}

	wealth, peak := 1.0, 1.0
	peakDate := model.Day(sorted[0].Date).AddDate(0, 0, -1)

	var dd Drawdown
	for _, r := range sorted {
		wealth *= 1 + r.Return
		if wealth >= peak {
			peak = wealth
			peakDate = model.Day(r.Date)
			continue
		}
		current := wealth/peak - 1
		if current < dd.Max {
			p, t := peakDate, model.Day(r.Date)
			dd.Max = current
			dd.PeakDate = &p
			dd.TroughDate = &t
		}
	}
	return dd
}

// RiskAdjustedReturn is the cumulative linked return divided by annualized volatility.
// No risk-free rate is subtracted; 0 when volatility is 0.
func RiskAdjustedReturn(returns []float64) float64 {
	vol := AnnualizedVolatility(returns)
	if vol == 0 {
		return 0
	}
	return Link(returns) / vol
}

// HitRate is the share of strictly positive returns; 0 for an empty series.
func HitRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	hits := 0
	for _, r := range returns {
		if r > 0 {
			hits++
		}
	}
	return float64(hits) / float64(len(returns))
}

// Correlation aligns two series on exactly matching days, dropping the rest, and
// returns the Pearson correlation of the aligned pairs. It returns 0 when there is
// no overlap, fewer than two pairs, or either side has zero variance.
func Correlation(a, b []model.DailyReturn) float64 {
	byDay := make(map[time.Time]float64, len(b))
	for _, r := range b {
		byDay[model.Day(r.Date)] = r.Return
	}

	var xs, ys []float64
	for _, r := range SortByDate(a) {
		if y, ok := byDay[model.Day(r.Date)]; ok {
			xs = append(xs, r.Return)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return 0
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return 0
	}
	c := stat.Correlation(xs, ys, nil)
	if math.IsNaN(c) {
		return 0
	}
	return c
}

// BuildRiskCard derives the full risk card of series. benchmark may be nil, in which
// case the card carries no correlation.
func BuildRiskCard(series, benchmark []model.DailyReturn) model.RiskCard {
	sorted := SortByDate(series)
	returns := Values(sorted)
	dd := MaxDrawdown(sorted)

	card := model.RiskCard{
		AnnualizedVolatility: AnnualizedVolatility(returns),
		MaxDrawdown:          dd.Max,
		PeakDate:             dd.PeakDate,
		TroughDate:           dd.TroughDate,
		RiskAdjustedReturn:   RiskAdjustedReturn(returns),
		HitRate:              HitRate(returns),
	}
	if benchmark != nil {
		c := Correlation(sorted, benchmark)
		card.Correlation = &c
	}
	return card
}
