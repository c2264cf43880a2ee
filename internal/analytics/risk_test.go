package analytics_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/analytics"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

// TestAnnualizedVolatility tests sample volatility scaling.
//
// WHY: Volatility uses the N-1 sample estimator; a population estimator would
// silently understate risk on short series.
func TestAnnualizedVolatility(t *testing.T) {
	t.Run("zero for empty and single observation", func(t *testing.T) {
		assert.Equal(t, 0.0, analytics.AnnualizedVolatility(nil))
		assert.Equal(t, 0.0, analytics.AnnualizedVolatility([]float64{0.05}))
	})

	t.Run("uses sample standard deviation", func(t *testing.T) {
		// mean 0.02, squared deviations 0.0001 + 0.0001, N-1 = 1 -> variance 0.0002
		got := analytics.AnnualizedVolatility([]float64{0.01, 0.03})
		assert.InDelta(t, math.Sqrt(0.0002)*math.Sqrt(252), got, 1e-12)
	})

	t.Run("constant series has zero volatility", func(t *testing.T) {
		assert.InDelta(t, 0.0, analytics.AnnualizedVolatility([]float64{0.01, 0.01, 0.01}), 1e-15)
	})
}

// TestMaxDrawdown tests the wealth-index drawdown simulation.
//
// WHY: Drawdown dates are shown to users; the peak must be the most recent one
// before the trough, and a rising series must report no drawdown at all.
func TestMaxDrawdown(t *testing.T) {
	t.Run("monotonically rising series has no drawdown", func(t *testing.T) {
		dd := analytics.MaxDrawdown(dailySeries(day(2024, 1, 1), 0.01, 0.02, 0.005, 0.03))

		assert.Equal(t, 0.0, dd.Max)
		assert.Nil(t, dd.TroughDate)
		assert.Nil(t, dd.PeakDate)
	})

	t.Run("records trough and preceding peak", func(t *testing.T) {
		// wealth: 1.1, 1.21, 0.968, 1.0648, 0.8518..
		series := dailySeries(day(2024, 1, 1), 0.1, 0.1, -0.2, 0.1, -0.2)
		dd := analytics.MaxDrawdown(series)

		require.NotNil(t, dd.PeakDate)
		require.NotNil(t, dd.TroughDate)
		assert.Equal(t, day(2024, 1, 2), *dd.PeakDate)
		assert.Equal(t, day(2024, 1, 5), *dd.TroughDate)
		assert.InDelta(t, 1.1*1.1*0.8*1.1*0.8/1.21-1, dd.Max, 1e-12)
	})

	t.Run("first-day loss peaks on the day before the series", func(t *testing.T) {
		dd := analytics.MaxDrawdown(dailySeries(day(2024, 3, 1), -0.1, 0.05))

		require.NotNil(t, dd.PeakDate)
		assert.Equal(t, day(2024, 2, 29), *dd.PeakDate)
		assert.Equal(t, day(2024, 3, 1), *dd.TroughDate)
		assert.InDelta(t, -0.1, dd.Max, 1e-12)
	})

	t.Run("sorts unsorted input", func(t *testing.T) {
		series := dailySeries(day(2024, 1, 1), 0.1, -0.5)
		dd := analytics.MaxDrawdown([]model.DailyReturn{series[1], series[0]})

		assert.InDelta(t, -0.5, dd.Max, 1e-12)
		assert.Equal(t, day(2024, 1, 2), *dd.TroughDate)
	})
}

// TestHitRate tests the share of positive days.
func TestHitRate(t *testing.T) {
	assert.Equal(t, 0.0, analytics.HitRate(nil))
	assert.InDelta(t, 0.5, analytics.HitRate([]float64{0.01, 0, -0.01, 0.02}), 1e-12)
}

// TestRiskAdjustedReturn tests the simplified Sharpe-like ratio.
//
// WHY: The ratio must never divide by a zero volatility.
func TestRiskAdjustedReturn(t *testing.T) {
	t.Run("zero when volatility is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, analytics.RiskAdjustedReturn([]float64{0.01, 0.01}))
		assert.Equal(t, 0.0, analytics.RiskAdjustedReturn([]float64{0.01}))
	})

	t.Run("linked return over volatility", func(t *testing.T) {
		returns := []float64{0.01, 0.03}
		expected := analytics.Link(returns) / analytics.AnnualizedVolatility(returns)
		assert.InDelta(t, expected, analytics.RiskAdjustedReturn(returns), 1e-12)
	})
}

// TestCorrelation tests date-aligned Pearson correlation.
//
// WHY: Benchmarks trade on different calendars. Only exactly matching dates may be
// paired, and degenerate inputs must give 0 instead of NaN.
func TestCorrelation(t *testing.T) {
	start := day(2024, 1, 1)

	t.Run("series against itself is one", func(t *testing.T) {
		series := dailySeries(start, 0.01, -0.02, 0.03, 0.005, -0.01)
		assert.InDelta(t, 1.0, analytics.Correlation(series, series), 1e-9)
	})

	t.Run("constant series is zero", func(t *testing.T) {
		series := dailySeries(start, 0.01, -0.02, 0.03)
		flat := dailySeries(start, 0.01, 0.01, 0.01)
		assert.Equal(t, 0.0, analytics.Correlation(series, flat))
		assert.Equal(t, 0.0, analytics.Correlation(flat, series))
	})

	t.Run("no overlapping dates is zero", func(t *testing.T) {
		a := dailySeries(start, 0.01, -0.02, 0.03)
		b := dailySeries(day(2025, 1, 1), 0.01, -0.02, 0.03)
		assert.Equal(t, 0.0, analytics.Correlation(a, b))
	})

	t.Run("only intersecting dates are paired", func(t *testing.T) {
		a := dailySeries(start, 0.01, -0.02, 0.03, 0.04)
		// b shares days 2..4 with a and adds a day a does not have
		b := dailySeries(start.AddDate(0, 0, 1), -0.04, 0.06, 0.08, 0.5)
		assert.InDelta(t, 1.0, analytics.Correlation(a, b), 1e-9)
	})

	t.Run("perfect inverse is minus one", func(t *testing.T) {
		a := dailySeries(start, 0.01, -0.02, 0.03)
		b := dailySeries(start, -0.01, 0.02, -0.03)
		assert.InDelta(t, -1.0, analytics.Correlation(a, b), 1e-9)
	})
}

// TestBuildRiskCard tests assembly of the risk card.
func TestBuildRiskCard(t *testing.T) {
	series := dailySeries(day(2024, 1, 1), 0.02, -0.01, 0.03, -0.02)

	t.Run("without benchmark has no correlation", func(t *testing.T) {
		card := analytics.BuildRiskCard(series, nil)

		assert.Nil(t, card.Correlation)
		assert.InDelta(t, 0.5, card.HitRate, 1e-12)
		assert.Less(t, card.MaxDrawdown, 0.0)
		assert.Greater(t, card.AnnualizedVolatility, 0.0)
	})

	t.Run("with benchmark sets correlation", func(t *testing.T) {
		card := analytics.BuildRiskCard(series, series)

		require.NotNil(t, card.Correlation)
		assert.InDelta(t, 1.0, *card.Correlation, 1e-9)
	})
}
