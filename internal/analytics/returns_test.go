package analytics_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/analytics"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

// TestLink tests geometric linking of return sequences.
//
// WHY: Every window return (rolling, monthly, since inception) is built on Link.
// The identities below are what make splitting a series into sub-periods safe.
func TestLink(t *testing.T) {
	t.Run("empty sequence links to zero", func(t *testing.T) {
		assert.Equal(t, 0.0, analytics.Link(nil))
		assert.Equal(t, 0.0, analytics.Link([]float64{}))
	})

	t.Run("single return links to itself", func(t *testing.T) {
		assert.InDelta(t, 0.037, analytics.Link([]float64{0.037}), 1e-12)
	})

	t.Run("compounds instead of summing", func(t *testing.T) {
		assert.InDelta(t, 0.21, analytics.Link([]float64{0.1, 0.1}), 1e-12)
		assert.InDelta(t, 0.0, analytics.Link([]float64{0.25, -0.2}), 1e-12)
	})

	t.Run("linking linked sub-sequences equals linking the whole", func(t *testing.T) {
		a := []float64{0.01, -0.02, 0.005}
		b := []float64{0.03, -0.01}

		whole := analytics.Link(append(append([]float64{}, a...), b...))
		nested := analytics.Link(append([]float64{analytics.Link(a)}, b...))

		assert.InDelta(t, whole, nested, 1e-12)
	})
}

// TestLinkSeries tests that series linking does not depend on input order.
//
// WHY: Callers may pass series out of date order.
func TestLinkSeries(t *testing.T) {
	series := dailySeries(day(2024, 1, 1), 0.1, -0.05, 0.02)
	reversed := []model.DailyReturn{series[2], series[0], series[1]}

	assert.InDelta(t, analytics.LinkSeries(series), analytics.LinkSeries(reversed), 1e-12)
}

// TestDailyReturn tests the single-day flow-adjusted return.
//
// WHY: A zero starting value must never divide by zero, and end-of-day flows must
// not show up as performance.
func TestDailyReturn(t *testing.T) {
	tests := []struct {
		name     string
		prev     float64
		current  float64
		flow     float64
		expected float64
	}{
		{name: "zero starting value", prev: 0, current: 500, flow: 500, expected: 0},
		{name: "zero starting value without flow", prev: 0, current: 0, flow: 0, expected: 0},
		{name: "plain market move", prev: 1000, current: 1050, flow: 0, expected: 0.05},
		{name: "deposit is not a gain", prev: 1000, current: 1100, flow: 100, expected: 0},
		{name: "withdrawal is not a loss", prev: 1000, current: 900, flow: -100, expected: 0},
		{name: "move and deposit", prev: 1000, current: 1120, flow: 100, expected: 0.02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analytics.DailyReturn(
				decimal.NewFromFloat(tt.prev),
				decimal.NewFromFloat(tt.current),
				decimal.NewFromFloat(tt.flow),
			)
			assert.InDelta(t, tt.expected, got, 1e-12)
		})
	}
}

// TestModifiedDietz tests the single-period Modified Dietz calculation.
//
// WHY: Flow weights at the period boundaries are easy to get off by one; a flow on
// the start date must count fully and a flow on the end date not at all.
func TestModifiedDietz(t *testing.T) {
	start := day(2024, 1, 1)
	end := day(2024, 1, 11)

	t.Run("no flows is a simple return", func(t *testing.T) {
		res := analytics.ModifiedDietz(analytics.ModifiedDietzInput{
			Start: start, End: end,
			Beginning: decimal.NewFromInt(1000),
			Ending:    decimal.NewFromInt(1100),
		})
		assert.InDelta(t, 0.1, res.Return, 1e-12)
		assert.True(t, res.NetFlows.IsZero())
	})

	t.Run("flow on start date has weight one", func(t *testing.T) {
		res := analytics.ModifiedDietz(analytics.ModifiedDietzInput{
			Start: start, End: end,
			Beginning: decimal.NewFromInt(1000),
			Ending:    decimal.NewFromInt(1650),
			Flows: []analytics.Flow{
				{Date: start, Amount: decimal.NewFromInt(500), Type: model.CashFlowDeposit},
			},
		})
		assert.True(t, res.Weighted.Equal(decimal.NewFromInt(500)), "weighted = %s", res.Weighted)
		assert.InDelta(t, 0.1, res.Return, 1e-12)
	})

	t.Run("flow on end date has weight zero", func(t *testing.T) {
		res := analytics.ModifiedDietz(analytics.ModifiedDietzInput{
			Start: start, End: end,
			Beginning: decimal.NewFromInt(1000),
			Ending:    decimal.NewFromInt(1600),
			Flows: []analytics.Flow{
				{Date: end, Amount: decimal.NewFromInt(500), Type: model.CashFlowDeposit},
			},
		})
		assert.True(t, res.Weighted.IsZero(), "weighted = %s", res.Weighted)
		assert.True(t, res.NetFlows.Equal(decimal.NewFromInt(500)))
		assert.InDelta(t, 0.1, res.Return, 1e-12)
	})

	t.Run("withdrawal and fee are negated", func(t *testing.T) {
		res := analytics.ModifiedDietz(analytics.ModifiedDietzInput{
			Start: start, End: end,
			Beginning: decimal.NewFromInt(1000),
			Ending:    decimal.NewFromInt(900),
			Flows: []analytics.Flow{
				{Date: day(2024, 1, 6), Amount: decimal.NewFromInt(100), Type: model.CashFlowWithdrawal},
				{Date: day(2024, 1, 6), Amount: decimal.NewFromInt(-10), Type: model.CashFlowFee},
			},
		})
		// net = -110, weighted = -110 * 0.5 = -55, return = (900-1000+110)/(1000-55)
		assert.True(t, res.NetFlows.Equal(decimal.NewFromInt(-110)))
		assert.InDelta(t, 10.0/945.0, res.Return, 1e-12)
	})

	t.Run("zero denominator returns zero", func(t *testing.T) {
		res := analytics.ModifiedDietz(analytics.ModifiedDietzInput{
			Start: start, End: end,
			Beginning: decimal.Zero,
			Ending:    decimal.NewFromInt(100),
		})
		assert.Equal(t, 0.0, res.Return)
	})

	t.Run("zero-length period uses one day", func(t *testing.T) {
		res := analytics.ModifiedDietz(analytics.ModifiedDietzInput{
			Start: start, End: start,
			Beginning: decimal.NewFromInt(100),
			Ending:    decimal.NewFromInt(150),
			Flows: []analytics.Flow{
				{Date: start, Amount: decimal.NewFromInt(50), Type: model.CashFlowDeposit},
			},
		})
		assert.InDelta(t, 0.0, res.Return, 1e-12)
	})
}

// TestFlowSigned tests that a flow's direction comes from its type only.
//
// WHY: The ledger stores magnitudes signed by type. A reversal booked as a negative
// Deposit would otherwise flip sign in one place and not in the other.
func TestFlowSigned(t *testing.T) {
	for _, tc := range []struct {
		name   string
		flow   analytics.Flow
		signed int64
	}{
		{"deposit", analytics.Flow{Amount: decimal.NewFromInt(100), Type: model.CashFlowDeposit}, 100},
		{"negative deposit keeps its direction", analytics.Flow{Amount: decimal.NewFromInt(-100), Type: model.CashFlowDeposit}, 100},
		{"withdrawal stored positive", analytics.Flow{Amount: decimal.NewFromInt(100), Type: model.CashFlowWithdrawal}, -100},
		{"fee stored negative", analytics.Flow{Amount: decimal.NewFromInt(-5), Type: model.CashFlowFee}, -5},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.flow.Signed().Equal(decimal.NewFromInt(tc.signed)), "signed = %s", tc.flow.Signed())
		})
	}
}
