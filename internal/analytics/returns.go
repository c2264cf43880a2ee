package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

// DailyReturn computes the flow-adjusted return of one day.
//
// Flows are assumed to land at the end of the day: they are removed from the ending
// market value but do not enter the denominator.
//
//	r = (mv - prevMV - flow) / prevMV
//
// Returns 0 when prevMV is zero.
func DailyReturn(prevMV, mv, flow decimal.Decimal) float64 {
	if prevMV.IsZero() {
		return 0
	}
	return mv.Sub(prevMV).Sub(flow).Div(prevMV).InexactFloat64()
}

// Link compounds a chronological sequence of periodic returns into one cumulative return:
// Π(1+r) - 1. An empty sequence links to 0.
func Link(returns []float64) float64 {
	growth := 1.0
	for _, r := range returns {
		growth *= 1 + r
	}
	return growth - 1
}

// LinkSeries sorts a copy of series by date and links its returns.
func LinkSeries(series []model.DailyReturn) float64 {
	return Link(Values(SortByDate(series)))
}

// Flow is one external cash flow entering a Modified Dietz calculation.
type Flow struct {
	Date   time.Time
	Amount decimal.Decimal
	Type   model.CashFlowType
}

// Signed applies the flow sign convention to the magnitude of the amount, so a
// withdrawal stored either as +100 or -100 contributes -100.
//
// The direction comes from Type alone. A negative Deposit is read as a deposit of
// its magnitude; reversing a deposit is recorded as a Withdrawal.
func (f Flow) Signed() decimal.Decimal {
	if f.Type.Sign() < 0 {
		return f.Amount.Abs().Neg()
	}
	return f.Amount.Abs()
}

// ModifiedDietzInput describes one period for ModifiedDietz.
type ModifiedDietzInput struct {
	Start     time.Time
	End       time.Time
	Beginning decimal.Decimal
	Ending    decimal.Decimal
	Flows     []Flow
}

// ModifiedDietzResult carries the return together with the intermediate sums.
type ModifiedDietzResult struct {
	Return   float64
	NetFlows decimal.Decimal
	Weighted decimal.Decimal
}

// ModifiedDietz computes the period return in a single calculation:
//
//	totalDays = max(1, end - start)
//	net       = Σ signed(flow)
//	weighted  = Σ signed(flow) * (1 - (flow.date - start) / totalDays)
//	return    = (E - B - net) / (B + weighted)
//
// A flow dated at Start carries weight 1, a flow dated at End weight 0.
// The return is 0 when the denominator is zero. This must not be linked from daily values.
func ModifiedDietz(in ModifiedDietzInput) ModifiedDietzResult {
	start := model.Day(in.Start)
	totalDays := DaysBetween(start, model.Day(in.End))
	if totalDays < 1 {
		totalDays = 1
	}
	total := decimal.NewFromInt(int64(totalDays))

	net := decimal.Zero
	weighted := decimal.Zero
	for _, f := range in.Flows {
		s := f.Signed()
		elapsed := decimal.NewFromInt(int64(DaysBetween(start, model.Day(f.Date))))
		weight := decimal.NewFromInt(1).Sub(elapsed.Div(total))
		net = net.Add(s)
		weighted = weighted.Add(s.Mul(weight))
	}

	res := ModifiedDietzResult{NetFlows: net, Weighted: weighted}
	denominator := in.Beginning.Add(weighted)
	if denominator.IsZero() {
		return res
	}
	res.Return = in.Ending.Sub(in.Beginning).Sub(net).Div(denominator).InexactFloat64()
	return res
}

// DaysBetween returns the whole number of calendar days from a to b (negative if b < a).
func DaysBetween(a, b time.Time) int {
	return int(model.Day(b).Sub(model.Day(a)).Hours() / 24)
}
