package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

// TestMoney verifies same-currency arithmetic and minor-unit handling.
//
// WHY: Money is summed across every holding of a portfolio. A silent mix of
// currencies would corrupt every valuation built on top of it.
func TestMoney(t *testing.T) {
	usd := model.MustCurrency("USD")
	eur := model.MustCurrency("EUR")

	t.Run("adds amounts in the same currency", func(t *testing.T) {
		sum, err := model.M(10.25, usd).Add(model.M(0.75, usd))
		require.NoError(t, err)
		assert.True(t, sum.Equal(model.M(11, usd)))
	})

	t.Run("refuses to mix currencies", func(t *testing.T) {
		_, err := model.M(1, usd).Add(model.M(1, eur))
		assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)

		_, err = model.M(1, usd).Sub(model.M(1, eur))
		assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)
	})

	t.Run("rate re-denominates", func(t *testing.T) {
		converted := model.M(100, usd).MulRate(decimal.RequireFromString("0.9"), eur)
		assert.Equal(t, eur, converted.Currency)
		assert.True(t, converted.Amount.Equal(decimal.NewFromInt(90)))
	})

	t.Run("rounds to the currency minor unit", func(t *testing.T) {
		assert.Equal(t, "10.01", model.M(10.006, usd).Round().Amount.String())
		assert.Equal(t, "1235", model.M(1234.567, model.MustCurrency("JPY")).Round().Amount.String())
	})

	t.Run("formats with the currency symbol", func(t *testing.T) {
		assert.Equal(t, "$10.50", model.M(10.5, usd).String())
	})
}

func TestNewCurrency(t *testing.T) {
	c, err := model.NewCurrency(" usd ")
	require.NoError(t, err)
	assert.Equal(t, model.Currency("USD"), c)

	for _, code := range []string{"", "US", "ZZZ", "DOLLAR"} {
		_, err := model.NewCurrency(code)
		assert.ErrorIs(t, err, apperrors.ErrInvalidCurrency, code)
	}
}

// TestPeriod verifies calendar stepping and configuration parsing.
//
// WHY: Snapshot ranges iterate with Step. Month arithmetic must follow the calendar,
// and an unknown period must fail loudly instead of looping forever.
func TestPeriod(t *testing.T) {
	jan31 := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)

	t.Run("steps by calendar unit", func(t *testing.T) {
		assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), model.Daily.Step(jan31))
		assert.Equal(t, time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC), model.Quarterly.Step(time.Date(2024, time.January, 30, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC), model.Yearly.Step(jan31))
	})

	t.Run("month-based steps clamp to the month end", func(t *testing.T) {
		assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), model.Monthly.Step(jan31))
		assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), model.Quarterly.Step(time.Date(2023, time.November, 30, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), model.Yearly.Step(time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("advance keeps the anchor day", func(t *testing.T) {
		assert.Equal(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), model.Monthly.Advance(jan31, 2))
		assert.Equal(t, time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC), model.Monthly.Advance(jan31, 3))
		assert.Equal(t, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC), model.Monthly.Advance(jan31, 12))
		assert.Equal(t, time.Date(2024, time.February, 3, 0, 0, 0, 0, time.UTC), model.Daily.Advance(jan31, 3))
		assert.Equal(t, jan31, model.Quarterly.Advance(jan31, 0))
	})

	t.Run("unsupported period panics", func(t *testing.T) {
		assert.Panics(t, func() { model.Period(42).Step(jan31) })
	})

	t.Run("parses configuration names", func(t *testing.T) {
		for in, want := range map[string]model.Period{
			"daily":   model.Daily,
			"Month":   model.Monthly,
			"QUARTER": model.Quarterly,
			" annual": model.Yearly,
		} {
			got, err := model.ParsePeriod(in)
			require.NoError(t, err, in)
			assert.Equal(t, want, got, in)
		}

		_, err := model.ParsePeriod("weekly")
		assert.ErrorIs(t, err, apperrors.ErrInvalidPeriod)
	})

	t.Run("day truncates to UTC midnight", func(t *testing.T) {
		local := time.Date(2024, time.March, 2, 1, 30, 0, 0, time.FixedZone("CEST", 2*60*60))
		assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), model.Day(local))
	})
}

// TestCashFlowClassification pins the single table of external flow types.
//
// WHY: Performance and the cash-flow ledger both depend on this table. A Buy or
// Dividend leaking into it would show up as a phantom contribution in TWR.
func TestCashFlowClassification(t *testing.T) {
	external := []model.CashFlowType{model.CashFlowDeposit, model.CashFlowWithdrawal, model.CashFlowFee}
	internal := []model.CashFlowType{model.CashFlowBuy, model.CashFlowSell, model.CashFlowDividend, model.CashFlowInterest, model.CashFlowOther}

	for _, ft := range external {
		assert.True(t, ft.IsExternal(), ft)
	}
	for _, ft := range internal {
		assert.False(t, ft.IsExternal(), ft)
	}

	assert.Equal(t, 1, model.CashFlowDeposit.Sign())
	assert.Equal(t, -1, model.CashFlowWithdrawal.Sign())
	assert.Equal(t, -1, model.CashFlowFee.Sign())
	assert.Equal(t, -1, model.CashFlowBuy.Sign())
	assert.Equal(t, 1, model.CashFlowDividend.Sign())

	assert.Equal(t, model.CashFlowDividend, model.TransactionDividend.CashFlowType())
	assert.Equal(t, model.CashFlowOther, model.TransactionType("Split").CashFlowType())
}

func TestAsset(t *testing.T) {
	usd := model.MustCurrency("USD")

	assert.Equal(t, model.AssetClassOther, model.Symbol{Ticker: "XYZ", Quote: usd}.AssetClass())
	assert.True(t, model.IsCash(model.CashAsset{Denomination: usd}))
	assert.Equal(t, "USD", model.CashAsset{Denomination: usd}.Code())
	assert.False(t, model.IsCash(model.Symbol{Ticker: "AAPL", Quote: usd, Class: model.AssetClassEquity}))
	assert.False(t, model.IsCash(nil))
}
