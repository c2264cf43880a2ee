package model

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/apperrors"
)

// Money is a decimal amount in a single currency.
// Arithmetic is only defined between amounts of the same currency; converting
// to another currency requires an explicit rate through MulRate.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// NewMoney builds a Money from a decimal amount.
func NewMoney(amount decimal.Decimal, currency Currency) Money {
	return Money{Amount: amount, Currency: currency}
}

// M is a shorthand used mostly by tests and fixtures.
func M(amount float64, currency Currency) Money {
	return Money{Amount: decimal.NewFromFloat(amount), Currency: currency}
}

// Zero returns a zero amount in the given currency.
func Zero(currency Currency) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// Add returns m + n. Both operands must share a currency.
func (m Money) Add(n Money) (Money, error) {
	if m.Currency != n.Currency {
		return Money{}, fmt.Errorf("%w: %s != %s", apperrors.ErrCurrencyMismatch, m.Currency, n.Currency)
	}
	return Money{Amount: m.Amount.Add(n.Amount), Currency: m.Currency}, nil
}

// Sub returns m - n. Both operands must share a currency.
func (m Money) Sub(n Money) (Money, error) {
	if m.Currency != n.Currency {
		return Money{}, fmt.Errorf("%w: %s != %s", apperrors.ErrCurrencyMismatch, m.Currency, n.Currency)
	}
	return Money{Amount: m.Amount.Sub(n.Amount), Currency: m.Currency}, nil
}

// MulRate re-denominates m into currency `to` using rate (units of `to` per unit of m).
func (m Money) MulRate(rate decimal.Decimal, to Currency) Money {
	return Money{Amount: m.Amount.Mul(rate), Currency: to}
}

func (m Money) Neg() Money       { return Money{Amount: m.Amount.Neg(), Currency: m.Currency} }
func (m Money) Abs() Money       { return Money{Amount: m.Amount.Abs(), Currency: m.Currency} }
func (m Money) IsZero() bool     { return m.Amount.IsZero() }
func (m Money) IsPositive() bool { return m.Amount.IsPositive() }
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }

// Equal reports whether both amount and currency match.
func (m Money) Equal(n Money) bool {
	return m.Currency == n.Currency && m.Amount.Equal(n.Amount)
}

// String formats the amount with the currency's symbol and minor-unit precision.
func (m Money) String() string {
	cur := money.GetCurrency(string(m.Currency))
	if cur == nil {
		return m.Amount.StringFixed(2) + " " + string(m.Currency)
	}
	minor := m.Amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// Round rounds the amount to the currency's minor unit.
func (m Money) Round() Money {
	return Money{Amount: m.Amount.Round(int32(m.Currency.fraction())), Currency: m.Currency}
}
