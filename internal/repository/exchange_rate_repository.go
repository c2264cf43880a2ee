package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

// ExchangeRateRepository provides data access methods for the exchange_rate table.
// It implements service.FXProvider.
type ExchangeRateRepository struct {
	db *sql.DB
}

// NewExchangeRateRepository creates a new ExchangeRateRepository with the provided database connection.
func NewExchangeRateRepository(db *sql.DB) *ExchangeRateRepository {
	return &ExchangeRateRepository{db: db}
}

// GetRate returns the rate converting one unit of from into to, as of date.
//
// The most recent direct quote on or before date is used. Without one, the inverse
// of the most recent to/from quote is returned. Identical currencies have rate 1.
func (r *ExchangeRateRepository) GetRate(ctx context.Context, from, to model.Currency, date time.Time) (decimal.Decimal, bool, error) {
	if from == to {
		return decimal.NewFromInt(1), true, nil
	}

	rate, ok, err := r.latestRate(ctx, from, to, date)
	if err != nil || ok {
		return rate, ok, err
	}

	inverse, ok, err := r.latestRate(ctx, to, from, date)
	if err != nil || !ok || inverse.IsZero() {
		return decimal.Decimal{}, false, err
	}
	return decimal.NewFromInt(1).Div(inverse), true, nil
}

func (r *ExchangeRateRepository) latestRate(ctx context.Context, from, to model.Currency, date time.Time) (decimal.Decimal, bool, error) {
	query := `
		SELECT rate
		FROM exchange_rate
		WHERE from_currency = ? AND to_currency = ? AND date <= ?
		ORDER BY date DESC
		LIMIT 1
	`

	var rateStr string
	err := r.db.QueryRowContext(ctx, query, string(from), string(to), formatDate(date)).Scan(&rateStr)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Decimal{}, false, nil
	}
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("failed to query exchange_rate: %w", err)
	}

	rate, err := parseDecimal(rateStr)
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	return rate, true, nil
}

// SaveRate inserts or replaces the from/to rate on date.
func (r *ExchangeRateRepository) SaveRate(ctx context.Context, from, to model.Currency, date time.Time, rate decimal.Decimal) error {
	query := `
		INSERT INTO exchange_rate (from_currency, to_currency, date, rate)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (from_currency, to_currency, date) DO UPDATE SET rate = excluded.rate
	`

	_, err := r.db.ExecContext(ctx, query, string(from), string(to), formatDate(date), rate.String())
	if err != nil {
		return fmt.Errorf("failed to insert exchange_rate: %w", err)
	}
	return nil
}
