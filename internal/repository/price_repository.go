package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

// PriceRepository provides data access methods for the price table.
// It implements service.PriceProvider.
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new PriceRepository with the provided database connection.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// GetPrice returns the most recent price of the asset on or before date.
// ok is false when no such price exists.
func (r *PriceRepository) GetPrice(ctx context.Context, asset model.Asset, date time.Time) (model.Money, bool, error) {
	query := `
		SELECT price, currency
		FROM price
		WHERE asset_code = ? AND date <= ?
		ORDER BY date DESC
		LIMIT 1
	`

	var priceStr, currency string
	err := r.db.QueryRowContext(ctx, query, asset.Code(), formatDate(date)).Scan(&priceStr, &currency)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Money{}, false, nil
	}
	if err != nil {
		return model.Money{}, false, fmt.Errorf("failed to query price: %w", err)
	}

	amount, err := parseDecimal(priceStr)
	if err != nil {
		return model.Money{}, false, err
	}
	return model.NewMoney(amount, model.Currency(currency)), true, nil
}

// SavePrice inserts or replaces the price of an asset on date.
func (r *PriceRepository) SavePrice(ctx context.Context, assetCode string, date time.Time, price model.Money) error {
	query := `
		INSERT INTO price (asset_code, date, price, currency)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (asset_code, date) DO UPDATE SET price = excluded.price, currency = excluded.currency
	`

	_, err := r.db.ExecContext(ctx, query, assetCode, formatDate(date), price.Amount.String(), string(price.Currency))
	if err != nil {
		return fmt.Errorf("failed to insert price: %w", err)
	}
	return nil
}
