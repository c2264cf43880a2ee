package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

// PriceProvider looks up the price of an asset as of a date, in the asset's own currency.
// ok is false when no price is known; err is reserved for lookup failures.
type PriceProvider interface {
	GetPrice(ctx context.Context, asset model.Asset, date time.Time) (price model.Money, ok bool, err error)
}

// FXProvider looks up the rate converting one unit of `from` into `to` as of a date.
type FXProvider interface {
	GetRate(ctx context.Context, from, to model.Currency, date time.Time) (rate decimal.Decimal, ok bool, err error)
}

// CashFlowStore persists and queries account cash flows.
// Date bounds are inclusive and optional.
type CashFlowStore interface {
	SaveCashFlow(ctx context.Context, cf model.CashFlow) error
	GetCashFlows(ctx context.Context, accountID string, from, to *time.Time) ([]model.CashFlow, error)
}

// ValuationRecordStore is the append-only sink of generated valuation records.
// Upsert and idempotency semantics belong to the implementation.
type ValuationRecordStore interface {
	SaveValuationRecord(ctx context.Context, record model.ValuationRecord) error
	GetValuationHistory(ctx context.Context, filter model.ValuationHistoryFilter, callback func(model.ValuationRecord) error) error
}

// PortfolioReader loads portfolio and account graphs with holdings and transactions attached.
type PortfolioReader interface {
	GetPortfolios(ctx context.Context) ([]model.Portfolio, error)
	GetPortfolio(ctx context.Context, portfolioID string) (model.Portfolio, error)
	GetAccount(ctx context.Context, accountID string) (model.Account, error)
}
