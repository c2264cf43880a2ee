package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/repository"
)

// AccountBuilder provides a fluent interface for creating test accounts.
//
// Example usage:
//
//	account := testutil.NewAccount().
//	    WithCurrency(testutil.USD).
//	    WithCash(testutil.USD, 500).
//	    WithSecurity("AAPL", testutil.USD, model.AssetClassEquity, 10).
//	    Value()
type AccountBuilder struct {
	account model.Account
}

// NewAccount creates an AccountBuilder with sensible defaults.
func NewAccount() *AccountBuilder {
	return &AccountBuilder{
		account: model.Account{
			ID:                   MakeID(),
			Name:                 "Test Account " + randomAlphanumeric(4),
			Currency:             USD,
			FinancialInstitution: "Test Bank",
		},
	}
}

// WithID sets a custom ID.
func (b *AccountBuilder) WithID(id string) *AccountBuilder {
	b.account.ID = id
	return b
}

// WithName sets a custom name.
func (b *AccountBuilder) WithName(name string) *AccountBuilder {
	b.account.Name = name
	return b
}

// WithCurrency sets the account currency.
func (b *AccountBuilder) WithCurrency(c model.Currency) *AccountBuilder {
	b.account.Currency = c
	return b
}

// WithTags sets the account tags.
func (b *AccountBuilder) WithTags(tags ...string) *AccountBuilder {
	b.account.Tags = tags
	return b
}

// WithCash adds a cash holding.
func (b *AccountBuilder) WithCash(c model.Currency, amount float64) *AccountBuilder {
	return b.WithHolding(model.CashAsset{Denomination: c}, amount)
}

// WithSecurity adds a security holding.
func (b *AccountBuilder) WithSecurity(ticker string, quote model.Currency, class model.AssetClass, quantity float64) *AccountBuilder {
	return b.WithHolding(model.Symbol{Ticker: ticker, Quote: quote, Class: class}, quantity)
}

// WithHolding adds a holding of any asset.
func (b *AccountBuilder) WithHolding(asset model.Asset, quantity float64) *AccountBuilder {
	b.account.Holdings = append(b.account.Holdings, model.Holding{
		ID:        MakeID(),
		AccountID: b.account.ID,
		Asset:     asset,
		Quantity:  decimal.NewFromFloat(quantity),
	})
	return b
}

// WithTransaction adds a transaction. AccountID and a missing ID are filled in.
func (b *AccountBuilder) WithTransaction(tx model.Transaction) *AccountBuilder {
	if tx.ID == "" {
		tx.ID = MakeID()
	}
	tx.AccountID = b.account.ID
	b.account.Transactions = append(b.account.Transactions, tx)
	return b
}

// WithDividend adds a Dividend transaction. costs may be nil.
func (b *AccountBuilder) WithDividend(date time.Time, amount model.Money, costs *model.Money) *AccountBuilder {
	return b.WithTransaction(model.Transaction{
		Type:   model.TransactionDividend,
		Amount: amount,
		Costs:  costs,
		Date:   date,
	})
}

// Value returns the built account without touching a database.
func (b *AccountBuilder) Value() model.Account {
	a := b.account
	for i := range a.Holdings {
		a.Holdings[i].AccountID = a.ID
	}
	return a
}

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// In memory
//	portfolio := testutil.NewPortfolio().WithAccount(account).Value()
//
//	// Persisted
//	portfolio := testutil.NewPortfolio().
//	    WithName("Custom Portfolio").
//	    WithAccount(account).
//	    Build(t, db)
type PortfolioBuilder struct {
	portfolio model.Portfolio
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		portfolio: model.Portfolio{
			ID:    MakeID(),
			Name:  MakePortfolioName("Test Portfolio"),
			Owner: "tester",
		},
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.portfolio.ID = id
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.portfolio.Name = name
	return b
}

// WithOwner sets a custom owner.
func (b *PortfolioBuilder) WithOwner(owner string) *PortfolioBuilder {
	b.portfolio.Owner = owner
	return b
}

// WithAccount attaches an account.
func (b *PortfolioBuilder) WithAccount(a model.Account) *PortfolioBuilder {
	b.portfolio.Accounts = append(b.portfolio.Accounts, a)
	return b
}

// Value returns the built portfolio without touching a database.
func (b *PortfolioBuilder) Value() model.Portfolio {
	p := b.portfolio
	for i := range p.Accounts {
		p.Accounts[i].PortfolioID = p.ID
	}
	return p
}

// Build creates the portfolio graph in the database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	p := b.Value()
	if err := repository.NewPortfolioRepository(db).SavePortfolio(context.Background(), p); err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}
	return p
}

// SeedPrice stores a price for an asset code.
func SeedPrice(t *testing.T, db *sql.DB, code string, date time.Time, price model.Money) {
	t.Helper()

	if err := repository.NewPriceRepository(db).SavePrice(context.Background(), code, date, price); err != nil {
		t.Fatalf("Failed to seed price: %v", err)
	}
}

// SeedRate stores an exchange rate.
func SeedRate(t *testing.T, db *sql.DB, from, to model.Currency, date time.Time, rate float64) {
	t.Helper()

	err := repository.NewExchangeRateRepository(db).SaveRate(context.Background(), from, to, date, decimal.NewFromFloat(rate))
	if err != nil {
		t.Fatalf("Failed to seed exchange rate: %v", err)
	}
}
