package model

import "github.com/shopspring/decimal"

// Portfolio groups the accounts of a single owner.
type Portfolio struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Owner    string    `json:"owner"`
	Accounts []Account `json:"accounts"`
}

// Account is a single custody account inside a portfolio. Holdings and transactions
// are attached by the read model; cash flows are queried by account ID.
type Account struct {
	ID                   string        `json:"id"`
	PortfolioID          string        `json:"portfolioId"`
	Name                 string        `json:"name"`
	Currency             Currency      `json:"currency"`
	FinancialInstitution string        `json:"financialInstitution"`
	Tags                 []string      `json:"tags"`
	Holdings             []Holding     `json:"holdings"`
	Transactions         []Transaction `json:"transactions"`
}

// Holding is a position in one asset owned by exactly one account.
type Holding struct {
	ID        string          `json:"id"`
	AccountID string          `json:"accountId"`
	Asset     Asset           `json:"-"`
	Quantity  decimal.Decimal `json:"quantity"`
	Tags      []string        `json:"tags"`
}

// IsOpen reports whether the holding still represents a position.
// Non-cash holdings with a quantity of zero or less are treated as removed.
func (h Holding) IsOpen() bool {
	if IsCash(h.Asset) {
		return true
	}
	return h.Quantity.IsPositive()
}

// AllHoldings returns the holdings of every account in the portfolio.
func (p Portfolio) AllHoldings() []Holding {
	var holdings []Holding
	for _, a := range p.Accounts {
		holdings = append(holdings, a.Holdings...)
	}
	return holdings
}
