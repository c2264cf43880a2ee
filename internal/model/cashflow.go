package model

import "time"

// CashFlowType classifies a dated cash movement.
type CashFlowType string

const (
	CashFlowDeposit    CashFlowType = "Deposit"
	CashFlowWithdrawal CashFlowType = "Withdrawal"
	CashFlowFee        CashFlowType = "Fee"
	CashFlowBuy        CashFlowType = "Buy"
	CashFlowSell       CashFlowType = "Sell"
	CashFlowDividend   CashFlowType = "Dividend"
	CashFlowInterest   CashFlowType = "Interest"
	CashFlowOther      CashFlowType = "Other"
)

// ExternalFlowTypes is the one table deciding which movements are investor cash flow.
// Everything else (buys, sells, dividends, interest) is already visible in market
// value and must stay out of TWR and Modified Dietz net flows.
var ExternalFlowTypes = map[CashFlowType]struct{}{
	CashFlowDeposit:    {},
	CashFlowWithdrawal: {},
	CashFlowFee:        {},
}

// IsExternal reports whether the type counts as external investor cash flow.
func (t CashFlowType) IsExternal() bool {
	_, ok := ExternalFlowTypes[t]
	return ok
}

// Sign returns -1 for money leaving the account and +1 otherwise.
func (t CashFlowType) Sign() int {
	switch t {
	case CashFlowWithdrawal, CashFlowFee, CashFlowBuy:
		return -1
	default:
		return 1
	}
}

// CashFlow is a dated, typed, signed movement of cash on an account,
// stored in its native currency.
type CashFlow struct {
	ID        string       `json:"id"`
	AccountID string       `json:"accountId"`
	Date      time.Time    `json:"date"`
	Amount    Money        `json:"amount"`
	Type      CashFlowType `json:"type"`
	Note      string       `json:"note,omitempty"`
}
