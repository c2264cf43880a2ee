package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType identifies what a transaction did to an account.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "Deposit"
	TransactionWithdrawal TransactionType = "Withdrawal"
	TransactionFee        TransactionType = "Fee"
	TransactionBuy        TransactionType = "Buy"
	TransactionSell       TransactionType = "Sell"
	TransactionDividend   TransactionType = "Dividend"
	TransactionInterest   TransactionType = "Interest"
)

// Transaction is an immutable record of activity on an account.
// Deleting a transaction does not reverse its effect on holdings.
type Transaction struct {
	ID        string          `json:"id"`
	AccountID string          `json:"accountId"`
	Type      TransactionType `json:"type"`
	Asset     Asset           `json:"-"`
	Quantity  decimal.Decimal `json:"quantity"`
	Amount    Money           `json:"amount"`
	Costs     *Money          `json:"costs,omitempty"`
	Date      time.Time       `json:"date"`
}

// CashFlowType maps the transaction type onto the cash-flow vocabulary.
func (t TransactionType) CashFlowType() CashFlowType {
	switch t {
	case TransactionDeposit:
		return CashFlowDeposit
	case TransactionWithdrawal:
		return CashFlowWithdrawal
	case TransactionFee:
		return CashFlowFee
	case TransactionBuy:
		return CashFlowBuy
	case TransactionSell:
		return CashFlowSell
	case TransactionDividend:
		return CashFlowDividend
	case TransactionInterest:
		return CashFlowInterest
	default:
		return CashFlowOther
	}
}
