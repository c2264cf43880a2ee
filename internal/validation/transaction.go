package validation

import (
	"fmt"
	"strings"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

// ValidTransactionType contains the allowed transaction type values.
var ValidTransactionType = map[model.TransactionType]bool{
	model.TransactionDeposit:    true,
	model.TransactionWithdrawal: true,
	model.TransactionFee:        true,
	model.TransactionBuy:        true,
	model.TransactionSell:       true,
	model.TransactionDividend:   true,
	model.TransactionInterest:   true,
}

// ValidateTransaction validates a single transaction.
//
// Rules:
//   - id: Required
//   - type: Must be one of ValidTransactionType
//   - date: Required
//   - amount: Must carry a valid currency
//   - costs: Must carry a valid currency when present
//   - Buy and Sell: Must reference an asset and a positive quantity
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateTransaction(t model.Transaction) error {
	errors := make(map[string]string)
	validateTransaction(t, "", errors)
	return result(errors)
}

func validateTransaction(t model.Transaction, prefix string, errors map[string]string) {
	if strings.TrimSpace(t.ID) == "" {
		errors[prefix+"id"] = "id is required"
	}

	if strings.TrimSpace(string(t.Type)) == "" {
		errors[prefix+"type"] = "type is required"
	} else if !ValidTransactionType[t.Type] {
		errors[prefix+"type"] = fmt.Sprintf("invalid type: %s", t.Type)
	}

	if t.Date.IsZero() {
		errors[prefix+"date"] = "date is required"
	}

	if _, err := model.NewCurrency(string(t.Amount.Currency)); err != nil {
		errors[prefix+"amount"] = err.Error()
	}
	if t.Costs != nil {
		if _, err := model.NewCurrency(string(t.Costs.Currency)); err != nil {
			errors[prefix+"costs"] = err.Error()
		}
	}

	if t.Type == model.TransactionBuy || t.Type == model.TransactionSell {
		if t.Asset == nil {
			errors[prefix+"asset"] = "asset is required for " + string(t.Type)
		}
		if !t.Quantity.IsPositive() {
			errors[prefix+"quantity"] = "quantity must be positive"
		}
	}
}
