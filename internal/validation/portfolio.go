package validation

import (
	"fmt"
	"strings"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

// ValidatePortfolio validates a portfolio graph. Nested fields are reported with
// their path, for example "accounts[0].holdings[2].quantity".
func ValidatePortfolio(p model.Portfolio) error {
	errors := make(map[string]string)

	if strings.TrimSpace(p.ID) == "" {
		errors["id"] = "id is required"
	}
	if strings.TrimSpace(p.Name) == "" {
		errors["name"] = "name is required"
	} else if len(p.Name) > 100 {
		errors["name"] = "name must be 100 characters or less"
	}

	for i, a := range p.Accounts {
		validateAccount(a, fmt.Sprintf("accounts[%d].", i), errors)
	}
	return result(errors)
}

// ValidateAccount validates a single account with its holdings and transactions.
func ValidateAccount(a model.Account) error {
	errors := make(map[string]string)
	validateAccount(a, "", errors)
	return result(errors)
}

func validateAccount(a model.Account, prefix string, errors map[string]string) {
	if strings.TrimSpace(a.ID) == "" {
		errors[prefix+"id"] = "id is required"
	}
	if strings.TrimSpace(a.Name) == "" {
		errors[prefix+"name"] = "name is required"
	}
	if _, err := model.NewCurrency(string(a.Currency)); err != nil {
		errors[prefix+"currency"] = err.Error()
	}

	for i, h := range a.Holdings {
		field := fmt.Sprintf("%sholdings[%d].", prefix, i)
		if h.Asset == nil {
			errors[field+"asset"] = "asset is required"
			continue
		}
		if strings.TrimSpace(h.Asset.Code()) == "" {
			errors[field+"asset"] = "asset code is required"
		}
		if !model.IsCash(h.Asset) && h.Quantity.IsNegative() {
			errors[field+"quantity"] = "quantity cannot be negative"
		}
	}

	for i, t := range a.Transactions {
		validateTransaction(t, fmt.Sprintf("%stransactions[%d].", prefix, i), errors)
	}
}
