package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrAccountNotFound indicates that an account with the given ID does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrPriceNotFound indicates no price record for a specific asset and date combination.
	ErrPriceNotFound = errors.New("price not found")

	// ErrExchangeRateNotFound indicates no record for a specific currency and date combination
	ErrExchangeRateNotFound = errors.New("exchange rate for currency/date not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrInvalidCurrency indicates a currency code that is not a known ISO 4217 code.
	ErrInvalidCurrency = errors.New("invalid currency code")

	// ErrCurrencyMismatch indicates arithmetic between amounts in different currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")

	// ErrInvalidPeriod indicates a period name that cannot be parsed.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrNotExternalFlow indicates that an account-level cash-flow helper was called
	// with a type that is not a deposit, withdrawal or fee.
	ErrNotExternalFlow = errors.New("cash flow type is not an external flow")

	// ErrInvalidValuationRecord indicates a valuation record that breaks the
	// portfolio/account exclusivity or asset-class field rules.
	ErrInvalidValuationRecord = errors.New("invalid valuation record")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	ErrFailedToRetrievePrice        = errors.New("failed to retrieve price")
	ErrFailedToRetrieveExchangeRate = errors.New("failed to retrieve exchange rate")
	ErrFailedToRetrieveCashFlows    = errors.New("failed to retrieve cash flows")
	ErrFailedToSaveValuationRecord  = errors.New("failed to save valuation record")
	ErrFailedToDecryptNote          = errors.New("failed to decrypt cash flow note")
)
