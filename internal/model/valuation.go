package model

import (
	"fmt"
	"time"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/apperrors"
)

// ValuationRecord is a persisted point-in-time valuation of one portfolio or account.
// Exactly one of PortfolioID and AccountID is set. Asset-class records carry AssetClass
// and Percentage and leave the securities/cash/income breakdown empty.
type ValuationRecord struct {
	ID                string      `json:"id"`
	Date              time.Time   `json:"date"`
	Period            Period      `json:"period"`
	ReportingCurrency Currency    `json:"reportingCurrency"`
	Value             Money       `json:"value"`
	PortfolioID       string      `json:"portfolioId,omitempty"`
	AccountID         string      `json:"accountId,omitempty"`
	SecuritiesValue   *Money      `json:"securitiesValue,omitempty"`
	CashValue         *Money      `json:"cashValue,omitempty"`
	IncomeForDay      *Money      `json:"incomeForDay,omitempty"`
	AssetClass        *AssetClass `json:"assetClass,omitempty"`
	Percentage        *float64    `json:"percentage,omitempty"`
	CalculatedAt      time.Time   `json:"calculatedAt"`
}

// IsAssetClassRecord reports whether the record is an asset-class slice.
func (r ValuationRecord) IsAssetClassRecord() bool {
	return r.AssetClass != nil
}

// Validate enforces the owner and breakdown rules of a valuation record.
func (r ValuationRecord) Validate() error {
	if (r.PortfolioID == "") == (r.AccountID == "") {
		return fmt.Errorf("%w: exactly one of portfolio and account must be set", apperrors.ErrInvalidValuationRecord)
	}
	if r.IsAssetClassRecord() {
		if r.Percentage == nil {
			return fmt.Errorf("%w: asset-class record without percentage", apperrors.ErrInvalidValuationRecord)
		}
		if r.SecuritiesValue != nil || r.CashValue != nil || r.IncomeForDay != nil {
			return fmt.Errorf("%w: asset-class record with value breakdown", apperrors.ErrInvalidValuationRecord)
		}
	}
	return nil
}

// ValuationHistoryFilter selects stored valuation records in [Start, End].
// Exactly one of PortfolioID and AccountID should be set.
type ValuationHistoryFilter struct {
	PortfolioID string
	AccountID   string
	Start       time.Time
	End         time.Time
}
