package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

// AssetClassLookup resolves the asset class of a security code.
type AssetClassLookup interface {
	AssetClassOf(code string) model.AssetClass
}

// AssetClassLookupFunc adapts a function to AssetClassLookup.
type AssetClassLookupFunc func(code string) model.AssetClass

// AssetClassOf calls f(code).
func (f AssetClassLookupFunc) AssetClassOf(code string) model.AssetClass { return f(code) }

// PortfolioAssetClassLookup finds asset classes by walking the holdings of every account.
// Unknown codes resolve to AssetClassOther.
type PortfolioAssetClassLookup struct {
	Accounts []model.Account
}

// NewPortfolioAssetClassLookup creates a lookup over all accounts of the given portfolios.
func NewPortfolioAssetClassLookup(portfolios ...model.Portfolio) *PortfolioAssetClassLookup {
	l := &PortfolioAssetClassLookup{}
	for _, p := range portfolios {
		l.Accounts = append(l.Accounts, p.Accounts...)
	}
	return l
}

// AssetClassOf returns the class of the first holding whose asset has the given code.
func (l *PortfolioAssetClassLookup) AssetClassOf(code string) model.AssetClass {
	for _, a := range l.Accounts {
		for _, h := range a.Holdings {
			if h.Asset != nil && h.Asset.Code() == code {
				return h.Asset.AssetClass()
			}
		}
	}
	return model.AssetClassOther
}

// AttributionService decomposes period performance into per-security and
// per-asset-class contributions.
type AttributionService struct {
	valuation *ValuationService
	log       zerolog.Logger
}

// NewAttributionService creates a new AttributionService.
func NewAttributionService(valuation *ValuationService, log zerolog.Logger) *AttributionService {
	return &AttributionService{
		valuation: valuation,
		log:       log.With().Str("service", "attribution").Logger(),
	}
}

// AccountSecurityContributions returns one record per holding of the account.
//
// Each holding with a positive start value gets
//
//	return       = (v1 - v0) / v0
//	weight       = v0 / accountStart
//	contribution = weight * return
//
// Holdings with a start value of zero or less are skipped, and nothing is returned
// when the account itself starts at zero.
func (s *AttributionService) AccountSecurityContributions(ctx context.Context, account model.Account, start, end time.Time, currency model.Currency) ([]model.ContributionRecord, error) {
	start, end = model.Day(start), model.Day(end)
	if end.Before(start) {
		return nil, apperrors.ErrInvalidDateRange
	}

	accountStart, err := s.valuation.ValueAccount(ctx, account, start, currency)
	if err != nil {
		return nil, err
	}
	if accountStart.IsZero() {
		return nil, nil
	}

	var records []model.ContributionRecord
	for _, h := range account.Holdings {
		if h.Asset == nil {
			continue
		}
		v0, err := s.valuation.ValueHolding(ctx, h, start, currency)
		if err != nil {
			return nil, err
		}
		if !v0.IsPositive() {
			continue
		}
		v1, err := s.valuation.ValueHolding(ctx, h, end, currency)
		if err != nil {
			return nil, err
		}
		records = append(records, securityRecord(h.Asset.Code(), v0.Amount, v1.Amount, accountStart.Amount, start, end, currency))
	}
	return records, nil
}

// PortfolioSecurityContributions groups holdings by asset code across all accounts.
// Start and end values are summed per code before a single return is computed, and
// weights are taken against the portfolio start value.
func (s *AttributionService) PortfolioSecurityContributions(ctx context.Context, portfolio model.Portfolio, start, end time.Time, currency model.Currency) ([]model.ContributionRecord, error) {
	start, end = model.Day(start), model.Day(end)
	if end.Before(start) {
		return nil, apperrors.ErrInvalidDateRange
	}

	portfolioStart, err := s.valuation.ValuePortfolio(ctx, portfolio, start, currency)
	if err != nil {
		return nil, err
	}
	if portfolioStart.IsZero() {
		return nil, nil
	}

	type pair struct{ v0, v1 decimal.Decimal }
	grouped := make(map[string]*pair)
	var order []string
	for _, h := range portfolio.AllHoldings() {
		if h.Asset == nil {
			continue
		}
		v0, err := s.valuation.ValueHolding(ctx, h, start, currency)
		if err != nil {
			return nil, fmt.Errorf("failed to value holding %s: %w", h.ID, err)
		}
		v1, err := s.valuation.ValueHolding(ctx, h, end, currency)
		if err != nil {
			return nil, fmt.Errorf("failed to value holding %s: %w", h.ID, err)
		}
		code := h.Asset.Code()
		p, ok := grouped[code]
		if !ok {
			p = &pair{}
			grouped[code] = p
			order = append(order, code)
		}
		p.v0 = p.v0.Add(v0.Amount)
		p.v1 = p.v1.Add(v1.Amount)
	}

	var records []model.ContributionRecord
	for _, code := range order {
		p := grouped[code]
		if !p.v0.IsPositive() {
			continue
		}
		records = append(records, securityRecord(code, p.v0, p.v1, portfolioStart.Amount, start, end, currency))
	}
	return records, nil
}

func securityRecord(code string, v0, v1, total decimal.Decimal, start, end time.Time, currency model.Currency) model.ContributionRecord {
	r := v1.Sub(v0).Div(v0)
	w := v0.Div(total)
	return model.ContributionRecord{
		Start:        start,
		End:          end,
		Currency:     currency,
		Level:        model.ContributionSecurity,
		Key:          code,
		StartWeight:  w.InexactFloat64(),
		PeriodReturn: r.InexactFloat64(),
		Contribution: w.Mul(r).InexactFloat64(),
	}
}

// AssetClassContributions rolls security records up to asset classes.
// Weights and contributions are summed per class; the class return is
// contribution / weight, or 0 when the weight is 0.
func (s *AttributionService) AssetClassContributions(records []model.ContributionRecord, lookup AssetClassLookup) []model.ContributionRecord {
	if len(records) == 0 {
		return nil
	}

	byClass := make(map[model.AssetClass]*model.ContributionRecord)
	var order []model.AssetClass
	for _, r := range records {
		class := lookup.AssetClassOf(r.Key)
		agg, ok := byClass[class]
		if !ok {
			agg = &model.ContributionRecord{
				Start:    r.Start,
				End:      r.End,
				Currency: r.Currency,
				Level:    model.ContributionAssetClass,
				Key:      string(class),
			}
			byClass[class] = agg
			order = append(order, class)
		}
		agg.StartWeight += r.StartWeight
		agg.Contribution += r.Contribution
	}

	out := make([]model.ContributionRecord, 0, len(order))
	for _, class := range order {
		agg := byClass[class]
		if agg.StartWeight != 0 {
			agg.PeriodReturn = agg.Contribution / agg.StartWeight
		}
		out = append(out, *agg)
	}
	return out
}
