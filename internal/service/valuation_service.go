package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

// Valuation is the value of a set of holdings on one date, split into cash and securities.
type Valuation struct {
	Total      model.Money
	Cash       model.Money
	Securities model.Money
}

// ValuationService values holdings, accounts and portfolios in a reporting currency.
//
// Missing market data never fails a valuation: a holding without a price or
// exchange rate for the date contributes zero and the MissingDataObserver is told.
// Errors returned from the providers themselves are propagated.
type ValuationService struct {
	prices   PriceProvider
	rates    FXProvider
	observer MissingDataObserver
	log      zerolog.Logger
}

// NewValuationService creates a new ValuationService.
// A nil observer is replaced by NopObserver.
func NewValuationService(prices PriceProvider, rates FXProvider, observer MissingDataObserver, log zerolog.Logger) *ValuationService {
	if observer == nil {
		observer = NopObserver{}
	}
	return &ValuationService{
		prices:   prices,
		rates:    rates,
		observer: observer,
		log:      log.With().Str("service", "valuation").Logger(),
	}
}

// ValueHolding returns the value of a single holding on date in the reporting currency.
//
// Cash holdings are priced at 1 in their own currency. A security with a non-positive
// quantity is treated as closed and valued at zero.
//
// Parameters:
//   - ctx: Context for cancellation
//   - holding: The position to value
//   - date: Valuation date
//   - reporting: Currency of the returned amount
//
// Returns:
//   - model.Money: Value in the reporting currency (zero when market data is missing)
//   - error: If a provider lookup fails
func (s *ValuationService) ValueHolding(ctx context.Context, holding model.Holding, date time.Time, reporting model.Currency) (model.Money, error) {
	if holding.Asset == nil || !holding.IsOpen() {
		return model.Zero(reporting), nil
	}

	native, ok, err := s.nativeValue(ctx, holding, date)
	if err != nil || !ok {
		return model.Zero(reporting), err
	}
	return s.convert(ctx, native, date, reporting)
}

func (s *ValuationService) nativeValue(ctx context.Context, holding model.Holding, date time.Time) (model.Money, bool, error) {
	if model.IsCash(holding.Asset) {
		return model.NewMoney(holding.Quantity, holding.Asset.Currency()), true, nil
	}

	price, ok, err := s.prices.GetPrice(ctx, holding.Asset, date)
	if err != nil {
		return model.Money{}, false, fmt.Errorf("failed to get price for %s: %w", holding.Asset.Code(), err)
	}
	if !ok {
		s.observer.MissingPrice(holding.Asset, date)
		return model.Money{}, false, nil
	}
	return model.NewMoney(holding.Quantity.Mul(price.Amount), price.Currency), true, nil
}

// convert re-denominates m into reporting, returning zero when no rate is known.
func (s *ValuationService) convert(ctx context.Context, m model.Money, date time.Time, reporting model.Currency) (model.Money, error) {
	if m.Currency == reporting {
		return m, nil
	}
	rate, ok, err := s.rates.GetRate(ctx, m.Currency, reporting, date)
	if err != nil {
		return model.Zero(reporting), fmt.Errorf("failed to get exchange rate %s/%s: %w", m.Currency, reporting, err)
	}
	if !ok {
		s.observer.MissingRate(m.Currency, reporting, date)
		return model.Zero(reporting), nil
	}
	return m.MulRate(rate, reporting), nil
}

// Breakdown values every holding once and splits the total into cash and securities.
func (s *ValuationService) Breakdown(ctx context.Context, holdings []model.Holding, date time.Time, reporting model.Currency) (Valuation, error) {
	cash := decimal.Zero
	securities := decimal.Zero
	for _, h := range holdings {
		v, err := s.ValueHolding(ctx, h, date, reporting)
		if err != nil {
			return Valuation{}, err
		}
		if model.IsCash(h.Asset) {
			cash = cash.Add(v.Amount)
		} else {
			securities = securities.Add(v.Amount)
		}
	}
	return Valuation{
		Total:      model.NewMoney(cash.Add(securities), reporting),
		Cash:       model.NewMoney(cash, reporting),
		Securities: model.NewMoney(securities, reporting),
	}, nil
}

// ValueHoldings returns the summed value of holdings on date.
func (s *ValuationService) ValueHoldings(ctx context.Context, holdings []model.Holding, date time.Time, reporting model.Currency) (model.Money, error) {
	total := model.Zero(reporting)
	for _, h := range holdings {
		v, err := s.ValueHolding(ctx, h, date, reporting)
		if err != nil {
			return model.Money{}, err
		}
		if total, err = total.Add(v); err != nil {
			return model.Money{}, err
		}
	}
	return total, nil
}

// ValueAccount returns the total value of an account's holdings on date.
func (s *ValuationService) ValueAccount(ctx context.Context, account model.Account, date time.Time, reporting model.Currency) (model.Money, error) {
	return s.ValueHoldings(ctx, account.Holdings, date, reporting)
}

// ValuePortfolio returns the sum of its account values on date.
func (s *ValuationService) ValuePortfolio(ctx context.Context, portfolio model.Portfolio, date time.Time, reporting model.Currency) (model.Money, error) {
	return s.ValueAccounts(ctx, portfolio.Accounts, date, reporting)
}

// ValueAccounts sums the values of each account.
func (s *ValuationService) ValueAccounts(ctx context.Context, accounts []model.Account, date time.Time, reporting model.Currency) (model.Money, error) {
	total := model.Zero(reporting)
	for _, a := range accounts {
		v, err := s.ValueAccount(ctx, a, date, reporting)
		if err != nil {
			return model.Money{}, fmt.Errorf("failed to value account %s: %w", a.ID, err)
		}
		if total, err = total.Add(v); err != nil {
			return model.Money{}, err
		}
	}
	return total, nil
}

// CashValue returns the value of the cash holdings only.
func (s *ValuationService) CashValue(ctx context.Context, holdings []model.Holding, date time.Time, reporting model.Currency) (model.Money, error) {
	b, err := s.Breakdown(ctx, cashOnly(holdings), date, reporting)
	if err != nil {
		return model.Money{}, err
	}
	return b.Cash, nil
}

// SecuritiesValue returns total value minus cash value.
func (s *ValuationService) SecuritiesValue(ctx context.Context, holdings []model.Holding, date time.Time, reporting model.Currency) (model.Money, error) {
	b, err := s.Breakdown(ctx, holdings, date, reporting)
	if err != nil {
		return model.Money{}, err
	}
	return b.Total.Sub(b.Cash)
}

// AssetClassValues groups holding values by asset class.
// Accounts are aggregated one at a time and then summed, so a portfolio-level
// result equals the sum of its account-level results per class. The returned
// order lists classes as first encountered.
func (s *ValuationService) AssetClassValues(ctx context.Context, accounts []model.Account, date time.Time, reporting model.Currency) (map[model.AssetClass]model.Money, []model.AssetClass, error) {
	totals := make(map[model.AssetClass]model.Money)
	var order []model.AssetClass

	for _, a := range accounts {
		perAccount := make(map[model.AssetClass]decimal.Decimal)
		var accountOrder []model.AssetClass
		for _, h := range a.Holdings {
			if h.Asset == nil {
				continue
			}
			v, err := s.ValueHolding(ctx, h, date, reporting)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to value account %s: %w", a.ID, err)
			}
			class := h.Asset.AssetClass()
			if _, seen := perAccount[class]; !seen {
				accountOrder = append(accountOrder, class)
			}
			perAccount[class] = perAccount[class].Add(v.Amount)
		}

		for _, class := range accountOrder {
			cur, seen := totals[class]
			if !seen {
				order = append(order, class)
				cur = model.Zero(reporting)
			}
			totals[class] = model.NewMoney(cur.Amount.Add(perAccount[class]), reporting)
		}
	}
	return totals, order, nil
}

func cashOnly(holdings []model.Holding) []model.Holding {
	var out []model.Holding
	for _, h := range holdings {
		if model.IsCash(h.Asset) {
			out = append(out, h)
		}
	}
	return out
}
