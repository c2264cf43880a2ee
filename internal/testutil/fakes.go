package testutil

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

// PriceTable is an in-memory price provider. Prices are looked up by exact day;
// a missing entry is reported as not found.
//
// Example usage:
//
//	prices := testutil.NewPriceTable().
//	    Set("AAPL", testutil.Date(2024, 1, 1), model.M(100, testutil.USD)).
//	    Series("MSFT", testutil.USD, testutil.Date(2024, 1, 1), 300, 303, 306)
type PriceTable struct {
	mu     sync.RWMutex
	prices map[string]map[time.Time]model.Money
	calls  atomic.Int64

	// Err, when set, is returned by every lookup.
	Err error
}

// NewPriceTable creates an empty PriceTable.
func NewPriceTable() *PriceTable {
	return &PriceTable{prices: make(map[string]map[time.Time]model.Money)}
}

// Set stores one price.
func (p *PriceTable) Set(code string, date time.Time, price model.Money) *PriceTable {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.prices[code] == nil {
		p.prices[code] = make(map[time.Time]model.Money)
	}
	p.prices[code][model.Day(date)] = price
	return p
}

// Series stores consecutive daily prices starting at start.
func (p *PriceTable) Series(code string, c model.Currency, start time.Time, prices ...float64) *PriceTable {
	for i, v := range prices {
		p.Set(code, start.AddDate(0, 0, i), model.M(v, c))
	}
	return p
}

// GetPrice implements service.PriceProvider.
func (p *PriceTable) GetPrice(ctx context.Context, asset model.Asset, date time.Time) (model.Money, bool, error) {
	p.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return model.Money{}, false, err
	}
	if p.Err != nil {
		return model.Money{}, false, p.Err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	price, ok := p.prices[asset.Code()][model.Day(date)]
	return price, ok, nil
}

// Calls returns the number of GetPrice calls.
func (p *PriceTable) Calls() int {
	return int(p.calls.Load())
}

// RateTable is an in-memory FX provider keyed by exact day.
// Identical currencies always have rate 1.
type RateTable struct {
	mu    sync.RWMutex
	rates map[string]map[time.Time]decimal.Decimal
}

// NewRateTable creates an empty RateTable.
func NewRateTable() *RateTable {
	return &RateTable{rates: make(map[string]map[time.Time]decimal.Decimal)}
}

// Set stores the rate converting one unit of from into to.
func (r *RateTable) Set(from, to model.Currency, date time.Time, rate float64) *RateTable {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := string(from) + string(to)
	if r.rates[key] == nil {
		r.rates[key] = make(map[time.Time]decimal.Decimal)
	}
	r.rates[key][model.Day(date)] = decimal.NewFromFloat(rate)
	return r
}

// GetRate implements service.FXProvider.
func (r *RateTable) GetRate(ctx context.Context, from, to model.Currency, date time.Time) (decimal.Decimal, bool, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Decimal{}, false, err
	}
	if from == to {
		return decimal.NewFromInt(1), true, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rate, ok := r.rates[string(from)+string(to)][model.Day(date)]
	return rate, ok, nil
}

// MemoryCashFlowStore is an in-memory service.CashFlowStore.
type MemoryCashFlowStore struct {
	mu    sync.Mutex
	flows []model.CashFlow
}

// NewMemoryCashFlowStore creates an empty store.
func NewMemoryCashFlowStore() *MemoryCashFlowStore {
	return &MemoryCashFlowStore{}
}

// SaveCashFlow appends a flow.
func (s *MemoryCashFlowStore) SaveCashFlow(_ context.Context, cf model.CashFlow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows = append(s.flows, cf)
	return nil
}

// GetCashFlows returns the account's flows within the optional inclusive bounds.
func (s *MemoryCashFlowStore) GetCashFlows(_ context.Context, accountID string, from, to *time.Time) ([]model.CashFlow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.CashFlow{}
	for _, cf := range s.flows {
		if cf.AccountID != accountID {
			continue
		}
		if from != nil && cf.Date.Before(model.Day(*from)) {
			continue
		}
		if to != nil && cf.Date.After(model.Day(*to)) {
			continue
		}
		out = append(out, cf)
	}
	return out, nil
}

// MemoryValuationStore is an in-memory service.ValuationRecordStore that keeps every
// record it is given.
type MemoryValuationStore struct {
	mu      sync.Mutex
	records []model.ValuationRecord
}

// NewMemoryValuationStore creates an empty store.
func NewMemoryValuationStore() *MemoryValuationStore {
	return &MemoryValuationStore{}
}

// SaveValuationRecord appends a record.
func (s *MemoryValuationStore) SaveValuationRecord(_ context.Context, record model.ValuationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// GetValuationHistory streams matching records ordered by date.
func (s *MemoryValuationStore) GetValuationHistory(_ context.Context, filter model.ValuationHistoryFilter, callback func(model.ValuationRecord) error) error {
	s.mu.Lock()
	matched := []model.ValuationRecord{}
	for _, r := range s.records {
		if filter.PortfolioID != "" && r.PortfolioID != filter.PortfolioID {
			continue
		}
		if filter.AccountID != "" && r.AccountID != filter.AccountID {
			continue
		}
		if r.Date.Before(filter.Start) || r.Date.After(filter.End) {
			continue
		}
		matched = append(matched, r)
	}
	s.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Date.Before(matched[j].Date) })
	for _, r := range matched {
		if err := callback(r); err != nil {
			return err
		}
	}
	return nil
}

// Records returns a copy of everything saved so far.
func (s *MemoryValuationStore) Records() []model.ValuationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ValuationRecord(nil), s.records...)
}

// StaticPortfolioReader serves a fixed set of portfolios.
type StaticPortfolioReader struct {
	Portfolios []model.Portfolio
}

// GetPortfolios returns every portfolio.
func (r *StaticPortfolioReader) GetPortfolios(context.Context) ([]model.Portfolio, error) {
	return r.Portfolios, nil
}

// GetPortfolio returns the portfolio with the given id.
func (r *StaticPortfolioReader) GetPortfolio(_ context.Context, id string) (model.Portfolio, error) {
	for _, p := range r.Portfolios {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Portfolio{}, apperrors.ErrPortfolioNotFound
}

// GetAccount returns the account with the given id.
func (r *StaticPortfolioReader) GetAccount(_ context.Context, id string) (model.Account, error) {
	for _, p := range r.Portfolios {
		for _, a := range p.Accounts {
			if a.ID == id {
				return a, nil
			}
		}
	}
	return model.Account{}, apperrors.ErrAccountNotFound
}
