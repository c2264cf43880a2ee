package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/metrics"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

// SnapshotService generates valuation records for accounts and portfolios and hands
// them to a ValuationRecordStore. Stored records can be read back with GetHistory.
type SnapshotService struct {
	valuation *ValuationService
	store     ValuationRecordStore
	metrics   *metrics.Metrics
	log       zerolog.Logger
	now       func() time.Time
}

// NewSnapshotService creates a new SnapshotService. m may be nil.
func NewSnapshotService(valuation *ValuationService, store ValuationRecordStore, m *metrics.Metrics, log zerolog.Logger) *SnapshotService {
	return &SnapshotService{
		valuation: valuation,
		store:     store,
		metrics:   m,
		log:       log.With().Str("service", "snapshot").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// snapshotTarget is the entity a record is generated for. A portfolio is the set of
// its accounts; an account is a target with a single account.
type snapshotTarget struct {
	kind        model.EntityKind
	portfolioID string
	accountID   string
	accounts    []model.Account
}

func accountTarget(a model.Account) snapshotTarget {
	return snapshotTarget{kind: model.EntityAccount, accountID: a.ID, accounts: []model.Account{a}}
}

func portfolioTarget(p model.Portfolio) snapshotTarget {
	return snapshotTarget{kind: model.EntityPortfolio, portfolioID: p.ID, accounts: p.Accounts}
}

func (t snapshotTarget) id() string {
	if t.kind == model.EntityPortfolio {
		return t.portfolioID
	}
	return t.accountID
}

func (t snapshotTarget) holdings() []model.Holding {
	var out []model.Holding
	for _, a := range t.accounts {
		out = append(out, a.Holdings...)
	}
	return out
}

// =============================================================================
// VALUE SNAPSHOTS
// =============================================================================

// GenerateAccountSnapshot values an account on date and persists one record with the
// cash, securities and income breakdown.
func (s *SnapshotService) GenerateAccountSnapshot(ctx context.Context, account model.Account, date time.Time, currency model.Currency, period model.Period) (model.ValuationRecord, error) {
	return s.generateSnapshot(ctx, accountTarget(account), date, currency, period)
}

// GeneratePortfolioSnapshot values a portfolio on date and persists one record.
func (s *SnapshotService) GeneratePortfolioSnapshot(ctx context.Context, portfolio model.Portfolio, date time.Time, currency model.Currency, period model.Period) (model.ValuationRecord, error) {
	return s.generateSnapshot(ctx, portfolioTarget(portfolio), date, currency, period)
}

func (s *SnapshotService) generateSnapshot(ctx context.Context, t snapshotTarget, date time.Time, currency model.Currency, period model.Period) (model.ValuationRecord, error) {
	date = model.Day(date)

	b, err := s.valuation.Breakdown(ctx, t.holdings(), date, currency)
	if err != nil {
		return model.ValuationRecord{}, fmt.Errorf("failed to value %s %s: %w", t.kind, t.id(), err)
	}
	securities, err := b.Total.Sub(b.Cash)
	if err != nil {
		return model.ValuationRecord{}, err
	}
	income := incomeForDay(t.accounts, date, currency)

	record := model.ValuationRecord{
		ID:                uuid.New().String(),
		Date:              date,
		Period:            period,
		ReportingCurrency: currency,
		Value:             b.Total,
		PortfolioID:       t.portfolioID,
		AccountID:         t.accountID,
		SecuritiesValue:   &securities,
		CashValue:         &b.Cash,
		IncomeForDay:      &income,
		CalculatedAt:      s.now(),
	}
	if err := s.save(ctx, t, record, "value"); err != nil {
		return model.ValuationRecord{}, err
	}
	return record, nil
}

// incomeForDay sums Dividend transactions dated on date whose amount is in currency,
// net of costs recorded in the same currency. Other currencies are left out.
func incomeForDay(accounts []model.Account, date time.Time, currency model.Currency) model.Money {
	income := decimal.Zero
	for _, a := range accounts {
		for _, tx := range a.Transactions {
			if tx.Type != model.TransactionDividend || !model.Day(tx.Date).Equal(date) {
				continue
			}
			if tx.Amount.Currency != currency {
				continue
			}
			income = income.Add(tx.Amount.Amount.Abs())
			if tx.Costs != nil && tx.Costs.Currency == currency {
				income = income.Sub(tx.Costs.Amount.Abs())
			}
		}
	}
	return model.NewMoney(income, currency)
}

// =============================================================================
// ASSET-CLASS SNAPSHOTS
// =============================================================================

// GenerateAccountAssetClassSnapshot persists one record per asset class held by the
// account, with its share of the total. Nothing is generated when the total is not positive.
func (s *SnapshotService) GenerateAccountAssetClassSnapshot(ctx context.Context, account model.Account, date time.Time, currency model.Currency, period model.Period) ([]model.ValuationRecord, error) {
	return s.generateAssetClassSnapshot(ctx, accountTarget(account), date, currency, period)
}

// GeneratePortfolioAssetClassSnapshot is GenerateAccountAssetClassSnapshot for a whole portfolio.
func (s *SnapshotService) GeneratePortfolioAssetClassSnapshot(ctx context.Context, portfolio model.Portfolio, date time.Time, currency model.Currency, period model.Period) ([]model.ValuationRecord, error) {
	return s.generateAssetClassSnapshot(ctx, portfolioTarget(portfolio), date, currency, period)
}

func (s *SnapshotService) generateAssetClassSnapshot(ctx context.Context, t snapshotTarget, date time.Time, currency model.Currency, period model.Period) ([]model.ValuationRecord, error) {
	date = model.Day(date)

	values, order, err := s.valuation.AssetClassValues(ctx, t.accounts, date, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to value %s %s by asset class: %w", t.kind, t.id(), err)
	}

	total := decimal.Zero
	for _, class := range order {
		total = total.Add(values[class].Amount)
	}
	if !total.IsPositive() {
		return nil, nil
	}

	calculatedAt := s.now()
	records := make([]model.ValuationRecord, 0, len(order))
	for _, class := range order {
		class := class
		pct := values[class].Amount.Div(total).InexactFloat64()
		record := model.ValuationRecord{
			ID:                uuid.New().String(),
			Date:              date,
			Period:            period,
			ReportingCurrency: currency,
			Value:             values[class],
			PortfolioID:       t.portfolioID,
			AccountID:         t.accountID,
			AssetClass:        &class,
			Percentage:        &pct,
			CalculatedAt:      calculatedAt,
		}
		if err := s.save(ctx, t, record, "asset_class"); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *SnapshotService) save(ctx context.Context, t snapshotTarget, record model.ValuationRecord, kind string) error {
	if err := record.Validate(); err != nil {
		return err
	}
	if err := s.store.SaveValuationRecord(ctx, record); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrFailedToSaveValuationRecord, err)
	}
	if s.metrics != nil {
		s.metrics.SnapshotRecords.WithLabelValues(string(t.kind), kind).Inc()
	}
	return nil
}

// =============================================================================
// RANGES AND HISTORY
// =============================================================================

// GenerateAccountRange generates the value and asset-class snapshots of an account
// for every period step from start to end inclusive.
func (s *SnapshotService) GenerateAccountRange(ctx context.Context, account model.Account, start, end time.Time, currency model.Currency, period model.Period) ([]model.ValuationRecord, error) {
	return s.generateRange(ctx, accountTarget(account), start, end, currency, period)
}

// GeneratePortfolioRange is GenerateAccountRange for a portfolio.
func (s *SnapshotService) GeneratePortfolioRange(ctx context.Context, portfolio model.Portfolio, start, end time.Time, currency model.Currency, period model.Period) ([]model.ValuationRecord, error) {
	return s.generateRange(ctx, portfolioTarget(portfolio), start, end, currency, period)
}

func (s *SnapshotService) generateRange(ctx context.Context, t snapshotTarget, start, end time.Time, currency model.Currency, period model.Period) ([]model.ValuationRecord, error) {
	start, end = model.Day(start), model.Day(end)
	if end.Before(start) {
		return nil, apperrors.ErrInvalidDateRange
	}

	var records []model.ValuationRecord
	// Steps are taken from start so month-end anchors do not drift.
	for i := 0; ; i++ {
		date := period.Advance(start, i)
		if date.After(end) {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := s.generateSnapshot(ctx, t, date, currency, period)
		if err != nil {
			return nil, err
		}
		records = append(records, record)

		classRecords, err := s.generateAssetClassSnapshot(ctx, t, date, currency, period)
		if err != nil {
			return nil, err
		}
		records = append(records, classRecords...)
	}

	s.log.Info().
		Str("entity", string(t.kind)).
		Str("entity_id", t.id()).
		Str("period", period.String()).
		Str("start", start.Format("2006-01-02")).
		Str("end", end.Format("2006-01-02")).
		Int("records", len(records)).
		Msg("snapshot range generated")
	return records, nil
}

// GetHistory streams the stored records of a portfolio or account in [start, end]
// to callback, ordered by date. Exactly one of portfolioID and accountID must be set.
func (s *SnapshotService) GetHistory(ctx context.Context, portfolioID, accountID string, start, end time.Time, callback func(model.ValuationRecord) error) error {
	if (portfolioID == "") == (accountID == "") {
		return apperrors.ErrEmptyID
	}
	start, end = model.Day(start), model.Day(end)
	if end.Before(start) {
		return apperrors.ErrInvalidDateRange
	}
	return s.store.GetValuationHistory(ctx, model.ValuationHistoryFilter{
		PortfolioID: portfolioID,
		AccountID:   accountID,
		Start:       start,
		End:         end,
	}, callback)
}
