package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/analytics"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

// PerformanceService produces daily time-weighted return series and Modified Dietz
// period returns for accounts and portfolios.
//
// Market values come from the ValuationService and external flows from the
// CashFlowService. Only flows whose currency equals the reporting currency are used.
type PerformanceService struct {
	valuation *ValuationService
	cashFlows *CashFlowService
	log       zerolog.Logger
}

// NewPerformanceService creates a new PerformanceService.
func NewPerformanceService(valuation *ValuationService, cashFlows *CashFlowService, log zerolog.Logger) *PerformanceService {
	return &PerformanceService{
		valuation: valuation,
		cashFlows: cashFlows,
		log:       log.With().Str("service", "performance").Logger(),
	}
}

type valueFunc func(ctx context.Context, date time.Time) (model.Money, error)

// AccountDailyTWR returns one daily return per calendar day in (start, end].
//
// For each day d the return is (MV(d) - MV(d-1) - flows(d)) / MV(d-1), where flows(d)
// is the net external flow dated exactly d. A day following a zero market value has
// return 0. start == end yields an empty series.
//
// Parameters:
//   - ctx: Context for cancellation, checked before each day
//   - account: Account with its holdings attached
//   - start, end: Inclusive date range; end before start is an error
//   - currency: Reporting currency
//
// Returns:
//   - []model.DailyReturn: Chronological series tagged with the account
//   - error: apperrors.ErrInvalidDateRange, provider errors or ctx.Err()
func (s *PerformanceService) AccountDailyTWR(ctx context.Context, account model.Account, start, end time.Time, currency model.Currency) ([]model.DailyReturn, error) {
	start, end = model.Day(start), model.Day(end)
	if end.Before(start) {
		return nil, apperrors.ErrInvalidDateRange
	}

	flows, err := s.cashFlows.GetNetCashFlowByDay(ctx, account.ID, currency, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load flows for account %s: %w", account.ID, err)
	}
	value := func(ctx context.Context, date time.Time) (model.Money, error) {
		return s.valuation.ValueAccount(ctx, account, date, currency)
	}
	return s.dailyTWR(ctx, model.EntityAccount, account.ID, value, flows, start, end, currency)
}

// PortfolioDailyTWR returns the daily return series of a whole portfolio.
// Flows are merged across accounts per day and returns are recomputed on the
// portfolio market value, never linked from account series.
func (s *PerformanceService) PortfolioDailyTWR(ctx context.Context, portfolio model.Portfolio, start, end time.Time, currency model.Currency) ([]model.DailyReturn, error) {
	start, end = model.Day(start), model.Day(end)
	if end.Before(start) {
		return nil, apperrors.ErrInvalidDateRange
	}

	flows, err := s.portfolioFlowsByDay(ctx, portfolio, currency, start, end)
	if err != nil {
		return nil, err
	}
	value := func(ctx context.Context, date time.Time) (model.Money, error) {
		return s.valuation.ValuePortfolio(ctx, portfolio, date, currency)
	}
	return s.dailyTWR(ctx, model.EntityPortfolio, portfolio.ID, value, flows, start, end, currency)
}

func (s *PerformanceService) portfolioFlowsByDay(ctx context.Context, portfolio model.Portfolio, currency model.Currency, start, end time.Time) (map[time.Time]decimal.Decimal, error) {
	merged := make(map[time.Time]decimal.Decimal)
	for _, a := range portfolio.Accounts {
		byDay, err := s.cashFlows.GetNetCashFlowByDay(ctx, a.ID, currency, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to load flows for account %s: %w", a.ID, err)
		}
		for d, amount := range byDay {
			merged[d] = merged[d].Add(amount)
		}
	}
	return merged, nil
}

func (s *PerformanceService) dailyTWR(
	ctx context.Context,
	kind model.EntityKind,
	entityID string,
	value valueFunc,
	flows map[time.Time]decimal.Decimal,
	start, end time.Time,
	currency model.Currency,
) ([]model.DailyReturn, error) {
	if start.Equal(end) {
		return []model.DailyReturn{}, nil
	}

	prev, err := value(ctx, start)
	if err != nil {
		return nil, err
	}

	series := make([]model.DailyReturn, 0, analytics.DaysBetween(start, end))
	for d := start.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mv, err := value(ctx, d)
		if err != nil {
			return nil, err
		}
		series = append(series, model.DailyReturn{
			Date:       d,
			EntityKind: kind,
			EntityID:   entityID,
			Currency:   currency,
			Return:     analytics.DailyReturn(prev.Amount, mv.Amount, flows[d]),
		})
		prev = mv
	}

	s.log.Debug().
		Str("entity", string(kind)).
		Str("entity_id", entityID).
		Int("days", len(series)).
		Msg("daily return series computed")
	return series, nil
}

// AccountModifiedDietz computes the Modified Dietz return of an account over [start, end].
func (s *PerformanceService) AccountModifiedDietz(ctx context.Context, account model.Account, start, end time.Time, currency model.Currency) (model.PeriodPerformance, error) {
	start, end = model.Day(start), model.Day(end)
	if end.Before(start) {
		return model.PeriodPerformance{}, apperrors.ErrInvalidDateRange
	}

	flows, err := s.externalFlows(ctx, []model.Account{account}, currency, start, end)
	if err != nil {
		return model.PeriodPerformance{}, err
	}
	value := func(ctx context.Context, date time.Time) (model.Money, error) {
		return s.valuation.ValueAccount(ctx, account, date, currency)
	}
	return s.modifiedDietz(ctx, value, flows, start, end, currency)
}

// PortfolioModifiedDietz computes the Modified Dietz return of a portfolio, using the
// external flows of all of its accounts.
func (s *PerformanceService) PortfolioModifiedDietz(ctx context.Context, portfolio model.Portfolio, start, end time.Time, currency model.Currency) (model.PeriodPerformance, error) {
	start, end = model.Day(start), model.Day(end)
	if end.Before(start) {
		return model.PeriodPerformance{}, apperrors.ErrInvalidDateRange
	}

	flows, err := s.externalFlows(ctx, portfolio.Accounts, currency, start, end)
	if err != nil {
		return model.PeriodPerformance{}, err
	}
	value := func(ctx context.Context, date time.Time) (model.Money, error) {
		return s.valuation.ValuePortfolio(ctx, portfolio, date, currency)
	}
	return s.modifiedDietz(ctx, value, flows, start, end, currency)
}

func (s *PerformanceService) externalFlows(ctx context.Context, accounts []model.Account, currency model.Currency, start, end time.Time) ([]analytics.Flow, error) {
	var flows []analytics.Flow
	for _, a := range accounts {
		cfs, err := s.cashFlows.GetExternalFlows(ctx, a.ID, currency, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to load flows for account %s: %w", a.ID, err)
		}
		for _, cf := range cfs {
			flows = append(flows, analytics.Flow{Date: cf.Date, Amount: cf.Amount.Amount, Type: cf.Type})
		}
	}
	return flows, nil
}

func (s *PerformanceService) modifiedDietz(ctx context.Context, value valueFunc, flows []analytics.Flow, start, end time.Time, currency model.Currency) (model.PeriodPerformance, error) {
	beginning, err := value(ctx, start)
	if err != nil {
		return model.PeriodPerformance{}, err
	}
	ending, err := value(ctx, end)
	if err != nil {
		return model.PeriodPerformance{}, err
	}

	res := analytics.ModifiedDietz(analytics.ModifiedDietzInput{
		Start:     start,
		End:       end,
		Beginning: beginning.Amount,
		Ending:    ending.Amount,
		Flows:     flows,
	})

	return model.PeriodPerformance{
		Start:          start,
		End:            end,
		Currency:       currency,
		Method:         model.MethodModifiedDietz,
		Return:         res.Return,
		BeginningValue: beginning,
		EndingValue:    ending,
		NetFlows:       model.NewMoney(res.NetFlows, currency),
	}, nil
}

// CumulativeReturn links a daily series in chronological order.
func (s *PerformanceService) CumulativeReturn(series []model.DailyReturn) float64 {
	return analytics.LinkSeries(series)
}

// RiskCard summarises a daily series, optionally against a benchmark series.
func (s *PerformanceService) RiskCard(series, benchmark []model.DailyReturn) model.RiskCard {
	return analytics.BuildRiskCard(series, benchmark)
}

// RollingReturns computes the standard trailing windows as of a date.
func (s *PerformanceService) RollingReturns(series []model.DailyReturn, asOf, inception time.Time) model.RollingReturnSet {
	return analytics.RollingReturns(series, asOf, inception)
}

// MonthlyReturns links a daily series per calendar month.
func (s *PerformanceService) MonthlyReturns(series []model.DailyReturn) []model.MonthlyReturn {
	return analytics.MonthlyReturns(series)
}
