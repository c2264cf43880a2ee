package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

// CashFlowService records and queries account cash flows.
//
// Stored amounts carry the sign of their type: deposits, sells, dividends and
// interest are positive; withdrawals, fees and buys are negative. Only Deposit,
// Withdrawal and Fee are external and feed the return engines.
type CashFlowService struct {
	store CashFlowStore
	log   zerolog.Logger
}

// NewCashFlowService creates a new CashFlowService.
func NewCashFlowService(store CashFlowStore, log zerolog.Logger) *CashFlowService {
	return &CashFlowService{
		store: store,
		log:   log.With().Str("service", "cashflow").Logger(),
	}
}

// RecordDeposit records a deposit of amount into an account.
func (s *CashFlowService) RecordDeposit(ctx context.Context, accountID string, date time.Time, amount model.Money, note string) (model.CashFlow, error) {
	return s.RecordExternalFlow(ctx, accountID, model.CashFlowDeposit, date, amount, note)
}

// RecordWithdrawal records a withdrawal. amount may be given positive; it is stored negative.
func (s *CashFlowService) RecordWithdrawal(ctx context.Context, accountID string, date time.Time, amount model.Money, note string) (model.CashFlow, error) {
	return s.RecordExternalFlow(ctx, accountID, model.CashFlowWithdrawal, date, amount, note)
}

// RecordFee records a fee charged to an account.
func (s *CashFlowService) RecordFee(ctx context.Context, accountID string, date time.Time, amount model.Money, note string) (model.CashFlow, error) {
	return s.RecordExternalFlow(ctx, accountID, model.CashFlowFee, date, amount, note)
}

// RecordExternalFlow records a flow of one of the external types.
// Any other type is rejected with apperrors.ErrNotExternalFlow.
func (s *CashFlowService) RecordExternalFlow(ctx context.Context, accountID string, flowType model.CashFlowType, date time.Time, amount model.Money, note string) (model.CashFlow, error) {
	if !flowType.IsExternal() {
		return model.CashFlow{}, fmt.Errorf("%w: %s", apperrors.ErrNotExternalFlow, flowType)
	}
	return s.record(ctx, accountID, flowType, date, amount, note)
}

// RecordFromTransaction derives a cash flow from a transaction of any type.
func (s *CashFlowService) RecordFromTransaction(ctx context.Context, tx model.Transaction) (model.CashFlow, error) {
	flowType := tx.Type.CashFlowType()
	note := "transaction " + tx.ID
	if tx.Asset != nil && !model.IsCash(tx.Asset) {
		note += " " + tx.Asset.Code()
	}
	return s.record(ctx, tx.AccountID, flowType, tx.Date, tx.Amount, note)
}

// record stores the magnitude of amount with the sign of flowType. A correction of an
// earlier flow is recorded with the opposite type, never as a negative amount.
func (s *CashFlowService) record(ctx context.Context, accountID string, flowType model.CashFlowType, date time.Time, amount model.Money, note string) (model.CashFlow, error) {
	if accountID == "" {
		return model.CashFlow{}, apperrors.ErrEmptyID
	}
	if _, err := model.NewCurrency(string(amount.Currency)); err != nil {
		return model.CashFlow{}, err
	}

	signed := amount.Abs()
	if flowType.Sign() < 0 {
		signed = signed.Neg()
	}

	cf := model.CashFlow{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Date:      model.Day(date),
		Amount:    signed,
		Type:      flowType,
		Note:      note,
	}
	if err := s.store.SaveCashFlow(ctx, cf); err != nil {
		return model.CashFlow{}, fmt.Errorf("failed to save cash flow: %w", err)
	}

	s.log.Debug().
		Str("account_id", accountID).
		Str("type", string(flowType)).
		Str("amount", signed.Amount.String()).
		Str("currency", string(signed.Currency)).
		Str("date", cf.Date.Format("2006-01-02")).
		Msg("cash flow recorded")
	return cf, nil
}

// GetCashFlows returns an account's flows with optional inclusive date bounds, ordered by date.
func (s *CashFlowService) GetCashFlows(ctx context.Context, accountID string, from, to *time.Time) ([]model.CashFlow, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, apperrors.ErrInvalidDateRange
	}
	flows, err := s.store.GetCashFlows(ctx, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveCashFlows, err)
	}
	sort.SliceStable(flows, func(i, j int) bool {
		return flows[i].Date.Before(flows[j].Date)
	})
	return flows, nil
}

// GetExternalFlows returns the external flows in the given currency within [from, to].
// Flows in other currencies are excluded, not converted.
func (s *CashFlowService) GetExternalFlows(ctx context.Context, accountID string, currency model.Currency, from, to time.Time) ([]model.CashFlow, error) {
	flows, err := s.GetCashFlows(ctx, accountID, &from, &to)
	if err != nil {
		return nil, err
	}
	out := flows[:0]
	for _, cf := range flows {
		if cf.Type.IsExternal() && cf.Amount.Currency == currency {
			out = append(out, cf)
		}
	}
	return out, nil
}

// GetNetCashFlow returns the sum of external flows in currency within [from, to].
func (s *CashFlowService) GetNetCashFlow(ctx context.Context, accountID string, currency model.Currency, from, to time.Time) (model.Money, error) {
	flows, err := s.GetExternalFlows(ctx, accountID, currency, from, to)
	if err != nil {
		return model.Money{}, err
	}
	net := decimal.Zero
	for _, cf := range flows {
		net = net.Add(cf.Amount.Amount)
	}
	return model.NewMoney(net, currency), nil
}

// GetNetCashFlowByDay returns the net external flow per calendar day within [from, to].
// Days without flows are absent from the map.
func (s *CashFlowService) GetNetCashFlowByDay(ctx context.Context, accountID string, currency model.Currency, from, to time.Time) (map[time.Time]decimal.Decimal, error) {
	flows, err := s.GetExternalFlows(ctx, accountID, currency, from, to)
	if err != nil {
		return nil, err
	}
	byDay := make(map[time.Time]decimal.Decimal)
	for _, cf := range flows {
		d := model.Day(cf.Date)
		byDay[d] = byDay[d].Add(cf.Amount.Amount)
	}
	return byDay, nil
}
