package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/secret"
)

// CashFlowRepository provides data access methods for the cash_flow table.
// Notes are encrypted at rest when a Box is configured.
type CashFlowRepository struct {
	db  *sql.DB
	box *secret.Box
}

// NewCashFlowRepository creates a new CashFlowRepository. box may be nil.
func NewCashFlowRepository(db *sql.DB, box *secret.Box) *CashFlowRepository {
	return &CashFlowRepository{db: db, box: box}
}

// SaveCashFlow inserts a cash flow.
func (r *CashFlowRepository) SaveCashFlow(ctx context.Context, cf model.CashFlow) error {
	query := `
		INSERT INTO cash_flow (id, account_id, date, amount, currency, type, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	note, err := r.box.Seal(cf.Note)
	if err != nil {
		return fmt.Errorf("failed to seal cash flow note: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		cf.ID,
		cf.AccountID,
		formatDate(cf.Date),
		cf.Amount.Amount.String(),
		string(cf.Amount.Currency),
		string(cf.Type),
		note,
	)
	if err != nil {
		return fmt.Errorf("failed to insert cash_flow: %w", err)
	}
	return nil
}

// GetCashFlows retrieves the flows of an account ordered by date.
// from and to are optional inclusive bounds.
func (r *CashFlowRepository) GetCashFlows(ctx context.Context, accountID string, from, to *time.Time) ([]model.CashFlow, error) {
	query := `
		SELECT id, account_id, date, amount, currency, type, note
		FROM cash_flow
		WHERE account_id = ?
	`
	args := []any{accountID}

	if from != nil {
		query += " AND date >= ?"
		args = append(args, formatDate(*from))
	}
	if to != nil {
		query += " AND date <= ?"
		args = append(args, formatDate(*to))
	}
	query += " ORDER BY date ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash_flow table: %w", err)
	}
	defer rows.Close()

	flows := []model.CashFlow{}
	for rows.Next() {
		var cf model.CashFlow
		var dateStr, amountStr, currency, flowType, note string

		err := rows.Scan(&cf.ID, &cf.AccountID, &dateStr, &amountStr, &currency, &flowType, &note)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cash_flow table results: %w", err)
		}

		cf.Date, err = ParseTime(dateStr)
		if err != nil {
			return nil, err
		}
		amount, err := parseDecimal(amountStr)
		if err != nil {
			return nil, err
		}
		cf.Amount = model.NewMoney(amount, model.Currency(currency))
		cf.Type = model.CashFlowType(flowType)

		cf.Note, err = r.box.Open(note)
		if err != nil {
			return nil, fmt.Errorf("%w: cash flow %s: %w", apperrors.ErrFailedToDecryptNote, cf.ID, err)
		}

		flows = append(flows, cf)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cash_flow table: %w", err)
	}
	return flows, nil
}
