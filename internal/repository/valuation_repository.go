package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

// ValuationRepository provides data access methods for the valuation_record table.
// It implements service.ValuationRecordStore.
type ValuationRepository struct {
	db *sql.DB
}

// NewValuationRepository creates a new repository instance.
func NewValuationRepository(db *sql.DB) *ValuationRepository {
	return &ValuationRepository{db: db}
}

// SaveValuationRecord stores a record, replacing any earlier record for the same
// entity, date, period, currency and asset class. Regenerating a day is therefore idempotent.
func (r *ValuationRepository) SaveValuationRecord(ctx context.Context, record model.ValuationRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	assetClass := ""
	if record.AssetClass != nil {
		assetClass = string(*record.AssetClass)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM valuation_record
		WHERE IFNULL(portfolio_id, '') = ?
		AND IFNULL(account_id, '') = ?
		AND date = ?
		AND period = ?
		AND reporting_currency = ?
		AND IFNULL(asset_class, '') = ?
	`,
		record.PortfolioID,
		record.AccountID,
		formatDate(record.Date),
		record.Period.String(),
		string(record.ReportingCurrency),
		assetClass,
	)
	if err != nil {
		return fmt.Errorf("failed to replace valuation_record: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO valuation_record (
			id, date, period, reporting_currency, value, portfolio_id, account_id,
			securities_value, cash_value, income_for_day, asset_class, percentage, calculated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		formatDate(record.Date),
		record.Period.String(),
		string(record.ReportingCurrency),
		record.Value.Amount.String(),
		nullString(record.PortfolioID),
		nullString(record.AccountID),
		nullMoney(record.SecuritiesValue),
		nullMoney(record.CashValue),
		nullMoney(record.IncomeForDay),
		nullString(assetClass),
		nullFloat(record.Percentage),
		record.CalculatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	)
	if err != nil {
		return fmt.Errorf("failed to insert valuation_record: %w", err)
	}

	return tx.Commit()
}

// GetValuationHistory retrieves stored records for one portfolio or account in
// [filter.Start, filter.End]. This method streams results using a callback pattern
// to minimize memory usage.
//
// Records are ordered by date. Returns an error if the query fails or if the
// callback returns an error during processing.
func (r *ValuationRepository) GetValuationHistory(
	ctx context.Context,
	filter model.ValuationHistoryFilter,
	callback func(record model.ValuationRecord) error,
) error {
	query := `
		SELECT id, date, period, reporting_currency, value, portfolio_id, account_id,
		       securities_value, cash_value, income_for_day, asset_class, percentage, calculated_at
		FROM valuation_record
		WHERE date >= ? AND date <= ?
	`
	args := []any{formatDate(filter.Start), formatDate(filter.End)}

	if filter.PortfolioID != "" {
		query += " AND portfolio_id = ?"
		args = append(args, filter.PortfolioID)
	}
	if filter.AccountID != "" {
		query += " AND account_id = ?"
		args = append(args, filter.AccountID)
	}
	query += " ORDER BY date ASC, asset_class ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query valuation_record: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		record, err := scanValuationRecord(rows)
		if err != nil {
			return err
		}
		if err := callback(record); err != nil {
			return err
		}
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", err)
	}

	return nil
}

func scanValuationRecord(rows *sql.Rows) (model.ValuationRecord, error) {
	var record model.ValuationRecord
	var dateStr, periodStr, currency, valueStr, calculatedAtStr string
	var portfolioID, accountID, securities, cash, income, assetClass sql.NullString
	var percentage sql.NullFloat64

	err := rows.Scan(
		&record.ID,
		&dateStr,
		&periodStr,
		&currency,
		&valueStr,
		&portfolioID,
		&accountID,
		&securities,
		&cash,
		&income,
		&assetClass,
		&percentage,
		&calculatedAtStr,
	)
	if err != nil {
		return record, fmt.Errorf("failed to scan row: %w", err)
	}

	record.Date, err = ParseTime(dateStr)
	if err != nil {
		return record, fmt.Errorf("failed to parse date: %w", err)
	}
	record.CalculatedAt, err = ParseTime(calculatedAtStr)
	if err != nil {
		return record, fmt.Errorf("failed to parse calculated_at: %w", err)
	}
	record.Period, err = model.ParsePeriod(periodStr)
	if err != nil {
		return record, err
	}

	record.ReportingCurrency = model.Currency(currency)
	value, err := parseDecimal(valueStr)
	if err != nil {
		return record, err
	}
	record.Value = model.NewMoney(value, record.ReportingCurrency)
	record.PortfolioID = portfolioID.String
	record.AccountID = accountID.String

	if record.SecuritiesValue, err = scanMoney(securities, record.ReportingCurrency); err != nil {
		return record, err
	}
	if record.CashValue, err = scanMoney(cash, record.ReportingCurrency); err != nil {
		return record, err
	}
	if record.IncomeForDay, err = scanMoney(income, record.ReportingCurrency); err != nil {
		return record, err
	}
	if assetClass.Valid {
		class := model.AssetClass(assetClass.String)
		record.AssetClass = &class
	}
	if percentage.Valid {
		pct := percentage.Float64
		record.Percentage = &pct
	}
	return record, nil
}

func nullMoney(m *model.Money) sql.NullString {
	if m == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: m.Amount.String(), Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func scanMoney(s sql.NullString, currency model.Currency) (*model.Money, error) {
	if !s.Valid {
		return nil, nil
	}
	amount, err := parseDecimal(s.String)
	if err != nil {
		return nil, err
	}
	m := model.NewMoney(amount, currency)
	return &m, nil
}
