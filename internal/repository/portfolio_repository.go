package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/validation"
)

// PortfolioRepository provides data access methods for the portfolio, account, asset,
// holding and transaction tables. Reads return complete graphs: a portfolio comes with
// its accounts, and every account with its holdings and transactions.
// It implements service.PortfolioReader.
type PortfolioRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

func (r *PortfolioRepository) WithTx(tx *sql.Tx) *PortfolioRepository {
	return &PortfolioRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *PortfolioRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetPortfolios retrieves every portfolio with its accounts.
// Returns an empty slice if no portfolios exist.
func (r *PortfolioRepository) GetPortfolios(ctx context.Context) ([]model.Portfolio, error) {
	rows, err := r.getQuerier().QueryContext(ctx, `SELECT id, name, owner FROM portfolio ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}
	for rows.Next() {
		var p model.Portfolio
		if err := rows.Scan(&p.ID, &p.Name, &p.Owner); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio table results: %w", err)
		}
		portfolios = append(portfolios, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio table: %w", err)
	}

	for i := range portfolios {
		portfolios[i].Accounts, err = r.getAccounts(ctx, "portfolio_id", portfolios[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return portfolios, nil
}

// GetPortfolio retrieves one portfolio graph.
// Returns apperrors.ErrPortfolioNotFound when the id is unknown.
func (r *PortfolioRepository) GetPortfolio(ctx context.Context, portfolioID string) (model.Portfolio, error) {
	if portfolioID == "" {
		return model.Portfolio{}, apperrors.ErrEmptyID
	}

	var p model.Portfolio
	err := r.getQuerier().QueryRowContext(ctx,
		`SELECT id, name, owner FROM portfolio WHERE id = ?`, portfolioID,
	).Scan(&p.ID, &p.Name, &p.Owner)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to query portfolio: %w", err)
	}

	p.Accounts, err = r.getAccounts(ctx, "portfolio_id", p.ID)
	if err != nil {
		return model.Portfolio{}, err
	}
	return p, nil
}

// GetAccount retrieves one account with holdings and transactions.
// Returns apperrors.ErrAccountNotFound when the id is unknown.
func (r *PortfolioRepository) GetAccount(ctx context.Context, accountID string) (model.Account, error) {
	if accountID == "" {
		return model.Account{}, apperrors.ErrEmptyID
	}

	accounts, err := r.getAccounts(ctx, "id", accountID)
	if err != nil {
		return model.Account{}, err
	}
	if len(accounts) == 0 {
		return model.Account{}, apperrors.ErrAccountNotFound
	}
	return accounts[0], nil
}

// getAccounts loads the accounts matching column = value and attaches their holdings
// and transactions.
func (r *PortfolioRepository) getAccounts(ctx context.Context, column, value string) ([]model.Account, error) {
	//#nosec G202 -- Safe: column is one of two constants chosen by this package
	query := `
		SELECT id, portfolio_id, name, currency, financial_institution, tags
		FROM account
		WHERE ` + column + ` = ?
		ORDER BY name
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("failed to query account table: %w", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		var a model.Account
		var currency, tags string
		if err := rows.Scan(&a.ID, &a.PortfolioID, &a.Name, &currency, &a.FinancialInstitution, &tags); err != nil {
			return nil, fmt.Errorf("failed to scan account table results: %w", err)
		}
		a.Currency = model.Currency(currency)
		if a.Tags, err = decodeTags(tags); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account table: %w", err)
	}
	if len(accounts) == 0 {
		return accounts, nil
	}

	ids := make([]string, len(accounts))
	index := make(map[string]int, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
		index[a.ID] = i
	}

	holdings, err := r.getHoldings(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, h := range holdings {
		i := index[h.AccountID]
		accounts[i].Holdings = append(accounts[i].Holdings, h)
	}

	transactions, err := r.getTransactions(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, t := range transactions {
		i := index[t.AccountID]
		accounts[i].Transactions = append(accounts[i].Transactions, t)
	}
	return accounts, nil
}

func (r *PortfolioRepository) getHoldings(ctx context.Context, accountIDs []string) ([]model.Holding, error) {
	placeholders, args := inClause(accountIDs)

	//#nosec G202 -- Safe: placeholders are generated programmatically, not from user input
	query := `
		SELECT h.id, h.account_id, h.quantity, h.tags, a.code, a.currency, a.asset_class
		FROM holding h
		JOIN asset a ON a.code = h.asset_code
		WHERE h.account_id IN (` + placeholders + `)
		ORDER BY h.account_id, a.code
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	var holdings []model.Holding
	for rows.Next() {
		var h model.Holding
		var quantity, tags, code, currency, class string
		if err := rows.Scan(&h.ID, &h.AccountID, &quantity, &tags, &code, &currency, &class); err != nil {
			return nil, fmt.Errorf("failed to scan holding table results: %w", err)
		}
		if h.Quantity, err = parseDecimal(quantity); err != nil {
			return nil, err
		}
		if h.Tags, err = decodeTags(tags); err != nil {
			return nil, err
		}
		h.Asset = assetFromRow(code, currency, class)
		holdings = append(holdings, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}
	return holdings, nil
}

func (r *PortfolioRepository) getTransactions(ctx context.Context, accountIDs []string) ([]model.Transaction, error) {
	placeholders, args := inClause(accountIDs)

	//#nosec G202 -- Safe: placeholders are generated programmatically, not from user input
	query := `
		SELECT t.id, t.account_id, t.type, t.quantity, t.amount, t.currency,
		       t.costs_amount, t.costs_currency, t.date,
		       a.code, a.currency, a.asset_class
		FROM "transaction" t
		LEFT JOIN asset a ON a.code = t.asset_code
		WHERE t.account_id IN (` + placeholders + `)
		ORDER BY t.date ASC, t.id ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var txType, quantity, amount, currency, dateStr string
		var costsAmount, costsCurrency, code, assetCurrency, class sql.NullString

		err := rows.Scan(
			&t.ID, &t.AccountID, &txType, &quantity, &amount, &currency,
			&costsAmount, &costsCurrency, &dateStr,
			&code, &assetCurrency, &class,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}

		t.Type = model.TransactionType(txType)
		if t.Quantity, err = parseDecimal(quantity); err != nil {
			return nil, err
		}
		value, err := parseDecimal(amount)
		if err != nil {
			return nil, err
		}
		t.Amount = model.NewMoney(value, model.Currency(currency))
		if costsAmount.Valid {
			costs, err := parseDecimal(costsAmount.String)
			if err != nil {
				return nil, err
			}
			m := model.NewMoney(costs, model.Currency(costsCurrency.String))
			t.Costs = &m
		}
		if t.Date, err = ParseTime(dateStr); err != nil {
			return nil, err
		}
		if code.Valid {
			t.Asset = assetFromRow(code.String, assetCurrency.String, class.String)
		}
		transactions = append(transactions, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}
	return transactions, nil
}

// SavePortfolio validates and writes a complete portfolio graph in one database
// transaction. Existing rows with the same ids are replaced.
func (r *PortfolioRepository) SavePortfolio(ctx context.Context, p model.Portfolio) error {
	if p.ID == "" {
		return apperrors.ErrEmptyID
	}
	if err := validation.ValidatePortfolio(p); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	repo := r.WithTx(tx)
	if err := repo.savePortfolio(ctx, p); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PortfolioRepository) savePortfolio(ctx context.Context, p model.Portfolio) error {
	q := r.getQuerier()

	_, err := q.ExecContext(ctx, `
		INSERT INTO portfolio (id, name, owner) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, owner = excluded.owner
	`, p.ID, p.Name, p.Owner)
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}

	for _, a := range p.Accounts {
		a.PortfolioID = p.ID
		if err := r.saveAccount(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *PortfolioRepository) saveAccount(ctx context.Context, a model.Account) error {
	q := r.getQuerier()

	tags, err := encodeTags(a.Tags)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO account (id, portfolio_id, name, currency, financial_institution, tags)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			portfolio_id = excluded.portfolio_id,
			name = excluded.name,
			currency = excluded.currency,
			financial_institution = excluded.financial_institution,
			tags = excluded.tags
	`, a.ID, a.PortfolioID, a.Name, string(a.Currency), a.FinancialInstitution, tags)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	for _, h := range a.Holdings {
		if err := r.saveAsset(ctx, h.Asset); err != nil {
			return err
		}
		tags, err := encodeTags(h.Tags)
		if err != nil {
			return err
		}
		_, err = q.ExecContext(ctx, `
			INSERT INTO holding (id, account_id, asset_code, quantity, tags)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				asset_code = excluded.asset_code,
				quantity = excluded.quantity,
				tags = excluded.tags
		`, h.ID, a.ID, h.Asset.Code(), h.Quantity.String(), tags)
		if err != nil {
			return fmt.Errorf("failed to insert holding: %w", err)
		}
	}

	for _, t := range a.Transactions {
		var assetCode sql.NullString
		if t.Asset != nil {
			if err := r.saveAsset(ctx, t.Asset); err != nil {
				return err
			}
			assetCode = nullString(t.Asset.Code())
		}
		var costsAmount, costsCurrency sql.NullString
		if t.Costs != nil {
			costsAmount = nullString(t.Costs.Amount.String())
			costsCurrency = nullString(string(t.Costs.Currency))
		}
		_, err := q.ExecContext(ctx, `
			INSERT INTO "transaction" (id, account_id, type, asset_code, quantity, amount, currency, costs_amount, costs_currency, date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING
		`,
			t.ID, a.ID, string(t.Type), assetCode, t.Quantity.String(),
			t.Amount.Amount.String(), string(t.Amount.Currency),
			costsAmount, costsCurrency, formatDate(t.Date),
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
	}
	return nil
}

func (r *PortfolioRepository) saveAsset(ctx context.Context, asset model.Asset) error {
	if asset == nil {
		return fmt.Errorf("failed to insert asset: %w", apperrors.ErrEmptyID)
	}
	_, err := r.getQuerier().ExecContext(ctx, `
		INSERT INTO asset (code, currency, asset_class) VALUES (?, ?, ?)
		ON CONFLICT (code) DO UPDATE SET currency = excluded.currency, asset_class = excluded.asset_class
	`, asset.Code(), string(asset.Currency()), string(asset.AssetClass()))
	if err != nil {
		return fmt.Errorf("failed to insert asset: %w", err)
	}
	return nil
}

func assetFromRow(code, currency, class string) model.Asset {
	if model.AssetClass(class) == model.AssetClassCash {
		return model.CashAsset{Denomination: model.Currency(currency)}
	}
	return model.Symbol{Ticker: code, Quote: model.Currency(currency), Class: model.AssetClass(class)}
}

func inClause(ids []string) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ","), args
}

func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(s string) ([]string, error) {
	var tags []string
	if s == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	return tags, nil
}
