package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/repository"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/testutil"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/validation"
)

// TestPortfolioRepository tests reading and writing the portfolio graph.
//
// WHY: Every engine values the graph this repository returns. A holding lost
// on the way, or a cash holding read back as a security, silently changes
// every number downstream.
func TestPortfolioRepository(t *testing.T) {
	ctx := context.Background()
	day := testutil.Date(2024, 4, 30)

	t.Run("graph round trip", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)
		account := testutil.NewAccount().
			WithID("acc").
			WithName("Brokerage").
			WithCurrency(testutil.EUR).
			WithTags("taxable", "long-term").
			WithCash(testutil.EUR, 1250.5).
			WithSecurity("VWRL", testutil.EUR, model.AssetClassEquity, 12).
			WithDividend(day, model.M(8.4, testutil.EUR), testutil.Ptr(model.M(1.26, testutil.EUR))).
			Value()
		portfolio := testutil.NewPortfolio().WithID("p").WithName("Family").WithOwner("sam").WithAccount(account).Build(t, db)

		got, err := repo.GetPortfolio(ctx, portfolio.ID)

		require.NoError(t, err)
		assert.Equal(t, "Family", got.Name)
		assert.Equal(t, "sam", got.Owner)
		require.Len(t, got.Accounts, 1)
		a := got.Accounts[0]
		assert.Equal(t, "p", a.PortfolioID)
		assert.Equal(t, testutil.EUR, a.Currency)
		assert.Equal(t, []string{"taxable", "long-term"}, a.Tags)

		require.Len(t, a.Holdings, 2)
		assert.True(t, model.IsCash(a.Holdings[0].Asset))
		assert.Equal(t, "1250.5", a.Holdings[0].Quantity.String())
		assert.Equal(t, "VWRL", a.Holdings[1].Asset.Code())
		assert.Equal(t, model.AssetClassEquity, a.Holdings[1].Asset.AssetClass())
		assert.Equal(t, "12", a.Holdings[1].Quantity.String())

		require.Len(t, a.Transactions, 1)
		tx := a.Transactions[0]
		assert.Equal(t, model.TransactionDividend, tx.Type)
		assert.Equal(t, day, tx.Date)
		assert.Equal(t, "8.4", tx.Amount.Amount.String())
		require.NotNil(t, tx.Costs)
		assert.Equal(t, "1.26", tx.Costs.Amount.String())
		assert.Nil(t, tx.Asset)
	})

	t.Run("get account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)
		account := testutil.NewAccount().WithCash(testutil.USD, 10).Value()
		testutil.NewPortfolio().WithAccount(account).Build(t, db)

		got, err := repo.GetAccount(ctx, account.ID)

		require.NoError(t, err)
		assert.Equal(t, account.Name, got.Name)
		require.Len(t, got.Holdings, 1)
	})

	t.Run("list portfolios ordered by name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)
		testutil.NewPortfolio().WithName("Zeta").Build(t, db)
		testutil.NewPortfolio().WithName("Alpha").WithAccount(testutil.NewAccount().Value()).Build(t, db)

		portfolios, err := repo.GetPortfolios(ctx)

		require.NoError(t, err)
		require.Len(t, portfolios, 2)
		assert.Equal(t, "Alpha", portfolios[0].Name)
		assert.Len(t, portfolios[0].Accounts, 1)
		assert.Empty(t, portfolios[1].Accounts)
	})

	t.Run("saving twice updates in place", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)
		builder := testutil.NewPortfolio().WithID("p").WithName("Before")
		builder.Build(t, db)

		p := builder.WithName("After").Value()
		require.NoError(t, repo.SavePortfolio(ctx, p))

		got, err := repo.GetPortfolio(ctx, "p")
		require.NoError(t, err)
		assert.Equal(t, "After", got.Name)
		assert.Equal(t, 1, testutil.CountRows(t, db, "portfolio"))
	})

	t.Run("invalid graph is rejected before writing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)
		account := testutil.NewAccount().WithCurrency("XXQ").Value()
		p := testutil.NewPortfolio().WithAccount(account).Value()

		err := repo.SavePortfolio(ctx, p)

		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "accounts[0].currency")
		assert.Zero(t, testutil.CountRows(t, db, "portfolio"))
	})

	t.Run("not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)

		_, err := repo.GetPortfolio(ctx, "missing")
		assert.ErrorIs(t, err, apperrors.ErrPortfolioNotFound)

		_, err = repo.GetAccount(ctx, "missing")
		assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)

		_, err = repo.GetPortfolio(ctx, "")
		assert.ErrorIs(t, err, apperrors.ErrEmptyID)
	})
}
