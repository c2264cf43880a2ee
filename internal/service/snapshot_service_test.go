package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/metrics"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/service"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/testutil"
)

type failingStore struct{}

func (failingStore) SaveValuationRecord(context.Context, model.ValuationRecord) error {
	return errors.New("disk full")
}

func (failingStore) GetValuationHistory(context.Context, model.ValuationHistoryFilter, func(model.ValuationRecord) error) error {
	return nil
}

// TestSnapshotService_Value tests single-date value snapshots.
func TestSnapshotService_Value(t *testing.T) {
	ctx := context.Background()
	day := testutil.Date(2024, 6, 28)

	t.Run("account snapshot carries the breakdown", func(t *testing.T) {
		svc := testutil.NewTestServices(t, nil)
		svc.Prices.Set("AAPL", day, model.M(100, testutil.USD))
		account := testutil.NewAccount().
			WithCash(testutil.USD, 300).
			WithSecurity("AAPL", testutil.USD, model.AssetClassEquity, 2).
			WithDividend(day, model.M(10, testutil.USD), testutil.Ptr(model.M(1, testutil.USD))).
			WithDividend(day, model.M(50, testutil.EUR), nil).
			WithDividend(day.AddDate(0, 0, -1), model.M(70, testutil.USD), nil).
			Value()

		record, err := svc.Snapshots.GenerateAccountSnapshot(ctx, account, day.Add(15*time.Hour), testutil.USD, model.Daily)

		require.NoError(t, err)
		assert.Equal(t, day, record.Date)
		assert.Equal(t, account.ID, record.AccountID)
		assert.Empty(t, record.PortfolioID)
		assertMoney(t, 500, testutil.USD, record.Value)
		require.NotNil(t, record.CashValue)
		assertMoney(t, 300, testutil.USD, *record.CashValue)
		require.NotNil(t, record.SecuritiesValue)
		assertMoney(t, 200, testutil.USD, *record.SecuritiesValue)
		require.NotNil(t, record.IncomeForDay)
		assertMoney(t, 9, testutil.USD, *record.IncomeForDay)
		assert.Nil(t, record.AssetClass)
		assert.Len(t, svc.Records.Records(), 1)
	})

	t.Run("portfolio snapshot is owned by the portfolio", func(t *testing.T) {
		svc := testutil.NewTestServices(t, nil)
		a := testutil.NewAccount().WithCash(testutil.USD, 100).Value()
		b := testutil.NewAccount().WithCash(testutil.USD, 50).Value()
		portfolio := testutil.NewPortfolio().WithID("p").WithAccount(a).WithAccount(b).Value()

		record, err := svc.Snapshots.GeneratePortfolioSnapshot(ctx, portfolio, day, testutil.USD, model.Daily)

		require.NoError(t, err)
		assert.Equal(t, "p", record.PortfolioID)
		assert.Empty(t, record.AccountID)
		assertMoney(t, 150, testutil.USD, record.Value)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		svc := testutil.NewTestServices(t, nil)
		snapshots := service.NewSnapshotService(svc.Valuation, failingStore{}, nil, zerolog.Nop())

		_, err := snapshots.GenerateAccountSnapshot(ctx, testutil.NewAccount().Value(), day, testutil.USD, model.Daily)

		assert.ErrorIs(t, err, apperrors.ErrFailedToSaveValuationRecord)
	})
}

// TestSnapshotService_AssetClass tests the asset-class allocation snapshots.
//
// WHY: Allocation charts stack the percentages of each class. If they do not
// sum to one, the chart overflows or leaves a gap.
func TestSnapshotService_AssetClass(t *testing.T) {
	ctx := context.Background()
	day := testutil.Date(2024, 6, 28)

	t.Run("percentages sum to one", func(t *testing.T) {
		svc := testutil.NewTestServices(t, nil)
		svc.Prices.Set("AAPL", day, model.M(100, testutil.USD))
		svc.Prices.Set("BOND", day, model.M(50, testutil.USD))
		account := testutil.NewAccount().
			WithCash(testutil.USD, 300).
			WithSecurity("AAPL", testutil.USD, model.AssetClassEquity, 2).
			WithSecurity("BOND", testutil.USD, model.AssetClassFixedIncome, 2).
			Value()

		records, err := svc.Snapshots.GenerateAccountAssetClassSnapshot(ctx, account, day, testutil.USD, model.Daily)

		require.NoError(t, err)
		require.Len(t, records, 3)
		sum := 0.0
		for _, r := range records {
			require.NotNil(t, r.AssetClass)
			require.NotNil(t, r.Percentage)
			assert.Nil(t, r.CashValue)
			assert.NoError(t, r.Validate())
			sum += *r.Percentage
		}
		assert.InDelta(t, 1.0, sum, 1e-12)
		assert.Equal(t, model.AssetClassCash, *records[0].AssetClass)
		assert.InDelta(t, 0.5, *records[0].Percentage, 1e-12)
		assertMoney(t, 200, testutil.USD, records[1].Value)
	})

	t.Run("nothing is generated for a zero total", func(t *testing.T) {
		svc := testutil.NewTestServices(t, nil)
		portfolio := testutil.NewPortfolio().WithAccount(testutil.NewAccount().Value()).Value()

		records, err := svc.Snapshots.GeneratePortfolioAssetClassSnapshot(ctx, portfolio, day, testutil.USD, model.Daily)

		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Empty(t, svc.Records.Records())
	})
}

// TestSnapshotService_Range tests range generation and reading history back.
func TestSnapshotService_Range(t *testing.T) {
	ctx := context.Background()
	start := testutil.Date(2024, 1, 1)
	end := testutil.Date(2024, 3, 1)

	setup := func(t *testing.T) (*testutil.Services, *service.SnapshotService, *metrics.Metrics, model.Portfolio) {
		t.Helper()
		svc := testutil.NewTestServices(t, nil)
		m := metrics.New("test", prometheus.NewRegistry())
		snapshots := service.NewSnapshotService(svc.Valuation, svc.Records, m, zerolog.Nop())
		account := testutil.NewAccount().WithCash(testutil.USD, 1000).Value()
		portfolio := testutil.NewPortfolio().WithID("p").WithAccount(account).Value()
		return svc, snapshots, m, portfolio
	}

	t.Run("monthly steps", func(t *testing.T) {
		svc, snapshots, m, portfolio := setup(t)

		records, err := snapshots.GeneratePortfolioRange(ctx, portfolio, start, end, testutil.USD, model.Monthly)

		// One value record and one cash class record per month
		require.NoError(t, err)
		require.Len(t, records, 6)
		assert.Equal(t, start, records[0].Date)
		assert.Equal(t, testutil.Date(2024, 2, 1), records[2].Date)
		assert.Equal(t, end, records[4].Date)
		assert.Equal(t, model.Monthly, records[0].Period)
		assert.Len(t, svc.Records.Records(), 6)
		assert.InDelta(t, 3, promtest.ToFloat64(m.SnapshotRecords.WithLabelValues("Portfolio", "value")), 0)
		assert.InDelta(t, 3, promtest.ToFloat64(m.SnapshotRecords.WithLabelValues("Portfolio", "asset_class")), 0)
	})

	t.Run("month-end start keeps every month", func(t *testing.T) {
		_, snapshots, _, portfolio := setup(t)
		account := portfolio.Accounts[0]

		records, err := snapshots.GenerateAccountRange(ctx, account, testutil.Date(2024, 1, 31), testutil.Date(2024, 4, 30), testutil.USD, model.Monthly)

		require.NoError(t, err)
		var dates []time.Time
		for _, r := range records {
			if !r.IsAssetClassRecord() {
				dates = append(dates, r.Date)
			}
		}
		assert.Equal(t, []time.Time{
			testutil.Date(2024, 1, 31),
			testutil.Date(2024, 2, 29),
			testutil.Date(2024, 3, 31),
			testutil.Date(2024, 4, 30),
		}, dates)
	})

	t.Run("history streams in date order", func(t *testing.T) {
		_, snapshots, _, portfolio := setup(t)
		_, err := snapshots.GeneratePortfolioRange(ctx, portfolio, start, end, testutil.USD, model.Monthly)
		require.NoError(t, err)

		var dates []time.Time
		err = snapshots.GetHistory(ctx, "p", "", testutil.Date(2024, 2, 1), end, func(r model.ValuationRecord) error {
			dates = append(dates, r.Date)
			return nil
		})

		require.NoError(t, err)
		require.Len(t, dates, 4)
		assert.Equal(t, testutil.Date(2024, 2, 1), dates[0])
		assert.Equal(t, end, dates[3])
	})

	t.Run("history needs exactly one owner", func(t *testing.T) {
		_, snapshots, _, _ := setup(t)
		noop := func(model.ValuationRecord) error { return nil }

		assert.ErrorIs(t, snapshots.GetHistory(ctx, "", "", start, end, noop), apperrors.ErrEmptyID)
		assert.ErrorIs(t, snapshots.GetHistory(ctx, "p", "a", start, end, noop), apperrors.ErrEmptyID)
		assert.ErrorIs(t, snapshots.GetHistory(ctx, "p", "", end, start, noop), apperrors.ErrInvalidDateRange)
	})

	t.Run("inverted range", func(t *testing.T) {
		_, snapshots, _, portfolio := setup(t)

		_, err := snapshots.GeneratePortfolioRange(ctx, portfolio, end, start, testutil.USD, model.Monthly)

		assert.ErrorIs(t, err, apperrors.ErrInvalidDateRange)
	})

	t.Run("cancelled context", func(t *testing.T) {
		_, snapshots, _, portfolio := setup(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := snapshots.GeneratePortfolioRange(cctx, portfolio, start, end, testutil.USD, model.Monthly)

		assert.ErrorIs(t, err, context.Canceled)
	})
}
