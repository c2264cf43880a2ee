package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/metrics"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/service"
)

// SnapshotJob generates value and asset-class snapshots for every portfolio and
// each of its accounts, dated the last completed day.
type SnapshotJob struct {
	reader      service.PortfolioReader
	snapshots   *service.SnapshotService
	currency    model.Currency
	period      model.Period
	concurrency int
	metrics     *metrics.Metrics
	log         zerolog.Logger
	now         func() time.Time
}

// SnapshotJobConfig holds the SnapshotJob settings.
type SnapshotJobConfig struct {
	Currency    model.Currency
	Period      model.Period
	Concurrency int
}

// NewSnapshotJob creates a SnapshotJob. m may be nil.
func NewSnapshotJob(reader service.PortfolioReader, snapshots *service.SnapshotService, cfg SnapshotJobConfig, m *metrics.Metrics, log zerolog.Logger) *SnapshotJob {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &SnapshotJob{
		reader:      reader,
		snapshots:   snapshots,
		currency:    cfg.Currency,
		period:      cfg.Period,
		concurrency: cfg.Concurrency,
		metrics:     m,
		log:         log.With().Str("job", "snapshot").Logger(),
		now:         time.Now,
	}
}

// Name returns the job name
func (j *SnapshotJob) Name() string {
	return "valuation_snapshot"
}

// Run snapshots all portfolios, at most concurrency at a time. The first failure
// cancels the remaining work.
func (j *SnapshotJob) Run(ctx context.Context) error {
	started := time.Now()
	defer func() {
		if j.metrics != nil {
			j.metrics.SnapshotDuration.WithLabelValues(j.Name()).Observe(time.Since(started).Seconds())
		}
	}()

	portfolios, err := j.reader.GetPortfolios(ctx)
	if err != nil {
		return fmt.Errorf("failed to load portfolios: %w", err)
	}

	date := model.Day(j.now()).AddDate(0, 0, -1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.concurrency)
	for _, p := range portfolios {
		p := p
		g.Go(func() error {
			return j.snapshotPortfolio(gctx, p, date)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	j.log.Info().
		Int("portfolios", len(portfolios)).
		Str("date", date.Format("2006-01-02")).
		Dur("took", time.Since(started)).
		Msg("Snapshots generated")
	return nil
}

func (j *SnapshotJob) snapshotPortfolio(ctx context.Context, p model.Portfolio, date time.Time) error {
	if _, err := j.snapshots.GeneratePortfolioSnapshot(ctx, p, date, j.currency, j.period); err != nil {
		return fmt.Errorf("portfolio %s: %w", p.ID, err)
	}
	if _, err := j.snapshots.GeneratePortfolioAssetClassSnapshot(ctx, p, date, j.currency, j.period); err != nil {
		return fmt.Errorf("portfolio %s: %w", p.ID, err)
	}

	for _, a := range p.Accounts {
		if _, err := j.snapshots.GenerateAccountSnapshot(ctx, a, date, j.currency, j.period); err != nil {
			return fmt.Errorf("account %s: %w", a.ID, err)
		}
		if _, err := j.snapshots.GenerateAccountAssetClassSnapshot(ctx, a, date, j.currency, j.period); err != nil {
			return fmt.Errorf("account %s: %w", a.ID, err)
		}
	}
	return nil
}
