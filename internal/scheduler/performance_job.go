package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/metrics"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/service"
)

// PerformanceJob computes trailing performance and asset-class attribution for every
// portfolio, logs it and publishes it as gauges.
type PerformanceJob struct {
	reader      service.PortfolioReader
	valuation   *service.ValuationService
	performance *service.PerformanceService
	attribution *service.AttributionService
	currency    model.Currency
	window      int
	metrics     *metrics.Metrics
	log         zerolog.Logger
	now         func() time.Time
}

// NewPerformanceJob creates a PerformanceJob over a trailing window of windowDays. m may be nil.
func NewPerformanceJob(
	reader service.PortfolioReader,
	valuation *service.ValuationService,
	performance *service.PerformanceService,
	attribution *service.AttributionService,
	currency model.Currency,
	windowDays int,
	m *metrics.Metrics,
	log zerolog.Logger,
) *PerformanceJob {
	if windowDays < 1 {
		windowDays = 1
	}
	return &PerformanceJob{
		reader:      reader,
		valuation:   valuation,
		performance: performance,
		attribution: attribution,
		currency:    currency,
		window:      windowDays,
		metrics:     m,
		log:         log.With().Str("job", "performance").Logger(),
		now:         time.Now,
	}
}

// Name returns the job name
func (j *PerformanceJob) Name() string {
	return "portfolio_performance"
}

// Run evaluates portfolios one at a time.
func (j *PerformanceJob) Run(ctx context.Context) error {
	portfolios, err := j.reader.GetPortfolios(ctx)
	if err != nil {
		return fmt.Errorf("failed to load portfolios: %w", err)
	}

	end := model.Day(j.now()).AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -j.window)

	for _, p := range portfolios {
		if err := j.evaluate(ctx, p, start, end); err != nil {
			return fmt.Errorf("portfolio %s: %w", p.ID, err)
		}
	}
	return nil
}

func (j *PerformanceJob) evaluate(ctx context.Context, p model.Portfolio, start, end time.Time) error {
	value, err := j.valuation.ValuePortfolio(ctx, p, end, j.currency)
	if err != nil {
		return err
	}
	dietz, err := j.performance.PortfolioModifiedDietz(ctx, p, start, end, j.currency)
	if err != nil {
		return err
	}
	series, err := j.performance.PortfolioDailyTWR(ctx, p, start, end, j.currency)
	if err != nil {
		return err
	}
	twr := j.performance.CumulativeReturn(series)
	risk := j.performance.RiskCard(series, nil)

	j.log.Info().
		Str("portfolio_id", p.ID).
		Str("value", value.String()).
		Float64("modified_dietz", dietz.Return).
		Float64("twr", twr).
		Float64("volatility", risk.AnnualizedVolatility).
		Float64("max_drawdown", risk.MaxDrawdown).
		Msg("Portfolio performance")

	if j.metrics != nil {
		j.metrics.PortfolioValue.WithLabelValues(p.ID, string(j.currency)).Set(value.Amount.InexactFloat64())
		j.metrics.PortfolioReturn.WithLabelValues(p.ID, "modified_dietz").Set(dietz.Return)
		j.metrics.PortfolioReturn.WithLabelValues(p.ID, "twr").Set(twr)
		j.metrics.PortfolioRisk.WithLabelValues(p.ID, "volatility").Set(risk.AnnualizedVolatility)
		j.metrics.PortfolioRisk.WithLabelValues(p.ID, "max_drawdown").Set(risk.MaxDrawdown)
		j.metrics.PortfolioRisk.WithLabelValues(p.ID, "hit_rate").Set(risk.HitRate)
	}

	return j.attribute(ctx, p, start, end)
}

func (j *PerformanceJob) attribute(ctx context.Context, p model.Portfolio, start, end time.Time) error {
	securities, err := j.attribution.PortfolioSecurityContributions(ctx, p, start, end, j.currency)
	if err != nil {
		return fmt.Errorf("failed to attribute returns: %w", err)
	}
	classes := j.attribution.AssetClassContributions(securities, service.NewPortfolioAssetClassLookup(p))

	for _, c := range classes {
		j.log.Debug().
			Str("portfolio_id", p.ID).
			Str("asset_class", c.Key).
			Float64("weight", c.StartWeight).
			Float64("return", c.PeriodReturn).
			Float64("contribution", c.Contribution).
			Msg("Asset class contribution")
		if j.metrics != nil {
			j.metrics.ClassContribution.WithLabelValues(p.ID, c.Key).Set(c.Contribution)
		}
	}
	return nil
}
