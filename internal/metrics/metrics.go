// Package metrics registers the prometheus collectors exposed by the analytics process.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors used at the engine's boundaries.
type Metrics struct {
	MissingMarketData *prometheus.CounterVec
	SnapshotRecords   *prometheus.CounterVec
	SnapshotDuration  *prometheus.HistogramVec
	PortfolioValue    *prometheus.GaugeVec
	PortfolioReturn   *prometheus.GaugeVec
	PortfolioRisk     *prometheus.GaugeVec
	ClassContribution *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
// Passing prometheus.NewRegistry() keeps tests isolated from the default registry.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MissingMarketData: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "valuation_missing_market_data_total",
				Help:      "Holdings valued at zero because a price or exchange rate was missing",
			},
			[]string{"kind"},
		),
		SnapshotRecords: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_records_total",
				Help:      "Valuation records written by the snapshot generator",
			},
			[]string{"entity", "kind"},
		),
		SnapshotDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "snapshot_job_duration_seconds",
				Help:      "Duration of scheduled snapshot jobs",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"job"},
		),
		PortfolioValue: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "portfolio_value",
				Help:      "Portfolio value in the reporting currency at the last performance run",
			},
			[]string{"portfolio", "currency"},
		),
		PortfolioReturn: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "portfolio_return_ratio",
				Help:      "Trailing portfolio return over the configured window",
			},
			[]string{"portfolio", "method"},
		),
		PortfolioRisk: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "portfolio_risk_ratio",
				Help:      "Trailing portfolio risk measures over the configured window",
			},
			[]string{"portfolio", "measure"},
		),
		ClassContribution: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "portfolio_asset_class_contribution_ratio",
				Help:      "Trailing contribution of each asset class to the portfolio return",
			},
			[]string{"portfolio", "asset_class"},
		),
	}
	reg.MustRegister(
		m.MissingMarketData,
		m.SnapshotRecords,
		m.SnapshotDuration,
		m.PortfolioValue,
		m.PortfolioReturn,
		m.PortfolioRisk,
		m.ClassContribution,
	)
	return m
}
