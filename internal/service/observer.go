package service

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/metrics"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

// MissingDataObserver is notified whenever a holding is valued at zero because
// market data was missing. The valuation itself stays silent; this is the only signal.
type MissingDataObserver interface {
	MissingPrice(asset model.Asset, date time.Time)
	MissingRate(from, to model.Currency, date time.Time)
}

// NopObserver discards missing-data notifications.
type NopObserver struct{}

func (NopObserver) MissingPrice(model.Asset, time.Time)                 {}
func (NopObserver) MissingRate(model.Currency, model.Currency, time.Time) {}

// LoggingObserver logs missing market data at debug level and counts it.
type LoggingObserver struct {
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewLoggingObserver creates a LoggingObserver. m may be nil.
func NewLoggingObserver(log zerolog.Logger, m *metrics.Metrics) *LoggingObserver {
	return &LoggingObserver{
		log:     log.With().Str("component", "valuation").Logger(),
		metrics: m,
	}
}

// MissingPrice records a missing price.
func (o *LoggingObserver) MissingPrice(asset model.Asset, date time.Time) {
	o.log.Debug().
		Str("asset", asset.Code()).
		Str("date", date.Format("2006-01-02")).
		Msg("no price, holding valued at zero")
	if o.metrics != nil {
		o.metrics.MissingMarketData.WithLabelValues("price").Inc()
	}
}

// MissingRate records a missing exchange rate.
func (o *LoggingObserver) MissingRate(from, to model.Currency, date time.Time) {
	o.log.Debug().
		Str("from", from.Code()).
		Str("to", to.Code()).
		Str("date", date.Format("2006-01-02")).
		Msg("no exchange rate, holding valued at zero")
	if o.metrics != nil {
		o.metrics.MissingMarketData.WithLabelValues("fx").Inc()
	}
}
