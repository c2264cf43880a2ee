package testutil

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/service"
)

// Services bundles the analytics services wired to in-memory collaborators.
type Services struct {
	Prices    *PriceTable
	Rates     *RateTable
	CashStore *MemoryCashFlowStore
	Records   *MemoryValuationStore
	Valuation *service.ValuationService
	CashFlows *service.CashFlowService
	Perf      *service.PerformanceService
	Attrib    *service.AttributionService
	Snapshots *service.SnapshotService
}

// NewTestServices wires every service against fresh in-memory fakes.
// observer may be nil.
//
// Example usage:
//
//	svc := testutil.NewTestServices(t, nil)
//	svc.Prices.Set("AAPL", day, model.M(100, testutil.USD))
//	v, err := svc.Valuation.ValueAccount(ctx, account, day, testutil.USD)
func NewTestServices(t *testing.T, observer service.MissingDataObserver) *Services {
	t.Helper()

	log := zerolog.Nop()
	s := &Services{
		Prices:    NewPriceTable(),
		Rates:     NewRateTable(),
		CashStore: NewMemoryCashFlowStore(),
		Records:   NewMemoryValuationStore(),
	}
	s.Valuation = service.NewValuationService(s.Prices, s.Rates, observer, log)
	s.CashFlows = service.NewCashFlowService(s.CashStore, log)
	s.Perf = service.NewPerformanceService(s.Valuation, s.CashFlows, log)
	s.Attrib = service.NewAttributionService(s.Valuation, log)
	s.Snapshots = service.NewSnapshotService(s.Valuation, s.Records, nil, log)
	return s
}
