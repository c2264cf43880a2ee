package model

import "time"

// EntityKind names what a return series belongs to.
type EntityKind string

const (
	EntityAccount   EntityKind = "Account"
	EntityPortfolio EntityKind = "Portfolio"
	EntityBenchmark EntityKind = "Benchmark"
)

// DailyReturn is the time-weighted return of one entity for one calendar day.
type DailyReturn struct {
	Date       time.Time  `json:"date"`
	EntityKind EntityKind `json:"entityKind"`
	EntityID   string     `json:"entityId"`
	Currency   Currency   `json:"currency"`
	Return     float64    `json:"return"`
}

// MethodModifiedDietz is the only period-return method produced by the engine.
const MethodModifiedDietz = "ModifiedDietz"

// PeriodPerformance is a single-calculation return over [Start, End].
type PeriodPerformance struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Currency       Currency  `json:"currency"`
	Method         string    `json:"method"`
	Return         float64   `json:"return"`
	BeginningValue Money     `json:"beginningValue"`
	EndingValue    Money     `json:"endingValue"`
	NetFlows       Money     `json:"netFlows"`
}

// RollingReturnSet holds linked cumulative returns over trailing windows ending at AsOf.
type RollingReturnSet struct {
	AsOf time.Time `json:"asOf"`
	R1M  float64   `json:"r1m"`
	R3M  float64   `json:"r3m"`
	R6M  float64   `json:"r6m"`
	RYTD float64   `json:"rytd"`
	R1Y  float64   `json:"r1y"`
	R3Y  float64   `json:"r3y"`
	RSI  float64   `json:"rsi"`
}

// RiskCard summarizes the risk profile of a daily return series.
// PeakDate and TroughDate are nil when the series never fell below a prior peak.
// Correlation is nil when no benchmark was supplied.
type RiskCard struct {
	AnnualizedVolatility float64    `json:"annualizedVolatility"`
	MaxDrawdown          float64    `json:"maxDrawdown"`
	PeakDate             *time.Time `json:"peakDate,omitempty"`
	TroughDate           *time.Time `json:"troughDate,omitempty"`
	RiskAdjustedReturn   float64    `json:"riskAdjustedReturn"`
	HitRate              float64    `json:"hitRate"`
	Correlation          *float64   `json:"correlation,omitempty"`
}

// MonthlyReturn is the linked return of one calendar month.
type MonthlyReturn struct {
	Year   int        `json:"year"`
	Month  time.Month `json:"month"`
	Return float64    `json:"return"`
}

// ContributionLevel is the grouping a contribution record was computed at.
type ContributionLevel string

const (
	ContributionSecurity   ContributionLevel = "Security"
	ContributionAssetClass ContributionLevel = "AssetClass"
)

// ContributionRecord is the weighted share of total return attributable to Key.
type ContributionRecord struct {
	Start        time.Time         `json:"start"`
	End          time.Time         `json:"end"`
	Currency     Currency          `json:"currency"`
	Level        ContributionLevel `json:"level"`
	Key          string            `json:"key"`
	StartWeight  float64           `json:"startWeight"`
	PeriodReturn float64           `json:"periodReturn"`
	Contribution float64           `json:"contribution"`
}
