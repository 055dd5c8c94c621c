// Package types provides shared type definitions for the risk backend.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ResampleMethod selects how the historical trade record is turned into
// the bootstrap resample pool.
type ResampleMethod string

const (
	// ResampleTrades pools each trade's realized P/L in dollars.
	ResampleTrades ResampleMethod = "trades"
	// ResampleDaily pools P/L aggregated per calendar day of open.
	ResampleDaily ResampleMethod = "daily"
	// ResamplePercentage pools per-trade returns as decimals, applied
	// multiplicatively when simulating (compounding accounts).
	ResamplePercentage ResampleMethod = "percentage"
)

// WorstCaseMode selects how synthetic max-loss events enter a simulation.
type WorstCaseMode string

const (
	// WorstCasePool appends synthetic losses to the resample pool so
	// they are drawn probabilistically like any other entry.
	WorstCasePool WorstCaseMode = "pool"
	// WorstCaseGuarantee reserves slots in every simulated path and
	// splices the synthetic losses in at random positions.
	WorstCaseGuarantee WorstCaseMode = "guarantee"
)

// WorstCaseBasis selects the weighting used when allocating the
// synthetic-event budget across strategies.
type WorstCaseBasis string

const (
	WorstCaseBasisSimulation WorstCaseBasis = "simulation"
	WorstCaseBasisHistorical WorstCaseBasis = "historical"
)

// WorstCaseSizing selects how a synthetic loss is converted to a value.
type WorstCaseSizing string

const (
	WorstCaseSizingAbsolute WorstCaseSizing = "absolute"
	WorstCaseSizingRelative WorstCaseSizing = "relative"
)

// Trade is an immutable historical trade record. The engine only reads
// it; ownership stays with the caller. Optional numeric fields are
// pointers so absence is explicit rather than a zero coercion.
type Trade struct {
	ID           string           `json:"id,omitempty"`
	Strategy     string           `json:"strategy"`
	OpenDate     time.Time        `json:"openDate"`
	CloseDate    time.Time        `json:"closeDate"`
	PL           decimal.Decimal  `json:"pl"`
	Contracts    int              `json:"contracts"`
	MarginReq    *decimal.Decimal `json:"marginReq,omitempty"`
	MaxLoss      *decimal.Decimal `json:"maxLoss,omitempty"`
	MaxProfit    *decimal.Decimal `json:"maxProfit,omitempty"`
	FundsAtClose decimal.Decimal  `json:"fundsAtClose"`
}

// SimulationPath is one simulated equity path and its path-level
// metrics. EquityCurve holds cumulative return per step, length equal
// to the configured simulation length. Immutable once computed.
type SimulationPath struct {
	EquityCurve      []float64 `json:"equityCurve"`
	FinalValue       float64   `json:"finalValue"`
	TotalReturn      float64   `json:"totalReturn"`
	AnnualizedReturn float64   `json:"annualizedReturn"`
	MaxDrawdown      float64   `json:"maxDrawdown"`
	SharpeRatio      float64   `json:"sharpeRatio"`
}

// PercentileBand holds cross-path percentile bands of cumulative return
// at every step. All slices are aligned and share the same length.
type PercentileBand struct {
	Steps []int     `json:"steps"`
	P5    []float64 `json:"p5"`
	P25   []float64 `json:"p25"`
	P50   []float64 `json:"p50"`
	P75   []float64 `json:"p75"`
	P95   []float64 `json:"p95"`
}

// ValueAtRisk holds total-return percentiles at the confidence levels
// reported by the dashboard risk views.
type ValueAtRisk struct {
	P5  float64 `json:"p5"`
	P10 float64 `json:"p10"`
	P25 float64 `json:"p25"`
}

// SummaryStatistics aggregates metrics across all simulated paths.
type SummaryStatistics struct {
	MeanFinalValue         float64     `json:"meanFinalValue"`
	MedianFinalValue       float64     `json:"medianFinalValue"`
	StdDevFinalValue       float64     `json:"stdDevFinalValue"`
	MeanTotalReturn        float64     `json:"meanTotalReturn"`
	MedianTotalReturn      float64     `json:"medianTotalReturn"`
	MeanAnnualizedReturn   float64     `json:"meanAnnualizedReturn"`
	MedianAnnualizedReturn float64     `json:"medianAnnualizedReturn"`
	MeanMaxDrawdown        float64     `json:"meanMaxDrawdown"`
	MedianMaxDrawdown      float64     `json:"medianMaxDrawdown"`
	MeanSharpeRatio        float64     `json:"meanSharpeRatio"`
	MedianSharpeRatio      float64     `json:"medianSharpeRatio"`
	ProbabilityOfProfit    float64     `json:"probabilityOfProfit"`
	ValueAtRisk            ValueAtRisk `json:"valueAtRisk"`
}

// ResultBundle is the complete output of one simulation run, handed to
// the caller as a read-only snapshot. It owns all its children.
type ResultBundle struct {
	ID                     string               `json:"id"`
	Paths                  []*SimulationPath    `json:"paths"`
	Percentiles            *PercentileBand      `json:"percentiles"`
	Statistics             *SummaryStatistics   `json:"statistics"`
	Parameters             SimulationParameters `json:"parameters"`
	ActualResamplePoolSize int                  `json:"actualResamplePoolSize"`
	Timestamp              time.Time            `json:"timestamp"`
}
