// Package types provides configuration types for the risk backend.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// SimulationParameters configures a single Monte Carlo run.
type SimulationParameters struct {
	NumSimulations   int            `json:"numSimulations"`
	SimulationLength int            `json:"simulationLength"`
	// ResampleWindow keeps only the most recent N pool entries when
	// greater than zero.
	ResampleWindow int            `json:"resampleWindow,omitempty"`
	ResampleMethod ResampleMethod `json:"resampleMethod"`

	InitialCapital decimal.Decimal `json:"initialCapital"`
	// HistoricalInitialCapital seeds the running capital for the
	// percentage method. Required for a strategy filtered out of a
	// multi-strategy account; when nil it is inferred from the first
	// trade's fundsAtClose minus its P/L.
	HistoricalInitialCapital *decimal.Decimal `json:"historicalInitialCapital,omitempty"`

	// StrategyFilter restricts the pool to one strategy label. Empty
	// or "all" means no filter.
	StrategyFilter string `json:"strategyFilter,omitempty"`

	TradesPerYear float64 `json:"tradesPerYear"`

	// RandomSeed makes the whole run reproducible. Nil uses entropy.
	RandomSeed *int64 `json:"randomSeed,omitempty"`

	NormalizeTo1Lot bool `json:"normalizeTo1Lot,omitempty"`

	WorstCase WorstCaseConfig `json:"worstCase"`
}

// WorstCaseConfig configures synthetic max-loss injection.
type WorstCaseConfig struct {
	Enabled bool `json:"enabled"`
	// Percentage is the share of simulation steps forced to be
	// synthetic max-loss events, in percent.
	Percentage float64         `json:"percentage"`
	Mode       WorstCaseMode   `json:"mode"`
	BasedOn    WorstCaseBasis  `json:"basedOn"`
	Sizing     WorstCaseSizing `json:"sizing"`
}

// EngineConfig configures engine execution, not simulation semantics.
type EngineConfig struct {
	// NumWorkers is the size of the path worker pool. Zero means
	// runtime.NumCPU.
	NumWorkers int `json:"numWorkers"`
	QueueSize  int `json:"queueSize"`
	// ProgressInterval is how many completed paths between progress
	// callbacks. Zero disables progress reporting.
	ProgressInterval int `json:"progressInterval"`
}

// ServerConfig represents API server configuration.
type ServerConfig struct {
	Host          string        `json:"host"`
	Port          int           `json:"port"`
	WebSocketPath string        `json:"websocketPath"`
	ReadTimeout   time.Duration `json:"readTimeout"`
	WriteTimeout  time.Duration `json:"writeTimeout"`
	EnableMetrics bool          `json:"enableMetrics"`
}
