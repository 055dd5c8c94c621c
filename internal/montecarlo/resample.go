package montecarlo

import (
	"sort"

	"github.com/optionfolio/risk-backend/pkg/types"
	"github.com/shopspring/decimal"
)

const (
	// MinTrades is the minimum number of input trades for a run.
	MinTrades = 10
	// MinPoolSize is the minimum resample pool size after filtering,
	// windowing, and aggregation.
	MinPoolSize = 5
)

// strategyFilterAll disables strategy filtering.
const strategyFilterAll = "all"

// PrepareTrades filters trades by strategy label and sorts them
// chronologically by open date. Chronological order is required both
// for percentage-mode capital tracking and for windowing to mean
// "most recent N". The input slice is not modified.
func PrepareTrades(trades []*types.Trade, strategyFilter string) []*types.Trade {
	prepared := make([]*types.Trade, 0, len(trades))
	for _, t := range trades {
		if strategyFilter != "" && strategyFilter != strategyFilterAll && t.Strategy != strategyFilter {
			continue
		}
		prepared = append(prepared, t)
	}

	sort.SliceStable(prepared, func(i, j int) bool {
		return prepared[i].OpenDate.Before(prepared[j].OpenDate)
	})

	return prepared
}

// BuildResamplePool converts prepared (filtered, chronologically
// sorted) trades into the flat numeric pool that will be bootstrap
// sampled. Pool units depend on the method: dollars for trades/daily,
// decimal returns for percentage.
func BuildResamplePool(trades []*types.Trade, params types.SimulationParameters) []float64 {
	var pool []float64

	switch params.ResampleMethod {
	case types.ResampleDaily:
		pool = buildDailyPool(trades, params.NormalizeTo1Lot)
	case types.ResamplePercentage:
		pool = buildPercentagePool(trades, params.HistoricalInitialCapital)
	default:
		pool = buildTradePool(trades, params.NormalizeTo1Lot)
	}

	if params.ResampleWindow > 0 && params.ResampleWindow < len(pool) {
		pool = pool[len(pool)-params.ResampleWindow:]
	}

	return pool
}

func buildTradePool(trades []*types.Trade, normalize bool) []float64 {
	pool := make([]float64, len(trades))
	for i, t := range trades {
		pool[i] = tradePL(t, normalize)
	}
	return pool
}

// buildDailyPool sums per-trade P/L by calendar date of open, one pool
// entry per day in chronological order.
func buildDailyPool(trades []*types.Trade, normalize bool) []float64 {
	totals := make(map[string]float64)
	days := make([]string, 0)

	for _, t := range trades {
		day := t.OpenDate.Format("2006-01-02")
		if _, seen := totals[day]; !seen {
			days = append(days, day)
		}
		totals[day] += tradePL(t, normalize)
	}

	pool := make([]float64, len(days))
	for i, day := range days {
		pool[i] = totals[day]
	}
	return pool
}

// buildPercentagePool emits each trade's P/L as a fraction of the
// capital at the time, tracking a running capital balance. The seed
// capital comes from historicalInitialCapital when given; otherwise it
// is inferred from the first trade's funds at close minus its P/L. A
// non-positive balance yields a 0 return for that trade, not an error:
// an account going to zero is a statistically valid outcome.
func buildPercentagePool(trades []*types.Trade, historicalInitialCapital *decimal.Decimal) []float64 {
	if len(trades) == 0 {
		return nil
	}

	var capital float64
	if historicalInitialCapital != nil {
		capital, _ = historicalInitialCapital.Float64()
	} else {
		first := trades[0]
		capital, _ = first.FundsAtClose.Sub(first.PL).Float64()
	}

	pool := make([]float64, len(trades))
	for i, t := range trades {
		pl, _ := t.PL.Float64()
		if capital <= 0 {
			pool[i] = 0
		} else {
			pool[i] = pl / capital
		}
		capital += pl
	}
	return pool
}

// tradePL returns the trade's realized P/L in dollars, divided by its
// contract count when normalizing to one lot.
func tradePL(t *types.Trade, normalize bool) float64 {
	pl, _ := t.PL.Float64()
	if normalize && t.Contracts > 0 {
		return pl / float64(t.Contracts)
	}
	return pl
}
