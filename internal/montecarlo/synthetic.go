package montecarlo

import (
	"math"
	"sort"

	"github.com/optionfolio/risk-backend/pkg/types"
)

// SyntheticLossEvent is a transient, per-strategy synthetic maximum
// loss record. It deliberately is not a Trade: it carries only what the
// simulation needs, so it cannot drift with the Trade schema.
type SyntheticLossEvent struct {
	// LossAmount is the historical worst-case loss in dollars,
	// negative.
	LossAmount float64
	Strategy   string
	// CapitalRatio is the largest observed loss as a fraction of the
	// capital at the time, used for relative sizing. Zero when no
	// realized loss with a valid capital basis exists.
	CapitalRatio float64
}

// BuildSyntheticLossEvents models tail risk the historical sample may
// under-represent: it computes a synthetic-event budget from the
// worst-case percentage, allocates it across strategies by the largest
// remainder method, and emits one event per allocated slot carrying
// that strategy's representative maximum loss.
func BuildSyntheticLossEvents(trades []*types.Trade, simulationLength int, cfg types.WorstCaseConfig, normalizeTo1Lot bool) []SyntheticLossEvent {
	if simulationLength <= 0 || cfg.Percentage <= 0 || len(trades) == 0 {
		return nil
	}

	// Group by strategy preserving first-appearance order so remainder
	// ties break deterministically.
	order := make([]string, 0)
	byStrategy := make(map[string][]*types.Trade)
	for _, t := range trades {
		if _, seen := byStrategy[t.Strategy]; !seen {
			order = append(order, t.Strategy)
		}
		byStrategy[t.Strategy] = append(byStrategy[t.Strategy], t)
	}

	budget := int(math.Ceil(float64(simulationLength) * cfg.Percentage / 100))
	if budget < 1 {
		budget = 1
	}
	if budget > simulationLength {
		budget = simulationLength
	}

	weights := make([]float64, len(order))
	for i, strategy := range order {
		if cfg.BasedOn == types.WorstCaseBasisHistorical {
			weights[i] = float64(len(byStrategy[strategy]))
		} else {
			weights[i] = 1
		}
	}

	allocations := AllocateLargestRemainder(weights, budget)

	events := make([]SyntheticLossEvent, 0, budget)
	for i, strategy := range order {
		if allocations[i] == 0 {
			continue
		}
		loss, ratio := strategyMaxLoss(byStrategy[strategy], normalizeTo1Lot)
		for n := 0; n < allocations[i]; n++ {
			events = append(events, SyntheticLossEvent{
				LossAmount:   -loss,
				Strategy:     strategy,
				CapitalRatio: ratio,
			})
		}
	}

	return events
}

// AllocateLargestRemainder apportions an integer budget across weights:
// each entry gets the integer part of its proportional share, then the
// leftover units go to the largest fractional remainders, ties broken
// by original order. All-zero weights fall back to an even split. The
// result always sums to exactly budget.
func AllocateLargestRemainder(weights []float64, budget int) []int {
	allocations := make([]int, len(weights))
	if len(weights) == 0 || budget <= 0 {
		return allocations
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		even := make([]float64, len(weights))
		for i := range even {
			even[i] = 1
		}
		return AllocateLargestRemainder(even, budget)
	}

	type remainder struct {
		index int
		frac  float64
	}

	assigned := 0
	remainders := make([]remainder, len(weights))
	for i, w := range weights {
		share := w / total * float64(budget)
		allocations[i] = int(math.Floor(share))
		assigned += allocations[i]
		remainders[i] = remainder{index: i, frac: share - math.Floor(share)}
	}

	sort.SliceStable(remainders, func(i, j int) bool {
		return remainders[i].frac > remainders[j].frac
	})

	for i := 0; assigned < budget; i++ {
		allocations[remainders[i%len(remainders)].index]++
		assigned++
	}

	return allocations
}

// strategyMaxLoss finds the representative maximum loss magnitude for a
// strategy. Source priority: margin requirement, then the absolute
// maxLoss field, then the largest realized negative P/L; within the
// chosen source the largest magnitude wins. It also tracks the largest
// loss-to-capital-at-time ratio for relative sizing.
func strategyMaxLoss(trades []*types.Trade, normalize bool) (loss float64, capitalRatio float64) {
	var marginMax, maxLossMax, realizedMax float64

	for _, t := range trades {
		div := 1.0
		if normalize && t.Contracts > 0 {
			div = float64(t.Contracts)
		}

		if t.MarginReq != nil {
			if v, _ := t.MarginReq.Float64(); v/div > marginMax {
				marginMax = v / div
			}
		}
		if t.MaxLoss != nil {
			v, _ := t.MaxLoss.Float64()
			if math.Abs(v)/div > maxLossMax {
				maxLossMax = math.Abs(v) / div
			}
		}

		pl, _ := t.PL.Float64()
		if pl < 0 {
			if math.Abs(pl)/div > realizedMax {
				realizedMax = math.Abs(pl) / div
			}
			capitalBefore, _ := t.FundsAtClose.Sub(t.PL).Float64()
			if capitalBefore > 0 {
				if ratio := math.Abs(pl) / capitalBefore; ratio > capitalRatio {
					capitalRatio = ratio
				}
			}
		}
	}

	switch {
	case marginMax > 0:
		loss = marginMax
	case maxLossMax > 0:
		loss = maxLossMax
	default:
		loss = realizedMax
	}
	return loss, capitalRatio
}

// SyntheticValue converts an event to a numeric value in the resample
// pool's units. Relative sizing scales the loss by the capital basis;
// it falls back to absolute sizing when no valid ratio or basis exists.
func SyntheticValue(ev SyntheticLossEvent, params types.SimulationParameters) float64 {
	initialCapital, _ := params.InitialCapital.Float64()
	relative := params.WorstCase.Sizing == types.WorstCaseSizingRelative && ev.CapitalRatio > 0

	if params.ResampleMethod == types.ResamplePercentage {
		// Pool values are decimal returns in percentage mode.
		if relative {
			return -ev.CapitalRatio
		}
		if initialCapital > 0 {
			return ev.LossAmount / initialCapital
		}
		return 0
	}

	if relative && initialCapital > 0 {
		return -ev.CapitalRatio * initialCapital
	}
	return ev.LossAmount
}
