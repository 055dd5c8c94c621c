package montecarlo

import (
	"math"
	"sort"

	"github.com/optionfolio/risk-backend/pkg/types"
)

// Percentile calculates the pth percentile of sorted values using
// linear interpolation between the surrounding ranks.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}

	index := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))

	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// AggregatePercentiles computes the cross-path P5/P25/P50/P75/P95 bands
// of cumulative return at every step. Sorting plus monotonic percentile
// ranks guarantees P5 ≤ P25 ≤ P50 ≤ P75 ≤ P95 at each step.
func AggregatePercentiles(paths []*types.SimulationPath, simulationLength int) *types.PercentileBand {
	band := &types.PercentileBand{
		Steps: make([]int, simulationLength),
		P5:    make([]float64, simulationLength),
		P25:   make([]float64, simulationLength),
		P50:   make([]float64, simulationLength),
		P75:   make([]float64, simulationLength),
		P95:   make([]float64, simulationLength),
	}

	values := make([]float64, 0, len(paths))
	for step := 0; step < simulationLength; step++ {
		values = values[:0]
		for _, path := range paths {
			if step < len(path.EquityCurve) {
				values = append(values, path.EquityCurve[step])
			}
		}
		sort.Float64s(values)

		band.Steps[step] = step + 1
		band.P5[step] = Percentile(values, 5)
		band.P25[step] = Percentile(values, 25)
		band.P50[step] = Percentile(values, 50)
		band.P75[step] = Percentile(values, 75)
		band.P95[step] = Percentile(values, 95)
	}

	return band
}

// ComputeSummaryStatistics aggregates metrics across all paths:
// mean/median of each path metric, sample standard deviation of final
// value, probability of profit, and Value-at-Risk over total returns.
func ComputeSummaryStatistics(paths []*types.SimulationPath) *types.SummaryStatistics {
	if len(paths) == 0 {
		return &types.SummaryStatistics{}
	}

	n := len(paths)
	finalValues := make([]float64, n)
	totalReturns := make([]float64, n)
	annualized := make([]float64, n)
	drawdowns := make([]float64, n)
	sharpes := make([]float64, n)

	profitable := 0
	for i, path := range paths {
		finalValues[i] = path.FinalValue
		totalReturns[i] = path.TotalReturn
		annualized[i] = path.AnnualizedReturn
		drawdowns[i] = path.MaxDrawdown
		sharpes[i] = path.SharpeRatio
		if path.TotalReturn > 0 {
			profitable++
		}
	}

	sortedReturns := make([]float64, n)
	copy(sortedReturns, totalReturns)
	sort.Float64s(sortedReturns)

	return &types.SummaryStatistics{
		MeanFinalValue:         mean(finalValues),
		MedianFinalValue:       median(finalValues),
		StdDevFinalValue:       sampleStdDev(finalValues),
		MeanTotalReturn:        mean(totalReturns),
		MedianTotalReturn:      median(totalReturns),
		MeanAnnualizedReturn:   mean(annualized),
		MedianAnnualizedReturn: median(annualized),
		MeanMaxDrawdown:        mean(drawdowns),
		MedianMaxDrawdown:      median(drawdowns),
		MeanSharpeRatio:        mean(sharpes),
		MedianSharpeRatio:      median(sharpes),
		ProbabilityOfProfit:    float64(profitable) / float64(n),
		ValueAtRisk: types.ValueAtRisk{
			P5:  Percentile(sortedReturns, 5),
			P10: Percentile(sortedReturns, 10),
			P25: Percentile(sortedReturns, 25),
		},
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return Percentile(sorted, 50)
}

func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	variance := 0.0
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	return math.Sqrt(variance / float64(len(values)-1))
}
