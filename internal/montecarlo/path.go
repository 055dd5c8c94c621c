package montecarlo

import (
	"math"

	"github.com/optionfolio/risk-backend/pkg/types"
)

// SimulatePath turns one resampled value sequence into a single equity
// curve and its path-level metrics. Dollar mode adds each value to the
// running capital; percentage mode compounds it. Pure function of its
// inputs.
func SimulatePath(sample []float64, initialCapital, tradesPerYear float64, percentageMode bool) *types.SimulationPath {
	capital := initialCapital
	equityCurve := make([]float64, len(sample))
	stepReturns := make([]float64, len(sample))

	for i, value := range sample {
		before := capital
		if percentageMode {
			capital *= 1 + value
		} else {
			capital += value
		}

		if initialCapital != 0 {
			equityCurve[i] = (capital - initialCapital) / initialCapital
		}
		if before > 0 {
			stepReturns[i] = capital/before - 1
		}
	}

	totalReturn := 0.0
	if initialCapital != 0 {
		totalReturn = (capital - initialCapital) / initialCapital
	}

	return &types.SimulationPath{
		EquityCurve:      equityCurve,
		FinalValue:       capital,
		TotalReturn:      totalReturn,
		AnnualizedReturn: AnnualizedReturn(totalReturn, len(sample), tradesPerYear),
		MaxDrawdown:      MaxDrawdown(equityCurve),
		SharpeRatio:      SharpeRatio(stepReturns, tradesPerYear),
	}
}

// AnnualizedReturn annualizes a total return over numSteps steps at
// tradesPerYear steps per year.
func AnnualizedReturn(totalReturn float64, numSteps int, tradesPerYear float64) float64 {
	if numSteps <= 0 || tradesPerYear <= 0 {
		return totalReturn
	}
	yearsElapsed := float64(numSteps) / tradesPerYear
	if yearsElapsed == 0 {
		return totalReturn
	}
	if 1+totalReturn <= 0 {
		// Account wiped out; a fractional power of a negative base is
		// undefined.
		return -1
	}
	return math.Pow(1+totalReturn, 1/yearsElapsed) - 1
}

// MaxDrawdown computes the maximum peak-to-trough decline of a curve of
// cumulative returns. The starting capital's 0% return is the initial
// peak. The (1+peak) denominator converts the return-space gap back to
// a fraction of peak value, which is what makes this correct under
// compounding; a bare peak−r would overstate drawdowns.
func MaxDrawdown(equityCurve []float64) float64 {
	peak := 0.0
	maxDD := 0.0

	for _, r := range equityCurve {
		if r > peak {
			peak = r
		}
		if peak > -1 {
			if dd := (peak - r) / (1 + peak); dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}

// SharpeRatio computes the annualized Sharpe ratio of per-step returns
// using the sample standard deviation (N−1). Fewer than two points or
// zero volatility yields 0.
func SharpeRatio(stepReturns []float64, tradesPerYear float64) float64 {
	if len(stepReturns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range stepReturns {
		mean += r
	}
	mean /= float64(len(stepReturns))

	variance := 0.0
	for _, r := range stepReturns {
		diff := r - mean
		variance += diff * diff
	}
	stdDev := math.Sqrt(variance / float64(len(stepReturns)-1))

	if stdDev == 0 {
		return 0
	}
	return mean / stdDev * math.Sqrt(tradesPerYear)
}
