package montecarlo

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/optionfolio/risk-backend/internal/workers"
	"github.com/optionfolio/risk-backend/pkg/types"
)

// ProgressFunc receives the number of completed paths out of the total.
type ProgressFunc func(completed, total int)

// Engine wires pool building, worst-case injection, parallel path
// simulation, and aggregation into one synchronous run. A run has no
// cross-call state beyond the caller-supplied seed, so one Engine can
// serve concurrent callers.
type Engine struct {
	logger   *zap.Logger
	config   types.EngineConfig
	pool     *workers.Pool
	progress ProgressFunc
}

// NewEngine creates an engine and starts its worker pool. Call Close
// when done.
func NewEngine(logger *zap.Logger, config types.EngineConfig) *Engine {
	pool := workers.NewPool(logger, config.NumWorkers, config.QueueSize)
	pool.Start()

	return &Engine{
		logger: logger,
		config: config,
		pool:   pool,
	}
}

// SetProgressFunc installs a callback invoked every ProgressInterval
// completed paths. Must be set before Run.
func (e *Engine) SetProgressFunc(fn ProgressFunc) {
	e.progress = fn
}

// Close stops the worker pool.
func (e *Engine) Close() {
	e.pool.Stop()
}

// Run executes one simulation: validate, build the resample pool,
// inject worst-case events, simulate every path, aggregate. The context
// is checked between path submissions; cancellation aborts the run with
// no partial result. Given a RandomSeed the output is bit-reproducible.
func (e *Engine) Run(ctx context.Context, trades []*types.Trade, params types.SimulationParameters) (*types.ResultBundle, error) {
	if params.NumSimulations <= 0 {
		return nil, fmt.Errorf("numSimulations must be positive, got %d", params.NumSimulations)
	}
	if params.SimulationLength <= 0 {
		return nil, fmt.Errorf("simulationLength must be positive, got %d", params.SimulationLength)
	}
	if len(trades) < MinTrades {
		return nil, fmt.Errorf("%w: got %d, need at least %d", ErrInsufficientTrades, len(trades), MinTrades)
	}

	started := time.Now()
	e.logger.Info("starting simulation",
		zap.Int("numSimulations", params.NumSimulations),
		zap.Int("simulationLength", params.SimulationLength),
		zap.String("resampleMethod", string(params.ResampleMethod)),
		zap.Int("numTrades", len(trades)),
	)

	prepared := PrepareTrades(trades, params.StrategyFilter)
	pool := BuildResamplePool(prepared, params)
	poolSize := len(pool)
	if poolSize < MinPoolSize {
		return nil, fmt.Errorf("%w: got %d values, need at least %d", ErrInsufficientResamplePool, poolSize, MinPoolSize)
	}

	var guaranteed []float64
	if params.WorstCase.Enabled && params.WorstCase.Percentage > 0 {
		events := BuildSyntheticLossEvents(prepared, params.SimulationLength, params.WorstCase, params.NormalizeTo1Lot)
		values := make([]float64, len(events))
		for i, ev := range events {
			values[i] = SyntheticValue(ev, params)
		}

		if params.WorstCase.Mode == types.WorstCaseGuarantee {
			if len(values) > params.SimulationLength {
				values = values[:params.SimulationLength]
			}
			guaranteed = values
		} else {
			pool = append(pool, values...)
		}

		e.logger.Debug("injected worst-case events",
			zap.Int("events", len(events)),
			zap.String("mode", string(params.WorstCase.Mode)),
		)
	}

	paths := make([]*types.SimulationPath, params.NumSimulations)
	initialCapital, _ := params.InitialCapital.Float64()

	var wg sync.WaitGroup
	var completed atomic.Int64

	for i := 0; i < params.NumSimulations; i++ {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}

		idx := i
		wg.Add(1)
		err := e.pool.SubmitFunc(ctx, func() error {
			defer wg.Done()
			paths[idx] = e.simulateIndexedPath(idx, pool, guaranteed, params, initialCapital)
			e.reportProgress(int(completed.Add(1)), params.NumSimulations)
			return nil
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bundle := &types.ResultBundle{
		ID:                     uuid.NewString(),
		Paths:                  paths,
		Percentiles:            AggregatePercentiles(paths, params.SimulationLength),
		Statistics:             ComputeSummaryStatistics(paths),
		Parameters:             params,
		ActualResamplePoolSize: poolSize,
		Timestamp:              time.Now(),
	}

	e.logger.Info("simulation complete",
		zap.String("id", bundle.ID),
		zap.Duration("elapsed", time.Since(started)),
		zap.Float64("medianFinalValue", bundle.Statistics.MedianFinalValue),
		zap.Float64("probabilityOfProfit", bundle.Statistics.ProbabilityOfProfit),
	)

	return bundle, nil
}

// simulateIndexedPath runs one path with seeds derived from the path
// index, so paths are independent yet the whole run is reproducible. A
// second, offset seed drives the guarantee-mode insertion positions so
// placement is itself reproducible.
func (e *Engine) simulateIndexedPath(idx int, pool, guaranteed []float64, params types.SimulationParameters, initialCapital float64) *types.SimulationPath {
	var rng, insertRng RandomSource
	if params.RandomSeed != nil {
		rng = NewSeededSource(*params.RandomSeed + int64(idx))
		insertRng = NewSeededSource(*params.RandomSeed + int64(idx) + guaranteeSeedOffset)
	} else {
		rng = NewEntropySource()
		insertRng = NewEntropySource()
	}

	sample := Resample(rng, pool, params.SimulationLength-len(guaranteed))
	if len(guaranteed) > 0 {
		sample = spliceValues(sample, guaranteed, insertRng)
	}

	if len(sample) > params.SimulationLength {
		sample = sample[:params.SimulationLength]
	}
	for len(sample) < params.SimulationLength {
		sample = append(sample, 0)
	}

	return SimulatePath(sample, initialCapital, params.TradesPerYear, params.ResampleMethod == types.ResamplePercentage)
}

// spliceValues inserts each value at a uniformly random position.
func spliceValues(sample, values []float64, rng RandomSource) []float64 {
	result := sample
	for _, v := range values {
		pos := int(rng.Float64() * float64(len(result)+1))
		if pos > len(result) {
			pos = len(result)
		}
		result = append(result, 0)
		copy(result[pos+1:], result[pos:])
		result[pos] = v
	}
	return result
}

func (e *Engine) reportProgress(completed, total int) {
	if e.progress == nil || e.config.ProgressInterval <= 0 {
		return
	}
	if completed%e.config.ProgressInterval == 0 || completed == total {
		e.progress(completed, total)
	}
}
