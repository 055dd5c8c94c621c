// Package montecarlo implements the bootstrap-resampling risk
// simulation engine: pool building, synthetic worst-case injection,
// path simulation, and cross-path aggregation.
package montecarlo

import (
	"math/rand"
	"sync/atomic"
	"time"
)

// RandomSource is a pluggable uniform generator over [0, 1). Every
// sampling decision in the engine goes through one, so seeded runs are
// bit-reproducible and paths can execute in parallel without shared
// generator state.
type RandomSource interface {
	Float64() float64
}

// lcgSource is a 32-bit linear congruential generator. Chosen over
// math/rand for seeded runs because the dashboard frontend uses the
// same recurrence, so saved seeds reproduce identical fans.
type lcgSource struct {
	state uint32
}

const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223

	// guaranteeSeedOffset separates the insertion-position stream from
	// the sampling stream in guarantee mode.
	guaranteeSeedOffset = 999999
)

// NewSeededSource returns a deterministic source for the given seed.
func NewSeededSource(seed int64) RandomSource {
	return &lcgSource{state: uint32(seed)}
}

func (s *lcgSource) Float64() float64 {
	s.state = s.state*lcgMultiplier + lcgIncrement
	return float64(s.state) / 4294967296.0
}

// entropySource wraps math/rand seeded from the clock for runs without
// a caller-supplied seed.
type entropySource struct {
	rng *rand.Rand
}

// entropyCounter keeps sources created in the same nanosecond distinct.
var entropyCounter atomic.Int64

// NewEntropySource returns a non-deterministic source.
func NewEntropySource() RandomSource {
	seed := time.Now().UnixNano() + entropyCounter.Add(1)
	return &entropySource{rng: rand.New(rand.NewSource(seed))}
}

func (s *entropySource) Float64() float64 {
	return s.rng.Float64()
}

// Resample draws sampleSize values with replacement from pool using
// independent uniform indices.
func Resample(rng RandomSource, pool []float64, sampleSize int) []float64 {
	if len(pool) == 0 || sampleSize <= 0 {
		return nil
	}

	sample := make([]float64, sampleSize)
	for i := 0; i < sampleSize; i++ {
		idx := int(rng.Float64() * float64(len(pool)))
		if idx >= len(pool) {
			idx = len(pool) - 1
		}
		sample[i] = pool[idx]
	}

	return sample
}
