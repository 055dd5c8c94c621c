package montecarlo

import "errors"

// Validation errors raised before any simulation work begins. There is
// no partial result on failure and no retry: the computation is pure,
// so a given input either succeeds or fails deterministically.
var (
	// ErrInsufficientTrades reports fewer than MinTrades input trades.
	ErrInsufficientTrades = errors.New("insufficient trades for simulation")

	// ErrInsufficientResamplePool reports fewer than MinPoolSize pool
	// values after filtering, windowing, and aggregation.
	ErrInsufficientResamplePool = errors.New("insufficient resample pool for simulation")
)
