package montecarlo_test

import (
	"testing"

	"github.com/optionfolio/risk-backend/internal/montecarlo"
)

func TestSeededSourceDeterminism(t *testing.T) {
	a := montecarlo.NewSeededSource(42)
	b := montecarlo.NewSeededSource(42)

	for i := 0; i < 1000; i++ {
		va, vb := a.Float64(), b.Float64()
		if va != vb {
			t.Fatalf("sequence diverged at %d: %v != %v", i, va, vb)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("value out of [0,1) at %d: %v", i, va)
		}
	}
}

func TestSeededSourceDistinctSeeds(t *testing.T) {
	a := montecarlo.NewSeededSource(1)
	b := montecarlo.NewSeededSource(2)

	same := 0
	for i := 0; i < 100; i++ {
		if a.Float64() == b.Float64() {
			same++
		}
	}
	if same == 100 {
		t.Fatal("different seeds produced identical sequences")
	}
}

func TestResample(t *testing.T) {
	pool := []float64{1, 2, 3, 4, 5}
	rng := montecarlo.NewSeededSource(7)

	sample := montecarlo.Resample(rng, pool, 200)
	if len(sample) != 200 {
		t.Fatalf("expected 200 values, got %d", len(sample))
	}

	allowed := map[float64]bool{1: true, 2: true, 3: true, 4: true, 5: true}
	for i, v := range sample {
		if !allowed[v] {
			t.Fatalf("sample[%d] = %v not drawn from pool", i, v)
		}
	}

	// Same seed, same draw.
	again := montecarlo.Resample(montecarlo.NewSeededSource(7), pool, 200)
	for i := range sample {
		if sample[i] != again[i] {
			t.Fatalf("resample not deterministic at %d", i)
		}
	}
}

func TestResampleEmptyPool(t *testing.T) {
	if got := montecarlo.Resample(montecarlo.NewSeededSource(1), nil, 10); got != nil {
		t.Fatalf("expected nil sample from empty pool, got %v", got)
	}
}
