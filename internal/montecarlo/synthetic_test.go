package montecarlo_test

import (
	"math"
	"testing"

	"github.com/optionfolio/risk-backend/internal/montecarlo"
	"github.com/optionfolio/risk-backend/pkg/types"
)

func TestAllocateLargestRemainder(t *testing.T) {
	cases := []struct {
		name    string
		weights []float64
		budget  int
		want    []int
	}{
		{"proportional", []float64{90, 10}, 10, []int{9, 1}},
		{"remainder ties break by order", []float64{2, 1, 1}, 2, []int{1, 1, 0}},
		{"single strategy", []float64{5}, 3, []int{3}},
		{"zero weights fall back to even split", []float64{0, 0}, 4, []int{2, 2}},
		{"uneven split", []float64{1, 1, 1}, 4, []int{2, 1, 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := montecarlo.AllocateLargestRemainder(tc.weights, tc.budget)
			sum := 0
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("allocations = %v, want %v", got, tc.want)
				}
				sum += got[i]
			}
			if sum != tc.budget {
				t.Fatalf("allocations sum to %d, want %d", sum, tc.budget)
			}
		})
	}
}

func TestBuildSyntheticLossEventsBudget(t *testing.T) {
	// 90 alpha trades, 10 beta trades.
	trades := make([]*types.Trade, 0, 100)
	for i := 0; i < 90; i++ {
		trades = append(trades, makeTrade("alpha", -10, i, 1, 1000))
	}
	for i := 0; i < 10; i++ {
		trades = append(trades, makeTrade("beta", -20, i, 1, 1000))
	}

	events := montecarlo.BuildSyntheticLossEvents(trades, 100, types.WorstCaseConfig{
		Enabled:    true,
		Percentage: 10,
		Mode:       types.WorstCasePool,
		BasedOn:    types.WorstCaseBasisHistorical,
		Sizing:     types.WorstCaseSizingAbsolute,
	}, false)

	if len(events) != 10 {
		t.Fatalf("expected budget of 10 events, got %d", len(events))
	}

	byStrategy := map[string]int{}
	for _, ev := range events {
		byStrategy[ev.Strategy]++
	}
	if byStrategy["alpha"] != 9 || byStrategy["beta"] != 1 {
		t.Fatalf("expected 9/1 split, got %v", byStrategy)
	}
}

func TestBuildSyntheticLossEventsUniformBasis(t *testing.T) {
	trades := make([]*types.Trade, 0, 100)
	for i := 0; i < 90; i++ {
		trades = append(trades, makeTrade("alpha", -10, i, 1, 1000))
	}
	for i := 0; i < 10; i++ {
		trades = append(trades, makeTrade("beta", -20, i, 1, 1000))
	}

	events := montecarlo.BuildSyntheticLossEvents(trades, 100, types.WorstCaseConfig{
		Enabled:    true,
		Percentage: 10,
		BasedOn:    types.WorstCaseBasisSimulation,
	}, false)

	byStrategy := map[string]int{}
	for _, ev := range events {
		byStrategy[ev.Strategy]++
	}
	if byStrategy["alpha"] != 5 || byStrategy["beta"] != 5 {
		t.Fatalf("expected even split under simulation basis, got %v", byStrategy)
	}
}

func TestBuildSyntheticLossEventsMinimumOne(t *testing.T) {
	trades := []*types.Trade{makeTrade("a", -10, 0, 1, 1000)}

	// 1% of 10 steps rounds up, never to zero.
	events := montecarlo.BuildSyntheticLossEvents(trades, 10, types.WorstCaseConfig{
		Enabled:    true,
		Percentage: 1,
	}, false)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
}

func TestMaxLossPriority(t *testing.T) {
	// Margin wins over maxLoss and realized loss.
	withMargin := makeTrade("a", -100, 0, 1, 1000)
	withMargin.MarginReq = decPtr(500)
	withMargin.MaxLoss = decPtr(-300)

	events := montecarlo.BuildSyntheticLossEvents([]*types.Trade{withMargin}, 10, types.WorstCaseConfig{
		Enabled:    true,
		Percentage: 10,
	}, false)
	if len(events) != 1 || events[0].LossAmount != -500 {
		t.Fatalf("expected margin-derived loss -500, got %+v", events)
	}

	// Without margin, the maxLoss field wins.
	withMaxLoss := makeTrade("a", -100, 0, 1, 1000)
	withMaxLoss.MaxLoss = decPtr(-300)

	events = montecarlo.BuildSyntheticLossEvents([]*types.Trade{withMaxLoss}, 10, types.WorstCaseConfig{
		Enabled:    true,
		Percentage: 10,
	}, false)
	if events[0].LossAmount != -300 {
		t.Fatalf("expected maxLoss-derived loss -300, got %v", events[0].LossAmount)
	}

	// Bare realized loss as the last resort.
	bare := makeTrade("a", -100, 0, 1, 1000)
	events = montecarlo.BuildSyntheticLossEvents([]*types.Trade{bare}, 10, types.WorstCaseConfig{
		Enabled:    true,
		Percentage: 10,
	}, false)
	if events[0].LossAmount != -100 {
		t.Fatalf("expected realized loss -100, got %v", events[0].LossAmount)
	}
}

func TestCapitalRatioTracking(t *testing.T) {
	// Loss of 100 with fundsAtClose 900 means capital before was 1000:
	// ratio 0.1.
	trade := makeTrade("a", -100, 0, 1, 900)

	events := montecarlo.BuildSyntheticLossEvents([]*types.Trade{trade}, 10, types.WorstCaseConfig{
		Enabled:    true,
		Percentage: 10,
	}, false)
	if math.Abs(events[0].CapitalRatio-0.1) > 1e-12 {
		t.Fatalf("expected capital ratio 0.1, got %v", events[0].CapitalRatio)
	}
}

func TestSyntheticValueUnits(t *testing.T) {
	ev := montecarlo.SyntheticLossEvent{LossAmount: -500, Strategy: "a", CapitalRatio: 0.25}

	dollarAbs := types.SimulationParameters{
		ResampleMethod: types.ResampleTrades,
		InitialCapital: dec(10000),
		WorstCase:      types.WorstCaseConfig{Sizing: types.WorstCaseSizingAbsolute},
	}
	if got := montecarlo.SyntheticValue(ev, dollarAbs); got != -500 {
		t.Errorf("dollar absolute: got %v, want -500", got)
	}

	dollarRel := dollarAbs
	dollarRel.WorstCase.Sizing = types.WorstCaseSizingRelative
	if got := montecarlo.SyntheticValue(ev, dollarRel); got != -2500 {
		t.Errorf("dollar relative: got %v, want -2500", got)
	}

	pctAbs := types.SimulationParameters{
		ResampleMethod: types.ResamplePercentage,
		InitialCapital: dec(10000),
		WorstCase:      types.WorstCaseConfig{Sizing: types.WorstCaseSizingAbsolute},
	}
	if got := montecarlo.SyntheticValue(ev, pctAbs); got != -0.05 {
		t.Errorf("percentage absolute: got %v, want -0.05", got)
	}

	pctRel := pctAbs
	pctRel.WorstCase.Sizing = types.WorstCaseSizingRelative
	if got := montecarlo.SyntheticValue(ev, pctRel); got != -0.25 {
		t.Errorf("percentage relative: got %v, want -0.25", got)
	}

	// No valid ratio falls back to absolute sizing.
	noRatio := montecarlo.SyntheticLossEvent{LossAmount: -500}
	if got := montecarlo.SyntheticValue(noRatio, dollarRel); got != -500 {
		t.Errorf("relative fallback: got %v, want -500", got)
	}
}
