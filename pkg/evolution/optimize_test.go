package evolution_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/policyevo/policyevo/pkg/evolution"
	"github.com/policyevo/policyevo/pkg/outcomes"
	"github.com/policyevo/policyevo/pkg/rng"
)

func quotaConfig(nTreat, generations, size int) evolution.Config {
	return evolution.Config{
		TreatCount:         nTreat,
		Generations:        generations,
		TemperatureDecay:   0.99,
		GenerationSize:     size,
		MutationFloor:      1,
		TierRatioThreshold: 4,
		SeedAnchors:        true,
	}
}

func TestOptimizeAnchorScenario(t *testing.T) {
	po := &outcomes.PotentialOutcomes{
		Obj1Treated: []float64{10, 0, 0, 10},
		Obj1Control: []float64{0, 10, 10, 0},
		Obj2Treated: []float64{1, 1, 1, 1},
		Obj2Control: []float64{1, 1, 1, 1},
	}
	cfg := quotaConfig(2, 0, 4)
	cfg.TemperatureDecay = 1.0
	cfg.MutationFloor = 100

	pop, err := evolution.NewPopulation(po, cfg, rng.New(42))
	if err != nil {
		t.Fatalf("NewPopulation() error = %v", err)
	}
	policies := pop.Policies()
	if len(policies) != 6 {
		t.Fatalf("population size = %d, want 6", len(policies))
	}
	if diff := cmp.Diff([]bool{true, false, false, true}, policies[0].Assignment()); diff != "" {
		t.Errorf("objective 1 anchor (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]bool{true, true, false, false}, policies[1].Assignment()); diff != "" {
		t.Errorf("objective 2 anchor (-want +got):\n%s", diff)
	}

	pop.Evaluate(context.Background())
	best := 0.0
	for _, p := range pop.Policies() {
		best = max(best, p.Utility1())
	}
	if best != 40 {
		t.Errorf("best utility1 = %v, want 40", best)
	}

	result, err := evolution.Optimize(context.Background(), po, cfg, evolution.WithSource(rng.New(42)))
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}
	want := [][]bool{{true, false, false, true}}
	if diff := cmp.Diff(want, result.Assignments); diff != "" {
		t.Errorf("unexpected assignments (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]evolution.Point{{Utility1: 40, Utility2: 4, Rank: 1}}, result.Elite); diff != "" {
		t.Errorf("unexpected elite (-want +got):\n%s", diff)
	}
	if result.Generations != 0 {
		t.Errorf("Generations = %d, want 0", result.Generations)
	}
}

func TestOptimizeResultShape(t *testing.T) {
	po := outcomes.Synthetic(rng.New(21), 40, 0.8)
	cfg := quotaConfig(12, 15, 60)
	cfg.Workers = 4

	result, err := evolution.Optimize(context.Background(), po, cfg, evolution.WithSource(rng.New(21)))
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}
	if result.Generations != 15 {
		t.Errorf("Generations = %d, want 15", result.Generations)
	}
	if len(result.Population) != 60 {
		t.Errorf("len(Population) = %d, want 60", len(result.Population))
	}
	if len(result.Assignments) == 0 || len(result.Assignments) != len(result.Elite) {
		t.Fatalf("got %d assignments and %d elite points", len(result.Assignments), len(result.Elite))
	}
	for i, assignment := range result.Assignments {
		if len(assignment) != 40 {
			t.Errorf("assignment %d has %d units, want 40", i, len(assignment))
		}
		treated := 0
		for _, v := range assignment {
			if v {
				treated++
			}
		}
		if treated != 12 {
			t.Errorf("assignment %d treats %d units, want 12", i, treated)
		}
		if result.Elite[i].Rank != evolution.EliteTier {
			t.Errorf("elite point %d has rank %d", i, result.Elite[i].Rank)
		}
	}
}

func TestOptimizeIsReproducible(t *testing.T) {
	po := outcomes.Synthetic(rng.New(8), 30, 0.6)
	cfg := quotaConfig(10, 10, 50)
	seed := uint64(1234)
	cfg.Seed = &seed

	var results []*evolution.Result
	for _, workers := range []int{1, 3, 8} {
		cfg.Workers = workers
		result, err := evolution.Optimize(context.Background(), po, cfg)
		if err != nil {
			t.Fatalf("Optimize() error = %v", err)
		}
		results = append(results, result)
	}
	for i := 1; i < len(results); i++ {
		if diff := cmp.Diff(results[0], results[i]); diff != "" {
			t.Errorf("run %d differs from run 0 (-run0 +run%d):\n%s", i, i, diff)
		}
	}
}

func TestOptimizeErrors(t *testing.T) {
	po := outcomes.Synthetic(rng.New(1), 10, 0.5)
	tests := []struct {
		name    string
		po      *outcomes.PotentialOutcomes
		cfg     evolution.Config
		wantErr error
	}{
		{
			name: "shape mismatch",
			po: &outcomes.PotentialOutcomes{
				Obj1Treated: []float64{1}, Obj1Control: []float64{1, 2},
				Obj2Treated: []float64{1}, Obj2Control: []float64{1},
			},
			cfg:     quotaConfig(1, 1, 4),
			wantErr: outcomes.ErrInputShapeMismatch,
		},
		{name: "quota too large", po: po, cfg: quotaConfig(11, 1, 4), wantErr: evolution.ErrInvalidQuota},
		{name: "negative quota", po: po, cfg: quotaConfig(-1, 1, 4), wantErr: evolution.ErrInvalidQuota},
		{name: "bad decay", po: po, cfg: func() evolution.Config {
			c := quotaConfig(2, 1, 4)
			c.TemperatureDecay = -0.5
			return c
		}(), wantErr: evolution.ErrInvalidConfig},
		{name: "single policy is degenerate", po: po, cfg: func() evolution.Config {
			c := quotaConfig(2, 0, 1)
			c.SeedAnchors = false
			return c
		}(), wantErr: evolution.ErrDegenerateResult},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := evolution.Optimize(context.Background(), tc.po, tc.cfg, evolution.WithSource(rng.New(1)))
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Optimize() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestOptimizeNotifiesObservers(t *testing.T) {
	po := outcomes.Synthetic(rng.New(3), 20, 0.5)
	cfg := quotaConfig(5, 4, 30)

	var first, second []evolution.GenerationStats
	_, err := evolution.Optimize(context.Background(), po, cfg,
		evolution.WithSource(rng.New(3)),
		evolution.WithObservers(
			evolution.ObserverFunc(func(_ context.Context, s evolution.GenerationStats) { first = append(first, s) }),
			evolution.ObserverFunc(func(_ context.Context, s evolution.GenerationStats) { second = append(second, s) }),
		))
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}

	if len(first) != 5 {
		t.Fatalf("observer saw %d generations, want 5", len(first))
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("observers saw different stats (-first +second):\n%s", diff)
	}
	for i, s := range first {
		if s.Generation != i {
			t.Errorf("stats %d: Generation = %d", i, s.Generation)
		}
		if wantFinal := i == len(first)-1; s.Final != wantFinal {
			t.Errorf("stats %d: Final = %v, want %v", i, s.Final, wantFinal)
		}
		if s.EliteWidth < 1 {
			t.Errorf("stats %d: EliteWidth = %d", i, s.EliteWidth)
		}
	}
}

func TestOptimizeStopsWhenCancelled(t *testing.T) {
	po := outcomes.Synthetic(rng.New(5), 20, 0.5)
	ctx, cancel := context.WithCancel(context.Background())

	observed := 0
	_, err := evolution.Optimize(ctx, po, quotaConfig(5, 50, 20),
		evolution.WithSource(rng.New(5)),
		evolution.WithObservers(evolution.ObserverFunc(func(context.Context, evolution.GenerationStats) {
			observed++
			if observed == 2 {
				cancel()
			}
		})))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Optimize() error = %v, want context.Canceled", err)
	}
	if observed != 2 {
		t.Errorf("observed %d generations, want 2", observed)
	}
}
