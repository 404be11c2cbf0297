package main

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
)

var instanceFiles = []string{"qbf_small.json", "scqbf_small.json", "scqbf_small.txt", "qbf_tiny.txt"}

// verifyResult runs the checklist against an optimizer result.
func verifyResult(t *testing.T, in *Instance, eval Evaluator, res Result) {
	t.Helper()
	best := res.Best
	if best == nil {
		t.Fatalf("%s: nil best solution", in.Name)
	}

	// 1. indices in range and unique
	seen := map[int]bool{}
	for _, e := range best.Elements() {
		if e < 0 || e >= in.N() {
			t.Errorf("element %d out of range [0, %d)", e, in.N())
		}
		if seen[e] {
			t.Errorf("duplicate element %d", e)
		}
		seen[e] = true
	}

	// 2. cached cost matches a fresh evaluation
	if got := eval.Evaluate(best.Clone()); got != best.Cost() {
		t.Errorf("cached cost %g, re-evaluated %g", best.Cost(), got)
	}

	// 3. feasible
	if !res.Feasible || !isFeasible(eval, best) {
		t.Errorf("best solution %v is not feasible", best.Sorted())
	}

	// 4. never worse than the empty solution
	if empty := eval.Evaluate(NewSolution(in.N())); in.Direction.Better(empty, best.Cost()) {
		t.Errorf("best %g worse than empty solution %g", best.Cost(), empty)
	}

	// 5. incumbent history never regresses
	for i := 1; i < len(res.History); i++ {
		if in.Direction.Better(res.History[i-1], res.History[i]) {
			t.Errorf("history regressed at iteration %d: %g -> %g", i, res.History[i-1], res.History[i])
		}
	}

	// 6. covering instances are covered
	if covered, ok := in.Covers(best); ok && !covered {
		t.Errorf("solution %v leaves the universe uncovered", best.Sorted())
	}

	// 7. local optimum
	assertLocalOptimum(t, eval, in.Direction, best)

	// 8. alpha probabilities form a distribution
	if s := sumOf(res.AlphaProbabilities); s < 1-1e-9 || s > 1+1e-9 {
		t.Errorf("alpha probabilities sum to %g", s)
	}
}

func TestInstances(t *testing.T) {
	files := instanceFiles
	if testing.Short() {
		files = files[:1]
	}

	// Reduced search params for test speed.
	testCfg := DefaultConfig()
	testCfg.Iterations = 50
	testCfg.Workers = 2
	testCfg.Seed = 2024

	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			t.Parallel()
			in, err := LoadInstance(filepath.Join("testdata", file))
			if err != nil {
				t.Fatalf("LoadInstance: %v", err)
			}
			eval, err := in.Evaluator()
			if err != nil {
				t.Fatalf("Evaluator: %v", err)
			}
			res, err := solveInstance(context.Background(), in, testCfg, nil, nil)
			if err != nil {
				t.Fatalf("solve: %v", err)
			}
			t.Logf("%s: %s elapsed=%v", in.Name, res.Best, res.Elapsed)
			verifyResult(t, in, eval, res)
		})
	}
}

func TestInstancesAllAlphas(t *testing.T) {
	if testing.Short() {
		t.Skip("fixed-alpha sweep")
	}
	in, err := LoadInstance(filepath.Join("testdata", "qbf_small.json"))
	if err != nil {
		t.Fatalf("LoadInstance: %v", err)
	}
	eval, err := in.Evaluator()
	if err != nil {
		t.Fatalf("Evaluator: %v", err)
	}
	for _, alpha := range []float64{0, 0.25, 0.5, 0.75, 1} {
		t.Run(fmt.Sprintf("alpha_%g", alpha), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Iterations = 20
			cfg.Reactive = false
			cfg.Alpha = alpha
			res, err := solveInstance(context.Background(), in, cfg, nil, nil)
			if err != nil {
				t.Fatalf("solve: %v", err)
			}
			verifyResult(t, in, eval, res)
		})
	}
}
