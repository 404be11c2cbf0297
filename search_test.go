package main

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Iterations = 30
	cfg.Seed = 17
	return cfg
}

func mustOptimizer(t *testing.T, eval Evaluator, dir Direction, cfg Config, opts ...Option) *Optimizer {
	t.Helper()
	o, err := NewOptimizer(eval, dir, cfg, opts...)
	require.NoError(t, err)
	return o
}

func TestNewOptimizerErrors(t *testing.T) {
	_, err := NewOptimizer(nil, Minimize, DefaultConfig())
	assert.ErrorIs(t, err, ErrNilEvaluator)

	cfg := DefaultConfig()
	cfg.Workers = 0
	_, err = NewOptimizer(mustQBF(t, pairMatrix), Minimize, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSolveFindsPair(t *testing.T) {
	cfg := testConfig()
	cfg.Reactive = false
	cfg.Alpha = 0
	res, err := mustOptimizer(t, mustQBF(t, pairMatrix), Minimize, cfg).Solve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 2}, res.Best.Sorted())
	assert.Equal(t, -10.0, res.Best.Cost())
	assert.True(t, res.Feasible)
	assert.Equal(t, 1, res.Improvements)
	assert.Equal(t, 1, res.Distinct)
	assert.Equal(t, StopBudget, res.Stopped)
	assert.NotEmpty(t, res.RunID)
}

func TestSolveHistoryIsMonotone(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, dir := range []Direction{Minimize, Maximize} {
		q := mustQBF(t, randomMatrix(rng, 15))
		res, err := mustOptimizer(t, q, dir, testConfig()).Solve(context.Background())
		require.NoError(t, err)

		require.Len(t, res.History, res.Iterations)
		assert.Equal(t, 30, res.Iterations)
		for i, c := range res.History {
			// the empty solution costs 0
			assert.False(t, dir.Better(0, c), "%v iteration %d: %g worse than empty", dir, i, c)
			if i > 0 {
				assert.False(t, dir.Better(res.History[i-1], c), "%v iteration %d regressed", dir, i)
			}
		}
		assert.Equal(t, res.History[len(res.History)-1], res.Best.Cost())
		assert.InDelta(t, q.Evaluate(res.Best.Clone()), res.Best.Cost(), 1e-9)

		seen := map[int]bool{}
		for _, e := range res.Best.Elements() {
			assert.True(t, e >= 0 && e < q.DomainSize())
			assert.False(t, seen[e], "duplicate element %d", e)
			seen[e] = true
		}
	}
}

func TestSolveIsDeterministic(t *testing.T) {
	q := mustQBF(t, randomMatrix(rand.New(rand.NewSource(21)), 20))

	run := func(cfg Config) Result {
		res, err := mustOptimizer(t, q, Maximize, cfg).Solve(context.Background())
		require.NoError(t, err)
		return res
	}

	t.Run("same seed", func(t *testing.T) {
		a, b := run(testConfig()), run(testConfig())
		assert.Equal(t, a.Best.Elements(), b.Best.Elements())
		assert.Equal(t, a.History, b.History)
		assert.Equal(t, a.AlphaProbabilities, b.AlphaProbabilities)
		assert.NotEqual(t, a.RunID, b.RunID)
	})

	t.Run("batched reactive", func(t *testing.T) {
		cfg := testConfig()
		cfg.Workers = 4
		a, b := run(cfg), run(cfg)
		assert.Equal(t, a.Best.Elements(), b.Best.Elements())
		assert.Equal(t, a.History, b.History)
	})

	t.Run("fixed alpha independent of workers", func(t *testing.T) {
		cfg := testConfig()
		cfg.Reactive = false
		cfg.Alpha = 0.4
		seq := run(cfg)
		cfg.Workers = 4
		par := run(cfg)
		assert.Equal(t, seq.Best.Elements(), par.Best.Elements())
		assert.Equal(t, seq.History, par.History)
		assert.Equal(t, seq.Distinct, par.Distinct)
	})
}

func TestSolveRebalances(t *testing.T) {
	q := mustQBF(t, randomMatrix(rand.New(rand.NewSource(4)), 10))
	res, err := mustOptimizer(t, q, Minimize, testConfig()).Solve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Rebalances)
	require.Len(t, res.AlphaProbabilities, len(DefaultAlphaPool))
	assert.InDelta(t, 1.0, sumOf(res.AlphaProbabilities), 1e-9)
}

func TestSolveCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := mustOptimizer(t, mustQBF(t, pairMatrix), Minimize, testConfig()).Solve(ctx)
	require.NoError(t, err)
	assert.Equal(t, StopCanceled, res.Stopped)
	assert.Zero(t, res.Iterations)
	assert.Zero(t, res.Best.Len())
	assert.Equal(t, 0.0, res.Best.Cost())
}

func TestSolveTimeLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Iterations = 10_000_000
	cfg.TimeLimit = 20 * time.Millisecond
	q := mustQBF(t, randomMatrix(rand.New(rand.NewSource(8)), 12))

	res, err := mustOptimizer(t, q, Minimize, cfg).Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StopTimeLimit, res.Stopped)
	assert.Less(t, res.Iterations, cfg.Iterations)
}

func TestSolveInfeasibleEmptyStart(t *testing.T) {
	q := mustQBF(t, [][]float64{
		{1, 1, 1},
		{1, 1, 1},
		{1, 1, 1},
	})
	eval := Constrained{Evaluator: q, Feasible: func(s *Solution) bool { return s.Len() > 0 }}

	res, err := mustOptimizer(t, eval, Minimize, testConfig()).Solve(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Feasible)
	assert.Equal(t, 1, res.Best.Len())
	assert.Equal(t, 1.0, res.Best.Cost())
}

func TestSolveZeroIterations(t *testing.T) {
	cfg := testConfig()
	cfg.Iterations = 0
	res, err := mustOptimizer(t, mustQBF(t, pairMatrix), Minimize, cfg).Solve(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Best.Len())
	assert.True(t, res.Feasible)
	assert.Empty(t, res.History)
	assert.Equal(t, StopBudget, res.Stopped)
}

func TestSolveReportsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	cfg := testConfig()
	cfg.Iterations = 20

	q := mustQBF(t, randomMatrix(rand.New(rand.NewSource(12)), 10))
	res, err := mustOptimizer(t, q, Minimize, cfg, WithMetrics(m), WithName("unit")).Solve(context.Background())
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				values[mf.GetName()] += metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				values[mf.GetName()] += float64(metric.GetHistogram().GetSampleCount())
			case metric.GetGauge() != nil:
				values[mf.GetName()] += metric.GetGauge().GetValue()
			}
		}
	}

	assert.Equal(t, 20.0, values["grasp_iterations_total"])
	assert.Equal(t, float64(res.Improvements), values["grasp_incumbent_improvements_total"])
	assert.Equal(t, 20.0, values["grasp_constructed_solution_size"])
	assert.Equal(t, 2.0, values["grasp_alpha_rebalances_total"])
	assert.InDelta(t, 1.0, values["grasp_alpha_probability"], 1e-9)
}
