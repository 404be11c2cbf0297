package main

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sets over the universe {0, 1, 2, 3}; element 2 and 3 are only in set 2.
var smallSets = [][]int{{0, 1}, {1}, {2, 3}, {0}}

func TestSetCover(t *testing.T) {
	sc, err := NewSetCover(4, smallSets)
	require.NoError(t, err)
	assert.Equal(t, 4, sc.DomainSize())
	assert.Equal(t, 4, sc.Universe())

	assert.Equal(t, 4, sc.Uncovered(NewSolution(4)))
	assert.Equal(t, 2, sc.Uncovered(solutionOf(t, 4, 0)))
	assert.True(t, sc.Covers(solutionOf(t, 4, 0, 2)))
	assert.False(t, sc.Covers(solutionOf(t, 4, 1, 2)))

	tests := []struct {
		name    string
		in, out int
		sol     []int
		want    int
	}{
		{"insert covering two", 2, -1, []int{0}, -2},
		{"insert redundant", 1, -1, []int{0}, 0},
		{"remove last cover", -1, 2, []int{0, 2}, 2},
		{"remove redundant", -1, 3, []int{0, 2, 3}, 0},
		{"swap keeps cover", 3, 0, []int{0, 1, 2}, 0},
		{"swap loses cover", 1, 0, []int{0, 2}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sc.uncoveredDelta(tt.in, tt.out, solutionOf(t, 4, tt.sol...)))
		})
	}
}

func TestNewSetCoverCompactsAndValidates(t *testing.T) {
	sc, err := NewSetCover(3, [][]int{{2, 0, 2}})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, sc.Subset(0))

	_, err = NewSetCover(3, [][]int{{0, 3}})
	assert.ErrorIs(t, err, ErrInvalidInstance)
	_, err = NewSetCover(-1, nil)
	assert.ErrorIs(t, err, ErrInvalidInstance)
}

func TestSCQBFDeltasIncludePenalty(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	sc, err := NewSetCover(4, smallSets)
	require.NoError(t, err)

	for _, dir := range []Direction{Minimize, Maximize} {
		p, err := NewSCQBF(mustQBF(t, randomMatrix(rng, 4)), sc, dir)
		require.NoError(t, err)
		for _, elems := range [][]int{nil, {0}, {1, 3}, {0, 2}, {0, 1, 2, 3}} {
			checkDeltas(t, p, solutionOf(t, 4, elems...))
		}
	}
}

func TestSCQBFPenaltySign(t *testing.T) {
	sc, err := NewSetCover(4, smallSets)
	require.NoError(t, err)
	q := mustQBF(t, [][]float64{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	})

	maxP, err := NewSCQBF(q, sc, Maximize)
	require.NoError(t, err)
	minP, err := NewSCQBF(q, sc, Minimize)
	require.NoError(t, err)

	// penalty = 1 + Σ|A| = 5 per uncovered element
	empty := NewSolution(4)
	assert.Equal(t, -20.0, maxP.Evaluate(empty))
	assert.Equal(t, 20.0, minP.Evaluate(NewSolution(4)))

	covered := solutionOf(t, 4, 0, 2)
	assert.Equal(t, 2.0, maxP.Evaluate(covered))
	assert.Equal(t, 2.0, maxP.Objective(covered))
	assert.True(t, maxP.Covers(covered))
}

func TestNewSCQBFSizeMismatch(t *testing.T) {
	sc, err := NewSetCover(4, smallSets)
	require.NoError(t, err)
	_, err = NewSCQBF(mustQBF(t, [][]float64{{1}}), sc, Maximize)
	assert.ErrorIs(t, err, ErrInvalidInstance)
}

func TestSolveSCQBFCovers(t *testing.T) {
	rng := rand.New(rand.NewSource(31))
	n := 12
	sets := make([][]int, n)
	for i := range sets {
		sets[i] = []int{i, (i + 1) % n, rng.Intn(n)}
	}
	sc, err := NewSetCover(n, sets)
	require.NoError(t, err)

	for _, dir := range []Direction{Minimize, Maximize} {
		p, err := NewSCQBF(mustQBF(t, randomMatrix(rng, n)), sc, dir)
		require.NoError(t, err)

		res, err := mustOptimizer(t, p, dir, testConfig()).Solve(context.Background())
		require.NoError(t, err)
		assert.True(t, p.Covers(res.Best), "%v: %v does not cover", dir, res.Best.Sorted())
		assertLocalOptimum(t, p, dir, res.Best)
	}
}

func TestSCQBFReportsUncoveredAsInfeasible(t *testing.T) {
	sc, err := NewSetCover(4, smallSets)
	require.NoError(t, err)
	p, err := NewSCQBF(mustQBF(t, randomMatrix(rand.New(rand.NewSource(6)), 4)), sc, Maximize)
	require.NoError(t, err)

	assert.True(t, isFeasible(p, NewSolution(4)), "coverage does not filter moves")
	assert.False(t, satisfied(p, NewSolution(4)))
	assert.True(t, satisfied(p, solutionOf(t, 4, 0, 2)))

	wrapped := Constrained{Evaluator: p, Feasible: MaxSize(3)}
	assert.False(t, satisfied(wrapped, solutionOf(t, 4, 1)))
	assert.True(t, satisfied(wrapped, solutionOf(t, 4, 0, 2)))

	cfg := testConfig()
	cfg.Iterations = 0
	res, err := mustOptimizer(t, p, Maximize, cfg).Solve(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Feasible, "empty best leaves the universe uncovered")

	res, err = mustOptimizer(t, p, Maximize, testConfig()).Solve(context.Background())
	require.NoError(t, err)
	assert.True(t, p.Covers(res.Best))
	assert.True(t, res.Feasible)
}
