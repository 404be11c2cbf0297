package main

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
)

// DefaultAlphaPool is the alpha pool used when none is configured.
var DefaultAlphaPool = []float64{0.1, 0.3, 0.5, 0.7, 0.9}

// AlphaSelector picks the greediness parameter for each construction and
// learns from the outcomes.
type AlphaSelector interface {
	SelectAlpha(rng *rand.Rand) float64
	RecordOutcome(alpha, cost float64) error
	// MaybeRebalance is called after iteration (0-based) completes and reports
	// whether probabilities were recomputed.
	MaybeRebalance(iteration int) bool
	Probabilities() []float64
}

// ScoreFunc maps a solution cost to a non-negative performance credit; better
// outcomes must earn more.
type ScoreFunc func(cost float64) float64

// InverseCostScore is 1/(1+cost). It assumes minimization with costs > -1;
// other costs earn nothing.
func InverseCostScore(cost float64) float64 {
	if !finite(cost) || cost <= -1 {
		return 0
	}
	return 1 / (1 + cost)
}

// PositiveCostScore credits max(cost, 0); suited to maximization.
func PositiveCostScore(cost float64) float64 {
	if !finite(cost) || cost < 0 {
		return 0
	}
	return cost
}

// DefaultScoreFunc returns the scoring function matching dir.
func DefaultScoreFunc(dir Direction) ScoreFunc {
	if dir == Maximize {
		return PositiveCostScore
	}
	return InverseCostScore
}

// FixedAlpha is the plain GRASP policy: the same alpha every iteration.
type FixedAlpha float64

func (f FixedAlpha) SelectAlpha(*rand.Rand) float64 { return float64(f) }

func (f FixedAlpha) RecordOutcome(float64, float64) error { return nil }

func (f FixedAlpha) MaybeRebalance(int) bool { return false }

func (f FixedAlpha) Probabilities() []float64 { return []float64{1} }

// ReactiveAlpha adapts the selection probabilities of an alpha pool to the
// quality of the solutions each alpha produced. Probabilities always sum to 1.
type ReactiveAlpha struct {
	pool        []float64
	probs       []float64
	performance []float64
	counts      []int

	updateFreq int
	score      ScoreFunc
	rebalances int
}

// NewReactiveAlpha validates pool and starts with uniform probabilities.
// updateFreq <= 0 disables rebalancing; a nil score uses InverseCostScore.
func NewReactiveAlpha(pool []float64, updateFreq int, score ScoreFunc) (*ReactiveAlpha, error) {
	if len(pool) == 0 {
		return nil, fmt.Errorf("empty pool: %w", ErrInvalidAlphaPool)
	}
	for i, a := range pool {
		if math.IsNaN(a) || a < 0 || a > 1 {
			return nil, fmt.Errorf("alpha %g: %w", a, ErrInvalidAlphaPool)
		}
		if slices.Contains(pool[:i], a) {
			return nil, fmt.Errorf("duplicate alpha %g: %w", a, ErrInvalidAlphaPool)
		}
	}
	if score == nil {
		score = InverseCostScore
	}
	r := &ReactiveAlpha{
		pool:        slices.Clone(pool),
		probs:       make([]float64, len(pool)),
		performance: make([]float64, len(pool)),
		counts:      make([]int, len(pool)),
		updateFreq:  updateFreq,
		score:       score,
	}
	r.resetUniform()
	return r, nil
}

func (r *ReactiveAlpha) resetUniform() {
	p := 1 / float64(len(r.pool))
	for i := range r.probs {
		r.probs[i] = p
	}
}

// SelectAlpha draws an alpha with the current probability distribution.
func (r *ReactiveAlpha) SelectAlpha(rng *rand.Rand) float64 {
	x := rng.Float64()
	acc := 0.0
	for i, p := range r.probs {
		acc += p
		if x < acc {
			return r.pool[i]
		}
	}
	// x landed in the rounding gap above the last cumulative sum.
	for i := len(r.probs) - 1; i >= 0; i-- {
		if r.probs[i] > 0 {
			return r.pool[i]
		}
	}
	return r.pool[len(r.pool)-1]
}

// RecordOutcome credits alpha with the score of cost.
func (r *ReactiveAlpha) RecordOutcome(alpha, cost float64) error {
	i := slices.Index(r.pool, alpha)
	if i < 0 {
		return fmt.Errorf("alpha %g: %w", alpha, ErrUnknownAlpha)
	}
	s := r.score(cost)
	if !finite(s) || s < 0 {
		s = 0
	}
	r.performance[i] += s
	r.counts[i]++
	return nil
}

// MaybeRebalance renormalizes probabilities from the accumulated performance
// every updateFreq iterations, falling back to uniform when nothing scored,
// then clears the accumulators.
func (r *ReactiveAlpha) MaybeRebalance(iteration int) bool {
	if r.updateFreq <= 0 || (iteration+1)%r.updateFreq != 0 {
		return false
	}
	total := 0.0
	for _, p := range r.performance {
		total += p
	}
	if total > 0 && finite(total) {
		for i, p := range r.performance {
			r.probs[i] = p / total
		}
	} else {
		r.resetUniform()
	}
	for i := range r.performance {
		r.performance[i] = 0
		r.counts[i] = 0
	}
	r.rebalances++
	return true
}

func (r *ReactiveAlpha) Pool() []float64 { return slices.Clone(r.pool) }

func (r *ReactiveAlpha) Probabilities() []float64 { return slices.Clone(r.probs) }

// Counts returns how often each alpha was used in the current window.
func (r *ReactiveAlpha) Counts() []int { return slices.Clone(r.counts) }

func (r *ReactiveAlpha) Rebalances() int { return r.rebalances }
