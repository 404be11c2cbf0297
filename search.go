package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ── Optimizer ───────────────────────────────────────────────────────

// Optimizer runs GRASP: repeated greedy-randomized construction followed by
// first-improvement local search, keeping the best feasible solution found.
type Optimizer struct {
	eval Evaluator
	dir  Direction
	cfg  Config

	name    string
	log     *slog.Logger
	metrics *Metrics
	score   ScoreFunc
}

// Option customizes an Optimizer.
type Option func(*Optimizer)

// WithLogger sets the progress logger; the default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *Optimizer) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics reports solver metrics to m.
func WithMetrics(m *Metrics) Option {
	return func(o *Optimizer) { o.metrics = m }
}

// WithName labels logs and metrics with an instance name.
func WithName(name string) Option {
	return func(o *Optimizer) { o.name = name }
}

// WithScoreFunc replaces the reactive controller's scoring function.
func WithScoreFunc(f ScoreFunc) Option {
	return func(o *Optimizer) { o.score = f }
}

// NewOptimizer validates cfg and binds it to eval.
func NewOptimizer(eval Evaluator, dir Direction, cfg Config, opts ...Option) (*Optimizer, error) {
	if eval == nil {
		return nil, ErrNilEvaluator
	}
	if eval.DomainSize() < 0 {
		return nil, fmt.Errorf("negative domain size %d: %w", eval.DomainSize(), ErrDomainMismatch)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &Optimizer{
		eval: eval,
		dir:  dir,
		cfg:  cfg,
		name: "default",
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

func (o *Optimizer) newSelector() (AlphaSelector, error) {
	if o.cfg.Reactive && o.score != nil {
		return NewReactiveAlpha(o.cfg.AlphaPool, o.cfg.UpdateFrequency, o.score)
	}
	return o.cfg.alphaSelector(o.dir)
}

// ── Result ──────────────────────────────────────────────────────────

// StopReason tells why Solve returned.
type StopReason string

const (
	StopBudget    StopReason = "budget"
	StopTimeLimit StopReason = "time_limit"
	StopCanceled  StopReason = "canceled"
)

// Result is the outcome of one Solve call.
type Result struct {
	RunID string
	Best  *Solution
	// Feasible is false when no feasible solution was ever found or when Best
	// violates a constraint the evaluator reports through ConstraintReporter.
	Feasible     bool
	Iterations   int
	Improvements int
	// History holds the incumbent cost after each iteration.
	History            []float64
	AlphaProbabilities []float64
	Rebalances         int
	// Distinct counts different local optima reached.
	Distinct int
	Elapsed  time.Duration
	Stopped  StopReason
}

// ── Iteration ───────────────────────────────────────────────────────

type iterationOutcome struct {
	alpha       float64
	constructed int
	sol         *Solution
	feasible    bool
	moves       [3]int
}

// runIteration builds and refines one solution. Everything it touches besides
// the read-only evaluator is owned by this call, so iterations may run
// concurrently.
func (o *Optimizer) runIteration(iteration int, alpha float64) (iterationOutcome, error) {
	rng := iterationRNG(o.cfg.Seed, iteration)
	built, err := newConstructor(o.eval, o.dir).construct(alpha, rng)
	if err != nil {
		return iterationOutcome{}, fmt.Errorf("construct: %w", err)
	}
	ls := newLocalSearch(o.eval, o.dir, o.cfg.Epsilon, o.cfg.MaxLocalMoves)
	sol, err := ls.improve(built)
	if err != nil {
		return iterationOutcome{}, fmt.Errorf("local search: %w", err)
	}
	return iterationOutcome{
		alpha:       alpha,
		constructed: built.Len(),
		sol:         sol,
		feasible:    isFeasible(o.eval, sol),
		moves:       ls.moves,
	}, nil
}

func (o *Optimizer) stopReason(ctx context.Context, start time.Time) StopReason {
	if ctx.Err() != nil {
		return StopCanceled
	}
	if o.cfg.TimeLimit > 0 && time.Since(start) >= o.cfg.TimeLimit {
		return StopTimeLimit
	}
	return ""
}

// ── Main entry point ────────────────────────────────────────────────

// Solve runs the configured number of iterations and returns the incumbent.
// Cancellation and the time limit are honored between iterations only.
func (o *Optimizer) Solve(ctx context.Context) (Result, error) {
	start := time.Now()
	res := Result{RunID: uuid.NewString(), Stopped: StopBudget}
	log := o.log.With("run_id", res.RunID, "instance", o.name)

	selector, err := o.newSelector()
	if err != nil {
		return Result{}, err
	}

	best := NewSolution(o.eval.DomainSize())
	if _, err := evaluate(o.eval, best); err != nil {
		return Result{}, err
	}
	res.Feasible = isFeasible(o.eval, best)
	bestCost := best.Cost()
	if !res.Feasible {
		bestCost = o.dir.Worst()
	}

	if ra, ok := selector.(*ReactiveAlpha); ok {
		o.metrics.setAlphaProbabilities(o.name, ra.Pool(), ra.Probabilities())
	}
	log.Info("solve started",
		"n", o.eval.DomainSize(), "direction", o.dir.String(),
		"iterations", o.cfg.Iterations, "workers", o.cfg.Workers, "reactive", o.cfg.Reactive)

	alphaRNG := rngFromSeed(deriveSeed(o.cfg.Seed, math.MaxUint64))
	seen := make(map[string]bool)

	for i := 0; i < o.cfg.Iterations; {
		if reason := o.stopReason(ctx, start); reason != "" {
			res.Stopped = reason
			break
		}

		batch := min(o.cfg.Workers, o.cfg.Iterations-i)
		alphas := make([]float64, batch)
		for b := range alphas {
			alphas[b] = selector.SelectAlpha(alphaRNG)
		}

		outcomes := make([]iterationOutcome, batch)
		if batch == 1 {
			outcomes[0], err = o.runIteration(i, alphas[0])
		} else {
			var g errgroup.Group
			for b := 0; b < batch; b++ {
				g.Go(func() error {
					out, err := o.runIteration(i+b, alphas[b])
					outcomes[b] = out
					return err
				})
			}
			err = g.Wait()
		}
		if err != nil {
			return Result{}, fmt.Errorf("iteration %d: %w", i, err)
		}

		// single writer: fold the batch in iteration order
		for b, out := range outcomes {
			it := i + b
			cost := out.sol.Cost()
			improved := out.feasible && o.dir.Better(cost, bestCost)
			if improved {
				best = out.sol.Clone()
				bestCost = cost
				res.Feasible = true
				res.Improvements++
				log.Info("incumbent improved",
					"iteration", it, "cost", cost, "size", best.Len(), "alpha", out.alpha)
			}
			res.History = append(res.History, bestCost)
			seen[out.sol.fingerprint()] = true

			if err := selector.RecordOutcome(out.alpha, cost); err != nil {
				return Result{}, fmt.Errorf("iteration %d: %w", it, err)
			}
			if selector.MaybeRebalance(it) {
				res.Rebalances++
				if ra, ok := selector.(*ReactiveAlpha); ok {
					o.metrics.observeRebalance(o.name, ra.Pool(), ra.Probabilities())
				}
				log.Debug("alpha probabilities rebalanced",
					"iteration", it, "probabilities", selector.Probabilities())
			}
			o.metrics.observeIteration(o.name, out.constructed, out.moves, improved)
			res.Iterations++
		}
		i += batch
	}

	res.Best = best
	if !satisfied(o.eval, best) {
		res.Feasible = false
	}
	res.AlphaProbabilities = selector.Probabilities()
	res.Distinct = len(seen)
	res.Elapsed = time.Since(start)
	log.Info("solve finished",
		"best", best.Cost(), "size", best.Len(), "feasible", res.Feasible,
		"iterations", res.Iterations, "stopped", string(res.Stopped), "elapsed", res.Elapsed)
	return res, nil
}
