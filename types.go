package main

import (
	"fmt"
	"math"
	"strings"
)

// Direction selects whether lower or higher costs are better.
type Direction int

const (
	Minimize Direction = iota
	Maximize
)

func (d Direction) String() string {
	if d == Maximize {
		return "maximize"
	}
	return "minimize"
}

// ParseDirection accepts "min", "minimize", "max" or "maximize" (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "min", "minimize":
		return Minimize, nil
	case "max", "maximize":
		return Maximize, nil
	}
	return Minimize, fmt.Errorf("unknown direction %q", s)
}

// Worst returns the cost every real cost improves on.
func (d Direction) Worst() float64 {
	if d == Maximize {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// Better reports whether a strictly improves on b.
func (d Direction) Better(a, b float64) bool {
	if d == Maximize {
		return a > b
	}
	return a < b
}

// improves reports whether a beats b by more than eps. A delta-style check:
// for deltas pass b=0.
func (d Direction) improves(a, b, eps float64) bool {
	if d == Maximize {
		return a > b+eps
	}
	return a < b-eps
}

// Evaluator is the objective oracle consumed by construction and local search.
//
// Evaluate must cache the value on sol via SetCost. Delta methods report the
// cost change of the move and must be defined even for moves that would be
// infeasible; feasibility is checked separately through FeasibilityChecker.
type Evaluator interface {
	DomainSize() int
	Evaluate(sol *Solution) float64
	InsertionCost(elem int, sol *Solution) float64
	RemovalCost(elem int, sol *Solution) float64
	ExchangeCost(elemIn, elemOut int, sol *Solution) float64
}

// FeasibilityChecker is implemented by evaluators with side constraints.
// Evaluators without it accept every solution.
type FeasibilityChecker interface {
	IsFeasible(sol *Solution) bool
}

// ConstraintReporter is implemented by evaluators that price a hard
// constraint into the objective instead of rejecting moves. Satisfied does
// not steer the search; it only decides whether a result is reported feasible.
type ConstraintReporter interface {
	Satisfied(sol *Solution) bool
}

// satisfied combines the feasibility predicate with any reported constraint.
func satisfied(eval Evaluator, sol *Solution) bool {
	if !isFeasible(eval, sol) {
		return false
	}
	if cr, ok := eval.(ConstraintReporter); ok {
		return cr.Satisfied(sol)
	}
	return true
}

func isFeasible(eval Evaluator, sol *Solution) bool {
	if fc, ok := eval.(FeasibilityChecker); ok {
		return fc.IsFeasible(sol)
	}
	return true
}

// evaluate runs a full evaluation and rejects NaN.
func evaluate(eval Evaluator, sol *Solution) (float64, error) {
	if eval.DomainSize() != sol.DomainSize() {
		return 0, fmt.Errorf("evaluator has %d elements, solution %d: %w",
			eval.DomainSize(), sol.DomainSize(), ErrDomainMismatch)
	}
	c := eval.Evaluate(sol)
	if math.IsNaN(c) {
		return 0, fmt.Errorf("evaluate %v: %w", sol.Elements(), ErrInvalidCost)
	}
	sol.SetCost(c)
	return c, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
