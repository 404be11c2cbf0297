package main

import (
	"fmt"
	"math"
	"math/rand"
)

// constructor builds one greedy-randomized solution. It owns the candidate
// list for the duration of a single build and is not reused across goroutines.
type constructor struct {
	eval Evaluator
	dir  Direction

	cl  []int // ascending, so sampling never depends on map order
	rcl []int
	sol *Solution
}

func newConstructor(eval Evaluator, dir Direction) *constructor {
	return &constructor{eval: eval, dir: dir}
}

// makeCL resets the candidate list to every domain index.
func (c *constructor) makeCL() {
	n := c.eval.DomainSize()
	c.cl = c.cl[:0]
	for i := 0; i < n; i++ {
		c.cl = append(c.cl, i)
	}
}

// updateCL drops candidates already selected or whose insertion would make
// the working solution infeasible.
func (c *constructor) updateCL() error {
	if _, ok := c.eval.(FeasibilityChecker); !ok {
		kept := c.cl[:0]
		for _, e := range c.cl {
			if !c.sol.Contains(e) {
				kept = append(kept, e)
			}
		}
		c.cl = kept
		return nil
	}

	scratch := c.sol.Clone()
	kept := c.cl[:0]
	for _, e := range c.cl {
		if scratch.Contains(e) {
			continue
		}
		if err := scratch.Add(e); err != nil {
			return err
		}
		ok := isFeasible(c.eval, scratch)
		if err := scratch.Remove(e); err != nil {
			return err
		}
		if ok {
			kept = append(kept, e)
		}
	}
	c.cl = kept
	return nil
}

// makeRCL fills the restricted candidate list for the current step. Candidates
// with non-finite deltas never enter it.
func (c *constructor) makeRCL(alpha float64) {
	c.rcl = c.rcl[:0]
	deltas := make([]float64, len(c.cl))
	minCost, maxCost := math.Inf(1), math.Inf(-1)
	for i, e := range c.cl {
		d := c.eval.InsertionCost(e, c.sol)
		deltas[i] = d
		if !finite(d) {
			continue
		}
		if d < minCost {
			minCost = d
		}
		if d > maxCost {
			maxCost = d
		}
	}
	if minCost > maxCost {
		return // no finite delta
	}

	var threshold float64
	if c.dir == Maximize {
		threshold = maxCost - alpha*(maxCost-minCost)
	} else {
		threshold = minCost + alpha*(maxCost-minCost)
	}
	for i, e := range c.cl {
		d := deltas[i]
		if !finite(d) {
			continue
		}
		if c.dir == Maximize && d >= threshold || c.dir == Minimize && d <= threshold {
			c.rcl = append(c.rcl, e)
		}
	}
}

// construct runs the greedy randomized constructive heuristic.
//
// Each step evaluates the working solution, filters the CL, samples one
// element uniformly from the RCL and inserts it. The loop stops once an
// insertion fails to strictly improve the pre-step cost; that insertion is
// undone when the reduced solution is still feasible. The returned solution
// is freshly evaluated and feasible; ending on an infeasible one is reported
// as ErrInfeasibleConstruction.
func (c *constructor) construct(alpha float64, rng *rand.Rand) (*Solution, error) {
	if alpha < 0 || alpha > 1 || math.IsNaN(alpha) {
		return nil, fmt.Errorf("construct with alpha %g: %w", alpha, ErrInvalidAlpha)
	}
	c.sol = NewSolution(c.eval.DomainSize())
	c.makeCL()
	c.rcl = c.rcl[:0]

	for {
		prev, err := evaluate(c.eval, c.sol)
		if err != nil {
			return nil, err
		}
		if err := c.updateCL(); err != nil {
			return nil, err
		}
		if len(c.cl) == 0 {
			break
		}
		c.makeRCL(alpha)
		if len(c.rcl) == 0 {
			break
		}

		in := c.rcl[rng.Intn(len(c.rcl))]
		c.removeFromCL(in)
		if err := c.sol.Add(in); err != nil {
			return nil, fmt.Errorf("insert candidate: %w", err)
		}
		cur, err := evaluate(c.eval, c.sol)
		if err != nil {
			return nil, err
		}
		c.rcl = c.rcl[:0]

		if !c.dir.Better(cur, prev) {
			c.revert(in)
			break
		}
	}

	if !c.sol.Evaluated() {
		if _, err := evaluate(c.eval, c.sol); err != nil {
			return nil, err
		}
	}
	if !isFeasible(c.eval, c.sol) {
		return nil, fmt.Errorf("%d elements selected, %d candidates left: %w",
			c.sol.Len(), len(c.cl), ErrInfeasibleConstruction)
	}
	return c.sol, nil
}

// revert undoes the last, non-improving insertion unless that would leave the
// solution infeasible.
func (c *constructor) revert(e int) {
	trial := c.sol.Clone()
	if err := trial.Remove(e); err != nil {
		return
	}
	if !isFeasible(c.eval, trial) {
		return
	}
	c.sol = trial
}

func (c *constructor) removeFromCL(e int) {
	for i, v := range c.cl {
		if v == e {
			c.cl = append(c.cl[:i], c.cl[i+1:]...)
			return
		}
	}
}
