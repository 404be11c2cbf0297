package main

// Constrained adds a feasibility predicate to an evaluator. The predicate
// must stay true when elements are removed from a feasible solution; an inner
// FeasibilityChecker, if any, is applied as well.
type Constrained struct {
	Evaluator
	Feasible func(sol *Solution) bool
}

func (c Constrained) IsFeasible(sol *Solution) bool {
	if c.Feasible != nil && !c.Feasible(sol) {
		return false
	}
	return isFeasible(c.Evaluator, sol)
}

// MaxSize limits solutions to at most k elements.
func MaxSize(k int) func(*Solution) bool {
	return func(sol *Solution) bool { return sol.Len() <= k }
}

// Satisfied forwards to the inner evaluator's reported constraint, if any.
func (c Constrained) Satisfied(sol *Solution) bool {
	if cr, ok := c.Evaluator.(ConstraintReporter); ok {
		return cr.Satisfied(sol)
	}
	return true
}
