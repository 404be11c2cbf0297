package main

import "fmt"

// SCQBF is a QBF whose selected variables, read as subsets, must cover a
// universe. Coverage is priced into the objective: every uncovered element
// costs more than any change of the QBF term can gain, so construction keeps
// adding subsets until the universe is covered and local search never trades
// coverage for objective value.
type SCQBF struct {
	qbf     *QBF
	sc      *SetCover
	dir     Direction
	penalty float64
}

// NewSCQBF pairs a QBF with a set cover over the same n variables.
func NewSCQBF(q *QBF, sc *SetCover, dir Direction) (*SCQBF, error) {
	if q.DomainSize() != sc.DomainSize() {
		return nil, fmt.Errorf("QBF has %d variables, set cover %d subsets: %w",
			q.DomainSize(), sc.DomainSize(), ErrInvalidInstance)
	}
	return &SCQBF{qbf: q, sc: sc, dir: dir, penalty: 1 + q.absSum()}, nil
}

func (p *SCQBF) DomainSize() int { return p.qbf.DomainSize() }

// signedPenalty turns a change in uncovered elements into a cost change.
func (p *SCQBF) signedPenalty(uncovered int) float64 {
	if p.dir == Maximize {
		return -p.penalty * float64(uncovered)
	}
	return p.penalty * float64(uncovered)
}

func (p *SCQBF) Evaluate(sol *Solution) float64 {
	v := p.qbf.value(sol) + p.signedPenalty(p.sc.Uncovered(sol))
	sol.SetCost(v)
	return v
}

func (p *SCQBF) InsertionCost(elem int, sol *Solution) float64 {
	if sol.Contains(elem) {
		return 0
	}
	return p.qbf.InsertionCost(elem, sol) + p.signedPenalty(p.sc.uncoveredDelta(elem, -1, sol))
}

func (p *SCQBF) RemovalCost(elem int, sol *Solution) float64 {
	if !sol.Contains(elem) {
		return 0
	}
	return p.qbf.RemovalCost(elem, sol) + p.signedPenalty(p.sc.uncoveredDelta(-1, elem, sol))
}

func (p *SCQBF) ExchangeCost(elemIn, elemOut int, sol *Solution) float64 {
	if elemIn == elemOut {
		return 0
	}
	return p.qbf.ExchangeCost(elemIn, elemOut, sol) + p.signedPenalty(p.sc.uncoveredDelta(elemIn, elemOut, sol))
}

// Covers reports whether sol covers the universe.
func (p *SCQBF) Covers(sol *Solution) bool { return p.sc.Covers(sol) }

// Satisfied reports coverage so uncovered results are not called feasible.
func (p *SCQBF) Satisfied(sol *Solution) bool { return p.sc.Covers(sol) }

// Objective returns the bare QBF value of sol, without coverage penalty.
func (p *SCQBF) Objective(sol *Solution) float64 { return p.qbf.value(sol) }
