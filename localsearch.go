package main

import "fmt"

// Neighborhood names a local search move type.
type Neighborhood int

const (
	NeighborhoodRemoval Neighborhood = iota
	NeighborhoodExchange
	NeighborhoodInsertion
)

func (n Neighborhood) String() string {
	switch n {
	case NeighborhoodRemoval:
		return "removal"
	case NeighborhoodExchange:
		return "exchange"
	case NeighborhoodInsertion:
		return "insertion"
	}
	return "unknown"
}

// localSearch is a first-improvement hill climber over removal, exchange and
// insertion moves, tried in that order each round.
type localSearch struct {
	eval     Evaluator
	dir      Direction
	eps      float64
	maxMoves int // 0 = until local optimum

	// moves counts accepted moves per neighborhood for the last improve call.
	moves [3]int
}

func newLocalSearch(eval Evaluator, dir Direction, eps float64, maxMoves int) *localSearch {
	return &localSearch{eval: eval, dir: dir, eps: eps, maxMoves: maxMoves}
}

// improve climbs from sol to a local optimum and returns it. sol itself is
// left untouched; the result is a distinct, evaluated solution.
func (ls *localSearch) improve(sol *Solution) (*Solution, error) {
	ls.moves = [3]int{}
	best := sol.Clone()
	if _, err := evaluate(ls.eval, best); err != nil {
		return nil, err
	}

	accepted := 0
	for ls.maxMoves == 0 || accepted < ls.maxMoves {
		next, nb, err := ls.firstImprovement(best)
		if err != nil {
			return nil, err
		}
		if next == nil {
			break
		}
		best = next
		ls.moves[nb]++
		accepted++
	}
	return best, nil
}

// firstImprovement scans the neighborhoods of cur in priority order and
// returns the first strictly improving feasible neighbor, or nil at a local
// optimum.
func (ls *localSearch) firstImprovement(cur *Solution) (*Solution, Neighborhood, error) {
	elems := cur.Elements()
	n := ls.eval.DomainSize()

	for _, out := range elems {
		if !ls.dir.improves(ls.eval.RemovalCost(out, cur), 0, ls.eps) {
			continue
		}
		next, err := ls.try(cur, func(s *Solution) error { return s.Remove(out) })
		if err != nil {
			return nil, 0, err
		}
		if next != nil {
			return next, NeighborhoodRemoval, nil
		}
	}

	for _, out := range elems {
		for in := 0; in < n; in++ {
			if cur.Contains(in) {
				continue
			}
			if !ls.dir.improves(ls.eval.ExchangeCost(in, out, cur), 0, ls.eps) {
				continue
			}
			next, err := ls.try(cur, func(s *Solution) error { return s.Exchange(in, out) })
			if err != nil {
				return nil, 0, err
			}
			if next != nil {
				return next, NeighborhoodExchange, nil
			}
		}
	}

	for in := 0; in < n; in++ {
		if cur.Contains(in) {
			continue
		}
		if !ls.dir.improves(ls.eval.InsertionCost(in, cur), 0, ls.eps) {
			continue
		}
		next, err := ls.try(cur, func(s *Solution) error { return s.Add(in) })
		if err != nil {
			return nil, 0, err
		}
		if next != nil {
			return next, NeighborhoodInsertion, nil
		}
	}
	return nil, 0, nil
}

// try applies move to a scratch copy of cur and returns the copy when it is
// feasible and its full cost strictly improves on cur's.
func (ls *localSearch) try(cur *Solution, move func(*Solution) error) (*Solution, error) {
	scratch := cur.Clone()
	if err := move(scratch); err != nil {
		return nil, fmt.Errorf("local search move: %w", err)
	}
	if !isFeasible(ls.eval, scratch) {
		return nil, nil
	}
	c, err := evaluate(ls.eval, scratch)
	if err != nil {
		return nil, err
	}
	if !ls.dir.improves(c, cur.Cost(), ls.eps) {
		return nil, nil
	}
	return scratch, nil
}
