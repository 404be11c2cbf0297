package main

import (
	"fmt"
	"slices"
)

// SetCover tracks which universe elements {0..m-1} the selected subsets cover.
type SetCover struct {
	universe int
	sets     [][]int
}

// NewSetCover validates that every subset element lies in [0, universe).
// Duplicate entries within a subset are collapsed.
func NewSetCover(universe int, sets [][]int) (*SetCover, error) {
	if universe < 0 {
		return nil, fmt.Errorf("negative universe %d: %w", universe, ErrInvalidInstance)
	}
	cp := make([][]int, len(sets))
	for i, s := range sets {
		for _, e := range s {
			if e < 0 || e >= universe {
				return nil, fmt.Errorf("subset %d element %d outside universe of %d: %w", i, e, universe, ErrInvalidInstance)
			}
		}
		cp[i] = slices.Compact(slices.Sorted(slices.Values(s)))
	}
	return &SetCover{universe: universe, sets: cp}, nil
}

func (sc *SetCover) DomainSize() int { return len(sc.sets) }

func (sc *SetCover) Universe() int { return sc.universe }

// Subset returns a copy of subset i.
func (sc *SetCover) Subset(i int) []int { return slices.Clone(sc.sets[i]) }

// counts returns how many selected subsets cover each universe element.
func (sc *SetCover) counts(sol *Solution) []int {
	c := make([]int, sc.universe)
	sol.Each(func(s int) {
		for _, e := range sc.sets[s] {
			c[e]++
		}
	})
	return c
}

// Uncovered returns the number of universe elements no selected subset covers.
func (sc *SetCover) Uncovered(sol *Solution) int {
	u := 0
	for _, v := range sc.counts(sol) {
		if v == 0 {
			u++
		}
	}
	return u
}

// Covers reports whether sol covers the whole universe.
func (sc *SetCover) Covers(sol *Solution) bool { return sc.Uncovered(sol) == 0 }

// uncoveredDelta is the change in uncovered elements when in is added and
// out removed; pass -1 to skip either side.
func (sc *SetCover) uncoveredDelta(in, out int, sol *Solution) int {
	c := sc.counts(sol)
	delta := 0
	if out >= 0 && sol.Contains(out) {
		for _, e := range sc.sets[out] {
			c[e]--
			if c[e] == 0 {
				delta++
			}
		}
	}
	if in >= 0 && !sol.Contains(in) {
		for _, e := range sc.sets[in] {
			if c[e] == 0 {
				delta--
			}
			c[e]++
		}
	}
	return delta
}
