package main

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Solution is an ordered, duplicate-free selection of element indices in
// [0, domainSize) with a cached cost. The cost is only meaningful while
// Evaluated() is true; any mutation marks it stale.
type Solution struct {
	elems     []int
	in        []bool
	cost      float64
	evaluated bool
}

// NewSolution returns an empty solution over a domain of n elements.
func NewSolution(n int) *Solution {
	if n < 0 {
		n = 0
	}
	return &Solution{
		in:   make([]bool, n),
		cost: math.Inf(1),
	}
}

func (s *Solution) DomainSize() int { return len(s.in) }

func (s *Solution) Len() int { return len(s.elems) }

// Contains reports membership; out-of-range indices are never members.
func (s *Solution) Contains(e int) bool {
	return e >= 0 && e < len(s.in) && s.in[e]
}

func (s *Solution) check(e int) error {
	if e < 0 || e >= len(s.in) {
		return fmt.Errorf("element %d, domain size %d: %w", e, len(s.in), ErrElementOutOfRange)
	}
	return nil
}

// Add appends e to the selection.
func (s *Solution) Add(e int) error {
	if err := s.check(e); err != nil {
		return err
	}
	if s.in[e] {
		return fmt.Errorf("element %d: %w", e, ErrDuplicateElement)
	}
	s.in[e] = true
	s.elems = append(s.elems, e)
	s.evaluated = false
	return nil
}

// Remove drops e, keeping the order of the remaining elements.
func (s *Solution) Remove(e int) error {
	if err := s.check(e); err != nil {
		return err
	}
	if !s.in[e] {
		return fmt.Errorf("element %d: %w", e, ErrElementNotFound)
	}
	i := slices.Index(s.elems, e)
	s.elems = slices.Delete(s.elems, i, i+1)
	s.in[e] = false
	s.evaluated = false
	return nil
}

// Exchange replaces out with in at the same position.
func (s *Solution) Exchange(in, out int) error {
	if err := s.check(in); err != nil {
		return err
	}
	if err := s.check(out); err != nil {
		return err
	}
	if !s.in[out] {
		return fmt.Errorf("element %d: %w", out, ErrElementNotFound)
	}
	if s.in[in] {
		return fmt.Errorf("element %d: %w", in, ErrDuplicateElement)
	}
	s.elems[slices.Index(s.elems, out)] = in
	s.in[out] = false
	s.in[in] = true
	s.evaluated = false
	return nil
}

// Elements returns a copy of the selection in insertion order.
func (s *Solution) Elements() []int { return slices.Clone(s.elems) }

// Sorted returns the selection in ascending order.
func (s *Solution) Sorted() []int {
	out := slices.Clone(s.elems)
	slices.Sort(out)
	return out
}

// Each calls fn for every selected element in insertion order. fn must not
// mutate s.
func (s *Solution) Each(fn func(e int)) {
	for _, e := range s.elems {
		fn(e)
	}
}

func (s *Solution) Cost() float64 { return s.cost }

// SetCost records a fresh full evaluation.
func (s *Solution) SetCost(c float64) {
	s.cost = c
	s.evaluated = true
}

// Evaluated reports whether Cost reflects the current selection.
func (s *Solution) Evaluated() bool { return s.evaluated }

// Clone returns a deep, independent copy.
func (s *Solution) Clone() *Solution {
	return &Solution{
		elems:     slices.Clone(s.elems),
		in:        slices.Clone(s.in),
		cost:      s.cost,
		evaluated: s.evaluated,
	}
}

func (s *Solution) String() string {
	parts := make([]string, len(s.elems))
	for i, e := range s.elems {
		parts[i] = fmt.Sprint(e)
	}
	return fmt.Sprintf("Solution: cost=[%g], size=[%d], elements=[%s]",
		s.cost, len(s.elems), strings.Join(parts, ", "))
}

// fingerprint identifies the selected set regardless of order.
func (s *Solution) fingerprint() string {
	buf := make([]byte, 0, len(s.in))
	for _, v := range s.in {
		if v {
			buf = append(buf, '1')
		} else {
			buf = append(buf, '0')
		}
	}
	return string(buf)
}
