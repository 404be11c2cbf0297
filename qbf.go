package main

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// QBF evaluates the quadratic binary function f(x) = xᵀAx, where x is the
// 0/1 indicator vector of a solution. It keeps no per-call state and is safe
// for concurrent use.
type QBF struct {
	n int
	a *mat.Dense
}

// NewQBF copies the square coefficient matrix a.
func NewQBF(a [][]float64) (*QBF, error) {
	n := len(a)
	if n == 0 {
		return nil, fmt.Errorf("empty matrix: %w", ErrInvalidInstance)
	}
	data := make([]float64, 0, n*n)
	for i, row := range a {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(row), n, ErrInvalidInstance)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("coefficient (%d,%d) = %v: %w", i, j, v, ErrInvalidInstance)
			}
		}
		data = append(data, row...)
	}
	return &QBF{n: n, a: mat.NewDense(n, n, data)}, nil
}

// NewQBFFromUpper builds A from its upper triangle; row i holds n-i values
// starting at the diagonal. The lower triangle stays zero, as in the
// MAX-QBF course instance files.
func NewQBFFromUpper(upper [][]float64) (*QBF, error) {
	a, err := expandUpper(upper)
	if err != nil {
		return nil, err
	}
	return NewQBF(a)
}

func (q *QBF) DomainSize() int { return q.n }

// Matrix exposes the coefficients read-only.
func (q *QBF) Matrix() mat.Matrix { return q.a }

func (q *QBF) indicator(sol *Solution) *mat.VecDense {
	x := mat.NewVecDense(q.n, nil)
	sol.Each(func(e int) { x.SetVec(e, 1) })
	return x
}

// value computes xᵀAx without touching sol's cached cost.
func (q *QBF) value(sol *Solution) float64 {
	if sol.Len() == 0 {
		return 0
	}
	x := q.indicator(sol)
	return mat.Inner(x, q.a, x)
}

func (q *QBF) Evaluate(sol *Solution) float64 {
	v := q.value(sol)
	sol.SetCost(v)
	return v
}

// contribution is the change in f from switching element i on given the
// other selected elements.
func (q *QBF) contribution(i int, sol *Solution) float64 {
	total := q.a.At(i, i)
	sol.Each(func(j int) {
		if j != i {
			total += q.a.At(i, j) + q.a.At(j, i)
		}
	})
	return total
}

func (q *QBF) InsertionCost(elem int, sol *Solution) float64 {
	if sol.Contains(elem) {
		return 0
	}
	return q.contribution(elem, sol)
}

func (q *QBF) RemovalCost(elem int, sol *Solution) float64 {
	if !sol.Contains(elem) {
		return 0
	}
	return -q.contribution(elem, sol)
}

// ExchangeCost adds the contribution of elemIn, removes that of elemOut and
// corrects for their interaction, which the first term counted although
// elemOut leaves.
func (q *QBF) ExchangeCost(elemIn, elemOut int, sol *Solution) float64 {
	if elemIn == elemOut {
		return 0
	}
	if sol.Contains(elemIn) {
		return q.RemovalCost(elemOut, sol)
	}
	if !sol.Contains(elemOut) {
		return q.InsertionCost(elemIn, sol)
	}
	total := q.contribution(elemIn, sol)
	total -= q.contribution(elemOut, sol)
	total -= q.a.At(elemIn, elemOut) + q.a.At(elemOut, elemIn)
	return total
}

// absSum returns Σ|A_ij|, a bound on any change of f.
func (q *QBF) absSum() float64 {
	s := 0.0
	r, c := q.a.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			s += math.Abs(q.a.At(i, j))
		}
	}
	return s
}
