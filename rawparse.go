package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ParseInstanceJSON reads an instance document:
//
//	{"name": "...", "problem": "qbf" | "sc-qbf", "maximize": true,
//	 "matrix": [[...], ...] | "upper": [[...], ...],
//	 "universe": m, "sets": [[...], ...], "max_size": k}
//
// "upper" rows hold the upper triangle, row i starting at the diagonal.
// "direction" ("min"/"max") may be used instead of "maximize".
func ParseInstanceJSON(doc string) (*Instance, error) {
	if !gjson.Valid(doc) {
		return nil, fmt.Errorf("malformed JSON: %w", ErrInvalidInstance)
	}
	root := gjson.Parse(doc)
	in := &Instance{Name: root.Get("name").String()}

	switch {
	case root.Get("direction").Exists():
		dir, err := ParseDirection(root.Get("direction").String())
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, ErrInvalidInstance)
		}
		in.Direction = dir
	case root.Get("maximize").Bool():
		in.Direction = Maximize
	}

	var err error
	switch {
	case root.Get("matrix").IsArray():
		in.Matrix, err = readFloatRows(root.Get("matrix"))
	case root.Get("upper").IsArray():
		var upper [][]float64
		if upper, err = readFloatRows(root.Get("upper")); err == nil {
			in.Matrix, err = expandUpper(upper)
		}
	default:
		err = fmt.Errorf("missing matrix or upper: %w", ErrInvalidInstance)
	}
	if err != nil {
		return nil, err
	}
	if n := root.Get("n"); n.Exists() && int(n.Int()) != len(in.Matrix) {
		return nil, fmt.Errorf("n=%d but matrix has %d rows: %w", n.Int(), len(in.Matrix), ErrInvalidInstance)
	}

	sets := root.Get("sets")
	in.Problem = Problem(strings.ToLower(root.Get("problem").String()))
	if in.Problem == "" {
		in.Problem = ProblemQBF
		if sets.Exists() {
			in.Problem = ProblemSCQBF
		}
	}
	if in.Problem == ProblemSCQBF {
		sets.ForEach(func(_, s gjson.Result) bool {
			var subset []int
			s.ForEach(func(_, e gjson.Result) bool {
				subset = append(subset, int(e.Int()))
				return true
			})
			in.Sets = append(in.Sets, subset)
			return true
		})
		in.Universe = len(in.Matrix)
		if u := root.Get("universe"); u.Exists() {
			in.Universe = int(u.Int())
		}
	}
	in.MaxSize = int(root.Get("max_size").Int())
	return in, nil
}

func readFloatRows(v gjson.Result) ([][]float64, error) {
	var rows [][]float64
	var bad error
	v.ForEach(func(i, r gjson.Result) bool {
		if !r.IsArray() {
			bad = fmt.Errorf("row %d is not an array: %w", i.Int(), ErrInvalidInstance)
			return false
		}
		row := make([]float64, 0, len(r.Array()))
		r.ForEach(func(_, x gjson.Result) bool {
			row = append(row, x.Float())
			return true
		})
		rows = append(rows, row)
		return true
	})
	return rows, bad
}

// expandUpper turns upper-triangular rows into a full matrix with a zero
// lower triangle.
func expandUpper(upper [][]float64) ([][]float64, error) {
	n := len(upper)
	a := make([][]float64, n)
	for i, row := range upper {
		if len(row) != n-i {
			return nil, fmt.Errorf("upper row %d has %d values, want %d: %w", i, len(row), n-i, ErrInvalidInstance)
		}
		a[i] = make([]float64, n)
		copy(a[i][i:], row)
	}
	return a, nil
}

// ParseInstanceText reads the whitespace-separated course format:
//
//	n
//	[s_1 ... s_n]            subset sizes (sc-qbf only)
//	[subset lines, 1-based]  n lines (sc-qbf only)
//	upper-triangular rows    n lines, row i holding n-i+1 values
//
// Files holding exactly n(n+1)/2 values after n are plain QBF; anything else
// is read as SC-QBF over the universe {1..n}. Text instances are maximized.
func ParseInstanceText(doc string) (*Instance, error) {
	tok := strings.Fields(doc)
	if len(tok) == 0 {
		return nil, fmt.Errorf("empty instance: %w", ErrInvalidInstance)
	}
	pos := 0
	nextInt := func() (int, error) {
		if pos >= len(tok) {
			return 0, fmt.Errorf("unexpected end of input: %w", ErrInvalidInstance)
		}
		v, err := strconv.Atoi(tok[pos])
		if err != nil {
			return 0, fmt.Errorf("token %d %q: %w", pos, tok[pos], ErrInvalidInstance)
		}
		pos++
		return v, nil
	}
	nextFloat := func() (float64, error) {
		if pos >= len(tok) {
			return 0, fmt.Errorf("unexpected end of input: %w", ErrInvalidInstance)
		}
		v, err := strconv.ParseFloat(tok[pos], 64)
		if err != nil {
			return 0, fmt.Errorf("token %d %q: %w", pos, tok[pos], ErrInvalidInstance)
		}
		pos++
		return v, nil
	}

	n, err := nextInt()
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("n=%d: %w", n, ErrInvalidInstance)
	}
	in := &Instance{Problem: ProblemQBF, Direction: Maximize}

	if len(tok)-1 != n*(n+1)/2 {
		in.Problem = ProblemSCQBF
		in.Universe = n
		sizes := make([]int, n)
		for i := range sizes {
			if sizes[i], err = nextInt(); err != nil {
				return nil, err
			}
		}
		in.Sets = make([][]int, n)
		for i, sz := range sizes {
			subset := make([]int, 0, sz)
			for k := 0; k < sz; k++ {
				e, err := nextInt()
				if err != nil {
					return nil, err
				}
				subset = append(subset, e-1)
			}
			in.Sets[i] = subset
		}
	}

	upper := make([][]float64, n)
	for i := range upper {
		upper[i] = make([]float64, n-i)
		for j := range upper[i] {
			if upper[i][j], err = nextFloat(); err != nil {
				return nil, err
			}
		}
	}
	if pos != len(tok) {
		return nil, fmt.Errorf("%d trailing tokens: %w", len(tok)-pos, ErrInvalidInstance)
	}
	if in.Matrix, err = expandUpper(upper); err != nil {
		return nil, err
	}
	return in, nil
}
