package main

import (
	"fmt"
	"strings"
)

// SolveReport is the JSON-serializable summary of one instance run.
type SolveReport struct {
	Name       string    `json:"name"`
	Problem    Problem   `json:"problem"`
	Direction  string    `json:"direction"`
	N          int       `json:"n"`
	RunID      string    `json:"runId"`
	Cost       float64   `json:"cost"`
	Elements   []int     `json:"elements"`
	Feasible   bool      `json:"feasible"`
	Covered    *bool     `json:"covered,omitempty"`
	Iterations int       `json:"iterations"`
	Improved   int       `json:"improvements"`
	Distinct   int       `json:"distinctOptima"`
	AlphaProbs []float64 `json:"alphaProbabilities,omitempty"`
	Stopped    string    `json:"stopped"`
	TimeMs     int64     `json:"timeMs"`
}

// NewSolveReport summarizes res for in.
func NewSolveReport(in *Instance, res Result) SolveReport {
	r := SolveReport{
		Name:       in.Name,
		Problem:    in.Problem,
		Direction:  in.Direction.String(),
		N:          in.N(),
		RunID:      res.RunID,
		Feasible:   res.Feasible,
		Iterations: res.Iterations,
		Improved:   res.Improvements,
		Distinct:   res.Distinct,
		AlphaProbs: res.AlphaProbabilities,
		Stopped:    string(res.Stopped),
		TimeMs:     res.Elapsed.Milliseconds(),
	}
	if res.Best != nil {
		r.Cost = res.Best.Cost()
		r.Elements = res.Best.Sorted()
		if covered, ok := in.Covers(res.Best); ok {
			r.Covered = &covered
		}
	}
	return r
}

// FormatResult renders a human-readable breakdown of a run.
func FormatResult(in *Instance, res Result, pool []float64) string {
	var b strings.Builder
	r := NewSolveReport(in, res)

	fmt.Fprintf(&b, "Instance: %s (%s, %s, n=%d)\n", r.Name, r.Problem, r.Direction, r.N)
	fmt.Fprintf(&b, "Run: %s\n", r.RunID)
	if res.Best != nil {
		fmt.Fprintf(&b, "%s\n", res.Best)
	}
	fmt.Fprintf(&b, "Sorted: %v\n", r.Elements)
	if !r.Feasible {
		b.WriteString("WARNING: no feasible solution found\n")
	}
	if r.Covered != nil {
		fmt.Fprintf(&b, "Covers universe: %t\n", *r.Covered)
	}
	fmt.Fprintf(&b, "Iterations: %d (%s), improvements: %d, distinct local optima: %d, %.1fs\n",
		r.Iterations, r.Stopped, r.Improved, r.Distinct, res.Elapsed.Seconds())

	if len(pool) == len(r.AlphaProbs) && len(pool) > 1 {
		b.WriteString("Alpha probabilities:\n")
		for i, a := range pool {
			fmt.Fprintf(&b, "  %-6g %6.3f %s\n", a, r.AlphaProbs[i], bar(r.AlphaProbs[i], 30))
		}
	}
	return b.String()
}

func bar(p float64, width int) string {
	n := int(p*float64(width) + 0.5)
	n = max(0, min(n, width))
	return strings.Repeat("#", n)
}
