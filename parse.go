package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// solveInstance builds the evaluator for in and runs one optimizer over it.
func solveInstance(ctx context.Context, in *Instance, cfg Config, log *slog.Logger, m *Metrics) (Result, error) {
	eval, err := in.Evaluator()
	if err != nil {
		return Result{}, err
	}
	opt, err := NewOptimizer(eval, in.Direction, cfg,
		WithName(in.Name), WithLogger(log), WithMetrics(m))
	if err != nil {
		return Result{}, err
	}
	res, err := opt.Solve(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("solve %s: %w", in.Name, err)
	}
	return res, nil
}

// Problem names a bundled objective.
type Problem string

const (
	ProblemQBF   Problem = "qbf"
	ProblemSCQBF Problem = "sc-qbf"
)

// Instance is a parsed problem instance, independent of its file format.
type Instance struct {
	Name      string
	Problem   Problem
	Direction Direction
	// Matrix is the full n×n QBF coefficient matrix.
	Matrix [][]float64
	// Universe and Sets describe the covering constraint (sc-qbf only).
	Universe int
	Sets     [][]int
	// MaxSize bounds the number of selected elements; 0 means unbounded.
	MaxSize int
}

// N returns the number of decision variables.
func (in *Instance) N() int { return len(in.Matrix) }

// Evaluator builds the objective oracle for the instance.
func (in *Instance) Evaluator() (Evaluator, error) {
	q, err := NewQBF(in.Matrix)
	if err != nil {
		return nil, fmt.Errorf("instance %s: %w", in.Name, err)
	}
	var eval Evaluator = q
	switch in.Problem {
	case ProblemQBF:
	case ProblemSCQBF:
		sc, err := NewSetCover(in.Universe, in.Sets)
		if err != nil {
			return nil, fmt.Errorf("instance %s: %w", in.Name, err)
		}
		if eval, err = NewSCQBF(q, sc, in.Direction); err != nil {
			return nil, fmt.Errorf("instance %s: %w", in.Name, err)
		}
	default:
		return nil, fmt.Errorf("instance %s: unknown problem %q: %w", in.Name, in.Problem, ErrInvalidInstance)
	}
	if in.MaxSize > 0 {
		eval = Constrained{Evaluator: eval, Feasible: MaxSize(in.MaxSize)}
	}
	return eval, nil
}

// Covers reports whether sol covers the universe; applicable is false for
// instances without a covering constraint.
func (in *Instance) Covers(sol *Solution) (covered, applicable bool) {
	if in.Problem != ProblemSCQBF {
		return false, false
	}
	sc, err := NewSetCover(in.Universe, in.Sets)
	if err != nil {
		return false, true
	}
	return sc.Covers(sol), true
}

// LoadInstance reads a JSON (.json) or whitespace-separated text instance.
func LoadInstance(path string) (*Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var in *Instance
	if strings.EqualFold(filepath.Ext(path), ".json") {
		in, err = ParseInstanceJSON(string(data))
	} else {
		in, err = ParseInstanceText(string(data))
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if in.Name == "" {
		in.Name = name
	}
	return in, nil
}
