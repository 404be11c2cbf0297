package main

import "errors"

// Sentinel errors. Every message carries the "grasp:" prefix; callers add
// context with fmt.Errorf("...: %w", ErrX) and match with errors.Is.
var (
	// ErrElementOutOfRange is returned when an element index lies outside [0, domainSize).
	ErrElementOutOfRange = errors.New("grasp: element index out of range")

	// ErrDuplicateElement is returned when inserting an element already in the solution.
	ErrDuplicateElement = errors.New("grasp: element already in solution")

	// ErrElementNotFound is returned when removing an element absent from the solution.
	ErrElementNotFound = errors.New("grasp: element not in solution")

	// ErrDomainMismatch signals that an evaluator and a solution disagree on the domain
	// size, or that the evaluator changed its domain size during a run.
	ErrDomainMismatch = errors.New("grasp: domain size mismatch")

	// ErrInvalidCost is returned when a full evaluation yields NaN.
	ErrInvalidCost = errors.New("grasp: evaluator returned NaN cost")

	// ErrInvalidAlpha is returned for an alpha outside [0, 1].
	ErrInvalidAlpha = errors.New("grasp: alpha must be within [0, 1]")

	// ErrInvalidAlphaPool is returned for an empty pool, duplicate alphas or alphas
	// outside [0, 1].
	ErrInvalidAlphaPool = errors.New("grasp: invalid alpha pool")

	// ErrUnknownAlpha is returned when recording an outcome for an alpha not in the pool.
	ErrUnknownAlpha = errors.New("grasp: alpha not in pool")

	// ErrInfeasibleConstruction is returned when construction ends on a solution the
	// feasibility predicate rejects: the predicate is unsatisfiable from the empty
	// solution by insertions, or not monotone under removal.
	ErrInfeasibleConstruction = errors.New("grasp: construction ended infeasible")

	// ErrNilEvaluator is returned when an optimizer is built without an evaluator.
	ErrNilEvaluator = errors.New("grasp: nil evaluator")

	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("grasp: invalid config")

	// ErrInvalidInstance is returned by instance loaders and problem constructors for
	// malformed input (non-square matrix, NaN coefficient, bad subset, ...).
	ErrInvalidInstance = errors.New("grasp: invalid instance")
)
