package traversal

import "errors"

var (
	// ErrEmptyResult is returned by First on a pipeline that produced
	// nothing. Callers that expect possible emptiness use TryFirst.
	ErrEmptyResult = errors.New("traversal produced no result")

	// ErrUnboundLabel indicates a select, where or match step referencing a
	// label that no earlier step binds. Detected before evaluation starts.
	ErrUnboundLabel = errors.New("reference to unbound label")

	// ErrMalformedPattern indicates a match pattern that does not start
	// with an As step.
	ErrMalformedPattern = errors.New("match pattern must start with As")

	// ErrNoSource indicates a terminal invoked on an anonymous traversal
	// that was never attached to a graph.
	ErrNoSource = errors.New("traversal has no source graph")

	// ErrNotComparable is returned by ToSet when a result (a map row from
	// a multi-label select, for instance) cannot be a set member.
	ErrNotComparable = errors.New("result is not comparable")

	errModulator     = errors.New("By modulator must follow Select")
	errGroupReducers = errors.New("Group accepts at most one reducer")
)
