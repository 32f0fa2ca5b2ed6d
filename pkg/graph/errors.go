package graph

import "errors"

var (
	// ErrDanglingReference indicates an edge naming an endpoint vertex that
	// does not exist in the store. Structural, fatal at load time.
	ErrDanglingReference = errors.New("edge references unknown vertex")

	// ErrUnknownElement indicates a lookup by an identifier outside the
	// arena bounds.
	ErrUnknownElement = errors.New("unknown element id")
)
