package traversal

import "github.com/sanonone/kektorgraph/pkg/graph"

// Predicate tests a property value. Comparison predicates operate within
// one value family: integers and doubles compare as numbers, strings
// compare lexicographically, and a cross-family comparison is simply false
// (best-effort evaluation, never an error).
type Predicate func(graph.Value) bool

// Eq matches values equal to want.
func Eq(want graph.Value) Predicate {
	return func(v graph.Value) bool { return v.Equal(want) }
}

// Neq matches values different from want.
func Neq(want graph.Value) Predicate {
	return func(v graph.Value) bool { return !v.Equal(want) }
}

// Gt matches numeric values strictly greater than n.
func Gt(n float64) Predicate {
	return func(v graph.Value) bool {
		f, ok := v.Number()
		return ok && f > n
	}
}

// Gte matches numeric values greater than or equal to n.
func Gte(n float64) Predicate {
	return func(v graph.Value) bool {
		f, ok := v.Number()
		return ok && f >= n
	}
}

// Lt matches numeric values strictly less than n.
func Lt(n float64) Predicate {
	return func(v graph.Value) bool {
		f, ok := v.Number()
		return ok && f < n
	}
}

// Lte matches numeric values less than or equal to n.
func Lte(n float64) Predicate {
	return func(v graph.Value) bool {
		f, ok := v.Number()
		return ok && f <= n
	}
}

// Between matches numeric values in the half-open interval [lo, hi).
func Between(lo, hi float64) Predicate {
	return func(v graph.Value) bool {
		f, ok := v.Number()
		return ok && f >= lo && f < hi
	}
}

// Within matches values equal to any of the candidates.
func Within(candidates ...graph.Value) Predicate {
	return func(v graph.Value) bool {
		for _, c := range candidates {
			if v.Equal(c) {
				return true
			}
		}
		return false
	}
}
