package graph

import (
	"fmt"
	"strconv"
)

// Kind identifies the concrete type held by a Value.
type Kind uint8

const (
	// KindNil is the zero Value, returned when a property is absent.
	KindNil Kind = iota
	// KindString holds a string.
	KindString
	// KindInt holds a 64-bit integer.
	KindInt
	// KindDouble holds a 64-bit float.
	KindDouble
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	default:
		return "nil"
	}
}

// Value is the closed variant type for vertex and edge properties.
// The same property name may hold different kinds on different elements;
// accessors are fail-fast and report a mismatch instead of coercing.
//
// Value is a plain comparable struct on purpose: it is used directly as the
// map key of the (label, property, value) equality index.
type Value struct {
	kind Kind
	str  string
	num  float64
	i    int64
}

// String builds a string Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int builds an integer Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Double builds a floating point Value.
func Double(f float64) Value { return Value{kind: KindDouble, num: f} }

// Kind reports which variant this Value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether the Value is the absent zero value.
func (v Value) IsNil() bool { return v.kind == KindNil }

// AsString returns the string payload, reporting false on a kind mismatch.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsInt returns the integer payload, reporting false on a kind mismatch.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsDouble returns the float payload, reporting false on a kind mismatch.
func (v Value) AsDouble() (float64, bool) {
	if v.kind != KindDouble {
		return 0, false
	}
	return v.num, true
}

// Number coerces either numeric variant to float64. Strings do not coerce;
// callers relying on best-effort evaluation treat the false return as
// "no value" rather than an error.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindDouble:
		return v.num, true
	default:
		return 0, false
	}
}

// Equal compares two values. Integers and doubles belong to one numeric
// family and compare by magnitude, so Int(5) equals Double(5.0); a string
// never equals a number.
func (v Value) Equal(o Value) bool {
	if v.kind == KindString || o.kind == KindString {
		return v.kind == o.kind && v.str == o.str
	}
	if v.kind == KindNil || o.kind == KindNil {
		return v.kind == o.kind
	}
	a, _ := v.Number()
	b, _ := o.Number()
	return a == b
}

// Compare orders two values: -1, 0 or +1. Ordering across families is by
// kind (nil < number < string) so sorts over heterogeneous data are total
// and deterministic.
func (v Value) Compare(o Value) int {
	vf, vn := v.Number()
	of, on := o.Number()
	if vn && on {
		switch {
		case vf < of:
			return -1
		case vf > of:
			return 1
		default:
			return 0
		}
	}
	if v.family() != o.family() {
		if v.family() < o.family() {
			return -1
		}
		return 1
	}
	// Both strings (or both nil).
	switch {
	case v.str < o.str:
		return -1
	case v.str > o.str:
		return 1
	default:
		return 0
	}
}

func (v Value) family() int {
	switch v.kind {
	case KindInt, KindDouble:
		return 1
	case KindString:
		return 2
	default:
		return 0
	}
}

// Native unwraps the Value into its Go representation (string, int64,
// float64 or nil). Used at API boundaries (JSON responses, MCP results).
func (v Value) Native() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.i
	case KindDouble:
		return v.num
	default:
		return nil
	}
}

// FromNative converts a decoded Go value (typically out of JSON or gob)
// into a Value. Unsupported types are reported as an error so loaders fail
// loudly instead of silently dropping properties.
func FromNative(x any) (Value, error) {
	switch t := x.(type) {
	case string:
		return String(t), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case float32:
		return Double(float64(t)), nil
	case float64:
		// JSON numbers decode as float64; keep integral ones as ints so
		// equality lookups against Int values keep working.
		if t == float64(int64(t)) {
			return Int(int64(t)), nil
		}
		return Double(t), nil
	case Value:
		return t, nil
	default:
		return Value{}, fmt.Errorf("unsupported property type %T", x)
	}
}

// canon folds the numeric family into one representation so that the
// equality index, which keys on the raw struct, honors Equal: Int(5) and
// Double(5.0) must land on the same key. Integers too large for an exact
// float64 keep their Int form.
func (v Value) canon() Value {
	if v.kind == KindDouble && v.num >= -(1<<62) && v.num <= 1<<62 && v.num == float64(int64(v.num)) {
		return Int(int64(v.num))
	}
	return v
}

// GoString renders the value for logs and error messages.
func (v Value) GoString() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.str)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindDouble:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	default:
		return "<nil>"
	}
}
