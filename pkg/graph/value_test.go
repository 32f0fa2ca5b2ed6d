package graph

import (
	"testing"
)

func TestValueEqualAcrossNumericKinds(t *testing.T) {
	// 1. Int and Double carrying the same quantity compare equal
	if !Int(32).Equal(Double(32.0)) {
		t.Error("Int(32) should equal Double(32.0)")
	}
	if Int(32).Equal(Double(32.5)) {
		t.Error("Int(32) should not equal Double(32.5)")
	}

	// 2. Strings never equal numbers, even when they look numeric
	if String("32").Equal(Int(32)) {
		t.Error("String(\"32\") should not equal Int(32)")
	}

	// 3. Exact string comparison
	if !String("lop").Equal(String("lop")) {
		t.Error("identical strings should be equal")
	}
	if String("lop").Equal(String("Lop")) {
		t.Error("string comparison must be case sensitive")
	}
}

func TestValueCompareTotalOrder(t *testing.T) {
	// Nil sorts before numbers, numbers before strings.
	var nilVal Value
	cases := []struct {
		a, b Value
		want int
	}{
		{nilVal, Int(0), -1},
		{Int(1), String(""), -1},
		{Int(2), Double(2.0), 0},
		{Double(1.5), Int(2), -1},
		{String("a"), String("b"), -1},
		{String("b"), String("b"), 0},
	}
	for i, c := range cases {
		if got := c.a.Compare(c.b); sign(got) != c.want {
			t.Errorf("case %d: Compare(%v, %v) = %d, want sign %d", i, c.a, c.b, got, c.want)
		}
		// Symmetry
		if got := c.b.Compare(c.a); sign(got) != -c.want {
			t.Errorf("case %d: reverse Compare(%v, %v) = %d, want sign %d", i, c.b, c.a, got, -c.want)
		}
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func TestFromNativeRoundTrip(t *testing.T) {
	// 1. Supported kinds survive Native -> FromNative
	for _, v := range []Value{String("marko"), Int(29), Double(0.4)} {
		back, err := FromNative(v.Native())
		if err != nil {
			t.Fatalf("FromNative(%v) failed: %v", v.Native(), err)
		}
		if !back.Equal(v) {
			t.Errorf("round trip changed %v into %v", v, back)
		}
	}

	// 2. JSON numbers arrive as float64; integral ones come back as Int
	v, err := FromNative(float64(29))
	if err != nil {
		t.Fatal(err)
	}
	if n, ok := v.AsInt(); !ok || n != 29 {
		t.Errorf("integral float64 should decode as Int(29), got %v", v)
	}

	// 3. Unsupported types are rejected
	if _, err := FromNative([]string{"nope"}); err == nil {
		t.Error("expected an error for an unsupported native type")
	}
}

func TestValueNumberCoercion(t *testing.T) {
	if n, ok := Int(7).Number(); !ok || n != 7.0 {
		t.Errorf("Int(7).Number() = %v, %v", n, ok)
	}
	if n, ok := Double(2.5).Number(); !ok || n != 2.5 {
		t.Errorf("Double(2.5).Number() = %v, %v", n, ok)
	}
	if _, ok := String("7").Number(); ok {
		t.Error("strings must not coerce to numbers")
	}
}
