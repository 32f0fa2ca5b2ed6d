package traversal

import (
	"math"
	"testing"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

func numResult(t *testing.T, res any) float64 {
	t.Helper()
	v, ok := res.(graph.Value)
	if !ok {
		t.Fatalf("result %v (%T) is not a value", res, res)
	}
	f, ok := v.Number()
	if !ok {
		t.Fatalf("result %v is not numeric", v)
	}
	return f
}

func TestCount(t *testing.T) {
	g := modernGraph(t)

	res, err := G(g).V().HasLabel("person").Count().First()
	if err != nil {
		t.Fatal(err)
	}
	if n := numResult(t, res); n != 4 {
		t.Errorf("person count = %v, want 4", n)
	}

	// Count over an empty stream is 0, not absence.
	res, err = G(g).V().HasLabel("nothing").Count().First()
	if err != nil {
		t.Fatal(err)
	}
	if n := numResult(t, res); n != 0 {
		t.Errorf("empty count = %v, want 0", n)
	}
}

func TestNumericReducers(t *testing.T) {
	g := modernGraph(t)

	cases := []struct {
		name  string
		build func() *Traversal
		want  float64
	}{
		{"sum", func() *Traversal { return G(g).E().HasLabel("created").Values("weight").Sum() }, 2.0},
		{"mean", func() *Traversal { return G(g).V().Values("age").Mean() }, 30.75},
		{"min", func() *Traversal { return G(g).E().HasLabel("created").Values("weight").Min() }, 0.2},
		{"max", func() *Traversal { return G(g).E().Values("weight").Max() }, 1.0},
	}
	for _, c := range cases {
		res, err := c.build().First()
		if err != nil {
			t.Fatalf("%s failed: %v", c.name, err)
		}
		if got := numResult(t, res); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestReducersOnEmptyStream(t *testing.T) {
	g := modernGraph(t)

	// Software has no age: mean/min/max produce nothing rather than NaN.
	for _, build := range []func() *Traversal{
		func() *Traversal { return G(g).V().HasLabel("software").Values("age").Mean() },
		func() *Traversal { return G(g).V().HasLabel("software").Values("age").Min() },
		func() *Traversal { return G(g).V().HasLabel("software").Values("age").Max() },
	} {
		_, ok, err := build().TryFirst()
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("reducer over an empty stream must produce nothing")
		}
	}

	// Coalesce supplies the conventional default.
	res, err := G(g).V().HasLabel("software").
		Coalesce(Values("age").Mean(), Constant(graph.Int(0))).
		First()
	if err != nil {
		t.Fatal(err)
	}
	if n := numResult(t, res); n != 0 {
		t.Errorf("coalesced default = %v, want 0", n)
	}
}

func TestGroupCount(t *testing.T) {
	g := modernGraph(t)

	res, err := G(g).V().GroupCount(LabelKey()).First()
	if err != nil {
		t.Fatal(err)
	}
	m, ok := res.(*OrderedMap)
	if !ok {
		t.Fatalf("groupCount result = %T, want *OrderedMap", res)
	}

	// 1. Buckets
	person, _ := m.Get(graph.String("person"))
	software, _ := m.Get(graph.String("software"))
	if person != int64(4) || software != int64(2) {
		t.Errorf("buckets = %v/%v, want 4/2", person, software)
	}

	// 2. Counts add up to the upstream cardinality
	var total int64
	for _, e := range m.Entries() {
		total += e.Value.(int64)
	}
	if total != 6 {
		t.Errorf("bucket sum = %d, want 6", total)
	}

	// 3. Keys keep first-seen order (marko arrives before lop)
	if keys := m.Keys(); len(keys) != 2 || !keys[0].Equal(graph.String("person")) {
		t.Errorf("key order = %v, want person first", keys)
	}
}

func TestGroupCountByIdentity(t *testing.T) {
	g := modernGraph(t)

	// Without a key, scalar values group by themselves.
	res, err := G(g).E().HasLabel("created").Values("weight").GroupCount().First()
	if err != nil {
		t.Fatal(err)
	}
	m := res.(*OrderedMap)
	if n, _ := m.Get(graph.Double(0.4)); n != int64(2) {
		t.Errorf("weight 0.4 count = %v, want 2", n)
	}
	if m.Len() != 3 {
		t.Errorf("distinct weights = %d, want 3", m.Len())
	}
}

func TestGroupBuckets(t *testing.T) {
	g := modernGraph(t)

	// Group people by decade of birth age.
	decade := FuncKey(func(cur any) (graph.Value, bool) {
		el, ok := cur.(*graph.Vertex)
		if !ok {
			return graph.Value{}, false
		}
		age, ok := el.Property("age")
		if !ok {
			return graph.Value{}, false
		}
		n, _ := age.Number()
		return graph.Int(int64(n/10) * 10), true
	})

	res, err := G(g).V().HasLabel("person").Group(decade).First()
	if err != nil {
		t.Fatal(err)
	}
	m := res.(*OrderedMap)

	twenties, _ := m.Get(graph.Int(20))
	bucket, ok := twenties.([]any)
	if !ok {
		t.Fatalf("bucket = %T, want []any", twenties)
	}
	if len(bucket) != 2 {
		t.Errorf("twenties bucket = %d, want marko and vadas", len(bucket))
	}
}

func TestGroupWithReducer(t *testing.T) {
	g := modernGraph(t)

	decade := FuncKey(func(cur any) (graph.Value, bool) {
		el, ok := cur.(*graph.Vertex)
		if !ok {
			return graph.Value{}, false
		}
		age, ok := el.Property("age")
		if !ok {
			return graph.Value{}, false
		}
		n, _ := age.Number()
		return graph.Int(int64(n/10) * 10), true
	})

	// Reduce each decade bucket to the mean age.
	res, err := G(g).V().HasLabel("person").
		Group(decade, Values("age").Mean()).
		First()
	if err != nil {
		t.Fatal(err)
	}
	m := res.(*OrderedMap)

	twenties, _ := m.Get(graph.Int(20))
	if v, ok := twenties.(graph.Value); !ok || !v.Equal(graph.Double(28)) {
		t.Errorf("twenties mean = %v, want 28", twenties)
	}
	thirties, _ := m.Get(graph.Int(30))
	if v, ok := thirties.(graph.Value); !ok || !v.Equal(graph.Double(33.5)) {
		t.Errorf("thirties mean = %v, want 33.5", thirties)
	}
}

func TestGroupRejectsMultipleReducers(t *testing.T) {
	g := modernGraph(t)

	_, err := G(g).V().Group(LabelKey(), Values("age").Mean(), Values("age").Sum()).ToList()
	if err == nil {
		t.Error("two reducers must be a construction error")
	}
}
