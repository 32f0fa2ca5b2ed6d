package graph

import (
	"errors"
	"testing"
)

// buildTestGraph creates the small software graph used across the store
// tests: four people, two software projects, knows/created edges.
func buildTestGraph(t *testing.T) (*Graph, map[string]VertexID) {
	t.Helper()
	g := New()
	ids := make(map[string]VertexID)

	addPerson := func(name string, age int64) {
		ids[name] = g.AddVertex("person", map[string]Value{
			"name": String(name),
			"age":  Int(age),
		})
	}
	addSoftware := func(name, lang string) {
		ids[name] = g.AddVertex("software", map[string]Value{
			"name": String(name),
			"lang": String(lang),
		})
	}

	addPerson("marko", 29)
	addPerson("vadas", 27)
	addPerson("josh", 32)
	addPerson("peter", 35)
	addSoftware("lop", "java")
	addSoftware("ripple", "java")

	mustEdge := func(label string, out, in string, props map[string]Value) {
		if _, err := g.AddEdge(label, ids[out], ids[in], props); err != nil {
			t.Fatalf("AddEdge(%s, %s, %s) failed: %v", label, out, in, err)
		}
	}
	mustEdge("knows", "marko", "vadas", map[string]Value{"weight": Double(0.5)})
	mustEdge("knows", "marko", "josh", map[string]Value{"weight": Double(1.0)})
	mustEdge("created", "marko", "lop", map[string]Value{"weight": Double(0.4)})
	mustEdge("created", "josh", "ripple", map[string]Value{"weight": Double(1.0)})
	mustEdge("created", "josh", "lop", map[string]Value{"weight": Double(0.4)})
	mustEdge("created", "peter", "lop", map[string]Value{"weight": Double(0.2)})

	return g, ids
}

func TestAddAndLookup(t *testing.T) {
	g, ids := buildTestGraph(t)

	// 1. Counts
	if g.VertexCount() != 6 {
		t.Errorf("VertexCount = %d, want 6", g.VertexCount())
	}
	if g.EdgeCount() != 6 {
		t.Errorf("EdgeCount = %d, want 6", g.EdgeCount())
	}

	// 2. Vertex lookup by ID
	v, ok := g.Vertex(ids["marko"])
	if !ok {
		t.Fatal("marko not found")
	}
	if v.Label() != "person" {
		t.Errorf("label = %q, want person", v.Label())
	}
	if name, ok := v.Property("name"); !ok || !name.Equal(String("marko")) {
		t.Errorf("name property = %v", name)
	}

	// 3. Missing vertex
	if _, ok := g.Vertex(VertexID(999)); ok {
		t.Error("lookup of unknown ID should fail")
	}
}

func TestAddEdgeDanglingReference(t *testing.T) {
	g, ids := buildTestGraph(t)

	_, err := g.AddEdge("knows", ids["marko"], VertexID(999), nil)
	if !errors.Is(err, ErrDanglingReference) {
		t.Fatalf("expected ErrDanglingReference, got %v", err)
	}

	// The failed insert must not have changed the store.
	if g.EdgeCount() != 6 {
		t.Errorf("EdgeCount changed after failed insert: %d", g.EdgeCount())
	}
}

func TestLabelIndex(t *testing.T) {
	g, _ := buildTestGraph(t)

	if n := g.VerticesByLabel("person").Count(); n != 4 {
		t.Errorf("person count = %d, want 4", n)
	}
	if n := g.VerticesByLabel("software").Count(); n != 2 {
		t.Errorf("software count = %d, want 2", n)
	}
	if n := g.VerticesByLabel("animal").Count(); n != 0 {
		t.Errorf("unknown label count = %d, want 0", n)
	}
	if n := g.EdgesByLabel("created").Count(); n != 4 {
		t.Errorf("created count = %d, want 4", n)
	}
}

func TestPropertyIndex(t *testing.T) {
	g, ids := buildTestGraph(t)

	// 1. Exact lookup hits the index
	c := g.VerticesByProperty("person", "name", String("josh"))
	v, ok := c.Next()
	if !ok {
		t.Fatal("josh not found via property index")
	}
	if v.ID() != ids["josh"] {
		t.Errorf("wrong vertex: %d", v.ID())
	}
	if _, ok := c.Next(); ok {
		t.Error("expected exactly one josh")
	}

	// 2. Numeric lookups match across kinds
	if n := g.VerticesByProperty("person", "age", Double(32.0)).Count(); n != 1 {
		t.Errorf("age lookup with Double(32.0) found %d, want 1", n)
	}

	// 3. Edge property lookup
	if n := g.EdgesByProperty("created", "weight", Double(0.4)).Count(); n != 2 {
		t.Errorf("created weight 0.4 count = %d, want 2", n)
	}
}

func TestNumericRange(t *testing.T) {
	g, _ := buildTestGraph(t)

	// [27, 32) excludes josh (32) and peter (35)
	got := g.VerticesInRange("person", "age", 27, 32)
	names := make(map[string]bool)
	for _, v := range got {
		name, _ := v.Property("name")
		s, _ := name.AsString()
		names[s] = true
	}
	if len(got) != 2 || !names["marko"] || !names["vadas"] {
		t.Errorf("range [27,32) = %v, want marko and vadas", names)
	}

	// Results arrive in ascending value order
	if len(got) == 2 {
		a, _ := got[0].Property("age")
		b, _ := got[1].Property("age")
		if a.Compare(b) > 0 {
			t.Error("range results not sorted ascending")
		}
	}
}

func TestAdjacency(t *testing.T) {
	g, ids := buildTestGraph(t)

	// 1. All outgoing edges of marko
	if n := g.OutEdges(ids["marko"]).Count(); n != 3 {
		t.Errorf("marko out-degree = %d, want 3", n)
	}

	// 2. Label-filtered expansion
	if n := g.OutEdges(ids["marko"], "knows").Count(); n != 2 {
		t.Errorf("marko knows out-degree = %d, want 2", n)
	}

	// 3. Incoming side
	if n := g.InEdges(ids["lop"], "created").Count(); n != 3 {
		t.Errorf("lop created in-degree = %d, want 3", n)
	}

	// 4. Edge endpoints
	edges := g.OutEdges(ids["marko"], "created").Collect()
	if len(edges) != 1 {
		t.Fatalf("expected 1 created edge, got %d", len(edges))
	}
	e := edges[0]
	if e.OutVertex() != ids["marko"] || e.InVertex() != ids["lop"] {
		t.Errorf("edge endpoints %d -> %d, want marko -> lop", e.OutVertex(), e.InVertex())
	}
}

func TestStats(t *testing.T) {
	g, _ := buildTestGraph(t)
	st := g.Stats()

	if st.Vertices != 6 || st.Edges != 6 {
		t.Errorf("stats totals = %d/%d, want 6/6", st.Vertices, st.Edges)
	}
	if st.VertexLabel["person"] != 4 || st.VertexLabel["software"] != 2 {
		t.Errorf("vertex label breakdown = %v", st.VertexLabel)
	}
	if st.EdgeLabel["knows"] != 2 || st.EdgeLabel["created"] != 4 {
		t.Errorf("edge label breakdown = %v", st.EdgeLabel)
	}
}
