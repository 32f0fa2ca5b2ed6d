package mcp

import (
	"context"
	"testing"

	"github.com/sanonone/kektorgraph/pkg/engine"
	"github.com/sanonone/kektorgraph/pkg/persistence"
)

func testService(t *testing.T) *Service {
	t.Helper()
	eng, err := engine.Open(engine.Options{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { eng.Close() })

	err = eng.Load(&persistence.Dataset{
		Vertices: []persistence.VertexRecord{
			{Key: "marko", Label: "person", Properties: map[string]any{"name": "marko", "age": int64(29)}},
			{Key: "vadas", Label: "person", Properties: map[string]any{"name": "vadas", "age": int64(27)}},
			{Key: "josh", Label: "person", Properties: map[string]any{"name": "josh", "age": int64(32)}},
			{Key: "lop", Label: "software", Properties: map[string]any{"name": "lop", "lang": "java"}},
			{Key: "ripple", Label: "software", Properties: map[string]any{"name": "ripple", "lang": "java"}},
		},
		Edges: []persistence.EdgeRecord{
			{Label: "created", Out: "marko", In: "lop"},
			{Label: "created", Out: "josh", In: "lop"},
			{Label: "created", Out: "josh", In: "ripple"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return NewService(eng)
}

func TestDescribeGraphTool(t *testing.T) {
	s := testService(t)

	_, res, err := s.DescribeGraph(context.Background(), nil, DescribeGraphArgs{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Vertices != 5 || res.Edges != 3 {
		t.Errorf("description = %d/%d, want 5/3", res.Vertices, res.Edges)
	}
	if res.VertexLabels["person"] != 3 {
		t.Errorf("person count = %d, want 3", res.VertexLabels["person"])
	}
}

func TestFindVerticesTool(t *testing.T) {
	s := testService(t)

	// 1. Label scan
	_, res, err := s.FindVertices(context.Background(), nil, FindVerticesArgs{Label: "software"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 2 {
		t.Errorf("software scan = %d, want 2", res.Count)
	}

	// 2. Property filter; JSON numbers arrive as float64
	_, res, err = s.FindVertices(context.Background(), nil, FindVerticesArgs{
		Label: "person", Key: "age", Value: float64(29),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 1 || res.Vertices[0].Properties["name"] != "marko" {
		t.Errorf("age filter = %+v, want marko", res.Vertices)
	}

	// 3. Label is mandatory
	if _, _, err := s.FindVertices(context.Background(), nil, FindVerticesArgs{}); err == nil {
		t.Error("expected an error without a label")
	}
}

func TestExploreNeighborsTool(t *testing.T) {
	s := testService(t)

	// lop is vertex 3 in load order; expand inbound creators
	_, res, err := s.ExploreNeighbors(context.Background(), nil, ExploreNeighborsArgs{
		VertexID: 3, Direction: "in", EdgeLabel: "created",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 2 {
		t.Errorf("lop creators = %d, want 2", res.Count)
	}

	if _, _, err := s.ExploreNeighbors(context.Background(), nil, ExploreNeighborsArgs{VertexID: 999}); err == nil {
		t.Error("expected an error for an unknown vertex")
	}
}

func TestAggregatePropertyTool(t *testing.T) {
	s := testService(t)

	_, res, err := s.AggregateProperty(context.Background(), nil, AggregatePropertyArgs{
		Label: "person", Property: "age", Function: "mean",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := (29.0 + 27.0 + 32.0) / 3.0
	if res.Empty || res.Value != want {
		t.Errorf("mean = %+v, want %v", res, want)
	}

	// Reducing a property nothing carries reports emptiness, not an error.
	_, res, err = s.AggregateProperty(context.Background(), nil, AggregatePropertyArgs{
		Label: "software", Property: "age", Function: "max",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Empty {
		t.Errorf("expected an empty result, got %+v", res)
	}

	if _, _, err := s.AggregateProperty(context.Background(), nil, AggregatePropertyArgs{
		Label: "person", Property: "age", Function: "median",
	}); err == nil {
		t.Error("expected an error for an unknown function")
	}
}

func TestGroupCountTool(t *testing.T) {
	s := testService(t)

	_, res, err := s.GroupCount(context.Background(), nil, GroupCountArgs{Label: "software", Key: "lang"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Groups) != 1 || res.Groups[0].Count != 2 {
		t.Errorf("groups = %+v, want java:2", res.Groups)
	}

	// Top truncates after the largest-first sort.
	_, res, err = s.GroupCount(context.Background(), nil, GroupCountArgs{Label: "person", Key: "age", Top: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Groups) != 1 {
		t.Errorf("top-1 groups = %d, want 1", len(res.Groups))
	}
}
