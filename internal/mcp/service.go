package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/kektorgraph/pkg/engine"
	"github.com/sanonone/kektorgraph/pkg/graph"
	"github.com/sanonone/kektorgraph/pkg/metrics"
	"github.com/sanonone/kektorgraph/pkg/traversal"
)

const defaultToolLimit = 20

type Service struct {
	engine *engine.Engine
}

func NewService(eng *engine.Engine) *Service {
	return &Service{engine: eng}
}

// --- Tool Handlers ---

func (s *Service) DescribeGraph(ctx context.Context, req *mcp.CallToolRequest, args DescribeGraphArgs) (*mcp.CallToolResult, DescribeGraphResult, error) {
	st := s.engine.Stats()
	return nil, DescribeGraphResult{
		Vertices:     st.Vertices,
		Edges:        st.Edges,
		VertexLabels: st.VertexLabel,
		EdgeLabels:   st.EdgeLabel,
	}, nil
}

func (s *Service) FindVertices(ctx context.Context, req *mcp.CallToolRequest, args FindVerticesArgs) (*mcp.CallToolResult, FindVerticesResult, error) {
	defer observeQuery()()

	if args.Label == "" {
		return nil, FindVerticesResult{}, fmt.Errorf("label is required")
	}
	limit := args.Limit
	if limit <= 0 {
		limit = defaultToolLimit
	}

	t := s.engine.G().V().HasLabel(args.Label)
	if args.Key != "" {
		val, err := graph.FromNative(args.Value)
		if err != nil {
			return nil, FindVerticesResult{}, fmt.Errorf("unsupported value for %q: %w", args.Key, err)
		}
		t = t.Has(args.Key, val)
	}

	results, err := t.Limit(limit).ToList()
	if err != nil {
		return nil, FindVerticesResult{}, err
	}

	out := make([]VertexInfo, 0, len(results))
	for _, r := range results {
		if v, ok := r.(*graph.Vertex); ok {
			out = append(out, vertexInfo(v))
		}
	}
	return nil, FindVerticesResult{Count: len(out), Vertices: out}, nil
}

func (s *Service) ExploreNeighbors(ctx context.Context, req *mcp.CallToolRequest, args ExploreNeighborsArgs) (*mcp.CallToolResult, ExploreNeighborsResult, error) {
	defer observeQuery()()

	g := s.engine.Graph()
	id := graph.VertexID(args.VertexID)
	if _, ok := g.Vertex(id); !ok {
		return nil, ExploreNeighborsResult{}, fmt.Errorf("vertex %d not found", args.VertexID)
	}

	limit := args.Limit
	if limit <= 0 {
		limit = defaultToolLimit
	}
	direction := args.Direction
	if direction == "" {
		direction = "out"
	}
	var labels []string
	if args.EdgeLabel != "" {
		labels = []string{args.EdgeLabel}
	}

	var neighbors []VertexInfo
	appendFrom := func(cursor *graph.EdgeCursor, inbound bool) {
		for e, ok := cursor.Next(); ok && len(neighbors) < limit; e, ok = cursor.Next() {
			other := e.InVertex()
			if inbound {
				other = e.OutVertex()
			}
			if v, ok := g.Vertex(other); ok {
				neighbors = append(neighbors, vertexInfo(v))
			}
		}
	}

	switch direction {
	case "out":
		appendFrom(g.OutEdges(id, labels...), false)
	case "in":
		appendFrom(g.InEdges(id, labels...), true)
	case "both":
		appendFrom(g.OutEdges(id, labels...), false)
		appendFrom(g.InEdges(id, labels...), true)
	default:
		return nil, ExploreNeighborsResult{}, fmt.Errorf("direction must be out, in, or both")
	}

	return nil, ExploreNeighborsResult{Count: len(neighbors), Neighbors: neighbors}, nil
}

func (s *Service) AggregateProperty(ctx context.Context, req *mcp.CallToolRequest, args AggregatePropertyArgs) (*mcp.CallToolResult, AggregatePropertyResult, error) {
	defer observeQuery()()

	if args.Label == "" || args.Property == "" {
		return nil, AggregatePropertyResult{}, fmt.Errorf("label and property are required")
	}

	t := s.engine.G().V().HasLabel(args.Label).Values(args.Property)
	switch args.Function {
	case "count":
		t = t.Count()
	case "sum":
		t = t.Sum()
	case "mean":
		t = t.Mean()
	case "min":
		t = t.Min()
	case "max":
		t = t.Max()
	default:
		return nil, AggregatePropertyResult{}, fmt.Errorf("unknown function %q", args.Function)
	}

	result, ok, err := t.TryFirst()
	if err != nil {
		return nil, AggregatePropertyResult{}, err
	}
	if !ok {
		return nil, AggregatePropertyResult{Function: args.Function, Empty: true}, nil
	}

	val, _ := result.(graph.Value)
	n, ok := val.Number()
	if !ok {
		return nil, AggregatePropertyResult{}, fmt.Errorf("non-numeric aggregate result")
	}
	return nil, AggregatePropertyResult{Function: args.Function, Value: n}, nil
}

func (s *Service) GroupCount(ctx context.Context, req *mcp.CallToolRequest, args GroupCountArgs) (*mcp.CallToolResult, GroupCountResult, error) {
	defer observeQuery()()

	if args.Label == "" || args.Key == "" {
		return nil, GroupCountResult{}, fmt.Errorf("label and key are required")
	}

	t := s.engine.G().V().
		HasLabel(args.Label).
		GroupCount(traversal.PropertyKey(args.Key)).
		OrderLocalBy(traversal.LocalValues, traversal.Desc)
	if args.Top > 0 {
		t = t.LimitLocal(args.Top)
	}

	result, err := t.First()
	if err != nil {
		return nil, GroupCountResult{}, err
	}
	m, ok := result.(*traversal.OrderedMap)
	if !ok {
		return nil, GroupCountResult{}, fmt.Errorf("unexpected group result type %T", result)
	}

	groups := make([]GroupEntry, 0, m.Len())
	for _, e := range m.Entries() {
		count, _ := e.Value.(int64)
		groups = append(groups, GroupEntry{Key: e.Key.Native(), Count: count})
	}
	return nil, GroupCountResult{Groups: groups}, nil
}

// --- Helpers ---

func vertexInfo(v *graph.Vertex) VertexInfo {
	props := v.Properties()
	native := make(map[string]any, len(props))
	for name, val := range props {
		native[name] = val.Native()
	}
	return VertexInfo{ID: uint32(v.ID()), Label: v.Label(), Properties: native}
}

func observeQuery() func() {
	start := time.Now()
	metrics.QueriesTotal.WithLabelValues("mcp").Inc()
	return func() {
		metrics.QueryDuration.WithLabelValues("mcp").Observe(time.Since(start).Seconds())
	}
}
