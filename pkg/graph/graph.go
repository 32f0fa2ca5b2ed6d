// Package graph provides the in-memory property-graph store for KektorGraph.
//
// Vertices and edges live in flat arenas addressed by integer identifiers;
// edges hold identifier pairs, never pointers, so the element graph has no
// ownership cycles. Secondary indexes (label lists, (label, property, value)
// equality lists and a B-Tree over numeric properties) are maintained
// incrementally on insert.
//
// The intended lifecycle is: construct empty, bulk-load, then treat as
// read-only. The store performs no internal locking; concurrent reads are
// safe once loading has finished.
package graph

import (
	"github.com/tidwall/btree"
)

// VertexID addresses a vertex inside the arena. IDs are dense, start at 0
// and are stable for the lifetime of the store.
type VertexID uint32

// EdgeID addresses an edge inside the arena.
type EdgeID uint32

// Element is the common surface of Vertex and Edge that the traversal layer
// filters and projects on.
type Element interface {
	Label() string
	Property(name string) (Value, bool)
}

// Vertex is a labeled node with typed properties and adjacency lists.
type Vertex struct {
	id    VertexID
	label string
	props map[string]Value
	out   []EdgeID
	in    []EdgeID
}

// ID returns the vertex identifier.
func (v *Vertex) ID() VertexID { return v.id }

// Label returns the vertex label.
func (v *Vertex) Label() string { return v.label }

// Property returns the named property. Absence is an empty Value and false,
// never an error.
func (v *Vertex) Property(name string) (Value, bool) {
	val, ok := v.props[name]
	return val, ok
}

// Properties returns the property map. Callers must not mutate it.
func (v *Vertex) Properties() map[string]Value { return v.props }

// Edge is a directed, labeled connection between two vertices, with its own
// typed properties.
type Edge struct {
	id    EdgeID
	label string
	out   VertexID // tail: the edge points out of this vertex
	in    VertexID // head: the edge points into this vertex
	props map[string]Value
}

// ID returns the edge identifier.
func (e *Edge) ID() EdgeID { return e.id }

// Label returns the edge label.
func (e *Edge) Label() string { return e.label }

// OutVertex returns the identifier of the tail vertex.
func (e *Edge) OutVertex() VertexID { return e.out }

// InVertex returns the identifier of the head vertex.
func (e *Edge) InVertex() VertexID { return e.in }

// Property returns the named property, reporting absence with false.
func (e *Edge) Property(name string) (Value, bool) {
	val, ok := e.props[name]
	return val, ok
}

// Properties returns the property map. Callers must not mutate it.
func (e *Edge) Properties() map[string]Value { return e.props }

// propKey addresses one bucket of the equality index.
type propKey struct {
	label string
	name  string
	value Value
}

// rangeKey addresses one numeric B-Tree.
type rangeKey struct {
	label string
	name  string
}

// rangeItem is the B-Tree entry: numeric value first, ID as tie-breaker so
// equal values stay distinct items.
type rangeItem struct {
	value float64
	id    VertexID
}

func rangeItemLess(a, b rangeItem) bool {
	if a.value != b.value {
		return a.value < b.value
	}
	return a.id < b.id
}

// Stats summarizes the store contents.
type Stats struct {
	Vertices    int            `json:"vertices"`
	Edges       int            `json:"edges"`
	VertexLabel map[string]int `json:"vertex_labels"`
	EdgeLabel   map[string]int `json:"edge_labels"`
}

// Graph is the store. The zero value is not usable; call New.
type Graph struct {
	vertices []*Vertex
	edges    []*Edge

	vertexLabels map[string][]VertexID
	edgeLabels   map[string][]EdgeID

	vertexProps map[propKey][]VertexID
	edgeProps   map[propKey][]EdgeID

	// numeric holds one B-Tree per (label, property) pair, fed with every
	// numeric property value seen on vertices of that label. Serves range
	// lookups without scanning the label list.
	numeric map[rangeKey]*btree.BTreeG[rangeItem]
}

// New returns an empty store.
func New() *Graph {
	return &Graph{
		vertexLabels: make(map[string][]VertexID),
		edgeLabels:   make(map[string][]EdgeID),
		vertexProps:  make(map[propKey][]VertexID),
		edgeProps:    make(map[propKey][]EdgeID),
		numeric:      make(map[rangeKey]*btree.BTreeG[rangeItem]),
	}
}

// AddVertex inserts a vertex and indexes it. The props map is owned by the
// store after the call.
func (g *Graph) AddVertex(label string, props map[string]Value) VertexID {
	if props == nil {
		props = make(map[string]Value)
	}
	id := VertexID(len(g.vertices))
	g.vertices = append(g.vertices, &Vertex{id: id, label: label, props: props})
	g.vertexLabels[label] = append(g.vertexLabels[label], id)

	for name, val := range props {
		k := propKey{label: label, name: name, value: val.canon()}
		g.vertexProps[k] = append(g.vertexProps[k], id)

		if num, ok := val.Number(); ok {
			rk := rangeKey{label: label, name: name}
			tree, ok := g.numeric[rk]
			if !ok {
				tree = btree.NewBTreeG[rangeItem](rangeItemLess)
				g.numeric[rk] = tree
			}
			tree.Set(rangeItem{value: num, id: id})
		}
	}
	return id
}

// AddEdge inserts a directed edge from out to in. Both endpoints must
// already exist; a dangling reference is a structural error and aborts the
// insert.
func (g *Graph) AddEdge(label string, out, in VertexID, props map[string]Value) (EdgeID, error) {
	if int(out) >= len(g.vertices) || int(in) >= len(g.vertices) {
		return 0, ErrDanglingReference
	}
	if props == nil {
		props = make(map[string]Value)
	}
	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, &Edge{id: id, label: label, out: out, in: in, props: props})
	g.edgeLabels[label] = append(g.edgeLabels[label], id)

	g.vertices[out].out = append(g.vertices[out].out, id)
	g.vertices[in].in = append(g.vertices[in].in, id)

	for name, val := range props {
		k := propKey{label: label, name: name, value: val.canon()}
		g.edgeProps[k] = append(g.edgeProps[k], id)
	}
	return id, nil
}

// Vertex resolves an identifier, reporting false when out of range.
func (g *Graph) Vertex(id VertexID) (*Vertex, bool) {
	if int(id) >= len(g.vertices) {
		return nil, false
	}
	return g.vertices[id], true
}

// Edge resolves an identifier, reporting false when out of range.
func (g *Graph) Edge(id EdgeID) (*Edge, bool) {
	if int(id) >= len(g.edges) {
		return nil, false
	}
	return g.edges[id], true
}

// VertexCount returns the number of vertices in the store.
func (g *Graph) VertexCount() int { return len(g.vertices) }

// EdgeCount returns the number of edges in the store.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Stats returns counts broken down by label.
func (g *Graph) Stats() Stats {
	st := Stats{
		Vertices:    len(g.vertices),
		Edges:       len(g.edges),
		VertexLabel: make(map[string]int, len(g.vertexLabels)),
		EdgeLabel:   make(map[string]int, len(g.edgeLabels)),
	}
	for label, ids := range g.vertexLabels {
		st.VertexLabel[label] = len(ids)
	}
	for label, ids := range g.edgeLabels {
		st.EdgeLabel[label] = len(ids)
	}
	return st
}

// AllVertices returns a cursor over every vertex in insertion order.
func (g *Graph) AllVertices() *VertexCursor {
	return &VertexCursor{g: g, all: true}
}

// AllEdges returns a cursor over every edge in insertion order.
func (g *Graph) AllEdges() *EdgeCursor {
	return &EdgeCursor{g: g, all: true}
}

// VerticesByLabel returns a cursor over the label index. An unknown label
// yields an empty cursor, not an error.
func (g *Graph) VerticesByLabel(label string) *VertexCursor {
	return &VertexCursor{g: g, ids: g.vertexLabels[label]}
}

// EdgesByLabel returns a cursor over the edge label index.
func (g *Graph) EdgesByLabel(label string) *EdgeCursor {
	return &EdgeCursor{g: g, ids: g.edgeLabels[label]}
}

// VerticesByProperty looks up the (label, property, value) equality index.
func (g *Graph) VerticesByProperty(label, name string, value Value) *VertexCursor {
	return &VertexCursor{g: g, ids: g.vertexProps[propKey{label: label, name: name, value: value.canon()}]}
}

// EdgesByProperty looks up the edge equality index.
func (g *Graph) EdgesByProperty(label, name string, value Value) *EdgeCursor {
	return &EdgeCursor{g: g, ids: g.edgeProps[propKey{label: label, name: name, value: value.canon()}]}
}

// VerticesInRange returns the vertices of the given label whose numeric
// property falls within [lo, hi), ascending by value. Backed by the B-Tree
// index, so the label list is never scanned.
func (g *Graph) VerticesInRange(label, name string, lo, hi float64) []*Vertex {
	tree, ok := g.numeric[rangeKey{label: label, name: name}]
	if !ok {
		return nil
	}
	var out []*Vertex
	tree.Ascend(rangeItem{value: lo}, func(item rangeItem) bool {
		if item.value >= hi {
			return false
		}
		out = append(out, g.vertices[item.id])
		return true
	})
	return out
}

// OutEdges returns a cursor over the edges leaving the vertex, optionally
// restricted to the given labels. An absent filter returns all out-edges.
func (g *Graph) OutEdges(id VertexID, labels ...string) *EdgeCursor {
	v, ok := g.Vertex(id)
	if !ok {
		return &EdgeCursor{g: g}
	}
	return &EdgeCursor{g: g, ids: v.out, labels: labels}
}

// InEdges returns a cursor over the edges arriving at the vertex.
func (g *Graph) InEdges(id VertexID, labels ...string) *EdgeCursor {
	v, ok := g.Vertex(id)
	if !ok {
		return &EdgeCursor{g: g}
	}
	return &EdgeCursor{g: g, ids: v.in, labels: labels}
}
