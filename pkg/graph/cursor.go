package graph

// Cursors are single-use, pull-based iterators over index slices. They never
// copy the underlying index, so they are cheap to create and cheap to
// abandon half-way; the traversal layer relies on that for short-circuit
// steps like limit and first.

// VertexCursor iterates vertices in store-insertion order.
type VertexCursor struct {
	g   *Graph
	ids []VertexID
	pos int
	all bool
}

// Next returns the next vertex, reporting false when the cursor is drained.
func (c *VertexCursor) Next() (*Vertex, bool) {
	if c.all {
		if c.pos >= len(c.g.vertices) {
			return nil, false
		}
		v := c.g.vertices[c.pos]
		c.pos++
		return v, true
	}
	if c.pos >= len(c.ids) {
		return nil, false
	}
	v := c.g.vertices[c.ids[c.pos]]
	c.pos++
	return v, true
}

// Count drains the cursor and returns how many vertices it produced.
func (c *VertexCursor) Count() int {
	n := 0
	for _, ok := c.Next(); ok; _, ok = c.Next() {
		n++
	}
	return n
}

// Collect drains the cursor into a slice.
func (c *VertexCursor) Collect() []*Vertex {
	var out []*Vertex
	for v, ok := c.Next(); ok; v, ok = c.Next() {
		out = append(out, v)
	}
	return out
}

// EdgeCursor iterates edges in store-insertion order, with an optional
// label filter applied during the pull.
type EdgeCursor struct {
	g      *Graph
	ids    []EdgeID
	pos    int
	all    bool
	labels []string
}

// Next returns the next matching edge, reporting false when drained.
func (c *EdgeCursor) Next() (*Edge, bool) {
	for {
		var e *Edge
		if c.all {
			if c.pos >= len(c.g.edges) {
				return nil, false
			}
			e = c.g.edges[c.pos]
		} else {
			if c.pos >= len(c.ids) {
				return nil, false
			}
			e = c.g.edges[c.ids[c.pos]]
		}
		c.pos++
		if c.matches(e) {
			return e, true
		}
	}
}

func (c *EdgeCursor) matches(e *Edge) bool {
	if len(c.labels) == 0 {
		return true
	}
	for _, l := range c.labels {
		if e.label == l {
			return true
		}
	}
	return false
}

// Count drains the cursor and returns how many edges it produced.
func (c *EdgeCursor) Count() int {
	n := 0
	for _, ok := c.Next(); ok; _, ok = c.Next() {
		n++
	}
	return n
}

// Collect drains the cursor into a slice.
func (c *EdgeCursor) Collect() []*Edge {
	var out []*Edge
	for e, ok := c.Next(); ok; e, ok = c.Next() {
		out = append(out, e)
	}
	return out
}
