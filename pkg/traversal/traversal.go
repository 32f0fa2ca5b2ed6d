// Package traversal implements the lazy, pull-based query pipeline of
// KektorGraph: a fluent step chain over the read-only property-graph store.
//
// A traversal is an ordered list of steps. Nothing is evaluated until a
// terminal (ToList, First, Iterate...) starts pulling; each step then pulls
// from its upstream only as much as it needs, which is what gives Limit and
// First their short-circuiting behavior. Barrier steps (Group, GroupCount,
// Order and the numeric reducers) are the exception: they consume their
// whole upstream before emitting.
//
// Basic usage:
//
//	g := traversal.G(store)
//	stars, err := g.V().
//	    HasLabel("movie").Has("name", graph.String("Die Hard")).
//	    InE("rated").Values("stars").
//	    Mean().First()
//
// Anonymous traversals (package-level As, Out, InE, Values...) serve as
// sub-traversals for Where, Coalesce, Match patterns and By modulators.
package traversal

import (
	"fmt"
	"reflect"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

// Source roots traversals in a graph store.
type Source struct {
	g *graph.Graph
}

// G returns a traversal source over the store.
func G(g *graph.Graph) *Source { return &Source{g: g} }

type sourceKind uint8

const (
	sourceNone sourceKind = iota
	sourceV
	sourceE
)

// V starts a traversal over all vertices.
func (s *Source) V() *Traversal {
	return &Traversal{g: s.g, src: sourceV}
}

// E starts a traversal over all edges.
func (s *Source) E() *Traversal {
	return &Traversal{g: s.g, src: sourceE}
}

// Traversal is a pipeline under construction. Step methods append and
// return the same Traversal; construction errors stick to it and surface
// at the terminal.
type Traversal struct {
	g     *graph.Graph
	src   sourceKind
	steps []step
	err   error
}

func anon() *Traversal { return &Traversal{} }

func (t *Traversal) add(s step) *Traversal {
	t.steps = append(t.steps, s)
	return t
}

// --- Filter steps ---

// HasLabel keeps elements carrying one of the given labels.
func (t *Traversal) HasLabel(labels ...string) *Traversal {
	return t.add(&hasLabelStep{labels: labels})
}

// Has keeps elements whose property equals the literal value.
func (t *Traversal) Has(name string, value graph.Value) *Traversal {
	return t.add(&hasStep{name: name, pred: Eq(value)})
}

// HasP keeps elements whose property satisfies the predicate.
func (t *Traversal) HasP(name string, pred Predicate) *Traversal {
	return t.add(&hasStep{name: name, pred: pred})
}

// Is keeps scalar values satisfying the predicate.
func (t *Traversal) Is(pred Predicate) *Traversal {
	return t.add(&isStep{pred: pred})
}

// Where keeps travelers for which the sub-traversal, run with the current
// element and bindings, produces at least one result.
func (t *Traversal) Where(sub *Traversal) *Traversal {
	return t.add(&whereStep{sub: sub})
}

// WhereNeq keeps travelers whose current element differs from the element
// bound to the label.
func (t *Traversal) WhereNeq(label string) *Traversal {
	return t.add(&whereNeqStep{label: label})
}

// Limit truncates the traversal to its first n travelers and stops pulling
// upstream once satisfied.
func (t *Traversal) Limit(n int) *Traversal {
	return t.add(&limitStep{n: n})
}

// --- Move steps ---

// Out moves to the vertices reachable over outgoing edges.
func (t *Traversal) Out(labels ...string) *Traversal {
	return t.add(&moveStep{kind: moveOut, labels: labels})
}

// In moves to the vertices reaching this one over incoming edges.
func (t *Traversal) In(labels ...string) *Traversal {
	return t.add(&moveStep{kind: moveIn, labels: labels})
}

// Both moves to adjacent vertices in either direction.
func (t *Traversal) Both(labels ...string) *Traversal {
	return t.add(&moveStep{kind: moveBoth, labels: labels})
}

// OutE moves to the outgoing edges themselves.
func (t *Traversal) OutE(labels ...string) *Traversal {
	return t.add(&moveStep{kind: moveOutE, labels: labels})
}

// InE moves to the incoming edges themselves.
func (t *Traversal) InE(labels ...string) *Traversal {
	return t.add(&moveStep{kind: moveInE, labels: labels})
}

// BothE moves to incident edges in either direction.
func (t *Traversal) BothE(labels ...string) *Traversal {
	return t.add(&moveStep{kind: moveBothE, labels: labels})
}

// OutV moves from an edge to its tail vertex.
func (t *Traversal) OutV() *Traversal {
	return t.add(&moveStep{kind: moveOutV})
}

// InV moves from an edge to its head vertex.
func (t *Traversal) InV() *Traversal {
	return t.add(&moveStep{kind: moveInV})
}

// --- Map / projection steps ---

// Values replaces the element with its named property value. Elements
// missing the property produce nothing.
func (t *Traversal) Values(name string) *Traversal {
	return t.add(&valuesStep{name: name})
}

// Id replaces the element with its identifier.
func (t *Traversal) Id() *Traversal { return t.add(&idStep{}) }

// Label replaces the element with its label.
func (t *Traversal) Label() *Traversal { return t.add(&labelStep{}) }

// Constant replaces the current element with a fixed value.
func (t *Traversal) Constant(v graph.Value) *Traversal {
	return t.add(&constantStep{value: v})
}

// As binds the current element to the label without changing it.
func (t *Traversal) As(label string) *Traversal {
	return t.add(&asStep{label: label})
}

// Select projects the bound labels. One label yields the bare bound
// element; several yield a map keyed by label. Shape the per-label output
// with By and BySub.
func (t *Traversal) Select(labels ...string) *Traversal {
	return t.add(&selectStep{labels: labels})
}

// By modulates the most recent Select: the next unmodulated label is
// projected to the named property of its bound element.
func (t *Traversal) By(prop string) *Traversal {
	return t.modulate(byMod{prop: prop})
}

// BySub modulates the most recent Select with a sub-traversal applied to
// the bound element; its first result is projected.
func (t *Traversal) BySub(sub *Traversal) *Traversal {
	return t.modulate(byMod{sub: sub})
}

// ByIdentity modulates the most recent Select to project the bound element
// unchanged (useful to skip a position before a later By).
func (t *Traversal) ByIdentity() *Traversal {
	return t.modulate(byMod{identity: true})
}

func (t *Traversal) modulate(m byMod) *Traversal {
	if len(t.steps) == 0 {
		t.fail(errModulator)
		return t
	}
	sel, ok := t.steps[len(t.steps)-1].(*selectStep)
	if !ok {
		t.fail(errModulator)
		return t
	}
	sel.mods = append(sel.mods, m)
	return t
}

// --- Branch steps ---

// Coalesce runs the sub-traversals in order and emits the output of the
// first that produces at least one result.
func (t *Traversal) Coalesce(subs ...*Traversal) *Traversal {
	return t.add(&coalesceStep{subs: subs})
}

// --- Barrier steps ---

// Count emits the number of travelers as a single integer; 0 on an empty
// upstream.
func (t *Traversal) Count() *Traversal { return t.add(countStep()) }

// Sum emits the sum of the upstream numeric values.
func (t *Traversal) Sum() *Traversal { return t.add(sumStep()) }

// Mean emits the arithmetic mean of the upstream numeric values, or
// nothing when there are none.
func (t *Traversal) Mean() *Traversal { return t.add(meanStep()) }

// Min emits the smallest upstream numeric value, or nothing when there are
// none.
func (t *Traversal) Min() *Traversal { return t.add(minStep()) }

// Max emits the largest upstream numeric value, or nothing when there are
// none.
func (t *Traversal) Max() *Traversal { return t.add(maxStep()) }

// OrderBy sorts the whole upstream by key, stably: ties keep their
// upstream relative order.
func (t *Traversal) OrderBy(key Key, dir Ord) *Traversal {
	return t.add(&orderStep{key: key, dir: dir})
}

// Group partitions the upstream by key into an ordered map from key to the
// bucket of elements. An optional single reducer sub-traversal replaces
// each bucket with the result of running it over the bucket's elements.
func (t *Traversal) Group(key Key, reducer ...*Traversal) *Traversal {
	s := &groupStep{key: key}
	if len(reducer) > 0 {
		s.reducer = reducer[0]
		if len(reducer) > 1 {
			t.fail(errGroupReducers)
		}
	}
	return t.add(s)
}

// GroupCount partitions the upstream by key (the values themselves when no
// key is given) into an ordered map from key to occurrence count.
func (t *Traversal) GroupCount(key ...Key) *Traversal {
	k := IdentityKey()
	if len(key) > 0 {
		k = key[0]
	}
	return t.add(&groupStep{key: k, counts: true})
}

// OrderLocalBy sorts the entries of a single map value produced by Group
// or GroupCount.
func (t *Traversal) OrderLocalBy(by LocalOrd, dir Ord) *Traversal {
	return t.add(&orderLocalStep{by: by, dir: dir})
}

// LimitLocal truncates a single map or list value to its first n entries.
func (t *Traversal) LimitLocal(n int) *Traversal {
	return t.add(&limitLocalStep{n: n})
}

// Match solves the patterns as a constraint join; see the package match
// documentation.
func (t *Traversal) Match(patterns ...*Traversal) *Traversal {
	s, err := newMatchStep(patterns)
	if err != nil {
		t.fail(err)
		return t
	}
	return t.add(s)
}

func (t *Traversal) fail(err error) {
	if t.err == nil {
		t.err = err
	}
}

// --- Anonymous traversal constructors ---

// As starts an anonymous traversal binding the incoming element; the form
// every Match pattern begins with.
func As(label string) *Traversal { return anon().As(label) }

// Out starts an anonymous traversal with an out move.
func Out(labels ...string) *Traversal { return anon().Out(labels...) }

// In starts an anonymous traversal with an in move.
func In(labels ...string) *Traversal { return anon().In(labels...) }

// OutE starts an anonymous traversal with an outE move.
func OutE(labels ...string) *Traversal { return anon().OutE(labels...) }

// InE starts an anonymous traversal with an inE move.
func InE(labels ...string) *Traversal { return anon().InE(labels...) }

// Values starts an anonymous traversal projecting a property.
func Values(name string) *Traversal { return anon().Values(name) }

// Constant starts an anonymous traversal emitting a fixed value.
func Constant(v graph.Value) *Traversal { return anon().Constant(v) }

// Identity starts an anonymous traversal that passes elements through
// unchanged.
func Identity() *Traversal { return anon() }

// --- Evaluation ---

// compile validates the pipeline and wires it into a single pull stream.
func (t *Traversal) compile() (stream, *env, error) {
	if t.err != nil {
		return nil, nil, t.err
	}
	if t.src == sourceNone {
		return nil, nil, ErrNoSource
	}
	if err := validate(t.steps, nil); err != nil {
		return nil, nil, err
	}
	ev := &env{g: t.g}

	steps := t.steps
	var src stream
	// Source fast path: V().HasLabel(x) enumerates the label index
	// directly instead of scanning the whole arena.
	if len(steps) > 0 {
		if hl, ok := steps[0].(*hasLabelStep); ok && len(hl.labels) == 1 {
			switch t.src {
			case sourceV:
				src = vertexStream(t.g.VerticesByLabel(hl.labels[0]))
				steps = steps[1:]
			case sourceE:
				src = edgeStream(t.g.EdgesByLabel(hl.labels[0]))
				steps = steps[1:]
			}
		}
	}
	if src == nil {
		switch t.src {
		case sourceV:
			src = vertexStream(t.g.AllVertices())
		case sourceE:
			src = edgeStream(t.g.AllEdges())
		}
	}

	cur := src
	for _, s := range steps {
		cur = s.wire(cur, ev)
	}
	return cur, ev, nil
}

func vertexStream(c *graph.VertexCursor) stream {
	return func() (traveler, bool) {
		v, ok := c.Next()
		if !ok {
			return traveler{}, false
		}
		return traveler{current: v}, true
	}
}

func edgeStream(c *graph.EdgeCursor) stream {
	return func() (traveler, bool) {
		e, ok := c.Next()
		if !ok {
			return traveler{}, false
		}
		return traveler{current: e}, true
	}
}

// runSub evaluates an anonymous sub-traversal seeded with one traveler.
// max > 0 stops after that many results (exists-style checks pull one).
func runSub(sub *Traversal, seed traveler, ev *env, max int) []traveler {
	return runSubMulti(sub, []traveler{seed}, ev, max)
}

// runSubMulti evaluates a sub-traversal over a seed set (group bucket
// reduction feeds whole buckets through here).
func runSubMulti(sub *Traversal, seeds []traveler, ev *env, max int) []traveler {
	pos := 0
	src := func() (traveler, bool) {
		if pos >= len(seeds) {
			return traveler{}, false
		}
		t := seeds[pos]
		pos++
		return t, true
	}
	cur := src
	for _, s := range sub.steps {
		cur = s.wire(cur, ev)
	}
	var out []traveler
	for {
		t, ok := cur()
		if !ok || ev.err != nil {
			return out
		}
		out = append(out, t)
		if max > 0 && len(out) >= max {
			return out
		}
	}
}

// --- Terminals ---

// ToList drains the pipeline into a slice of results in stream order.
func (t *Traversal) ToList() ([]any, error) {
	s, ev, err := t.compile()
	if err != nil {
		return nil, err
	}
	var out []any
	for {
		tr, ok := s()
		if !ok {
			break
		}
		out = append(out, tr.current)
	}
	if ev.err != nil {
		return nil, ev.err
	}
	return out, nil
}

// ToSet drains the pipeline into a set. Only comparable results (elements
// and scalar values) can be collected this way; anything else, such as the
// map rows of a multi-label select, is ErrNotComparable.
func (t *Traversal) ToSet() (map[any]struct{}, error) {
	list, err := t.ToList()
	if err != nil {
		return nil, err
	}
	set := make(map[any]struct{}, len(list))
	for _, x := range list {
		if x != nil && !reflect.TypeOf(x).Comparable() {
			return nil, fmt.Errorf("%w: %T", ErrNotComparable, x)
		}
		set[x] = struct{}{}
	}
	return set, nil
}

// First returns the first result, pulling no more than necessary. An empty
// pipeline is ErrEmptyResult; use TryFirst when emptiness is expected.
func (t *Traversal) First() (any, error) {
	res, ok, err := t.TryFirst()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrEmptyResult
	}
	return res, nil
}

// TryFirst returns the first result and whether one exists.
func (t *Traversal) TryFirst() (any, bool, error) {
	s, ev, err := t.compile()
	if err != nil {
		return nil, false, err
	}
	tr, ok := s()
	if ev.err != nil {
		return nil, false, ev.err
	}
	if !ok {
		return nil, false, nil
	}
	return tr.current, true, nil
}

// Iterate drains the pipeline, discarding results.
func (t *Traversal) Iterate() error {
	s, ev, err := t.compile()
	if err != nil {
		return err
	}
	for {
		if _, ok := s(); !ok {
			break
		}
	}
	return ev.err
}
