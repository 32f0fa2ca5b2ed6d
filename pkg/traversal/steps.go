package traversal

import (
	"github.com/sanonone/kektorgraph/pkg/graph"
)

// traveler pairs the current element (vertex, edge or scalar value) with
// the bindings accumulated so far. Travelers are created at pipeline start
// and discarded after the terminal consumes them.
type traveler struct {
	current  any
	bindings *Bindings
}

// stream is the pull-based lazy sequence the pipeline is built from. Each
// call produces the next traveler; false means drained. A terminal that
// stops pulling (limit, first) leaves the rest of the upstream untouched.
type stream func() (traveler, bool)

func emptyStream() (traveler, bool) { return traveler{}, false }

// env carries evaluation context through the wired pipeline. Runtime errors
// that must abort the whole traversal (unbound labels discovered mid-match)
// are parked here and checked by the terminal.
type env struct {
	g   *graph.Graph
	err error
}

func (ev *env) fail(err error) {
	if ev.err == nil {
		ev.err = err
	}
}

// step transforms one lazy sequence of travelers into another.
type step interface {
	wire(up stream, ev *env) stream
}

func elementOf(cur any) (graph.Element, bool) {
	switch e := cur.(type) {
	case *graph.Vertex:
		return e, true
	case *graph.Edge:
		return e, true
	default:
		return nil, false
	}
}

func valueOf(cur any) (graph.Value, bool) {
	v, ok := cur.(graph.Value)
	return v, ok
}

// --- Filter steps ---

// filterStep keeps travelers satisfying keep. Per-element absence (wrong
// current type, missing property) means "drop", never an error.
type filterStep struct {
	keep func(t traveler, ev *env) bool
}

func (s *filterStep) wire(up stream, ev *env) stream {
	return func() (traveler, bool) {
		for {
			t, ok := up()
			if !ok {
				return traveler{}, false
			}
			if s.keep(t, ev) {
				return t, true
			}
		}
	}
}

type hasLabelStep struct {
	labels []string
}

func (s *hasLabelStep) wire(up stream, ev *env) stream {
	f := &filterStep{keep: func(t traveler, _ *env) bool {
		el, ok := elementOf(t.current)
		if !ok {
			return false
		}
		for _, l := range s.labels {
			if el.Label() == l {
				return true
			}
		}
		return false
	}}
	return f.wire(up, ev)
}

type hasStep struct {
	name string
	pred Predicate
}

func (s *hasStep) wire(up stream, ev *env) stream {
	f := &filterStep{keep: func(t traveler, _ *env) bool {
		el, ok := elementOf(t.current)
		if !ok {
			return false
		}
		val, ok := el.Property(s.name)
		return ok && s.pred(val)
	}}
	return f.wire(up, ev)
}

// isStep applies a predicate to a scalar current.
type isStep struct {
	pred Predicate
}

func (s *isStep) wire(up stream, ev *env) stream {
	f := &filterStep{keep: func(t traveler, _ *env) bool {
		v, ok := valueOf(t.current)
		return ok && s.pred(v)
	}}
	return f.wire(up, ev)
}

// whereStep keeps travelers for which the sub-traversal produces at least
// one result when run with the traveler's element and bindings.
type whereStep struct {
	sub *Traversal
}

func (s *whereStep) wire(up stream, ev *env) stream {
	f := &filterStep{keep: func(t traveler, ev *env) bool {
		return len(runSub(s.sub, t, ev, 1)) > 0
	}}
	return f.wire(up, ev)
}

// whereNeqStep keeps travelers whose current element differs from the
// element bound to the given label.
type whereNeqStep struct {
	label string
}

func (s *whereNeqStep) wire(up stream, ev *env) stream {
	f := &filterStep{keep: func(t traveler, ev *env) bool {
		bound, ok := t.bindings.Get(s.label)
		if !ok {
			ev.fail(ErrUnboundLabel)
			return false
		}
		return identKey(t.current) != identKey(bound)
	}}
	return f.wire(up, ev)
}

// limitStep truncates the stream, short-circuiting the upstream: once n
// travelers have passed, no further pull reaches the producer.
type limitStep struct {
	n int
}

func (s *limitStep) wire(up stream, ev *env) stream {
	seen := 0
	return func() (traveler, bool) {
		if seen >= s.n {
			return traveler{}, false
		}
		t, ok := up()
		if !ok {
			return traveler{}, false
		}
		seen++
		return t, true
	}
}

// --- Map steps ---

// mapStep transforms the current element 1:1; a false return drops the
// traveler.
type mapStep struct {
	apply func(t traveler, ev *env) (traveler, bool)
}

func (s *mapStep) wire(up stream, ev *env) stream {
	return func() (traveler, bool) {
		for {
			t, ok := up()
			if !ok {
				return traveler{}, false
			}
			if out, ok := s.apply(t, ev); ok {
				return out, true
			}
		}
	}
}

type valuesStep struct {
	name string
}

func (s *valuesStep) wire(up stream, ev *env) stream {
	m := &mapStep{apply: func(t traveler, _ *env) (traveler, bool) {
		el, ok := elementOf(t.current)
		if !ok {
			return traveler{}, false
		}
		val, ok := el.Property(s.name)
		if !ok {
			// Missing property produces nothing for this traveler.
			return traveler{}, false
		}
		return traveler{current: val, bindings: t.bindings}, true
	}}
	return m.wire(up, ev)
}

type idStep struct{}

func (s *idStep) wire(up stream, ev *env) stream {
	m := &mapStep{apply: func(t traveler, _ *env) (traveler, bool) {
		switch e := t.current.(type) {
		case *graph.Vertex:
			return traveler{current: graph.Int(int64(e.ID())), bindings: t.bindings}, true
		case *graph.Edge:
			return traveler{current: graph.Int(int64(e.ID())), bindings: t.bindings}, true
		default:
			return traveler{}, false
		}
	}}
	return m.wire(up, ev)
}

type labelStep struct{}

func (s *labelStep) wire(up stream, ev *env) stream {
	m := &mapStep{apply: func(t traveler, _ *env) (traveler, bool) {
		el, ok := elementOf(t.current)
		if !ok {
			return traveler{}, false
		}
		return traveler{current: graph.String(el.Label()), bindings: t.bindings}, true
	}}
	return m.wire(up, ev)
}

type constantStep struct {
	value graph.Value
}

func (s *constantStep) wire(up stream, ev *env) stream {
	m := &mapStep{apply: func(t traveler, _ *env) (traveler, bool) {
		return traveler{current: s.value, bindings: t.bindings}, true
	}}
	return m.wire(up, ev)
}

type asStep struct {
	label string
}

func (s *asStep) wire(up stream, ev *env) stream {
	m := &mapStep{apply: func(t traveler, _ *env) (traveler, bool) {
		return traveler{current: t.current, bindings: t.bindings.With(s.label, t.current)}, true
	}}
	return m.wire(up, ev)
}

// --- Move steps (flat map over adjacency) ---

type moveKind uint8

const (
	moveOutE moveKind = iota
	moveInE
	moveOut
	moveIn
	moveBoth
	moveOutV
	moveInV
	moveBothE
)

// moveStep replaces the current element with its adjacent edges or
// vertices, one output traveler per adjacency, pulled lazily from the
// store cursors.
type moveStep struct {
	kind   moveKind
	labels []string
}

func (s *moveStep) wire(up stream, ev *env) stream {
	var pending func() (traveler, bool)
	return func() (traveler, bool) {
		for {
			if pending != nil {
				if t, ok := pending(); ok {
					return t, true
				}
				pending = nil
			}
			t, ok := up()
			if !ok {
				return traveler{}, false
			}
			pending = s.expand(t, ev)
		}
	}
}

func (s *moveStep) expand(t traveler, ev *env) func() (traveler, bool) {
	switch s.kind {
	case moveOutV, moveInV:
		e, ok := t.current.(*graph.Edge)
		if !ok {
			return emptyStream
		}
		id := e.OutVertex()
		if s.kind == moveInV {
			id = e.InVertex()
		}
		v, ok := ev.g.Vertex(id)
		if !ok {
			return emptyStream
		}
		done := false
		return func() (traveler, bool) {
			if done {
				return traveler{}, false
			}
			done = true
			return traveler{current: v, bindings: t.bindings}, true
		}
	default:
		v, ok := t.current.(*graph.Vertex)
		if !ok {
			return emptyStream
		}
		return s.expandVertex(v, t.bindings, ev)
	}
}

func (s *moveStep) expandVertex(v *graph.Vertex, b *Bindings, ev *env) func() (traveler, bool) {
	outC := ev.g.OutEdges(v.ID(), s.labels...)
	inC := ev.g.InEdges(v.ID(), s.labels...)
	switch s.kind {
	case moveOutE:
		return edgeTravelers(outC, b)
	case moveInE:
		return edgeTravelers(inC, b)
	case moveBothE:
		return chain(edgeTravelers(outC, b), edgeTravelers(inC, b))
	case moveOut:
		return neighborTravelers(outC, b, ev, false)
	case moveIn:
		return neighborTravelers(inC, b, ev, true)
	case moveBoth:
		return chain(
			neighborTravelers(outC, b, ev, false),
			neighborTravelers(inC, b, ev, true),
		)
	default:
		return emptyStream
	}
}

func edgeTravelers(c *graph.EdgeCursor, b *Bindings) func() (traveler, bool) {
	return func() (traveler, bool) {
		e, ok := c.Next()
		if !ok {
			return traveler{}, false
		}
		return traveler{current: e, bindings: b}, true
	}
}

// neighborTravelers walks the far endpoint of each edge: the head for
// out-edges, the tail for in-edges.
func neighborTravelers(c *graph.EdgeCursor, b *Bindings, ev *env, incoming bool) func() (traveler, bool) {
	return func() (traveler, bool) {
		for {
			e, ok := c.Next()
			if !ok {
				return traveler{}, false
			}
			id := e.InVertex()
			if incoming {
				id = e.OutVertex()
			}
			if v, ok := ev.g.Vertex(id); ok {
				return traveler{current: v, bindings: b}, true
			}
		}
	}
}

func chain(a, b func() (traveler, bool)) func() (traveler, bool) {
	return func() (traveler, bool) {
		if t, ok := a(); ok {
			return t, true
		}
		return b()
	}
}

// --- Branch steps ---

// coalesceStep runs its sub-traversals in order for each traveler and
// emits the output of the first one that produces anything. No branch
// producing output means no output for that traveler.
type coalesceStep struct {
	subs []*Traversal
}

func (s *coalesceStep) wire(up stream, ev *env) stream {
	var pending []traveler
	return func() (traveler, bool) {
		for {
			if len(pending) > 0 {
				t := pending[0]
				pending = pending[1:]
				return t, true
			}
			t, ok := up()
			if !ok {
				return traveler{}, false
			}
			for _, sub := range s.subs {
				if res := runSub(sub, t, ev, 0); len(res) > 0 {
					pending = res
					break
				}
			}
		}
	}
}

// --- Projection ---

// byMod is a select modulator: identity, a property shorthand, or a
// sub-traversal applied to the bound element.
type byMod struct {
	identity bool
	prop     string
	sub      *Traversal
}

// selectStep projects bound labels into a map (or, for a single label, the
// bare bound element). Modulators apply positionally; a modulator that
// produces nothing drops the whole traveler.
type selectStep struct {
	labels []string
	mods   []byMod
}

func (s *selectStep) wire(up stream, ev *env) stream {
	m := &mapStep{apply: func(t traveler, ev *env) (traveler, bool) {
		out := make(map[string]any, len(s.labels))
		for i, label := range s.labels {
			bound, ok := t.bindings.Get(label)
			if !ok {
				ev.fail(ErrUnboundLabel)
				return traveler{}, false
			}
			val, ok := s.modulate(i, bound, t.bindings, ev)
			if !ok {
				return traveler{}, false
			}
			out[label] = val
		}
		if len(s.labels) == 1 {
			return traveler{current: out[s.labels[0]], bindings: t.bindings}, true
		}
		return traveler{current: out, bindings: t.bindings}, true
	}}
	return m.wire(up, ev)
}

func (s *selectStep) modulate(i int, bound any, b *Bindings, ev *env) (any, bool) {
	if i >= len(s.mods) || s.mods[i].identity {
		return bound, true
	}
	mod := s.mods[i]
	if mod.prop != "" {
		el, ok := elementOf(bound)
		if !ok {
			return nil, false
		}
		val, ok := el.Property(mod.prop)
		if !ok {
			return nil, false
		}
		return val, true
	}
	res := runSub(mod.sub, traveler{current: bound, bindings: b}, ev, 1)
	if len(res) == 0 {
		return nil, false
	}
	return res[0].current, true
}
