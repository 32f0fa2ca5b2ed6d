package traversal

import (
	"fmt"
	"strings"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

// Match is a constraint-satisfaction join. Every pattern is an anonymous
// traversal of the form As(a).<moves/filters>.As(b): "the element bound to
// a reaches, via this traversal, the element bound to b". Patterns sharing
// labels constrain each other; the step emits one traveler per combination
// of bindings satisfying all patterns at once.
//
// Evaluation picks, at each depth, the first pattern whose start label is
// already bound, runs it from that element and either checks the result
// against an existing end binding or binds the end label and recurses,
// backtracking on failure. The pattern order given by the caller therefore
// affects cost, never the result set.

// parsedPattern is one join constraint with its As boundaries stripped.
type parsedPattern struct {
	start string
	end   string // empty for filter-only patterns
	inner *Traversal
}

func parsePattern(p *Traversal) (parsedPattern, error) {
	if p.err != nil {
		return parsedPattern{}, p.err
	}
	steps := p.steps
	if len(steps) == 0 {
		return parsedPattern{}, ErrMalformedPattern
	}
	first, ok := steps[0].(*asStep)
	if !ok {
		return parsedPattern{}, ErrMalformedPattern
	}
	pp := parsedPattern{start: first.label}
	steps = steps[1:]
	if len(steps) > 0 {
		if last, ok := steps[len(steps)-1].(*asStep); ok {
			pp.end = last.label
			steps = steps[:len(steps)-1]
		}
	}
	pp.inner = &Traversal{steps: steps}
	return pp, nil
}

type matchStep struct {
	patterns []parsedPattern
	seed     string
}

func newMatchStep(patterns []*Traversal) (*matchStep, error) {
	s := &matchStep{}
	for i, p := range patterns {
		pp, err := parsePattern(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i, err)
		}
		s.patterns = append(s.patterns, pp)
	}
	s.seed = s.seedLabel()
	return s, nil
}

// seedLabel picks the label the incoming element binds to when nothing is
// bound yet. It is a function of the pattern *set*, never of pattern order:
// the smallest start label that no pattern produces as its end, falling
// back to the smallest start label when every start is also an end.
func (s *matchStep) seedLabel() string {
	ends := make(map[string]struct{})
	for _, p := range s.patterns {
		if p.end != "" {
			ends[p.end] = struct{}{}
		}
	}
	root, lowest := "", ""
	for _, p := range s.patterns {
		if lowest == "" || p.start < lowest {
			lowest = p.start
		}
		if _, produced := ends[p.start]; produced {
			continue
		}
		if root == "" || p.start < root {
			root = p.start
		}
	}
	if root != "" {
		return root
	}
	return lowest
}

// labels returns every binding label the patterns mention.
func (s *matchStep) labels() []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(l string) {
		if l == "" {
			return
		}
		if _, dup := seen[l]; !dup {
			seen[l] = struct{}{}
			out = append(out, l)
		}
	}
	for _, p := range s.patterns {
		add(p.start)
		add(p.end)
	}
	return out
}

func (s *matchStep) wire(up stream, ev *env) stream {
	var pending []traveler
	return func() (traveler, bool) {
		for {
			if len(pending) > 0 {
				t := pending[0]
				pending = pending[1:]
				return t, true
			}
			t, ok := up()
			if !ok || ev.err != nil {
				return traveler{}, false
			}
			pending = s.solveFor(t, ev)
		}
	}
}

// solveFor computes every satisfying binding combination for one incoming
// traveler. When no pattern can be rooted from the existing bindings, the
// traveler's element seeds the label chosen by seedLabel; seeding never
// happens otherwise, so reordering the patterns cannot change the result.
func (s *matchStep) solveFor(t traveler, ev *env) []traveler {
	b := t.bindings
	rooted := false
	for _, p := range s.patterns {
		if b.Has(p.start) {
			rooted = true
			break
		}
	}
	if !rooted && len(s.patterns) > 0 {
		if _, ok := elementOf(t.current); !ok {
			return nil
		}
		b = b.With(s.seed, t.current)
	}

	var out []traveler
	emitted := make(map[string]struct{})
	remaining := make([]parsedPattern, len(s.patterns))
	copy(remaining, s.patterns)

	s.solve(remaining, b, ev, func(final *Bindings) {
		key := s.comboKey(final)
		if _, dup := emitted[key]; dup {
			return
		}
		emitted[key] = struct{}{}
		out = append(out, traveler{current: t.current, bindings: final})
	})
	return out
}

func (s *matchStep) solve(remaining []parsedPattern, b *Bindings, ev *env, emit func(*Bindings)) {
	if ev.err != nil {
		return
	}
	if len(remaining) == 0 {
		emit(b)
		return
	}

	// Pick the first pattern rooted in an existing binding.
	pick := -1
	for i, p := range remaining {
		if b.Has(p.start) {
			pick = i
			break
		}
	}
	if pick < 0 {
		// No pattern can be rooted: the pattern set is disconnected from
		// every binding, which no evaluation order can fix.
		ev.fail(ErrUnboundLabel)
		return
	}
	p := remaining[pick]
	rest := make([]parsedPattern, 0, len(remaining)-1)
	rest = append(rest, remaining[:pick]...)
	rest = append(rest, remaining[pick+1:]...)

	startVal, _ := b.Get(p.start)
	results := runSub(p.inner, traveler{current: startVal, bindings: b}, ev, 0)

	if p.end == "" {
		// Filter-only constraint: any result satisfies it.
		if len(results) > 0 {
			s.solve(rest, b, ev, emit)
		}
		return
	}

	if bound, ok := b.Get(p.end); ok {
		for _, r := range results {
			if identKey(r.current) == identKey(bound) {
				s.solve(rest, b, ev, emit)
				return
			}
		}
		return
	}

	for _, r := range results {
		s.solve(rest, b.With(p.end, r.current), ev, emit)
	}
}

// comboKey builds a canonical identity for one satisfying combination so
// that duplicate solutions (reached through different intermediate paths)
// collapse into a single output traveler.
func (s *matchStep) comboKey(b *Bindings) string {
	var sb strings.Builder
	for _, label := range s.labels() {
		v, _ := b.Get(label)
		sb.WriteString(label)
		sb.WriteByte('=')
		sb.WriteString(identKey(v))
		sb.WriteByte(';')
	}
	return sb.String()
}

// identKey gives every bindable value a stable identity: elements by arena
// id, scalars by rendered value.
func identKey(x any) string {
	switch v := x.(type) {
	case *graph.Vertex:
		return fmt.Sprintf("v:%d", v.ID())
	case *graph.Edge:
		return fmt.Sprintf("e:%d", v.ID())
	case graph.Value:
		return "s:" + v.GoString()
	default:
		return fmt.Sprintf("x:%v", v)
	}
}
