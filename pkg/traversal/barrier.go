package traversal

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

// Barrier steps consume their entire upstream before emitting anything.
// They are the synchronization points of an otherwise streaming pipeline.

// drain pulls the upstream dry. Stops early if the environment failed.
func drain(up stream, ev *env) []traveler {
	var all []traveler
	for {
		t, ok := up()
		if !ok || ev.err != nil {
			return all
		}
		all = append(all, t)
	}
}

// barrierStep wraps a drain-then-emit computation.
type barrierStep struct {
	emit func(in []traveler, ev *env) []traveler
}

func (s *barrierStep) wire(up stream, ev *env) stream {
	var out []traveler
	done := false
	pos := 0
	return func() (traveler, bool) {
		if !done {
			out = s.emit(drain(up, ev), ev)
			done = true
		}
		if pos >= len(out) || ev.err != nil {
			return traveler{}, false
		}
		t := out[pos]
		pos++
		return t, true
	}
}

// --- Numeric reducers ---

// numbersOf extracts the numeric payloads of the upstream scalars. Values
// that are not numbers are skipped, not errors.
func numbersOf(in []traveler) []float64 {
	var nums []float64
	for _, t := range in {
		if v, ok := valueOf(t.current); ok {
			if f, ok := v.Number(); ok {
				nums = append(nums, f)
			}
		}
	}
	return nums
}

func countStep() step {
	return &barrierStep{emit: func(in []traveler, _ *env) []traveler {
		// Count over an empty upstream is 0, not absence.
		return []traveler{{current: graph.Int(int64(len(in)))}}
	}}
}

func sumStep() step {
	return numericReducer(func(nums []float64) graph.Value {
		return graph.Double(floats.Sum(nums))
	})
}

func meanStep() step {
	return numericReducer(func(nums []float64) graph.Value {
		return graph.Double(stat.Mean(nums, nil))
	})
}

func minStep() step {
	return numericReducer(func(nums []float64) graph.Value {
		return graph.Double(floats.Min(nums))
	})
}

func maxStep() step {
	return numericReducer(func(nums []float64) graph.Value {
		return graph.Double(floats.Max(nums))
	})
}

// numericReducer emits a single value, or nothing at all when the upstream
// held no numbers. Callers guard the empty case with Coalesce.
func numericReducer(reduce func([]float64) graph.Value) step {
	return &barrierStep{emit: func(in []traveler, _ *env) []traveler {
		nums := numbersOf(in)
		if len(nums) == 0 {
			return nil
		}
		return []traveler{{current: reduce(nums)}}
	}}
}

// --- Sort keys ---

// Key extracts the sort or group key from a traveler. Build one with
// PropertyKey, LabelKey, IdentityKey, FuncKey or TraversalKey.
type Key struct {
	kind keyKind
	prop string
	sub  *Traversal
	fn   func(any) (graph.Value, bool)
}

type keyKind uint8

const (
	keyIdentity keyKind = iota
	keyProperty
	keyLabel
	keyFunc
	keySub
)

// IdentityKey keys a scalar stream by the values themselves.
func IdentityKey() Key { return Key{kind: keyIdentity} }

// PropertyKey keys elements by the named property.
func PropertyKey(name string) Key { return Key{kind: keyProperty, prop: name} }

// LabelKey keys elements by their label.
func LabelKey() Key { return Key{kind: keyLabel} }

// FuncKey keys travelers by an arbitrary function of the current element.
// A false return means "no key": the traveler is excluded.
func FuncKey(fn func(any) (graph.Value, bool)) Key { return Key{kind: keyFunc, fn: fn} }

// TraversalKey keys travelers by the first result of a sub-traversal run
// from the current element.
func TraversalKey(sub *Traversal) Key { return Key{kind: keySub, sub: sub} }

func (k Key) of(t traveler, ev *env) (graph.Value, bool) {
	switch k.kind {
	case keyIdentity:
		return valueOf(t.current)
	case keyProperty:
		el, ok := elementOf(t.current)
		if !ok {
			return graph.Value{}, false
		}
		return el.Property(k.prop)
	case keyLabel:
		el, ok := elementOf(t.current)
		if !ok {
			return graph.Value{}, false
		}
		return graph.String(el.Label()), true
	case keyFunc:
		return k.fn(t.current)
	case keySub:
		res := runSub(k.sub, t, ev, 1)
		if len(res) == 0 {
			return graph.Value{}, false
		}
		return valueOf(res[0].current)
	default:
		return graph.Value{}, false
	}
}

// Ord is a sort direction.
type Ord uint8

const (
	// Asc sorts ascending.
	Asc Ord = iota
	// Desc sorts descending.
	Desc
)

// orderStep sorts the whole upstream by key. The sort is stable: ties keep
// their upstream relative order. Travelers without a key sort first.
type orderStep struct {
	key Key
	dir Ord
}

func (s *orderStep) wire(up stream, ev *env) stream {
	b := &barrierStep{emit: func(in []traveler, ev *env) []traveler {
		type keyed struct {
			t    traveler
			key  graph.Value
			hasK bool
		}
		rows := make([]keyed, len(in))
		for i, t := range in {
			k, ok := s.key.of(t, ev)
			rows[i] = keyed{t: t, key: k, hasK: ok}
		}
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i], rows[j]
			if a.hasK != b.hasK {
				return !a.hasK
			}
			c := a.key.Compare(b.key)
			if s.dir == Desc {
				return c > 0
			}
			return c < 0
		})
		out := make([]traveler, len(rows))
		for i, r := range rows {
			out[i] = r.t
		}
		return out
	}}
	return b.wire(up, ev)
}

// --- Grouping ---

// Entry is one key/value pair of an OrderedMap.
type Entry struct {
	Key   graph.Value
	Value any
}

// OrderedMap is the result type of group and groupCount: a mapping whose
// entries remember first-seen key order, so downstream local ordering and
// truncation are deterministic.
type OrderedMap struct {
	keys []graph.Value
	vals map[graph.Value]any
}

func newOrderedMap() *OrderedMap {
	return &OrderedMap{vals: make(map[graph.Value]any)}
}

// Len returns the number of entries.
func (m *OrderedMap) Len() int { return len(m.keys) }

// Keys returns the keys in entry order. Callers must not mutate it.
func (m *OrderedMap) Keys() []graph.Value { return m.keys }

// Get returns the value stored under key.
func (m *OrderedMap) Get(key graph.Value) (any, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Entries returns the entries in order.
func (m *OrderedMap) Entries() []Entry {
	out := make([]Entry, len(m.keys))
	for i, k := range m.keys {
		out[i] = Entry{Key: k, Value: m.vals[k]}
	}
	return out
}

func (m *OrderedMap) put(key graph.Value, v any) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

func (m *OrderedMap) reorder(entries []Entry) {
	m.keys = m.keys[:0]
	for _, e := range entries {
		m.keys = append(m.keys, e.Key)
	}
}

// groupStep partitions the upstream by key into an OrderedMap. With a
// reducer, each bucket is replaced by the result of running the reducer
// sub-traversal over the bucket's elements (a single output stays bare, a
// multi-output bucket stays a list).
type groupStep struct {
	key     Key
	reducer *Traversal
	counts  bool
}

func (s *groupStep) wire(up stream, ev *env) stream {
	b := &barrierStep{emit: func(in []traveler, ev *env) []traveler {
		m := newOrderedMap()
		buckets := make(map[graph.Value][]traveler)
		for _, t := range in {
			k, ok := s.key.of(t, ev)
			if !ok {
				continue
			}
			if s.counts {
				n, _ := m.vals[k].(int64)
				m.put(k, n+1)
				continue
			}
			if _, seen := buckets[k]; !seen {
				m.put(k, nil)
			}
			buckets[k] = append(buckets[k], t)
		}
		if !s.counts {
			for _, k := range m.keys {
				m.vals[k] = s.finishBucket(buckets[k], ev)
			}
		}
		return []traveler{{current: m}}
	}}
	return b.wire(up, ev)
}

func (s *groupStep) finishBucket(bucket []traveler, ev *env) any {
	if s.reducer == nil {
		out := make([]any, len(bucket))
		for i, t := range bucket {
			out[i] = t.current
		}
		return out
	}
	res := runSubMulti(s.reducer, bucket, ev, 0)
	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0].current
	default:
		out := make([]any, len(res))
		for i, t := range res {
			out[i] = t.current
		}
		return out
	}
}

// --- Local-scope collection transforms ---
//
// These are deliberately separate operations from their global cousins:
// they act on the entries of one OrderedMap (or one list) produced by a
// barrier, not on the traversal's own stream.

// LocalOrd selects what the local sort compares.
type LocalOrd uint8

const (
	// LocalKeys sorts map entries by key.
	LocalKeys LocalOrd = iota
	// LocalValues sorts map entries by value.
	LocalValues
)

type orderLocalStep struct {
	by  LocalOrd
	dir Ord
}

func (s *orderLocalStep) wire(up stream, ev *env) stream {
	m := &mapStep{apply: func(t traveler, _ *env) (traveler, bool) {
		om, ok := t.current.(*OrderedMap)
		if !ok {
			return traveler{}, false
		}
		entries := om.Entries()
		sort.SliceStable(entries, func(i, j int) bool {
			var c int
			if s.by == LocalKeys {
				c = entries[i].Key.Compare(entries[j].Key)
			} else {
				c = compareAny(entries[i].Value, entries[j].Value)
			}
			if s.dir == Desc {
				return c > 0
			}
			return c < 0
		})
		om.reorder(entries)
		return t, true
	}}
	return m.wire(up, ev)
}

// compareAny orders map values: numbers and strings via Value.Compare,
// anything else keeps its place.
func compareAny(a, b any) int {
	av, aok := toValue(a)
	bv, bok := toValue(b)
	if !aok || !bok {
		return 0
	}
	return av.Compare(bv)
}

func toValue(x any) (graph.Value, bool) {
	switch v := x.(type) {
	case graph.Value:
		return v, true
	case int64:
		return graph.Int(v), true
	case int:
		return graph.Int(int64(v)), true
	case float64:
		return graph.Double(v), true
	default:
		return graph.Value{}, false
	}
}

type limitLocalStep struct {
	n int
}

func (s *limitLocalStep) wire(up stream, ev *env) stream {
	m := &mapStep{apply: func(t traveler, _ *env) (traveler, bool) {
		switch cur := t.current.(type) {
		case *OrderedMap:
			if len(cur.keys) > s.n {
				trimmed := newOrderedMap()
				for _, k := range cur.keys[:s.n] {
					trimmed.put(k, cur.vals[k])
				}
				t.current = trimmed
			}
			return t, true
		case []any:
			if len(cur) > s.n {
				t.current = cur[:s.n]
			}
			return t, true
		default:
			return traveler{}, false
		}
	}}
	return m.wire(up, ev)
}
