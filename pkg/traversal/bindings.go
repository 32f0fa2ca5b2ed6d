package traversal

// Bindings is the environment of "as" labels accumulated while a traveler
// advances through a pipeline. It is immutable: With returns a derived
// environment sharing the tail with its parent, so extending is O(1) and a
// binding, once made, is never removed or overwritten for that traveler's
// descendants (later bindings of the same label shadow earlier ones).
type Bindings struct {
	parent *Bindings
	label  string
	value  any
}

// With returns a new environment extending b with label bound to value.
// A nil receiver is the empty environment.
func (b *Bindings) With(label string, value any) *Bindings {
	return &Bindings{parent: b, label: label, value: value}
}

// Get returns the innermost binding for label.
func (b *Bindings) Get(label string) (any, bool) {
	for e := b; e != nil; e = e.parent {
		if e.label == label {
			return e.value, true
		}
	}
	return nil, false
}

// Has reports whether label is bound.
func (b *Bindings) Has(label string) bool {
	_, ok := b.Get(label)
	return ok
}

// Labels returns the bound labels in insertion order, oldest first,
// without duplicates (shadowed entries are skipped).
func (b *Bindings) Labels() []string {
	var rev []string
	seen := make(map[string]struct{})
	for e := b; e != nil; e = e.parent {
		if _, dup := seen[e.label]; dup {
			continue
		}
		seen[e.label] = struct{}{}
		rev = append(rev, e.label)
	}
	// Walked innermost-first; reverse to insertion order.
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}
