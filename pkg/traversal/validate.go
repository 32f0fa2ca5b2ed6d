package traversal

// validate checks label references before any evaluation happens: a Select
// or WhereNeq naming a label no earlier As (or Match pattern) binds is an
// ErrUnboundLabel at the terminal, not a silent empty result.
//
// Labels bound inside a sub-traversal stay local to it; labels bound by
// Match patterns become visible downstream of the Match step.
func validate(steps []step, outer map[string]struct{}) error {
	bound := make(map[string]struct{}, len(outer))
	for l := range outer {
		bound[l] = struct{}{}
	}
	for _, s := range steps {
		switch st := s.(type) {
		case *asStep:
			bound[st.label] = struct{}{}
		case *selectStep:
			for _, l := range st.labels {
				if _, ok := bound[l]; !ok {
					return ErrUnboundLabel
				}
			}
			for _, m := range st.mods {
				if m.sub != nil {
					if err := validateSub(m.sub, bound); err != nil {
						return err
					}
				}
			}
		case *whereNeqStep:
			if _, ok := bound[st.label]; !ok {
				return ErrUnboundLabel
			}
		case *whereStep:
			if err := validateSub(st.sub, bound); err != nil {
				return err
			}
		case *coalesceStep:
			for _, sub := range st.subs {
				if err := validateSub(sub, bound); err != nil {
					return err
				}
			}
		case *orderStep:
			if err := validateKey(st.key, bound); err != nil {
				return err
			}
		case *groupStep:
			if err := validateKey(st.key, bound); err != nil {
				return err
			}
			if st.reducer != nil {
				if err := validateSub(st.reducer, bound); err != nil {
					return err
				}
			}
		case *matchStep:
			// Patterns may reference each other's labels in any order, so
			// they validate against the union of all pattern labels.
			inner := make(map[string]struct{}, len(bound))
			for l := range bound {
				inner[l] = struct{}{}
			}
			for _, l := range st.labels() {
				inner[l] = struct{}{}
			}
			for _, p := range st.patterns {
				if err := validate(p.inner.steps, inner); err != nil {
					return err
				}
			}
			for _, l := range st.labels() {
				bound[l] = struct{}{}
			}
		}
	}
	return nil
}

// validateSub propagates a sub-traversal's own construction error before
// checking its label references against the enclosing environment.
func validateSub(sub *Traversal, bound map[string]struct{}) error {
	if sub.err != nil {
		return sub.err
	}
	return validate(sub.steps, bound)
}

func validateKey(k Key, bound map[string]struct{}) error {
	if k.sub != nil {
		return validateSub(k.sub, bound)
	}
	return nil
}
