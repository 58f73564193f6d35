package selector

// RoundRobin cycles through a fixed participant order. Next returns each
// identifier exactly once per pass, in declared order, then wraps.
type RoundRobin struct {
	order    []string
	pos      int
	selected string
}

// NewRoundRobin creates a fixed-order cycler. The order must be
// non-empty and free of duplicates.
func NewRoundRobin(order []string) (*RoundRobin, error) {
	r := &RoundRobin{}
	if err := r.Reinit(order); err != nil {
		return nil, err
	}
	return r, nil
}

// Reinit replaces the participant order and rewinds the cycle. The
// selection is cleared; nothing is emitted until the next advance.
func (r *RoundRobin) Reinit(order []string) error {
	if len(order) == 0 {
		return ErrEmptyOrder
	}
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if seen[id] {
			return &DuplicateIDError{ID: id}
		}
		seen[id] = true
	}

	r.order = append([]string(nil), order...)
	r.pos = 0
	r.selected = ""
	return nil
}

// Reset reinitializes to the stored order and performs one advance, so
// it always yields the first participant.
func (r *RoundRobin) Reset() string {
	// Reinit of the already-validated stored order cannot fail.
	r.Reinit(r.order)
	return r.Next()
}

// Next advances the cycle and returns the participant that acts next.
func (r *RoundRobin) Next() string {
	if len(r.order) == 0 {
		panic("selector: Next called on uninitialized RoundRobin")
	}
	r.pos = (r.pos + 1) % len(r.order)
	// The element just passed: pre-increment index, wrapped.
	r.selected = r.order[(r.pos-1+len(r.order))%len(r.order)]
	return r.selected
}

// Kind reports the cycler variant.
func (r *RoundRobin) Kind() Kind { return KindRoundRobin }

// Selected returns the most recently returned participant, or "" before
// the first advance.
func (r *RoundRobin) Selected() string { return r.selected }

// IsFirst reports whether the selected participant is the first in the
// order. False before the first advance.
func (r *RoundRobin) IsFirst() bool {
	return r.selected != "" && r.selected == r.order[0]
}

// IsLast reports whether the selected participant is the last in the
// order. False before the first advance.
func (r *RoundRobin) IsLast() bool {
	return r.selected != "" && r.selected == r.order[len(r.order)-1]
}

// Equal reports whether two cyclers have the same order, position, and
// selection.
func (r *RoundRobin) Equal(o *RoundRobin) bool {
	if o == nil {
		return false
	}
	if len(r.order) != len(o.order) {
		return false
	}
	for i := range r.order {
		if r.order[i] != o.order[i] {
			return false
		}
	}
	return r.pos == o.pos && r.selected == o.selected
}

// Snapshot captures the cycler state.
func (r *RoundRobin) Snapshot() Snapshot {
	order := make([]Participant, len(r.order))
	for i, id := range r.order {
		order[i] = Participant{ID: id}
	}
	return Snapshot{
		Kind:     KindRoundRobin,
		Order:    order,
		Position: r.pos,
		Selected: r.selected,
	}
}

// Restore replaces the cycler state with a previously taken snapshot.
func (r *RoundRobin) Restore(s Snapshot) error {
	if s.Kind != KindRoundRobin {
		return &SnapshotKindError{Want: KindRoundRobin, Got: s.Kind}
	}
	ids := make([]string, len(s.Order))
	for i, p := range s.Order {
		ids[i] = p.ID
	}
	if err := r.Reinit(ids); err != nil {
		return err
	}
	r.pos = s.Position
	r.selected = s.Selected
	return nil
}
