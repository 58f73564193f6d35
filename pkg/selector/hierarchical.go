package selector

// Hierarchical cycles through workstations followed by the coordination
// participant, with a privileged manager that can preempt and rewind the
// cycle at any call. Outside preemption the cycle position grows
// monotonically; only the selection index wraps.
type Hierarchical struct {
	order    []Participant
	roles    roleIndex
	pos      int
	selected string
}

// NewHierarchical creates a preemptible hierarchical cycler. The order
// must contain exactly one manager and exactly one coordination
// participant; workstations are optional (the cycle then degenerates to
// coordination only).
func NewHierarchical(order []Participant) (*Hierarchical, error) {
	h := &Hierarchical{}
	if err := h.Reinit(order); err != nil {
		return nil, err
	}
	return h, nil
}

// NewHierarchicalFromIDs is a convenience constructor that derives roles
// from identifier naming via ParseOrder.
func NewHierarchicalFromIDs(ids []string) (*Hierarchical, error) {
	order, err := ParseOrder(ids)
	if err != nil {
		return nil, err
	}
	return NewHierarchical(order)
}

// Reinit replaces the participant order, recomputes the role partition,
// rewinds the position, and clears the selection.
func (h *Hierarchical) Reinit(order []Participant) error {
	roles, err := indexRoles(order)
	if err != nil {
		return err
	}
	h.order = cloneParticipants(order)
	h.roles = roles
	h.pos = 0
	h.selected = ""
	return nil
}

// Reset rewinds the cycle and selects the manager, which always opens a
// cycle.
func (h *Hierarchical) Reset() string {
	h.pos = 0
	h.selected = h.roles.manager
	return h.selected
}

// Next returns the participant that acts next. When managerActs is true
// and the manager is present in active, the manager preempts and the
// cycle position rewinds to 0. Otherwise the workstations followed by
// coordination form a fixed sub-cycle; the position increments without
// wraparound so callers can observe how far the cycle has run since the
// last preemption.
func (h *Hierarchical) Next(managerActs bool, active map[string]bool) string {
	if len(h.order) == 0 {
		panic("selector: Next called on uninitialized Hierarchical")
	}

	if managerActs && active[h.roles.manager] {
		h.selected = h.roles.manager
		h.pos = 0
		return h.selected
	}

	cycleLen := len(h.roles.workstations) + 1
	cycleIdx := h.pos % cycleLen
	if cycleIdx < len(h.roles.workstations) {
		h.selected = h.roles.workstations[cycleIdx]
	} else {
		h.selected = h.roles.coordination
	}
	h.pos++
	return h.selected
}

// Kind reports the cycler variant.
func (h *Hierarchical) Kind() Kind { return KindHierarchical }

// Selected returns the most recently selected participant, or "" before
// the first reset or advance.
func (h *Hierarchical) Selected() string { return h.selected }

// IsFirst reports whether the manager is selected.
func (h *Hierarchical) IsFirst() bool {
	return h.selected != "" && h.selected == h.roles.manager
}

// IsLast reports whether the coordination participant is selected.
func (h *Hierarchical) IsLast() bool {
	return h.selected != "" && h.selected == h.roles.coordination
}

// Equal reports whether two cyclers have the same order, position, and
// selection.
func (h *Hierarchical) Equal(o *Hierarchical) bool {
	if o == nil {
		return false
	}
	return participantsEqual(h.order, o.order) && h.pos == o.pos && h.selected == o.selected
}

// Snapshot captures the cycler state.
func (h *Hierarchical) Snapshot() Snapshot {
	return Snapshot{
		Kind:     KindHierarchical,
		Order:    cloneParticipants(h.order),
		Position: h.pos,
		Selected: h.selected,
	}
}

// Restore replaces the cycler state with a previously taken snapshot.
func (h *Hierarchical) Restore(s Snapshot) error {
	if s.Kind != KindHierarchical {
		return &SnapshotKindError{Want: KindHierarchical, Got: s.Kind}
	}
	if err := h.Reinit(s.Order); err != nil {
		return err
	}
	h.pos = s.Position
	h.selected = s.Selected
	return nil
}
