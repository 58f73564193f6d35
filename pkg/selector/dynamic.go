package selector

// Dynamic recomputes the eligible cycle on every call from a
// per-workstation activity vector. Active workstations plus coordination
// form the cycle; when nothing is active a fallback cycle of all
// workstations, coordination, and the manager guarantees forward
// progress. The position is preserved across calls and rewinds only when
// the computed cycle changes or the manager preempts.
type Dynamic struct {
	order    []Participant
	roles    roleIndex
	pos      int
	selected string
	prev     []string // eligible cycle of the previous advance
}

// NewDynamic creates a dynamic active-set cycler. The order must contain
// exactly one manager and exactly one coordination participant.
func NewDynamic(order []Participant) (*Dynamic, error) {
	d := &Dynamic{}
	if err := d.Reinit(order); err != nil {
		return nil, err
	}
	return d, nil
}

// NewDynamicFromIDs is a convenience constructor that derives roles from
// identifier naming via ParseOrder.
func NewDynamicFromIDs(ids []string) (*Dynamic, error) {
	order, err := ParseOrder(ids)
	if err != nil {
		return nil, err
	}
	return NewDynamic(order)
}

// Reinit replaces the participant order, recomputes the role partition,
// rewinds the position, and clears the selection and the remembered
// eligible cycle.
func (d *Dynamic) Reinit(order []Participant) error {
	roles, err := indexRoles(order)
	if err != nil {
		return err
	}
	d.order = cloneParticipants(order)
	d.roles = roles
	d.pos = 0
	d.selected = ""
	d.prev = nil
	return nil
}

// Reset rewinds the cycle, forgets the previous eligible set, and
// selects the manager.
func (d *Dynamic) Reset() string {
	d.pos = 0
	d.prev = nil
	d.selected = d.roles.manager
	return d.selected
}

// Next returns the participant that acts next, or "" when no participant
// is eligible.
//
// Manager preemption is unconditional for this variant: when managerActs
// is true the manager is selected regardless of any activity signal, the
// position rewinds, and the remembered eligible cycle is cleared.
// Otherwise workstationActive must carry one flag per workstation in
// declaration order; a length mismatch is a contract violation reported
// as an error. The eligible cycle is compared by value against the one
// from the previous call — any change in membership or ordering rewinds
// the position, otherwise the position is preserved so long-running
// cycles behave predictably while eligibility fluctuates.
func (d *Dynamic) Next(managerActs bool, workstationActive []bool) (string, error) {
	if len(d.order) == 0 {
		panic("selector: Next called on uninitialized Dynamic")
	}

	if managerActs {
		d.selected = d.roles.manager
		d.pos = 0
		d.prev = nil
		return d.selected, nil
	}

	if len(workstationActive) != len(d.roles.workstations) {
		return "", &ActivityLengthError{Want: len(d.roles.workstations), Got: len(workstationActive)}
	}

	var active []string
	for i, on := range workstationActive {
		if on {
			active = append(active, d.roles.workstations[i])
		}
	}

	var cycle []string
	if len(active) > 0 {
		cycle = append(active, d.roles.coordination)
	} else {
		// Fallback: full roster plus coordination plus manager, so the
		// manager is eventually reached and universal inactivity cannot
		// stall the process.
		cycle = append(append([]string(nil), d.roles.workstations...), d.roles.coordination, d.roles.manager)
	}

	// Construction guarantees coordination and manager exist, so the
	// cycle cannot compute to empty; defend anyway and signal an empty
	// selection rather than failing elsewhere.
	if len(cycle) == 0 {
		d.selected = ""
		return "", nil
	}

	if !stringsEqual(cycle, d.prev) {
		d.pos = 0
		d.prev = append([]string(nil), cycle...)
	}

	d.selected = cycle[d.pos%len(cycle)]
	d.pos++
	return d.selected, nil
}

// Kind reports the cycler variant.
func (d *Dynamic) Kind() Kind { return KindDynamic }

// Selected returns the most recently selected participant, or "" before
// the first reset or advance (and after an empty selection).
func (d *Dynamic) Selected() string { return d.selected }

// IsFirst reports whether the manager is selected. The comparison is
// against the manager identifier itself, not a position: the eligible
// cycle's composition changes between calls.
func (d *Dynamic) IsFirst() bool {
	return d.selected != "" && d.selected == d.roles.manager
}

// IsLast reports whether the coordination participant is selected.
func (d *Dynamic) IsLast() bool {
	return d.selected != "" && d.selected == d.roles.coordination
}

// Equal reports whether two cyclers have the same order, position, and
// selection.
func (d *Dynamic) Equal(o *Dynamic) bool {
	if o == nil {
		return false
	}
	return participantsEqual(d.order, o.order) && d.pos == o.pos && d.selected == o.selected
}

// Snapshot captures the cycler state, including the remembered eligible
// cycle so change detection survives a save/restore round trip.
func (d *Dynamic) Snapshot() Snapshot {
	return Snapshot{
		Kind:          KindDynamic,
		Order:         cloneParticipants(d.order),
		Position:      d.pos,
		Selected:      d.selected,
		PreviousCycle: append([]string(nil), d.prev...),
	}
}

// Restore replaces the cycler state with a previously taken snapshot.
func (d *Dynamic) Restore(s Snapshot) error {
	if s.Kind != KindDynamic {
		return &SnapshotKindError{Want: KindDynamic, Got: s.Kind}
	}
	if err := d.Reinit(s.Order); err != nil {
		return err
	}
	d.pos = s.Position
	d.selected = s.Selected
	if len(s.PreviousCycle) > 0 {
		d.prev = append([]string(nil), s.PreviousCycle...)
	}
	return nil
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
