package selector

import "fmt"

// Snapshot is a serializable capture of a cycler's full state. Snapshots
// taken with Cycler.Snapshot can be persisted (they marshal to JSON and
// YAML) and later restored with the concrete type's Restore method, or
// turned back into a cycler with FromSnapshot.
type Snapshot struct {
	Kind          Kind          `json:"kind" yaml:"kind"`
	Order         []Participant `json:"order" yaml:"order"`
	Position      int           `json:"position" yaml:"position"`
	Selected      string        `json:"selected,omitempty" yaml:"selected,omitempty"`
	PreviousCycle []string      `json:"previous_cycle,omitempty" yaml:"previous_cycle,omitempty"`
}

// FromSnapshot reconstructs a cycler of the snapshot's kind.
func FromSnapshot(s Snapshot) (Cycler, error) {
	switch s.Kind {
	case KindRoundRobin:
		r := &RoundRobin{}
		if err := r.Restore(s); err != nil {
			return nil, err
		}
		return r, nil
	case KindHierarchical:
		h := &Hierarchical{}
		if err := h.Restore(s); err != nil {
			return nil, err
		}
		return h, nil
	case KindDynamic:
		d := &Dynamic{}
		if err := d.Restore(s); err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("selector: unknown cycler kind %q", s.Kind)
	}
}
