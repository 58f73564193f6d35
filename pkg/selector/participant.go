// Package selector implements turn-order cyclers for multi-participant
// turn-based processes: a fixed round robin, a manager-preemptible
// hierarchical cycle, and a dynamic active-set cycle. A cycler decides,
// once per step, which participant acts next. Cyclers are sequential and
// not safe for concurrent use; the caller serializes all calls.
package selector

import "strings"

// Role tags a participant with its scheduling role. Roles are fixed at
// construction time and checked as an invariant, rather than inferred
// from identifier names on every call.
type Role string

const (
	// RoleManager is the privileged participant that can preempt the
	// cycle at any time.
	RoleManager Role = "manager"
	// RoleCoordination closes every cycle.
	RoleCoordination Role = "coordination"
	// RoleWorkstation participants form the body of the cycle.
	RoleWorkstation Role = "workstation"
)

// Participant is a single entry in a cycler's participant order.
type Participant struct {
	ID   string `json:"id" yaml:"id"`
	Role Role   `json:"role" yaml:"role"`
}

// ParseOrder derives role-tagged participants from plain identifiers
// using the conventional naming scheme: "manager", "coordination", and
// identifiers carrying the "workstation" prefix. Identifiers matching no
// rule are rejected so role membership stays a checked invariant.
func ParseOrder(ids []string) ([]Participant, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyOrder
	}

	ps := make([]Participant, 0, len(ids))
	for _, id := range ids {
		switch {
		case id == "manager":
			ps = append(ps, Participant{ID: id, Role: RoleManager})
		case id == "coordination":
			ps = append(ps, Participant{ID: id, Role: RoleCoordination})
		case strings.HasPrefix(id, "workstation"):
			ps = append(ps, Participant{ID: id, Role: RoleWorkstation})
		default:
			return nil, &UnknownParticipantError{ID: id}
		}
	}
	return ps, nil
}

// roleIndex holds the derived, read-only role partition of a participant
// order. Recomputed only on (re)initialization.
type roleIndex struct {
	manager      string
	coordination string
	workstations []string
}

// indexRoles validates a participant order and partitions it by role.
// Exactly one manager and exactly one coordination participant are
// required; workstations may be absent.
func indexRoles(order []Participant) (roleIndex, error) {
	var idx roleIndex
	if len(order) == 0 {
		return idx, ErrEmptyOrder
	}

	seen := make(map[string]bool, len(order))
	for _, p := range order {
		if seen[p.ID] {
			return idx, &DuplicateIDError{ID: p.ID}
		}
		seen[p.ID] = true

		switch p.Role {
		case RoleManager:
			if idx.manager != "" {
				return idx, &MultipleRoleError{Role: RoleManager, First: idx.manager, Second: p.ID}
			}
			idx.manager = p.ID
		case RoleCoordination:
			if idx.coordination != "" {
				return idx, &MultipleRoleError{Role: RoleCoordination, First: idx.coordination, Second: p.ID}
			}
			idx.coordination = p.ID
		case RoleWorkstation:
			idx.workstations = append(idx.workstations, p.ID)
		default:
			return idx, &UnknownParticipantError{ID: p.ID}
		}
	}

	if idx.manager == "" {
		return idx, &MissingRoleError{Role: RoleManager}
	}
	if idx.coordination == "" {
		return idx, &MissingRoleError{Role: RoleCoordination}
	}
	return idx, nil
}

// cloneParticipants returns a defensive copy of the order so callers
// cannot mutate cycler state through the original slice.
func cloneParticipants(order []Participant) []Participant {
	out := make([]Participant, len(order))
	copy(out, order)
	return out
}

func participantsEqual(a, b []Participant) bool {
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
