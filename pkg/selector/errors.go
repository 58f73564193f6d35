package selector

import (
	"errors"
	"fmt"
)

// ErrEmptyOrder is returned when a cycler is constructed or
// reinitialized with no participants.
var ErrEmptyOrder = errors.New("selector: participant order is empty")

// DuplicateIDError reports a participant identifier that appears more
// than once in an order.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("selector: duplicate participant %q in order", e.ID)
}

// MissingRoleError reports a required role with no participant.
type MissingRoleError struct {
	Role Role
}

func (e *MissingRoleError) Error() string {
	return fmt.Sprintf("selector: order has no %s participant", e.Role)
}

// MultipleRoleError reports a role that must be unique but is carried by
// more than one participant.
type MultipleRoleError struct {
	Role          Role
	First, Second string
}

func (e *MultipleRoleError) Error() string {
	return fmt.Sprintf("selector: order has multiple %s participants (%q, %q)", e.Role, e.First, e.Second)
}

// UnknownParticipantError reports an identifier that matches no role
// rule, or a participant constructed with an unrecognized role tag.
type UnknownParticipantError struct {
	ID string
}

func (e *UnknownParticipantError) Error() string {
	return fmt.Sprintf("selector: participant %q has no recognized role", e.ID)
}

// ActivityLengthError reports an activity vector whose length does not
// match the cycler's workstation count. This is a caller-contract
// violation, never corrected internally.
type ActivityLengthError struct {
	Want, Got int
}

func (e *ActivityLengthError) Error() string {
	return fmt.Sprintf("selector: activity vector has %d entries, want %d (one per workstation)", e.Got, e.Want)
}

// SnapshotKindError reports a restore attempt with a snapshot taken from
// a different cycler kind.
type SnapshotKindError struct {
	Want, Got Kind
}

func (e *SnapshotKindError) Error() string {
	return fmt.Sprintf("selector: snapshot kind %q cannot restore a %q cycler", e.Got, e.Want)
}
