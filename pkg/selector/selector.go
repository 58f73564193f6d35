package selector

// Kind identifies a cycler variant. Stored in snapshots so state can be
// restored into a cycler of the right shape.
type Kind string

const (
	KindRoundRobin   Kind = "roundrobin"
	KindHierarchical Kind = "hierarchical"
	KindDynamic      Kind = "dynamic"
)

// Cycler is the introspection surface shared by all variants. The
// advance operation is variant-specific (each takes different per-step
// eligibility inputs) and lives on the concrete types.
type Cycler interface {
	// Kind reports the cycler variant.
	Kind() Kind

	// Reset returns the cycler to its initial state and reports the
	// participant that opens the cycle.
	Reset() string

	// Selected returns the identifier chosen by the most recent reset or
	// advance call, or "" before the first call.
	Selected() string

	// IsFirst reports whether the selected participant opens the cycle.
	IsFirst() bool

	// IsLast reports whether the selected participant closes the cycle.
	IsLast() bool

	// Snapshot captures the full cycler state for save/restore.
	Snapshot() Snapshot
}

var (
	_ Cycler = (*RoundRobin)(nil)
	_ Cycler = (*Hierarchical)(nil)
	_ Cycler = (*Dynamic)(nil)
)
