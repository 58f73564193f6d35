// Package replay drives cyclers through recorded traces. It is the
// deterministic-replay harness around the selector package: it builds a
// cycler from a trace, applies every step, records the selection and a
// state snapshot per step, and can persist the whole session for later
// inspection or resumption.
package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/me/turnwheel/internal/store"
	"github.com/me/turnwheel/pkg/model"
	"github.com/me/turnwheel/pkg/selector"
)

// Runner replays traces. The store is optional; without one, sessions
// are returned but not persisted.
type Runner struct {
	store  store.Store
	logger *slog.Logger
}

// NewRunner creates a replay runner. st may be nil.
func NewRunner(st store.Store, logger *slog.Logger) *Runner {
	return &Runner{
		store:  st,
		logger: logger.With("component", "replay"),
	}
}

// Result is a completed replay: the session metadata and every recorded
// step, including the opening reset at index 0.
type Result struct {
	Session *model.Session
	Steps   []model.StepRecord
}

// Run replays the trace from a fresh cycler and records each selection.
func (r *Runner) Run(ctx context.Context, trace *Trace) (*Result, error) {
	if err := trace.Validate(); err != nil {
		return nil, err
	}

	cycler, err := buildCycler(trace)
	if err != nil {
		return nil, err
	}
	inputs, err := trace.materialize()
	if err != nil {
		return nil, err
	}

	sess := &model.Session{
		ID:        "ses_" + uuid.New().String()[:8],
		Name:      trace.Name,
		Kind:      trace.Selector,
		Order:     trace.Order,
		CreatedAt: time.Now().UTC(),
	}
	r.logger.Info("replay started", "session_id", sess.ID, "kind", sess.Kind, "steps", len(inputs))

	if r.store != nil {
		if err := r.store.CreateSession(ctx, sess); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
	}

	steps := make([]model.StepRecord, 0, len(inputs)+1)

	// Index 0 is the opening reset.
	opening := cycler.Reset()
	rec, err := r.record(ctx, sess.ID, 0, stepInput{}, opening, cycler)
	if err != nil {
		return nil, err
	}
	steps = append(steps, rec)

	for i, in := range inputs {
		selected, err := advance(cycler, in)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		r.logger.Debug("step", "session_id", sess.ID, "idx", i+1, "selected", selected)

		rec, err := r.record(ctx, sess.ID, i+1, in, selected, cycler)
		if err != nil {
			return nil, err
		}
		steps = append(steps, rec)
	}

	now := time.Now().UTC()
	sess.StepCount = len(steps)
	sess.CompletedAt = &now
	if r.store != nil {
		if err := r.store.UpdateSession(ctx, sess); err != nil {
			return nil, fmt.Errorf("finalize session: %w", err)
		}
	}
	r.logger.Info("replay finished", "session_id", sess.ID, "steps", len(steps))

	return &Result{Session: sess, Steps: steps}, nil
}

// record builds a StepRecord and appends it to the store when present.
func (r *Runner) record(ctx context.Context, sessionID string, idx int, in stepInput, selected string, c selector.Cycler) (model.StepRecord, error) {
	snap := c.Snapshot()
	snapJSON, err := json.Marshal(snap)
	if err != nil {
		return model.StepRecord{}, fmt.Errorf("marshal snapshot: %w", err)
	}

	rec := model.StepRecord{
		SessionID:   sessionID,
		Index:       idx,
		ManagerActs: in.managerActs,
		Activity:    in.activityFlags(),
		Selected:    selected,
		Position:    snap.Position,
		Snapshot:    snapJSON,
	}
	if r.store != nil {
		if err := r.store.AppendStep(ctx, &rec); err != nil {
			return model.StepRecord{}, fmt.Errorf("append step %d: %w", idx, err)
		}
	}
	return rec, nil
}

// Resume rebuilds a persisted session's cycler from its latest snapshot.
func (r *Runner) Resume(ctx context.Context, sessionID string) (selector.Cycler, error) {
	if r.store == nil {
		return nil, fmt.Errorf("resume requires a store")
	}
	data, err := r.store.LatestSnapshot(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if data == nil {
		return nil, fmt.Errorf("session %s has no recorded steps", sessionID)
	}
	var snap selector.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return selector.FromSnapshot(snap)
}

// Verify replays the trace on two identically constructed cyclers in
// lockstep, asserting equal state after every call, and checks that a
// cycler restored from a mid-run snapshot reproduces the remaining
// selections. A nil return means the trace replays deterministically.
func (r *Runner) Verify(ctx context.Context, trace *Trace) error {
	if err := trace.Validate(); err != nil {
		return err
	}

	a, err := buildCycler(trace)
	if err != nil {
		return err
	}
	b, err := buildCycler(trace)
	if err != nil {
		return err
	}
	inputs, err := trace.materialize()
	if err != nil {
		return err
	}

	if ga, gb := a.Reset(), b.Reset(); ga != gb {
		return fmt.Errorf("reset diverged: %q vs %q", ga, gb)
	}

	mid := len(inputs) / 2
	var restored selector.Cycler

	for i, in := range inputs {
		ga, err := advance(a, in)
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		gb, err := advance(b, in)
		if err != nil {
			return fmt.Errorf("step %d (twin): %w", i+1, err)
		}
		if ga != gb {
			return fmt.Errorf("step %d diverged: %q vs %q", i+1, ga, gb)
		}
		if !snapshotsEqual(a.Snapshot(), b.Snapshot()) {
			return fmt.Errorf("step %d: twin cyclers not equal after identical calls", i+1)
		}

		if restored != nil {
			gr, err := advance(restored, in)
			if err != nil {
				return fmt.Errorf("step %d (restored): %w", i+1, err)
			}
			if gr != ga {
				return fmt.Errorf("step %d: restored cycler diverged: %q vs %q", i+1, gr, ga)
			}
		}
		if i == mid {
			restored, err = selector.FromSnapshot(a.Snapshot())
			if err != nil {
				return fmt.Errorf("restore at step %d: %w", i+1, err)
			}
		}
	}

	r.logger.Info("trace verified", "name", trace.Name, "steps", len(inputs))
	return nil
}

// buildCycler constructs the cycler the trace asks for.
func buildCycler(trace *Trace) (selector.Cycler, error) {
	switch selector.Kind(trace.Selector) {
	case selector.KindRoundRobin:
		return selector.NewRoundRobin(trace.Order)
	case selector.KindHierarchical:
		return selector.NewHierarchicalFromIDs(trace.Order)
	case selector.KindDynamic:
		return selector.NewDynamicFromIDs(trace.Order)
	default:
		return nil, fmt.Errorf("unknown selector kind %q", trace.Selector)
	}
}

// advance applies one materialized input to the variant-specific advance
// operation.
func advance(c selector.Cycler, in stepInput) (string, error) {
	switch cy := c.(type) {
	case *selector.RoundRobin:
		return cy.Next(), nil
	case *selector.Hierarchical:
		active := in.activeIDs
		if active == nil {
			// Default: every participant is active.
			active = make(map[string]bool)
			for _, p := range cy.Snapshot().Order {
				active[p.ID] = true
			}
		}
		return cy.Next(in.managerActs, active), nil
	case *selector.Dynamic:
		return cy.Next(in.managerActs, in.active)
	default:
		return "", fmt.Errorf("unsupported cycler %T", c)
	}
}

// snapshotsEqual compares full cycler state, including the remembered
// eligible cycle of the dynamic variant.
func snapshotsEqual(a, b selector.Snapshot) bool {
	if a.Kind != b.Kind || a.Position != b.Position || a.Selected != b.Selected {
		return false
	}
	if len(a.Order) != len(b.Order) || len(a.PreviousCycle) != len(b.PreviousCycle) {
		return false
	}
	for i := range a.Order {
		if a.Order[i] != b.Order[i] {
			return false
		}
	}
	for i := range a.PreviousCycle {
		if a.PreviousCycle[i] != b.PreviousCycle[i] {
			return false
		}
	}
	return true
}
