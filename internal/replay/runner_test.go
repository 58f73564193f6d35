package replay

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/me/turnwheel/internal/store"
)

func testRunner(t *testing.T, withStore bool) (*Runner, store.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var st store.Store
	if withStore {
		sq, err := store.NewSQLiteStore(":memory:", logger)
		if err != nil {
			t.Fatalf("NewSQLiteStore: %v", err)
		}
		if err := sq.Migrate(context.Background()); err != nil {
			t.Fatalf("Migrate: %v", err)
		}
		t.Cleanup(func() { sq.Close() })
		st = sq
	}
	return NewRunner(st, logger), st
}

func dynamicTrace() *Trace {
	return &Trace{
		Name:     "assembly-line",
		Selector: "dynamic",
		Order:    []string{"manager", "workstation_0", "workstation_1", "coordination"},
		Steps: []TraceStep{
			{Active: []int{1, 0}},
			{Active: []int{1, 0}},
			{ManagerActs: true},
			{Active: []int{0, 0}},
		},
	}
}

func TestRun_DynamicSelections(t *testing.T) {
	r, _ := testRunner(t, false)

	res, err := r.Run(context.Background(), dynamicTrace())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"manager", "workstation_0", "coordination", "manager", "workstation_0"}
	if len(res.Steps) != len(want) {
		t.Fatalf("len(steps) = %d, want %d", len(res.Steps), len(want))
	}
	for i, w := range want {
		if res.Steps[i].Selected != w {
			t.Errorf("step %d selected = %q, want %q", i, res.Steps[i].Selected, w)
		}
	}
	if res.Session.StepCount != len(want) {
		t.Errorf("StepCount = %d, want %d", res.Session.StepCount, len(want))
	}
	if res.Session.CompletedAt == nil {
		t.Error("session not finalized")
	}
	for i, rec := range res.Steps {
		if len(rec.Snapshot) == 0 {
			t.Errorf("step %d has no snapshot", i)
		}
	}
}

func TestRun_RoundRobin(t *testing.T) {
	r, _ := testRunner(t, false)

	trace := &Trace{
		Name:     "two-players",
		Selector: "roundrobin",
		Order:    []string{"player1", "player2"},
		Steps:    make([]TraceStep, 3),
	}
	res, err := r.Run(context.Background(), trace)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"player1", "player2", "player1", "player2"}
	for i, w := range want {
		if res.Steps[i].Selected != w {
			t.Errorf("step %d selected = %q, want %q", i, res.Steps[i].Selected, w)
		}
	}
}

func TestRun_HierarchicalActiveSet(t *testing.T) {
	r, _ := testRunner(t, false)

	trace := &Trace{
		Name:     "line",
		Selector: "hierarchical",
		Order:    []string{"manager", "workstation_0", "coordination"},
		Steps: []TraceStep{
			{},
			// Preemption attempt while the manager is inactive: the
			// ordinary sub-cycle proceeds.
			{ManagerActs: true, ActiveIDs: []string{"workstation_0", "coordination"}},
			{ManagerActs: true},
		},
	}
	res, err := r.Run(context.Background(), trace)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"manager", "workstation_0", "coordination", "manager"}
	for i, w := range want {
		if res.Steps[i].Selected != w {
			t.Errorf("step %d selected = %q, want %q", i, res.Steps[i].Selected, w)
		}
	}
}

func TestRun_ScriptedTrace(t *testing.T) {
	r, _ := testRunner(t, false)

	trace := &Trace{
		Name:     "scripted",
		Selector: "dynamic",
		Order:    []string{"manager", "workstation_0", "workstation_1", "coordination"},
		Script: `
function step(i) {
	return { manager_acts: i === 2, active: [1, 1] };
}`,
		ScriptSteps: 4,
	}
	res, err := r.Run(context.Background(), trace)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"manager", "workstation_0", "workstation_1", "manager", "workstation_0"}
	for i, w := range want {
		if res.Steps[i].Selected != w {
			t.Errorf("step %d selected = %q, want %q", i, res.Steps[i].Selected, w)
		}
	}
}

func TestRun_PersistsSession(t *testing.T) {
	r, st := testRunner(t, true)
	ctx := context.Background()

	res, err := r.Run(ctx, dynamicTrace())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	sess, err := st.GetSession(ctx, res.Session.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if sess == nil {
		t.Fatal("session not persisted")
	}
	if sess.StepCount != len(res.Steps) {
		t.Errorf("persisted StepCount = %d, want %d", sess.StepCount, len(res.Steps))
	}

	steps, err := st.ListSteps(ctx, res.Session.ID)
	if err != nil {
		t.Fatalf("ListSteps: %v", err)
	}
	if len(steps) != len(res.Steps) {
		t.Fatalf("persisted steps = %d, want %d", len(steps), len(res.Steps))
	}
	for i, rec := range steps {
		if rec.Selected != res.Steps[i].Selected {
			t.Errorf("persisted step %d selected = %q, want %q", i, rec.Selected, res.Steps[i].Selected)
		}
	}
}

func TestResume(t *testing.T) {
	r, _ := testRunner(t, true)
	ctx := context.Background()

	res, err := r.Run(ctx, dynamicTrace())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	c, err := r.Resume(ctx, res.Session.ID)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	snap := c.Snapshot()
	last := res.Steps[len(res.Steps)-1]
	if snap.Selected != last.Selected || snap.Position != last.Position {
		t.Errorf("resumed state %q/%d, want %q/%d", snap.Selected, snap.Position, last.Selected, last.Position)
	}

	if _, err := r.Resume(ctx, "ses_nope"); err == nil {
		t.Error("Resume of unknown session succeeded, want error")
	}
}

func TestVerify(t *testing.T) {
	r, _ := testRunner(t, false)

	if err := r.Verify(context.Background(), dynamicTrace()); err != nil {
		t.Errorf("Verify: %v", err)
	}

	scripted := &Trace{
		Name:     "scripted",
		Selector: "dynamic",
		Order:    []string{"manager", "workstation_0", "workstation_1", "coordination"},
		Script: `
function step(i) {
	return { manager_acts: i % 5 === 0, active: [i % 2, (i + 1) % 2] };
}`,
		ScriptSteps: 12,
	}
	if err := r.Verify(context.Background(), scripted); err != nil {
		t.Errorf("Verify(scripted): %v", err)
	}
}

func TestRun_ContractViolationSurfaces(t *testing.T) {
	r, _ := testRunner(t, false)

	trace := dynamicTrace()
	trace.Steps = []TraceStep{{Active: []int{1}}} // one flag, two workstations

	if _, err := r.Run(context.Background(), trace); err == nil {
		t.Error("Run with mismatched activity vector succeeded, want error")
	}
}

func TestTraceValidate(t *testing.T) {
	tests := []struct {
		name  string
		trace Trace
	}{
		{"missing kind", Trace{Order: []string{"a"}, Steps: []TraceStep{{}}}},
		{"unknown kind", Trace{Selector: "lottery", Order: []string{"a"}, Steps: []TraceStep{{}}}},
		{"no order", Trace{Selector: "roundrobin", Steps: []TraceStep{{}}}},
		{"no steps or script", Trace{Selector: "roundrobin", Order: []string{"a"}}},
		{"steps and script", Trace{Selector: "roundrobin", Order: []string{"a"}, Steps: []TraceStep{{}}, Script: "function step(i){}"}},
		{"script without count", Trace{Selector: "roundrobin", Order: []string{"a"}, Script: "function step(i){}"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.trace.Validate(); err == nil {
				t.Error("Validate succeeded, want error")
			}
		})
	}
}

func TestParseTrace(t *testing.T) {
	doc := []byte(`
name: assembly-line
selector: dynamic
order: [manager, workstation_0, workstation_1, coordination]
steps:
  - active: [1, 0]
  - active: [1, 0]
  - manager_acts: true
`)
	trace, err := ParseTrace(doc)
	if err != nil {
		t.Fatalf("ParseTrace: %v", err)
	}
	if trace.Selector != "dynamic" || len(trace.Order) != 4 || len(trace.Steps) != 3 {
		t.Errorf("parsed trace = %+v", trace)
	}
	if !trace.Steps[2].ManagerActs {
		t.Error("manager_acts not parsed")
	}

	if _, err := ParseTrace([]byte("selector: [")); err == nil {
		t.Error("ParseTrace with invalid YAML succeeded")
	}
}
