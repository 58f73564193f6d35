package store

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/me/turnwheel/pkg/model"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func testSession(id string) *model.Session {
	return &model.Session{
		ID:        id,
		Name:      "assembly-line",
		Kind:      "dynamic",
		Order:     []string{"manager", "workstation_0", "workstation_1", "coordination"},
		CreatedAt: time.Now().UTC(),
	}
}

func TestSessionRoundTrip(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	sess := testSession("ses_1")
	if err := st.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := st.GetSession(ctx, "ses_1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got == nil {
		t.Fatal("GetSession returned nil for existing session")
	}
	if got.Name != sess.Name || got.Kind != sess.Kind {
		t.Errorf("got %q/%q, want %q/%q", got.Name, got.Kind, sess.Name, sess.Kind)
	}
	if len(got.Order) != 4 || got.Order[0] != "manager" {
		t.Errorf("order = %v, want original participant order", got.Order)
	}
	if got.CompletedAt != nil {
		t.Error("CompletedAt set on a fresh session")
	}

	// Missing sessions come back as nil, not an error.
	missing, err := st.GetSession(ctx, "ses_nope")
	if err != nil {
		t.Fatalf("GetSession(missing): %v", err)
	}
	if missing != nil {
		t.Errorf("GetSession(missing) = %+v, want nil", missing)
	}
}

func TestUpdateSession(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	sess := testSession("ses_1")
	if err := st.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	now := time.Now().UTC()
	sess.StepCount = 7
	sess.CompletedAt = &now
	if err := st.UpdateSession(ctx, sess); err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}

	got, _ := st.GetSession(ctx, "ses_1")
	if got.StepCount != 7 {
		t.Errorf("StepCount = %d, want 7", got.StepCount)
	}
	if got.CompletedAt == nil {
		t.Error("CompletedAt not persisted")
	}

	if err := st.UpdateSession(ctx, testSession("ses_nope")); err == nil {
		t.Error("UpdateSession on missing session succeeded, want error")
	}
}

func TestListSessions_KindFilterAndPagination(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i, kind := range []string{"dynamic", "dynamic", "roundrobin"} {
		sess := testSession("ses_" + string(rune('a'+i)))
		sess.Kind = kind
		sess.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if err := st.CreateSession(ctx, sess); err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
	}

	all, total, err := st.ListSessions(ctx, model.DefaultListOptions())
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Errorf("total=%d len=%d, want 3/3", total, len(all))
	}
	// Newest first.
	if all[0].ID != "ses_c" {
		t.Errorf("first listed = %q, want ses_c", all[0].ID)
	}

	dyn, total, err := st.ListSessions(ctx, model.ListOptions{Limit: 1, Kind: "dynamic"})
	if err != nil {
		t.Fatalf("ListSessions(kind): %v", err)
	}
	if total != 2 {
		t.Errorf("filtered total = %d, want 2", total)
	}
	if len(dyn) != 1 {
		t.Errorf("page len = %d, want 1 (limit)", len(dyn))
	}
}

func TestStepsRoundTrip(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	if err := st.CreateSession(ctx, testSession("ses_1")); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	snaps := []string{`{"kind":"dynamic","position":1}`, `{"kind":"dynamic","position":2}`}
	for i, snap := range snaps {
		step := &model.StepRecord{
			SessionID:   "ses_1",
			Index:       i,
			ManagerActs: i == 1,
			Activity:    []int{1, 0},
			Selected:    "workstation_0",
			Position:    i + 1,
			Snapshot:    json.RawMessage(snap),
		}
		if err := st.AppendStep(ctx, step); err != nil {
			t.Fatalf("AppendStep(%d): %v", i, err)
		}
	}

	steps, err := st.ListSteps(ctx, "ses_1")
	if err != nil {
		t.Fatalf("ListSteps: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("len(steps) = %d, want 2", len(steps))
	}
	if steps[0].ManagerActs || !steps[1].ManagerActs {
		t.Errorf("manager_acts flags = %v/%v, want false/true", steps[0].ManagerActs, steps[1].ManagerActs)
	}
	if len(steps[0].Activity) != 2 || steps[0].Activity[0] != 1 {
		t.Errorf("activity = %v, want [1 0]", steps[0].Activity)
	}

	step, err := st.GetStep(ctx, "ses_1", 1)
	if err != nil {
		t.Fatalf("GetStep: %v", err)
	}
	if step == nil || step.Position != 2 {
		t.Fatalf("GetStep(1) = %+v, want position 2", step)
	}

	missing, err := st.GetStep(ctx, "ses_1", 99)
	if err != nil {
		t.Fatalf("GetStep(missing): %v", err)
	}
	if missing != nil {
		t.Errorf("GetStep(missing) = %+v, want nil", missing)
	}

	latest, err := st.LatestSnapshot(ctx, "ses_1")
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if string(latest) != snaps[1] {
		t.Errorf("LatestSnapshot = %s, want %s", latest, snaps[1])
	}

	none, err := st.LatestSnapshot(ctx, "ses_empty")
	if err != nil {
		t.Fatalf("LatestSnapshot(empty): %v", err)
	}
	if none != nil {
		t.Errorf("LatestSnapshot(empty) = %s, want nil", none)
	}
}

func TestDeleteSessionCascadesSteps(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	if err := st.CreateSession(ctx, testSession("ses_1")); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := st.AppendStep(ctx, &model.StepRecord{SessionID: "ses_1", Index: 0, Selected: "manager"}); err != nil {
		t.Fatalf("AppendStep: %v", err)
	}

	if err := st.DeleteSession(ctx, "ses_1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	steps, err := st.ListSteps(ctx, "ses_1")
	if err != nil {
		t.Fatalf("ListSteps: %v", err)
	}
	if len(steps) != 0 {
		t.Errorf("steps survived session delete: %d", len(steps))
	}

	if err := st.DeleteSession(ctx, "ses_1"); err == nil {
		t.Error("DeleteSession twice succeeded, want error")
	}
}
