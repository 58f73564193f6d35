package replay

import "testing"

func TestStepper(t *testing.T) {
	s, err := NewStepper(dynamicTrace())
	if err != nil {
		t.Fatalf("NewStepper: %v", err)
	}

	if got := s.Cycler().Selected(); got != "manager" {
		t.Fatalf("opening selection = %q, want manager", got)
	}
	if s.Remaining() != 4 {
		t.Fatalf("Remaining = %d, want 4", s.Remaining())
	}

	want := []string{"workstation_0", "coordination", "manager", "workstation_0"}
	for i, w := range want {
		got, done, err := s.Step()
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if done {
			t.Fatalf("step %d: done too early", i)
		}
		if got != w {
			t.Errorf("step %d = %q, want %q", i, got, w)
		}
		if sel := s.Cycler().Selected(); sel != got {
			t.Errorf("step %d: Selected() = %q, want %q", i, sel, got)
		}
	}

	if _, done, _ := s.Step(); !done {
		t.Error("expected done after the trace is exhausted")
	}
	if s.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", s.Remaining())
	}
}

func TestStepper_InvalidTrace(t *testing.T) {
	trace := dynamicTrace()
	trace.Selector = "lottery"
	if _, err := NewStepper(trace); err == nil {
		t.Fatal("expected error for unknown selector kind")
	}
}

func TestStepper_ContractViolation(t *testing.T) {
	trace := dynamicTrace()
	trace.Steps = []TraceStep{{Active: []int{1}}}

	s, err := NewStepper(trace)
	if err != nil {
		t.Fatalf("NewStepper: %v", err)
	}
	if _, _, err := s.Step(); err == nil {
		t.Fatal("expected activity length error")
	}
}
