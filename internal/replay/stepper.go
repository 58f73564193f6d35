package replay

import "github.com/me/turnwheel/pkg/selector"

// Stepper applies a trace one advance at a time, for callers that
// interleave their own work between selections instead of replaying the
// whole trace at once.
type Stepper struct {
	cycler selector.Cycler
	inputs []stepInput
	next   int
}

// NewStepper builds the trace's cycler, resets it, and returns a stepper
// positioned before the first advance. The opening selection is
// available through Cycler().Selected().
func NewStepper(trace *Trace) (*Stepper, error) {
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
	cycler.Reset()
	return &Stepper{cycler: cycler, inputs: inputs}, nil
}

// Step applies the next trace input and returns the selection. done is
// true once the trace is exhausted; the selection is meaningless then.
func (s *Stepper) Step() (selected string, done bool, err error) {
	if s.next >= len(s.inputs) {
		return "", true, nil
	}
	selected, err = advance(s.cycler, s.inputs[s.next])
	if err != nil {
		return "", false, err
	}
	s.next++
	return selected, false, nil
}

// Remaining reports how many trace inputs have not been applied yet.
func (s *Stepper) Remaining() int {
	return len(s.inputs) - s.next
}

// Cycler exposes the underlying cycler for introspection between steps.
func (s *Stepper) Cycler() selector.Cycler {
	return s.cycler
}
