package replay

import (
	"fmt"

	"github.com/me/turnwheel/internal/activityscript"
	"github.com/me/turnwheel/pkg/selector"
	"gopkg.in/yaml.v3"
)

// Trace is a replayable description of a cycler run: the cycler to
// build, the participant order, and the per-step eligibility inputs —
// either enumerated explicitly or computed by an activity script.
type Trace struct {
	Name     string      `yaml:"name" json:"name"`
	Selector string      `yaml:"selector" json:"selector"`
	Order    []string    `yaml:"order" json:"order"`
	Steps    []TraceStep `yaml:"steps,omitempty" json:"steps,omitempty"`

	// Script computes eligibility per step (see activityscript);
	// ScriptSteps is the number of steps to drive with it.
	Script      string `yaml:"script,omitempty" json:"script,omitempty"`
	ScriptSteps int    `yaml:"script_steps,omitempty" json:"script_steps,omitempty"`
}

// TraceStep is one explicit advance call. Active holds 0/1 flags per
// workstation in declaration order (dynamic cycler). ActiveIDs names the
// active participant set for the hierarchical cycler; when empty, every
// participant is treated as active.
type TraceStep struct {
	ManagerActs bool     `yaml:"manager_acts" json:"manager_acts"`
	Active      []int    `yaml:"active,omitempty,flow" json:"active,omitempty"`
	ActiveIDs   []string `yaml:"active_ids,omitempty,flow" json:"active_ids,omitempty"`
}

// ParseTrace decodes and validates a YAML trace document.
func ParseTrace(data []byte) (*Trace, error) {
	var t Trace
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse trace: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the trace shape before any cycler is constructed.
func (t *Trace) Validate() error {
	switch selector.Kind(t.Selector) {
	case selector.KindRoundRobin, selector.KindHierarchical, selector.KindDynamic:
	case "":
		return fmt.Errorf("trace: selector kind is required")
	default:
		return fmt.Errorf("trace: unknown selector kind %q", t.Selector)
	}

	if len(t.Order) == 0 {
		return fmt.Errorf("trace: participant order is required")
	}

	hasSteps := len(t.Steps) > 0
	hasScript := t.Script != ""
	if hasSteps && hasScript {
		return fmt.Errorf("trace: steps and script are mutually exclusive")
	}
	if !hasSteps && !hasScript {
		return fmt.Errorf("trace: either steps or a script is required")
	}
	if hasScript && t.ScriptSteps <= 0 {
		return fmt.Errorf("trace: script_steps must be positive when a script is set")
	}
	return nil
}

// stepInput is a materialized advance input, identical across replays of
// the same trace.
type stepInput struct {
	managerActs bool
	active      []bool
	activeIDs   map[string]bool
}

// materialize resolves the trace's steps into concrete advance inputs.
// Scripts are evaluated exactly once here, so a verification replay sees
// the same inputs even if the script is stateful.
func (t *Trace) materialize() ([]stepInput, error) {
	if t.Script == "" {
		inputs := make([]stepInput, len(t.Steps))
		for i, s := range t.Steps {
			in := stepInput{managerActs: s.ManagerActs}
			if s.Active != nil {
				in.active = make([]bool, len(s.Active))
				for j, f := range s.Active {
					in.active[j] = f != 0
				}
			}
			if len(s.ActiveIDs) > 0 {
				in.activeIDs = make(map[string]bool, len(s.ActiveIDs))
				for _, id := range s.ActiveIDs {
					in.activeIDs[id] = true
				}
			}
			inputs[i] = in
		}
		return inputs, nil
	}

	prog, err := activityscript.Compile(t.Script)
	if err != nil {
		return nil, err
	}
	inputs := make([]stepInput, t.ScriptSteps)
	for i := 0; i < t.ScriptSteps; i++ {
		in, err := prog.Step(i)
		if err != nil {
			return nil, err
		}
		inputs[i] = stepInput{managerActs: in.ManagerActs, active: in.Active}
	}
	return inputs, nil
}

// activityFlags converts a materialized activity vector back to the 0/1
// form recorded with each step.
func (in stepInput) activityFlags() []int {
	if in.active == nil {
		return nil
	}
	flags := make([]int, len(in.active))
	for i, b := range in.active {
		if b {
			flags[i] = 1
		}
	}
	return flags
}
