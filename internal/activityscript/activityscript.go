// Package activityscript evaluates JavaScript programs (goja) that
// compute per-step eligibility signals for trace replays. A program
// defines a function step(i) returning an object of the form
//
//	{ manager_acts: bool, active: [0, 1, ...] }
//
// where active carries one truthy flag per workstation in declaration
// order. This lets traces describe fluctuating eligibility compactly
// instead of enumerating every step.
package activityscript

import (
	"fmt"

	"github.com/dop251/goja"
)

// Input is the per-step eligibility signal computed by a program.
type Input struct {
	ManagerActs bool
	Active      []bool
}

// Program is a compiled activity script. A Program owns its JavaScript
// VM and is not safe for concurrent use.
type Program struct {
	vm   *goja.Runtime
	step goja.Callable
}

// Compile runs the script source in a fresh VM and resolves its step
// function.
func Compile(src string) (*Program, error) {
	vm := goja.New()
	if _, err := vm.RunString(src); err != nil {
		return nil, fmt.Errorf("activity script: %w", err)
	}

	fn, ok := goja.AssertFunction(vm.Get("step"))
	if !ok {
		return nil, fmt.Errorf("activity script: no step(i) function defined")
	}
	return &Program{vm: vm, step: fn}, nil
}

// Step evaluates the program for step index i.
func (p *Program) Step(i int) (Input, error) {
	var in Input

	v, err := p.step(goja.Undefined(), p.vm.ToValue(i))
	if err != nil {
		return in, fmt.Errorf("activity script step(%d): %w", i, err)
	}

	obj, ok := v.Export().(map[string]any)
	if !ok {
		return in, fmt.Errorf("activity script step(%d): returned %T, want object", i, v.Export())
	}

	if raw, ok := obj["manager_acts"]; ok {
		b, err := toBool(raw)
		if err != nil {
			return in, fmt.Errorf("activity script step(%d): manager_acts: %w", i, err)
		}
		in.ManagerActs = b
	}

	if raw, ok := obj["active"]; ok && raw != nil {
		items, ok := raw.([]any)
		if !ok {
			return in, fmt.Errorf("activity script step(%d): active is %T, want array", i, raw)
		}
		in.Active = make([]bool, len(items))
		for j, item := range items {
			b, err := toBool(item)
			if err != nil {
				return in, fmt.Errorf("activity script step(%d): active[%d]: %w", i, j, err)
			}
			in.Active[j] = b
		}
	}

	return in, nil
}

// toBool accepts JS booleans and numbers (0/1 style flags).
func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int64:
		return x != 0, nil
	case float64:
		return x != 0, nil
	default:
		return false, fmt.Errorf("value %v (%T) is not a flag", v, v)
	}
}
