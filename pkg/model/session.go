package model

import (
	"encoding/json"
	"time"
)

// Session is one recorded replay of a trace through a cycler: the
// participant order it was built with plus the per-step selections.
type Session struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Kind        string          `json:"kind"`
	Order       []string        `json:"order"`
	StepCount   int             `json:"step_count"`
	Steps       []StepRecord    `json:"steps,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at"`
}

// StepRecord captures one reset or advance call: the inputs the
// environment supplied, the participant selected, and the cycler state
// afterwards. Index 0 is always the opening reset.
// Activity holds 0/1 flags per workstation; nil on manager preemption
// and for the fixed-order cycler. Selected is "" when no participant was
// eligible.
type StepRecord struct {
	SessionID   string          `json:"session_id"`
	Index       int             `json:"index"`
	ManagerActs bool            `json:"manager_acts"`
	Activity    []int           `json:"activity,omitempty"`
	Selected    string          `json:"selected"`
	Position    int             `json:"position"`
	Snapshot    json.RawMessage `json:"snapshot,omitempty"`
}
