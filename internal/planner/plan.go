package planner

import (
	"fmt"
	"strings"

	"github.com/anirudh/sutra/internal/kernel"
)

// Step statuses.
const (
	StepPending   = "pending"
	StepCompleted = "completed"
	StepFailed    = "failed"
)

// Step represents a single skill invocation in a plan.
type Step struct {
	ID     int    `json:"id"`
	Skill  string `json:"skill"`
	Input  string `json:"input,omitempty"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
}

// Plan is an ordered sequence of steps synthesized to satisfy an ask.
type Plan struct {
	Steps []Step `json:"steps"`
}

// PlanState is the value threaded through the execution loop. Every
// ExecuteNextStep call returns a new PlanState that supersedes the old
// one; callers never mutate a PlanState they have handed out.
type PlanState struct {
	Ask    string
	Plan   Plan
	Vars   kernel.Variables
	Cursor int // index of the next pending step

	// IsComplete is monotonic for a plan lineage: once a returned state
	// reports it, every descendant state reports it too.
	IsComplete bool
	// IsSuccessful reflects the most recent step only, not the run.
	IsSuccessful bool
	// Result holds the latest step output, or the failure text.
	Result string
}

// clone returns a PlanState whose steps slice is independent of the
// receiver's, so superseded states stay frozen.
func (s PlanState) clone() PlanState {
	out := s
	out.Plan.Steps = make([]Step, len(s.Plan.Steps))
	copy(out.Plan.Steps, s.Plan.Steps)
	return out
}

// Render returns a human-readable view of the plan's progress.
func (s PlanState) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan for: %s\n", s.Ask)
	for _, step := range s.Plan.Steps {
		mark := " "
		switch step.Status {
		case StepCompleted:
			mark = "x"
		case StepFailed:
			mark = "!"
		}
		fmt.Fprintf(&b, "  [%s] %d. %s", mark, step.ID, step.Skill)
		if step.Input != "" {
			fmt.Fprintf(&b, " (%s)", truncate(step.Input, 60))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
