package main

import (
	"log"
	"strconv"

	"github.com/anirudh/sutra/internal/observability"
	"github.com/anirudh/sutra/internal/planner"
	"github.com/anirudh/sutra/internal/runner"
	"github.com/anirudh/sutra/internal/store"
)

// storeTrace persists one run and its steps. Asks arrive concurrently
// from the gateways and the scheduler, so the service builds a fresh
// instance per run; the run ID is never shared across runs.
type storeTrace struct {
	store  *store.RunStore
	logger *observability.Logger
	runID  int64
}

func newStoreTrace(st *store.RunStore, logger *observability.Logger) *storeTrace {
	return &storeTrace{store: st, logger: logger}
}

func (t *storeTrace) StepExecuted(n int, state planner.PlanState) {
	if n == 1 {
		id, err := t.store.StartRun(state.Ask)
		if err != nil {
			log.Printf("Error recording run: %v", err)
		}
		t.runID = id
	}

	// The step just executed sits before the cursor on success, at the
	// cursor on failure.
	idx := state.Cursor
	if state.IsSuccessful {
		idx = state.Cursor - 1
	}
	if idx >= 0 && idx < len(state.Plan.Steps) {
		step := state.Plan.Steps[idx]
		if err := t.store.RecordStep(t.runID, n, step.Skill, step.Input, step.Result, state.IsSuccessful); err != nil {
			log.Printf("Error recording step: %v", err)
		}
	}

	if t.logger != nil {
		t.logger.LogStep(runIDString(t.runID), n, state.Render())
	}
}

func (t *storeTrace) Finished(report runner.Report) {
	if err := t.store.FinishRun(t.runID, string(report.Outcome), report.Result, report.Steps); err != nil {
		log.Printf("Error finishing run: %v", err)
	}
	if t.logger != nil {
		t.logger.LogOutcome(runIDString(t.runID), string(report.Outcome), report.Steps)
	}
}

func runIDString(id int64) string {
	if id == 0 {
		return ""
	}
	return "run-" + strconv.FormatInt(id, 10)
}
