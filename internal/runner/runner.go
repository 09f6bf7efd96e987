package runner

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/anirudh/sutra/internal/planner"
)

// Outcome is the terminal state of a plan run.
type Outcome string

const (
	OutcomeSucceeded       Outcome = "succeeded"
	OutcomeFailed          Outcome = "failed"
	OutcomeBudgetExhausted Outcome = "budget_exhausted"
)

// Report describes how a run ended.
type Report struct {
	Outcome Outcome
	Result  string
	Steps   int // number of ExecuteNextStep calls made
}

// Trace observes a run as it progresses. Implementations must not
// mutate the state they are handed.
type Trace interface {
	StepExecuted(n int, state planner.PlanState)
	Finished(report Report)
}

// Runner drives a plan one step at a time until it completes, fails,
// or exhausts the step budget. It never retries a failed step and
// keeps no state between runs.
type Runner struct {
	Planner  planner.Planner
	MaxSteps int
	Out      io.Writer // progress sink; defaults to stdout
	Trace    Trace     // optional
}

func New(p planner.Planner, maxSteps int) *Runner {
	return &Runner{
		Planner:  p,
		MaxSteps: maxSteps,
		Out:      os.Stdout,
	}
}

// Run executes the plan starting from the given state. Each iteration
// makes exactly one ExecuteNextStep call; the returned state wholly
// supersedes the previous one. A false IsSuccessful stops the run
// immediately with the failing step's result text; a true IsComplete
// stops it with the final result. If neither happens within MaxSteps
// calls, the run stops with OutcomeBudgetExhausted.
func (r *Runner) Run(ctx context.Context, state planner.PlanState) (Report, error) {
	out := r.Out
	if out == nil {
		out = os.Stdout
	}

	for n := 1; n <= r.MaxSteps; n++ {
		next, err := r.Planner.ExecuteNextStep(ctx, state)
		if err != nil {
			report := Report{Outcome: OutcomeFailed, Result: err.Error(), Steps: n}
			r.finish(report)
			return report, fmt.Errorf("step %d: %w", n, err)
		}

		fmt.Fprintf(out, "Step %d:\n%s\n", n, next.Render())
		if r.Trace != nil {
			r.Trace.StepExecuted(n, next)
		}

		if !next.IsSuccessful {
			fmt.Fprintf(out, "Step %d failed: %s\n", n, next.Result)
			report := Report{Outcome: OutcomeFailed, Result: next.Result, Steps: n}
			r.finish(report)
			return report, nil
		}

		if next.IsComplete {
			fmt.Fprintf(out, "Result: %s\n", next.Result)
			report := Report{Outcome: OutcomeSucceeded, Result: next.Result, Steps: n}
			r.finish(report)
			return report, nil
		}

		state = next
	}

	// The budget ran out before the plan resolved. This is reported
	// explicitly rather than falling through in silence: callers need
	// a definite answer for every run.
	fmt.Fprintf(out, "Stopped after %d steps without completing the plan.\n", r.MaxSteps)
	report := Report{Outcome: OutcomeBudgetExhausted, Result: state.Result, Steps: r.MaxSteps}
	r.finish(report)
	return report, nil
}

func (r *Runner) finish(report Report) {
	if r.Trace != nil {
		r.Trace.Finished(report)
	}
}
