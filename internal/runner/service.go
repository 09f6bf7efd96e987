package runner

import (
	"context"
	"fmt"
	"io"

	"github.com/anirudh/sutra/internal/observability"
	"github.com/anirudh/sutra/internal/planner"
)

// Service ties plan creation and execution together for callers that
// deal in asks: the CLI, the gateways, and the scheduler. Gateways and
// the scheduler run asks concurrently, so the service takes a trace
// factory and gives every run its own Trace instance.
type Service struct {
	Planner  planner.Planner
	MaxSteps int
	Out      io.Writer
	NewTrace func() Trace
}

func NewService(p planner.Planner, maxSteps int, out io.Writer, newTrace func() Trace) *Service {
	return &Service{
		Planner:  p,
		MaxSteps: maxSteps,
		Out:      out,
		NewTrace: newTrace,
	}
}

// RunAsk creates a plan for the ask and drives it to a terminal
// outcome, returning text suitable for a human reply.
func (s *Service) RunAsk(ctx context.Context, ask string) (string, error) {
	observability.SetStatus(observability.PhasePlanning, ask)
	defer observability.SetStatus(observability.PhaseIdle, "")

	state, err := s.Planner.CreatePlan(ctx, ask)
	if err != nil {
		return "", fmt.Errorf("could not create a plan: %w", err)
	}

	observability.SetStatus(observability.PhaseExecuting, ask)

	var trace Trace
	if s.NewTrace != nil {
		trace = s.NewTrace()
	}

	r := &Runner{
		Planner:  s.Planner,
		MaxSteps: s.MaxSteps,
		Out:      s.Out,
		Trace:    trace,
	}

	report, err := r.Run(ctx, state)
	if err != nil {
		return "", err
	}

	switch report.Outcome {
	case OutcomeSucceeded:
		return report.Result, nil
	case OutcomeFailed:
		return "The plan failed: " + report.Result, nil
	default:
		return fmt.Sprintf("I stopped after %d steps without finishing. Try a narrower request.", report.Steps), nil
	}
}
