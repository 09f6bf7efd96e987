package runner

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/anirudh/sutra/internal/planner"
)

// scriptedPlanner returns one pre-built state per ExecuteNextStep call
// and counts how often it is invoked.
type scriptedPlanner struct {
	states []planner.PlanState
	calls  int
	err    error
}

func (s *scriptedPlanner) CreatePlan(ctx context.Context, ask string) (planner.PlanState, error) {
	return planner.PlanState{Ask: ask, IsSuccessful: true}, nil
}

func (s *scriptedPlanner) ExecuteNextStep(ctx context.Context, state planner.PlanState) (planner.PlanState, error) {
	if s.err != nil {
		return planner.PlanState{}, s.err
	}
	if s.calls >= len(s.states) {
		panic("ExecuteNextStep called past the end of the script")
	}
	next := s.states[s.calls]
	s.calls++
	return next, nil
}

func running(result string) planner.PlanState {
	return planner.PlanState{IsSuccessful: true, Result: result}
}

func succeeded(result string) planner.PlanState {
	return planner.PlanState{IsSuccessful: true, IsComplete: true, Result: result}
}

func failed(result string) planner.PlanState {
	return planner.PlanState{IsSuccessful: false, Result: result}
}

func TestRunner_SucceedsAtStepK(t *testing.T) {
	p := &scriptedPlanner{states: []planner.PlanState{
		running("one"),
		running("two"),
		succeeded("final answer"),
	}}
	var buf bytes.Buffer
	r := &Runner{Planner: p, MaxSteps: 10, Out: &buf}

	report, err := r.Run(context.Background(), planner.PlanState{IsSuccessful: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Outcome != OutcomeSucceeded {
		t.Errorf("Expected OutcomeSucceeded, got %s", report.Outcome)
	}
	if report.Steps != 3 {
		t.Errorf("Expected 3 steps, got %d", report.Steps)
	}
	if p.calls != 3 {
		t.Errorf("Expected exactly 3 ExecuteNextStep calls, got %d", p.calls)
	}
	if report.Result != "final answer" {
		t.Errorf("Expected step-3 result, got %q", report.Result)
	}
	if got := strings.Count(buf.String(), "Step "); got != 3 {
		t.Errorf("Expected exactly 3 progress lines, got %d", got)
	}
}

func TestRunner_FailsAtStepK(t *testing.T) {
	p := &scriptedPlanner{states: []planner.PlanState{
		running("one"),
		failed("skill 'search' failed: timeout"),
	}}
	var buf bytes.Buffer
	r := &Runner{Planner: p, MaxSteps: 10, Out: &buf}

	report, err := r.Run(context.Background(), planner.PlanState{IsSuccessful: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Outcome != OutcomeFailed {
		t.Errorf("Expected OutcomeFailed, got %s", report.Outcome)
	}
	if p.calls != 2 {
		t.Errorf("Expected exactly 2 calls, no retries, got %d", p.calls)
	}
	if report.Result != "skill 'search' failed: timeout" {
		t.Errorf("Failure text not surfaced verbatim: %q", report.Result)
	}
	if !strings.Contains(buf.String(), "Step 2 failed:") {
		t.Error("Expected failure message in output")
	}
}

func TestRunner_BudgetExhausted(t *testing.T) {
	p := &scriptedPlanner{states: []planner.PlanState{
		running("one"),
		running("two"),
	}}
	var buf bytes.Buffer
	r := &Runner{Planner: p, MaxSteps: 2, Out: &buf}

	report, err := r.Run(context.Background(), planner.PlanState{IsSuccessful: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Outcome != OutcomeBudgetExhausted {
		t.Errorf("Expected OutcomeBudgetExhausted, got %s", report.Outcome)
	}
	if p.calls != 2 {
		t.Errorf("Expected exactly 2 calls, got %d", p.calls)
	}
	if !strings.Contains(buf.String(), "Stopped after 2 steps") {
		t.Error("Budget exhaustion should be reported explicitly")
	}
}

func TestRunner_PlannerError(t *testing.T) {
	p := &scriptedPlanner{err: errors.New("model unreachable")}
	var buf bytes.Buffer
	r := &Runner{Planner: p, MaxSteps: 5, Out: &buf}

	report, err := r.Run(context.Background(), planner.PlanState{IsSuccessful: true})
	if err == nil {
		t.Fatal("Expected error to propagate")
	}
	if report.Outcome != OutcomeFailed {
		t.Errorf("Expected OutcomeFailed, got %s", report.Outcome)
	}
}

type recordingTrace struct {
	steps    []int
	finished []Report
}

func (rt *recordingTrace) StepExecuted(n int, state planner.PlanState) {
	rt.steps = append(rt.steps, n)
}

func (rt *recordingTrace) Finished(report Report) {
	rt.finished = append(rt.finished, report)
}

func TestRunner_TraceObservesEveryStep(t *testing.T) {
	p := &scriptedPlanner{states: []planner.PlanState{
		running("one"),
		succeeded("done"),
	}}
	trace := &recordingTrace{}
	r := &Runner{Planner: p, MaxSteps: 10, Out: &bytes.Buffer{}, Trace: trace}

	if _, err := r.Run(context.Background(), planner.PlanState{IsSuccessful: true}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(trace.steps) != 2 || trace.steps[0] != 1 || trace.steps[1] != 2 {
		t.Errorf("Expected trace of steps [1 2], got %v", trace.steps)
	}
	if len(trace.finished) != 1 || trace.finished[0].Outcome != OutcomeSucceeded {
		t.Errorf("Expected a single Finished(Succeeded), got %v", trace.finished)
	}
}

func TestService_RunAsk_FreshTracePerRun(t *testing.T) {
	p := &scriptedPlanner{states: []planner.PlanState{
		succeeded("first"),
		succeeded("second"),
	}}
	var traces []*recordingTrace
	svc := NewService(p, 10, &bytes.Buffer{}, func() Trace {
		tr := &recordingTrace{}
		traces = append(traces, tr)
		return tr
	})

	for _, ask := range []string{"first ask", "second ask"} {
		if _, err := svc.RunAsk(context.Background(), ask); err != nil {
			t.Fatalf("RunAsk(%q) failed: %v", ask, err)
		}
	}

	if len(traces) != 2 {
		t.Fatalf("Expected one trace per run, got %d", len(traces))
	}
	for i, tr := range traces {
		if len(tr.steps) != 1 {
			t.Errorf("Trace %d should observe only its own run's step, got %v", i, tr.steps)
		}
		if len(tr.finished) != 1 {
			t.Errorf("Trace %d should be finished exactly once, got %d", i, len(tr.finished))
		}
	}
}

func TestService_RunAsk(t *testing.T) {
	p := &scriptedPlanner{states: []planner.PlanState{
		succeeded("the answer"),
	}}
	svc := NewService(p, 10, &bytes.Buffer{}, nil)

	reply, err := svc.RunAsk(context.Background(), "what is the answer")
	if err != nil {
		t.Fatalf("RunAsk failed: %v", err)
	}
	if reply != "the answer" {
		t.Errorf("Expected final result as reply, got %q", reply)
	}
}

func TestService_RunAsk_Failure(t *testing.T) {
	p := &scriptedPlanner{states: []planner.PlanState{
		failed("no such skill"),
	}}
	svc := NewService(p, 10, &bytes.Buffer{}, nil)

	reply, err := svc.RunAsk(context.Background(), "do the impossible")
	if err != nil {
		t.Fatalf("RunAsk failed: %v", err)
	}
	if !strings.Contains(reply, "no such skill") {
		t.Errorf("Expected failure text in reply, got %q", reply)
	}
}
