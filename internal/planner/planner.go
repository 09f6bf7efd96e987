package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/anirudh/sutra/internal/governance"
	"github.com/anirudh/sutra/internal/kernel"
	"github.com/anirudh/sutra/internal/observability"
	"github.com/tmc/langchaingo/llms"
)

// Planner is the boundary to the planning engine. CreatePlan errors are
// fatal to the caller; ExecuteNextStep is called exactly once per loop
// iteration and always returns a fresh PlanState.
type Planner interface {
	CreatePlan(ctx context.Context, ask string) (PlanState, error)
	ExecuteNextStep(ctx context.Context, state PlanState) (PlanState, error)
}

// ModelPlanner synthesizes plans with an LLM and executes steps against
// the skill registry.
type ModelPlanner struct {
	Model       llms.Model
	Registry    *kernel.Registry
	Policy      governance.PolicyEngine
	Logger      *observability.Logger
	Temperature float64
}

func NewModelPlanner(model llms.Model, registry *kernel.Registry, policy governance.PolicyEngine, logger *observability.Logger) *ModelPlanner {
	return &ModelPlanner{
		Model:       model,
		Registry:    registry,
		Policy:      policy,
		Logger:      logger,
		Temperature: 0.3,
	}
}

// CreatePlan asks the model for a JSON plan over the registered skills.
func (p *ModelPlanner) CreatePlan(ctx context.Context, ask string) (PlanState, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(p.planningPrompt())},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(ask)},
		},
	}

	resp, err := p.Model.GenerateContent(ctx, messages, llms.WithTemperature(p.Temperature))
	if err != nil {
		return PlanState{}, fmt.Errorf("planning call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return PlanState{}, fmt.Errorf("planner returned no choices")
	}

	if p.Logger != nil {
		p.Logger.LogLLM(ask, resp.Choices[0].Content)
	}

	plan, err := parsePlan(resp.Choices[0].Content)
	if err != nil {
		return PlanState{}, fmt.Errorf("failed to parse plan: %w", err)
	}

	for i := range plan.Steps {
		plan.Steps[i].ID = i + 1
		plan.Steps[i].Status = StepPending
	}

	if p.Logger != nil {
		p.Logger.LogPlan(ask, len(plan.Steps))
	}

	return PlanState{
		Ask:          ask,
		Plan:         *plan,
		Vars:         kernel.NewVariables(ask),
		IsComplete:   len(plan.Steps) == 0,
		IsSuccessful: true,
	}, nil
}

// ExecuteNextStep advances the plan by exactly one step. The returned
// state supersedes the input; the input state is never modified.
func (p *ModelPlanner) ExecuteNextStep(ctx context.Context, state PlanState) (PlanState, error) {
	if state.IsComplete || state.Cursor >= len(state.Plan.Steps) {
		next := state.clone()
		next.IsComplete = true
		return next, nil
	}

	next := state.clone()
	step := &next.Plan.Steps[next.Cursor]

	input := step.Input
	if input == "" {
		input = next.Vars.Input()
	}

	skill := p.Registry.Get(step.Skill)
	if skill == nil {
		return failStep(next, step, fmt.Sprintf("skill '%s' is not registered", step.Skill)), nil
	}

	if p.Policy != nil {
		verdict, err := p.Policy.Evaluate(ctx, governance.Request{Skill: step.Skill, Input: input})
		if err != nil {
			return failStep(next, step, fmt.Sprintf("policy evaluation failed: %v", err)), nil
		}
		if p.Logger != nil {
			p.Logger.LogPolicyCheck(step.Skill, string(verdict.Effect), verdict.Reason)
		}
		if verdict.Effect == governance.EffectDeny {
			return failStep(next, step, verdict.Reason), nil
		}
	}

	if p.Logger != nil {
		p.Logger.LogSkillCall(step.Skill, input)
	}

	output, err := skill.Invoke(ctx, input)
	if err != nil {
		return failStep(next, step, fmt.Sprintf("skill '%s' failed: %v", step.Skill, err)), nil
	}

	step.Status = StepCompleted
	step.Result = output
	next.Vars = next.Vars.WithInput(output)
	next.Result = output
	next.Cursor++
	next.IsComplete = next.Cursor >= len(next.Plan.Steps)
	next.IsSuccessful = true

	if p.Logger != nil {
		p.Logger.LogSkillResult(step.Skill, output)
	}

	return next, nil
}

func failStep(state PlanState, step *Step, reason string) PlanState {
	step.Status = StepFailed
	step.Result = reason
	state.Result = reason
	state.IsSuccessful = false
	return state
}

func (p *ModelPlanner) planningPrompt() string {
	var descs []string
	for _, name := range p.Registry.Names() {
		s := p.Registry.Get(name)
		descs = append(descs, fmt.Sprintf("- %s: %s", s.Name(), s.Description()))
	}
	skillList := "No skills available."
	if len(descs) > 0 {
		skillList = strings.Join(descs, "\n")
	}

	return "You are a planner. Break the user's request into an ordered plan using ONLY the following skills:\n" +
		skillList + "\n\n" +
		`Output a single JSON object with this exact format (no other text):
{"steps":[{"skill":"<skill_name>","input":"<input text or JSON args>"}, ...]}
Leave "input" empty for a step that should consume the previous step's output. If no skills are needed, use: {"steps":[]}.`
}

var jsonBlockRE = regexp.MustCompile("(?s)\\s*```(?:json)?\\s*([\\s\\S]*?)```\\s*")

// parsePlan extracts a Plan from the model's response text. A markdown
// code fence around the JSON is tolerated and stripped.
func parsePlan(text string) (*Plan, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return &Plan{Steps: []Step{}}, nil
	}
	if m := jsonBlockRE.FindStringSubmatch(trimmed); len(m) > 1 {
		trimmed = strings.TrimSpace(m[1])
	}
	var plan Plan
	if err := json.Unmarshal([]byte(trimmed), &plan); err != nil {
		return nil, err
	}
	if plan.Steps == nil {
		plan.Steps = []Step{}
	}
	return &plan, nil
}
