package governance

import (
	"context"
	"fmt"
	"regexp"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Request contains the context of a skill invocation to be evaluated.
type Request struct {
	Skill string
	Input string
}

// Result contains the outcome of a policy evaluation.
type Result struct {
	Effect Effect
	Reason string
}

// PolicyEngine evaluates skill invocations against a set of rules.
type PolicyEngine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// DefaultPolicyEngine denies by explicit rule and allows everything else.
// If an allowlist is set, only listed skills pass at all.
type DefaultPolicyEngine struct {
	DeniedSkills  map[string]bool
	DeniedInputs  []*regexp.Regexp
	AllowedSkills map[string]bool // nil means every skill is eligible
}

func NewDefaultPolicyEngine() *DefaultPolicyEngine {
	return &DefaultPolicyEngine{
		DeniedSkills: make(map[string]bool),
		DeniedInputs: make([]*regexp.Regexp, 0),
	}
}

func (e *DefaultPolicyEngine) DenySkill(name string) {
	e.DeniedSkills[name] = true
}

// AllowOnly restricts evaluation to the named skills. Calling it more
// than once extends the allowlist.
func (e *DefaultPolicyEngine) AllowOnly(names ...string) {
	if e.AllowedSkills == nil {
		e.AllowedSkills = make(map[string]bool)
	}
	for _, n := range names {
		e.AllowedSkills[n] = true
	}
}

func (e *DefaultPolicyEngine) DenyInput(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e.DeniedInputs = append(e.DeniedInputs, re)
	return nil
}

func (e *DefaultPolicyEngine) Evaluate(ctx context.Context, req Request) (Result, error) {
	if e.AllowedSkills != nil && !e.AllowedSkills[req.Skill] {
		return Result{
			Effect: EffectDeny,
			Reason: fmt.Sprintf("Skill '%s' is not on the allowlist", req.Skill),
		}, nil
	}

	if e.DeniedSkills[req.Skill] {
		return Result{
			Effect: EffectDeny,
			Reason: fmt.Sprintf("Skill '%s' is restricted by system policy", req.Skill),
		}, nil
	}

	for _, re := range e.DeniedInputs {
		if re.MatchString(req.Input) {
			return Result{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("Input matches restricted pattern: %s", re.String()),
			}, nil
		}
	}

	return Result{
		Effect: EffectAllow,
		Reason: "Approved by default policy",
	}, nil
}
