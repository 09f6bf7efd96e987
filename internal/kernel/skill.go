package kernel

import (
	"context"
	"sort"
)

// Skill defines the interface for all capabilities the planner may invoke.
type Skill interface {
	Name() string
	Description() string
	Parameters() map[string]any // JSON Schema for the skill's inputs
	Invoke(ctx context.Context, input string) (string, error)
}

// Registry manages the set of available skills.
type Registry struct {
	Skills map[string]Skill
}

func NewRegistry() *Registry {
	return &Registry{
		Skills: make(map[string]Skill),
	}
}

func (r *Registry) Register(s Skill) {
	r.Skills[s.Name()] = s
}

func (r *Registry) Get(name string) Skill {
	return r.Skills[name]
}

// Names returns the registered skill names in sorted order so prompt
// construction stays deterministic.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Skills))
	for name := range r.Skills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
