package skills

import (
	"context"
	"time"
)

type ClockSkill struct{}

func NewClockSkill() *ClockSkill {
	return &ClockSkill{}
}

func (c *ClockSkill) Name() string {
	return "clock"
}

func (c *ClockSkill) Description() string {
	return "Get the current date and time."
}

func (c *ClockSkill) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (c *ClockSkill) Invoke(ctx context.Context, input string) (string, error) {
	return time.Now().Format("Monday, 02 Jan 2006 15:04:05 MST"), nil
}
