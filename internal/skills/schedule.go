package skills

import (
	"context"
	"encoding/json"
	"fmt"
)

type ctxKey string

// chatIDKey carries the originating chat through skill invocations.
const chatIDKey ctxKey = "chatID"

// WithChatID tags a context with the chat an ask came from, so skills
// like schedule can attribute their work.
func WithChatID(ctx context.Context, chatID string) context.Context {
	return context.WithValue(ctx, chatIDKey, chatID)
}

// ScheduleStore is the slice of the run store the schedule skill needs.
type ScheduleStore interface {
	AddSchedule(chatID string, ask string, intervalSeconds int) error
	ClearSchedules(chatID string) error
}

type ScheduleSkill struct {
	Store ScheduleStore
}

func NewScheduleSkill(store ScheduleStore) *ScheduleSkill {
	return &ScheduleSkill{Store: store}
}

func (c *ScheduleSkill) Name() string {
	return "schedule"
}

func (c *ScheduleSkill) Description() string {
	return "Manage scheduled asks: 'schedule' an ask to run on an interval (or once, with interval 0) or 'clear' all current ones."
}

func (c *ScheduleSkill) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"enum":        []string{"schedule", "clear"},
				"description": "The action to perform: 'schedule' a new ask or 'clear' all of them.",
			},
			"ask": map[string]any{
				"type":        "string",
				"description": "The request to run later (only for 'schedule' action)",
			},
			"interval_seconds": map[string]any{
				"type":        "integer",
				"description": "The interval in seconds (minimum 60s recurring; 0 runs the ask once at the next poll)",
			},
		},
		"required": []string{"action"},
	}
}

func (c *ScheduleSkill) Invoke(ctx context.Context, input string) (string, error) {
	var args struct {
		Action   string `json:"action"`
		Ask      string `json:"ask"`
		Interval int    `json:"interval_seconds"`
	}

	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}

	chatID, ok := ctx.Value(chatIDKey).(string)
	if !ok {
		return "", fmt.Errorf("missing chatID in context")
	}

	switch args.Action {
	case "clear":
		err := c.Store.ClearSchedules(chatID)
		if err != nil {
			return "", fmt.Errorf("failed to clear schedules: %v", err)
		}
		return "Successfully cleared all your scheduled asks.", nil

	case "schedule":
		// Interval 0 is a one-time schedule; the poller deletes it
		// after its single run.
		if args.Interval != 0 && args.Interval < 60 {
			return "Error: Minimum recurring interval is 60 seconds to prevent spamming. Use 0 to run once.", nil
		}
		err := c.Store.AddSchedule(chatID, args.Ask, args.Interval)
		if err != nil {
			return "", fmt.Errorf("failed to schedule ask: %v", err)
		}
		if args.Interval == 0 {
			return fmt.Sprintf("Successfully scheduled: '%s' to run once.", args.Ask), nil
		}
		return fmt.Sprintf("Successfully scheduled: '%s' every %d seconds.", args.Ask, args.Interval), nil

	default:
		return "Invalid action. Use 'schedule' or 'clear'.", nil
	}
}
