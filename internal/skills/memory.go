package skills

import (
	"context"
	"fmt"
	"strings"

	"github.com/anirudh/sutra/internal/memory"
)

// MemorizeSkill stores a piece of text in the semantic memory.
type MemorizeSkill struct {
	Index *memory.Index
}

func NewMemorizeSkill(index *memory.Index) *MemorizeSkill {
	return &MemorizeSkill{Index: index}
}

func (m *MemorizeSkill) Name() string {
	return "memorize"
}

func (m *MemorizeSkill) Description() string {
	return "Store a piece of text in long-term memory so later steps or runs can recall it."
}

func (m *MemorizeSkill) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"input": map[string]any{
				"type":        "string",
				"description": "The text to remember",
			},
		},
		"required": []string{"input"},
	}
}

func (m *MemorizeSkill) Invoke(ctx context.Context, input string) (string, error) {
	if err := m.Index.Save(ctx, input); err != nil {
		return "", err
	}
	return fmt.Sprintf("Remembered (%d items stored).", m.Index.Len()), nil
}

// RecallSkill retrieves memories relevant to a query.
type RecallSkill struct {
	Index *memory.Index
}

func NewRecallSkill(index *memory.Index) *RecallSkill {
	return &RecallSkill{Index: index}
}

func (r *RecallSkill) Name() string {
	return "recall"
}

func (r *RecallSkill) Description() string {
	return "Search long-term memory for text relevant to a query."
}

func (r *RecallSkill) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"input": map[string]any{
				"type":        "string",
				"description": "What to look for",
			},
		},
		"required": []string{"input"},
	}
}

func (r *RecallSkill) Invoke(ctx context.Context, input string) (string, error) {
	matches, err := r.Index.Search(ctx, input, 5, 0.6)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "Nothing relevant in memory.", nil
	}
	var lines []string
	for _, m := range matches {
		lines = append(lines, fmt.Sprintf("- %s (%.2f)", m.Text, m.Score))
	}
	return strings.Join(lines, "\n"), nil
}
