package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/tools/duckduckgo"
)

type SearchSkill struct {
	client *duckduckgo.Tool
}

func NewSearchSkill() (*SearchSkill, error) {
	ddg, err := duckduckgo.New(10, duckduckgo.DefaultUserAgent)
	if err != nil {
		return nil, err
	}
	return &SearchSkill{client: ddg}, nil
}

func (s *SearchSkill) Name() string {
	return "search"
}

func (s *SearchSkill) Description() string {
	return "Search the web using DuckDuckGo for real-time information."
}

func (s *SearchSkill) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query to look up",
			},
		},
		"required": []string{"query"},
	}
}

func (s *SearchSkill) Invoke(ctx context.Context, input string) (string, error) {
	query := input
	// Planner steps may pass plain text or the JSON args form.
	if strings.HasPrefix(strings.TrimSpace(input), "{") {
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal([]byte(input), &args); err == nil && args.Query != "" {
			query = args.Query
		}
	}

	res, err := s.client.Call(ctx, query)
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}
	return res, nil
}
