package skills

import (
	"context"
	"fmt"
	"strings"

	"github.com/anirudh/sutra/internal/observability"
	"github.com/tmc/langchaingo/llms"
)

// SemanticSkill is a prompt-template skill: the template's {{input}}
// placeholder is filled with the step input and sent to the model.
type SemanticSkill struct {
	SkillName   string
	Summary     string
	Template    string
	Model       llms.Model
	Logger      *observability.Logger
	Temperature float64
}

func (s *SemanticSkill) Name() string {
	return s.SkillName
}

func (s *SemanticSkill) Description() string {
	return s.Summary
}

func (s *SemanticSkill) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"input": map[string]any{
				"type":        "string",
				"description": "The text this skill operates on",
			},
		},
		"required": []string{"input"},
	}
}

func (s *SemanticSkill) Invoke(ctx context.Context, input string) (string, error) {
	prompt := strings.ReplaceAll(s.Template, "{{input}}", input)

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}

	resp, err := s.Model.GenerateContent(ctx, messages, llms.WithTemperature(s.Temperature))
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	if s.Logger != nil {
		s.Logger.LogLLM(prompt, resp.Choices[0].Content)
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// NewSummarizeSkill returns the built-in summarization skill.
func NewSummarizeSkill(model llms.Model, logger *observability.Logger) *SemanticSkill {
	return &SemanticSkill{
		SkillName: "summarize",
		Summary:   "Summarize a body of text into a few concise sentences.",
		Template: "Summarize the following text in at most five sentences. Keep only what matters.\n\n" +
			"{{input}}",
		Model:       model,
		Logger:      logger,
		Temperature: 0.3,
	}
}

// NewWriteSkill returns the built-in drafting skill.
func NewWriteSkill(model llms.Model, logger *observability.Logger) *SemanticSkill {
	return &SemanticSkill{
		SkillName: "write",
		Summary:   "Write prose (an email, note, or short article) from instructions or source material.",
		Template: "Write the text requested below. Output only the finished text, no commentary.\n\n" +
			"{{input}}",
		Model:       model,
		Logger:      logger,
		Temperature: 0.7,
	}
}
