package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

type ShellSkill struct {
	Workdir string
}

func NewShellSkill(workdir string) *ShellSkill {
	return &ShellSkill{Workdir: workdir}
}

func (s *ShellSkill) Name() string {
	return "shell"
}

func (s *ShellSkill) Description() string {
	return "Execute system shell commands. Use with caution. Access to full shell environment."
}

func (s *ShellSkill) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{
				"type":        "string",
				"description": "The shell command to execute",
			},
		},
		"required": []string{"command"},
	}
}

func (s *ShellSkill) Invoke(ctx context.Context, input string) (string, error) {
	var args struct {
		Command string `json:"command"`
	}

	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}

	if args.Command == "" {
		return "Error: empty command", nil
	}

	cmd := exec.CommandContext(ctx, "bash", "-c", args.Command)
	// Commands run inside the workspace, not wherever the engine started.
	if s.Workdir != "" {
		cmd.Dir = s.Workdir
	}

	output, err := cmd.CombinedOutput()

	result := strings.TrimSpace(string(output))
	if result == "" {
		result = "(no output)"
	}

	if err != nil {
		return fmt.Sprintf("Command failed with error: %v\nOutput: %s", err, result), nil
	}

	return result, nil
}
