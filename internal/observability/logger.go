package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypePlan        EventType = "plan"
	EventTypeStep        EventType = "step"
	EventTypeSkillCall   EventType = "skill_call"
	EventTypeSkillResult EventType = "skill_result"
	EventTypePolicyCheck EventType = "policy_check"
	EventTypeOutcome     EventType = "outcome"
	EventTypeHeartbeat   EventType = "heartbeat"
	EventTypeLLM         EventType = "llm"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger handles structured logging.
type Logger struct {
	out        io.Writer
	llmLogPath string
	maxSize    int64
}

func NewLogger() *Logger {
	return &Logger{
		out:        os.Stdout,
		llmLogPath: filepath.Join("logs", "llm.jsonl"),
		maxSize:    10 * 1024 * 1024, // 10MB
	}
}

// Log emits a structured JSON event to the logger's output stream.
func (l *Logger) Log(evt Event) {
	out := l.out
	if out == nil {
		out = os.Stdout
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		fmt.Fprintf(out, "{\"error\": \"failed to marshal event: %v\"}\n", err)
		return
	}
	fmt.Fprintln(out, string(data))

	if evt.Type == EventTypeLLM {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogPlan(ask string, stepCount int) {
	l.Log(Event{
		Type: EventTypePlan,
		Data: map[string]any{
			"ask":        ask,
			"step_count": stepCount,
		},
	})
}

func (l *Logger) LogStep(runID string, n int, rendered string) {
	l.Log(Event{
		Type:  EventTypeStep,
		RunID: runID,
		Data: map[string]any{
			"step": n,
			"plan": rendered,
		},
	})
}

func (l *Logger) LogSkillCall(skill, input string) {
	l.Log(Event{
		Type: EventTypeSkillCall,
		Data: map[string]string{
			"skill": skill,
			"input": input,
		},
	})
}

func (l *Logger) LogSkillResult(skill, output string) {
	l.Log(Event{
		Type: EventTypeSkillResult,
		Data: map[string]string{
			"skill":  skill,
			"output": output,
		},
	})
}

func (l *Logger) LogPolicyCheck(skill string, effect string, reason string) {
	l.Log(Event{
		Type: EventTypePolicyCheck,
		Data: map[string]string{
			"skill":  skill,
			"effect": effect,
			"reason": reason,
		},
	})
}

func (l *Logger) LogOutcome(runID string, outcome string, steps int) {
	l.Log(Event{
		Type:  EventTypeOutcome,
		RunID: runID,
		Data: map[string]any{
			"outcome": outcome,
			"steps":   steps,
		},
	})
}

func (l *Logger) LogHeartbeat() {
	l.Log(Event{
		Type: EventTypeHeartbeat,
		Data: map[string]string{"status": "alive"},
	})
}

func (l *Logger) LogLLM(prompt any, response string) {
	l.Log(Event{
		Type: EventTypeLLM,
		Data: map[string]any{
			"prompt":   prompt,
			"response": response,
		},
	})
}
