package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anirudh/sutra/internal/kernel"
	"github.com/anirudh/sutra/internal/observability"
	"github.com/tmc/langchaingo/llms"
)

// Library loads prompt-template skills from a directory. Each *.md file
// defines one semantic skill: the file name (without extension) is the
// skill name, a leading "# " line is its description, and the rest is
// the template.
type Library struct {
	Directory string
	Model     llms.Model
	Logger    *observability.Logger
}

func NewLibrary(dir string, model llms.Model, logger *observability.Logger) *Library {
	return &Library{Directory: dir, Model: model, Logger: logger}
}

// Load parses every template file and returns the resulting skills.
// A missing directory is not an error; it just yields no skills.
func (l *Library) Load() ([]*SemanticSkill, error) {
	entries, err := os.ReadDir(l.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read skills directory: %v", err)
	}

	var loaded []*SemanticSkill
	for _, f := range entries {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".md") {
			continue
		}
		path := filepath.Join(l.Directory, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read skill template %s: %v", path, err)
		}

		name := strings.TrimSuffix(f.Name(), ".md")
		summary, template := splitTemplate(string(data))
		if template == "" {
			continue
		}

		loaded = append(loaded, &SemanticSkill{
			SkillName:   name,
			Summary:     summary,
			Template:    template,
			Model:       l.Model,
			Logger:      l.Logger,
			Temperature: 0.5,
		})
	}

	return loaded, nil
}

// RegisterAll loads the library and registers every skill.
func (l *Library) RegisterAll(registry *kernel.Registry) error {
	loaded, err := l.Load()
	if err != nil {
		return err
	}
	for _, s := range loaded {
		registry.Register(s)
	}
	return nil
}

func splitTemplate(raw string) (summary, template string) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "# ") {
		if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
			summary = strings.TrimSpace(strings.TrimPrefix(trimmed[:idx], "# "))
			template = strings.TrimSpace(trimmed[idx+1:])
			return summary, template
		}
		return strings.TrimSpace(strings.TrimPrefix(trimmed, "# ")), ""
	}
	return "Prompt-template skill.", trimmed
}
