package skills

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLibrary_Load(t *testing.T) {
	tempDir := t.TempDir()

	files := map[string]string{
		"translate.md": "# Translate English text to Hindi.\nTranslate the following text to Hindi:\n\n{{input}}",
		"poem.md":      "Write a four-line poem about:\n\n{{input}}",
		"notes.txt":    "ignored, not markdown",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tempDir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	lib := NewLibrary(tempDir, nil, nil)
	loaded, err := lib.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded) != 2 {
		t.Fatalf("Expected 2 skills, got %d", len(loaded))
	}

	byName := map[string]*SemanticSkill{}
	for _, s := range loaded {
		byName[s.SkillName] = s
	}

	tr, ok := byName["translate"]
	if !ok {
		t.Fatal("Expected skill 'translate'")
	}
	if tr.Summary != "Translate English text to Hindi." {
		t.Errorf("Unexpected summary: %q", tr.Summary)
	}
	if tr.Template == "" || tr.Template[0] == '#' {
		t.Errorf("Description line should be stripped from template: %q", tr.Template)
	}

	poem, ok := byName["poem"]
	if !ok {
		t.Fatal("Expected skill 'poem'")
	}
	if poem.Summary != "Prompt-template skill." {
		t.Errorf("Expected default summary, got %q", poem.Summary)
	}
}

func TestLibrary_Load_MissingDir(t *testing.T) {
	lib := NewLibrary(filepath.Join(t.TempDir(), "nope"), nil, nil)
	loaded, err := lib.Load()
	if err != nil {
		t.Fatalf("Missing directory should not error: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("Expected no skills, got %d", len(loaded))
	}
}
