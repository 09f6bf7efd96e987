package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
app:
  name: sutra
  workspace: /tmp/ws
providers:
  openai:
    api_key: sk-test
    model: gpt-4o-mini
    enabled: true
  azure:
    api_key: az-test
    model: gpt-4o
    base_url: https://example.openai.azure.com
    api_version: 2024-02-01
    enabled: false
gateways:
  telegram:
    token: tg-token
    enabled: true
planner:
  max_steps: 7
  temperature: 0.2
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	name, provider := cfg.GetDefaultProvider()
	if name != "openai" {
		t.Errorf("Expected default provider 'openai', got %q", name)
	}
	if provider.Model != "gpt-4o-mini" {
		t.Errorf("Unexpected model: %q", provider.Model)
	}

	tg, ok := cfg.GetGateway("telegram")
	if !ok || tg.Token != "tg-token" {
		t.Errorf("Expected enabled telegram gateway, got %+v ok=%v", tg, ok)
	}
	if _, ok := cfg.GetGateway("discord"); ok {
		t.Error("Discord gateway should not be enabled")
	}

	if cfg.Planner.MaxSteps != 7 {
		t.Errorf("Expected max_steps 7, got %d", cfg.Planner.MaxSteps)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
providers:
  openai:
    api_key: sk-test
    enabled: true
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.App.Name != "sutra" {
		t.Errorf("Expected default app name, got %q", cfg.App.Name)
	}
	if cfg.Planner.MaxSteps != 10 {
		t.Errorf("Expected default max_steps 10, got %d", cfg.Planner.MaxSteps)
	}
	if cfg.Memory.Path != "sutra.db" {
		t.Errorf("Expected default memory path, got %q", cfg.Memory.Path)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := writeConfig(t, "app: [not: a: map")
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}
