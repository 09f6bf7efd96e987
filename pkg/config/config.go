package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig                 `yaml:"app"`
	Gateways  map[string]GatewayConfig  `yaml:"gateways"`
	Providers map[string]ProviderConfig `yaml:"providers"`
	Memory    MemoryConfig              `yaml:"memory"`
	Planner   PlannerConfig             `yaml:"planner"`
}

type AppConfig struct {
	Name      string `yaml:"name"`
	Workspace string `yaml:"workspace"`
	SkillsDir string `yaml:"skills_dir"`
}

type GatewayConfig struct {
	Token   string `yaml:"token"`
	Enabled bool   `yaml:"enabled"`
}

type ProviderConfig struct {
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url,omitempty"`
	APIVersion string `yaml:"api_version,omitempty"` // set for azure deployments
	Enabled    bool   `yaml:"enabled"`
}

type MemoryConfig struct {
	Path string `yaml:"path"`
}

type PlannerConfig struct {
	MaxSteps    int     `yaml:"max_steps"`
	Temperature float64 `yaml:"temperature"`
}

// LoadConfig reads and validates the YAML config, applying defaults
// for anything the file leaves out.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "sutra"
	}
	if c.App.Workspace == "" {
		c.App.Workspace = "./workspace"
	}
	if c.App.SkillsDir == "" {
		c.App.SkillsDir = "./skills"
	}
	if c.Memory.Path == "" {
		c.Memory.Path = "sutra.db"
	}
	if c.Planner.MaxSteps <= 0 {
		c.Planner.MaxSteps = 10
	}
	if c.Planner.Temperature == 0 {
		c.Planner.Temperature = 0.3
	}
}

// GetDefaultProvider returns the first enabled provider
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// GetGateway returns the named gateway config if enabled
func (c *Config) GetGateway(name string) (GatewayConfig, bool) {
	g, ok := c.Gateways[name]
	if ok && g.Enabled {
		return g, true
	}
	return GatewayConfig{}, false
}
