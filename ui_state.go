package main

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type uiConfig struct {
	ServerURL         string     `yaml:"server_url,omitempty"`
	Theme             string     `yaml:"theme,omitempty"`
	IngredientHeaders []string   `yaml:"ingredient_headers,omitempty"`
	ExportDir         string     `yaml:"export_dir,omitempty"`
	SidebarCollapsed  bool       `yaml:"sidebar_collapsed,omitempty"`
	LastUsername      string     `yaml:"last_username,omitempty"`
	Chat              chatConfig `yaml:"chat,omitempty"`
}

type chatConfig struct {
	// UseServer sends chat messages to POST /api/chat instead of the local
	// simulated reply.
	UseServer bool `yaml:"use_server,omitempty"`
}

const defaultServerURL = "http://localhost:5000"

func loadUIConfig(configDir string) (*uiConfig, string) {
	path := filepath.Join(configDir, "ui.yaml")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return &uiConfig{}, path
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return &uiConfig{}, path
	}
	var cfg uiConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &uiConfig{}, path
	}
	return &cfg, path
}

func saveUIConfig(cfg *uiConfig, path string) error {
	if cfg == nil {
		cfg = &uiConfig{}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *uiConfig) serverURL() string {
	if c == nil || strings.TrimSpace(c.ServerURL) == "" {
		return defaultServerURL
	}
	return strings.TrimSpace(c.ServerURL)
}

func (c *uiConfig) ingredientHeaders() []string {
	if c == nil || len(c.IngredientHeaders) == 0 {
		return append([]string(nil), defaultIngredientHeaders...)
	}
	return append([]string(nil), c.IngredientHeaders...)
}

func (c *uiConfig) exportDir() string {
	if c == nil || strings.TrimSpace(c.ExportDir) == "" {
		return "."
	}
	return strings.TrimSpace(c.ExportDir)
}

func resolveConfigDir() string {
	if dir := strings.TrimSpace(os.Getenv("RECIPE_LOOKUP_CONFIG_DIR")); dir != "" {
		return dir
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "recipe-lookup")
}
