package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is a named application the open-application action may launch by alias.
type AppConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
}

// ConfigFile represents the structure of apps.yaml
type ConfigFile struct {
	Apps []AppConfig `yaml:"apps" json:"apps"`
}

// LoadApps reads a catalogue file (YAML or JSON) and returns a map of aliases to configs.
// A missing file yields an empty catalogue.
func LoadApps(path string) (map[string]AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]AppConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read apps config: %w", err)
	}

	var cfg ConfigFile
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	apps := make(map[string]AppConfig)
	for _, app := range cfg.Apps {
		if app.Name == "" || app.Command == "" {
			continue
		}
		apps[app.Name] = app
	}

	return apps, nil
}
