package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ProjectConfigPath returns the project config file path (.grocer/config.yaml).
func ProjectConfigPath() string {
	return filepath.Join(GrocerDir, ConfigFileName)
}

// Load loads configuration without source tracking.
func Load(path string) (*Config, error) {
	tc, err := LoadWithSources(path)
	if err != nil {
		return nil, err
	}
	return tc.Config, nil
}

// LoadWithSources loads configuration with source tracking.
// Load order (later sources override earlier):
//  1. Built-in defaults
//  2. Config file: path when set, otherwise .grocer/config.yaml if present
//  3. Environment variables (GROCER_*)
//
// The merged configuration is validated before it is returned.
func LoadWithSources(path string) (*TrackedConfig, error) {
	tc := NewTrackedConfig()

	if path == "" {
		if _, err := os.Stat(ProjectConfigPath()); err == nil {
			path = ProjectConfigPath()
		}
	}
	if path != "" {
		if err := mergeFromFile(tc, path); err != nil {
			return nil, err
		}
		slog.Debug("loaded config file", "path", path)
	}

	if overridden := ApplyEnvVars(tc); len(overridden) > 0 {
		sort.Strings(overridden)
		slog.Debug("config overridden by environment", "paths", overridden)
	}

	if err := tc.Config.Validate(); err != nil {
		return nil, err
	}
	return tc, nil
}

// mergeFromFile decodes the file over tc.Config, so keys absent from the
// file keep their current value, and records a source for every key set.
func mergeFromFile(tc *TrackedConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	// Parse YAML into a map to track which fields are set
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, tc.Config); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	markSources(tc, raw, "", path)
	return nil
}

func markSources(tc *TrackedConfig, raw map[string]any, prefix, filePath string) {
	for key, value := range raw {
		p := key
		if prefix != "" {
			p = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			markSources(tc, nested, p, filePath)
			continue
		}
		tc.SetSourceWithPath(p, SourceFile, filePath)
	}
}
