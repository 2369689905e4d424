package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional YAML run configuration. Flags override it.
type Config struct {
	// Script is the path to the guest script.
	Script string `yaml:"script"`
	// Budget is the per-pump instruction budget; 0 means the default.
	Budget int64 `yaml:"budget"`
	// Globals are plain values installed before the script runs.
	Globals map[string]any `yaml:"globals"`
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
