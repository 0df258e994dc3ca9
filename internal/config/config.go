// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the Metro settings file.
type Config struct {
	User User `yaml:"user"`
	Repo Repo `yaml:"repo"`
}

// User is the fallback commit signature, used when neither the repository nor
// the global git configuration provides one.
type User struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// Repo holds repository defaults.
type Repo struct {
	// DefaultBranch is the branch name given to new repositories.
	DefaultBranch string `yaml:"default_branch"`

	// Remote is the name of the remote used for syncing.
	Remote string `yaml:"remote"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		Repo: Repo{
			DefaultBranch: "master",
			Remote:        "origin",
		},
	}
}

// Load loads configuration from file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// LoadDefault loads configuration from the default location, falling back to
// defaults when no settings file exists. METRO_CONFIG overrides the path.
func LoadDefault() *Config {
	path := os.Getenv("METRO_CONFIG")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultConfig()
		}
		path = filepath.Join(home, ".config", "metro", "config.yaml")
	}

	cfg, err := Load(path)
	if err != nil {
		cfg = DefaultConfig()
		cfg.applyEnvOverrides()
	}
	return cfg
}

// applyEnvOverrides applies METRO_* environment variables on top of the file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("METRO_USER_NAME"); v != "" {
		c.User.Name = v
	}
	if v := os.Getenv("METRO_USER_EMAIL"); v != "" {
		c.User.Email = v
	}
	if v := os.Getenv("METRO_REMOTE"); v != "" {
		c.Repo.Remote = v
	}
	if c.Repo.DefaultBranch == "" {
		c.Repo.DefaultBranch = "master"
	}
	if c.Repo.Remote == "" {
		c.Repo.Remote = "origin"
	}
}
