// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Repo.DefaultBranch != "master" {
		t.Errorf("DefaultBranch = %q, want master", cfg.Repo.DefaultBranch)
	}
	if cfg.Repo.Remote != "origin" {
		t.Errorf("Remote = %q, want origin", cfg.Repo.Remote)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := []byte("user:\n  name: Test\n  email: test@test.com\nrepo:\n  remote: upstream\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.User.Name != "Test" || cfg.User.Email != "test@test.com" {
		t.Errorf("User = %+v", cfg.User)
	}
	if cfg.Repo.Remote != "upstream" {
		t.Errorf("Remote = %q, want upstream", cfg.Repo.Remote)
	}
	if cfg.Repo.DefaultBranch != "master" {
		t.Errorf("DefaultBranch = %q, want default master", cfg.Repo.DefaultBranch)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() with missing file should return error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("METRO_USER_NAME", "Env User")
	t.Setenv("METRO_REMOTE", "mirror")
	t.Setenv("METRO_CONFIG", filepath.Join(t.TempDir(), "none.yaml"))

	cfg := LoadDefault()
	if cfg.User.Name != "Env User" {
		t.Errorf("User.Name = %q, want Env User", cfg.User.Name)
	}
	if cfg.Repo.Remote != "mirror" {
		t.Errorf("Remote = %q, want mirror", cfg.Repo.Remote)
	}
}
