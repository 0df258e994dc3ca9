// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"

	"github.com/siliconsloth/metro/pkg/repo"
)

// TempRepo creates a temporary Metro repository with its initial root
// commit. A test signature is configured through the environment.
func TempRepo(t *testing.T) *repo.Repository {
	t.Helper()
	t.Setenv("METRO_USER_NAME", "Test")
	t.Setenv("METRO_USER_EMAIL", "test@test.com")

	r, err := repo.Create(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	return r
}

// WriteFile writes a file inside the repository's working directory.
func WriteFile(t *testing.T, r *repo.Repository, name, content string) {
	t.Helper()

	path := filepath.Join(r.Path(), name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

// ReadFile reads a file from the repository's working directory.
func ReadFile(t *testing.T, r *repo.Repository, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(r.Path(), name))
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}

// FileExists reports whether a file exists in the working directory.
func FileExists(t *testing.T, r *repo.Repository, name string) bool {
	t.Helper()

	_, err := os.Stat(filepath.Join(r.Path(), name))
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("failed to stat %s: %v", name, err)
	}
	return err == nil
}

// CommitAll stages everything and commits it on the current branch.
func CommitAll(t *testing.T, r *repo.Repository, message string) {
	t.Helper()

	var parents []string
	if r.HeadExists() {
		parents = []string{"HEAD"}
	}
	if _, err := r.CommitAllRevs(context.Background(), "HEAD", message, parents); err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
}

// WriteGitFile writes a file inside the repository metadata directory, such
// as MERGE_HEAD or HEAD.
func WriteGitFile(t *testing.T, r *repo.Repository, name, content string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(r.GitDir(), name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

// DetachHead points HEAD directly at a commit id.
func DetachHead(t *testing.T, r *repo.Repository, hash string) {
	t.Helper()
	WriteGitFile(t, r, "HEAD", hash+"\n")
}

// BareRemote creates a bare repository and wires it up as the sync remote.
// The remote's path is returned so further clones can target it.
func BareRemote(t *testing.T, r *repo.Repository) string {
	t.Helper()

	path := t.TempDir()
	if _, err := gogit.PlainInit(path, true); err != nil {
		t.Fatalf("failed to init bare remote: %v", err)
	}
	if err := r.SetOrigin(path); err != nil {
		t.Fatalf("failed to set origin: %v", err)
	}
	return path
}

// CloneFromRemote opens a second working clone of the remote at path.
func CloneFromRemote(t *testing.T, remotePath string) *repo.Repository {
	t.Helper()
	t.Setenv("METRO_USER_NAME", "Test")
	t.Setenv("METRO_USER_EMAIL", "test@test.com")

	dir := t.TempDir()
	if _, err := gogit.PlainClone(dir, false, &gogit.CloneOptions{URL: remotePath}); err != nil {
		t.Fatalf("failed to clone remote: %v", err)
	}

	r, err := repo.Open(dir)
	if err != nil {
		t.Fatalf("failed to open clone: %v", err)
	}
	return r
}
