// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherDeliversTick(t *testing.T) {
	root := t.TempDir()
	gitDir := filepath.Join(root, ".git")
	if err := os.MkdirAll(gitDir, 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(root, gitDir, Options{DebounceDuration: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	if err := os.WriteFile(filepath.Join(root, "file.txt"), []byte("change"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Ticks():
	case <-time.After(5 * time.Second):
		t.Fatal("no tick received for working directory change")
	}
}

func TestWatcherIgnoresGitDir(t *testing.T) {
	root := t.TempDir()
	gitDir := filepath.Join(root, ".git")
	if err := os.MkdirAll(gitDir, 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(root, gitDir, Options{DebounceDuration: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	if err := os.WriteFile(filepath.Join(gitDir, "index"), []byte("internal"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Ticks():
		t.Fatal("tick received for metadata directory change")
	case <-time.After(300 * time.Millisecond):
	}
}
