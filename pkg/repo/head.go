// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// Head is the interpreted content of the HEAD pointer file.
type Head struct {
	// Name is the branch name when attached, or the raw commit id when detached.
	Name string

	// Detached reports whether HEAD points directly at a commit.
	Detached bool
}

// Head reads the HEAD pointer file directly and interprets it.
func (r *Repository) Head() (Head, error) {
	data, err := os.ReadFile(filepath.Join(r.gitDir, "HEAD"))
	if err != nil {
		return Head{}, fmt.Errorf("read HEAD: %w", err)
	}

	content := strings.TrimSuffix(string(data), "\n")
	content = strings.TrimSuffix(content, "\r")

	if name, ok := strings.CutPrefix(content, "ref: refs/heads/"); ok {
		return Head{Name: name}, nil
	}
	if name, ok := strings.CutPrefix(content, "ref: refs/remotes/"); ok {
		return Head{Name: name}, nil
	}
	return Head{Name: content, Detached: true}, nil
}

// IsOnBranch reports whether HEAD is attached to the named branch.
func (r *Repository) IsOnBranch(name string) bool {
	head, err := r.Head()
	if err != nil {
		return false
	}
	return !head.Detached && head.Name == name
}

// CurrentBranchName returns the attached branch name, or ErrBranchNotFound
// when HEAD is detached.
func (r *Repository) CurrentBranchName() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", err
	}
	if head.Detached {
		return "", fmt.Errorf("%w: HEAD is detached", ErrBranchNotFound)
	}
	return head.Name, nil
}

// HeadExists reports whether HEAD currently resolves to a commit. It is
// false on a branch with no commits yet.
func (r *Repository) HeadExists() bool {
	_, err := r.GetCommit("HEAD")
	return err == nil
}

// MoveHead attaches HEAD to the named branch without touching the working
// directory.
func (r *Repository) MoveHead(name string) error {
	if _, err := r.git.Reference(plumbing.NewBranchReferenceName(name), false); err != nil {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, name)
	}

	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(name))
	if err := r.git.Storer.SetReference(head); err != nil {
		return fmt.Errorf("move HEAD to %s: %w", name, err)
	}
	return nil
}
