// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package repo

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/siliconsloth/metro/pkg/branchname"
)

// CreateBranch creates a branch pointing at the current HEAD commit.
func (r *Repository) CreateBranch(name string) error {
	head, err := r.GetCommit("HEAD")
	if err != nil {
		return err
	}
	return r.SetBranchTarget(name, head.Hash, false)
}

// SetBranchTarget points refs/heads/<name> at target, creating the branch if
// needed. With force false an existing branch is an error.
func (r *Repository) SetBranchTarget(name string, target plumbing.Hash, force bool) error {
	refName := plumbing.NewBranchReferenceName(name)

	if !force {
		if _, err := r.git.Reference(refName, false); err == nil {
			return fmt.Errorf("%w: branch %s already exists", ErrUnsupportedOperation, name)
		}
	}

	if err := r.git.Storer.SetReference(plumbing.NewHashReference(refName, target)); err != nil {
		return fmt.Errorf("set branch %s: %w", name, err)
	}
	return nil
}

// BranchExists reports whether a local branch with the name exists.
func (r *Repository) BranchExists(name string) bool {
	_, err := r.git.Reference(plumbing.NewBranchReferenceName(name), false)
	return err == nil
}

// BranchTarget returns the commit id a local branch points at.
func (r *Repository) BranchTarget(name string) (plumbing.Hash, error) {
	ref, err := r.git.Reference(plumbing.NewBranchReferenceName(name), true)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: %s", ErrBranchNotFound, name)
	}
	return ref.Hash(), nil
}

// Branches returns the names of all local branches.
func (r *Repository) Branches() ([]string, error) {
	iter, err := r.git.Branches()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer iter.Close()

	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	return names, nil
}

// RemoveBranch deletes a branch reference. The working directory, HEAD and
// any WIP companion are untouched; use wip.DeleteBranch for the user-facing
// deletion.
func (r *Repository) RemoveBranch(name string) error {
	refName := plumbing.NewBranchReferenceName(name)
	if _, err := r.git.Reference(refName, false); err != nil {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, name)
	}

	if err := r.git.Storer.RemoveReference(refName); err != nil {
		return fmt.Errorf("delete branch %s: %w", name, err)
	}
	return nil
}

// RenameBranch renames a single branch reference. Companion WIP branches are
// the caller's concern.
func (r *Repository) RenameBranch(from, to string, force bool) error {
	target, err := r.BranchTarget(from)
	if err != nil {
		return err
	}

	if err := r.SetBranchTarget(to, target, force); err != nil {
		return err
	}
	return r.RemoveBranch(from)
}

// NonWIPBranch returns any local branch that is neither a WIP branch nor the
// excluded name, preferring the configured default branch.
func (r *Repository) NonWIPBranch(exclude string) (string, bool) {
	def := r.cfg.Repo.DefaultBranch
	if def != exclude && r.BranchExists(def) {
		return def, true
	}

	names, err := r.Branches()
	if err != nil {
		return "", false
	}
	for _, name := range names {
		if name != exclude && !branchname.IsWIP(name) {
			return name, true
		}
	}
	return "", false
}
