// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package repo

import (
	"context"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/index"
)

// ChangeStats summarises pending changes between HEAD and the staged
// working directory.
type ChangeStats struct {
	Added    int
	Deleted  int
	Modified int
	Renamed  int
	Copied   int
}

// Total returns the number of changed files.
func (s ChangeStats) Total() int {
	return s.Added + s.Deleted + s.Modified + s.Renamed + s.Copied
}

// AddAll stages every change in the working directory, including untracked
// files and deletions, honouring the repository's ignore rules. The updated
// index is returned.
func (r *Repository) AddAll(ctx context.Context) (*index.Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wt, err := r.git.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}

	// Staging a conflicted path replaces its conflict entries with the
	// working directory content, so drop them up front.
	idx, err := r.Index()
	if err != nil {
		return nil, err
	}
	if HasConflicts(idx) {
		RemoveConflicts(idx)
		if err := r.SetIndex(idx); err != nil {
			return nil, err
		}
	}

	if err := wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return nil, fmt.Errorf("stage changes: %w", err)
	}

	return r.Index()
}

// Index reads the staging area.
func (r *Repository) Index() (*index.Index, error) {
	idx, err := r.git.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return idx, nil
}

// SetIndex persists the staging area.
func (r *Repository) SetIndex(idx *index.Index) error {
	if err := r.git.Storer.SetIndex(idx); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// HasUncommittedChanges reports whether the working directory or index
// differ from HEAD. Untracked files count as changes.
func (r *Repository) HasUncommittedChanges() (bool, error) {
	wt, err := r.git.Worktree()
	if err != nil {
		return false, fmt.Errorf("open worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("read status: %w", err)
	}
	return !status.IsClean(), nil
}

// CurrentChanges diffs HEAD's tree against the staged working directory.
// On a branch with no commits every file counts as added.
func (r *Repository) CurrentChanges(ctx context.Context) (ChangeStats, error) {
	if err := ctx.Err(); err != nil {
		return ChangeStats{}, err
	}

	wt, err := r.git.Worktree()
	if err != nil {
		return ChangeStats{}, fmt.Errorf("open worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return ChangeStats{}, fmt.Errorf("read status: %w", err)
	}

	var stats ChangeStats
	for _, fs := range status {
		code := fs.Staging
		if code == gogit.Unmodified || code == gogit.Untracked {
			code = fs.Worktree
		}
		switch code {
		case gogit.Added, gogit.Untracked:
			stats.Added++
		case gogit.Deleted:
			stats.Deleted++
		case gogit.Modified, gogit.UpdatedButUnmerged:
			stats.Modified++
		case gogit.Renamed:
			stats.Renamed++
		case gogit.Copied:
			stats.Copied++
		}
	}
	return stats, nil
}
