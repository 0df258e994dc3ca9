// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package wip

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/siliconsloth/metro/pkg/branchname"
	"github.com/siliconsloth/metro/pkg/merge"
	"github.com/siliconsloth/metro/pkg/repo"
)

// CommitPrefix is the first line of every WIP commit message. During a merge
// the stored merge message follows on the remaining lines.
const CommitPrefix = "WIP"

// Save captures any uncommitted changes or in-progress merge on the current
// branch into a commit on its WIP companion branch. Afterwards the merge
// state is cleared; the working directory itself is left for the following
// checkout to replace. On a clean, non-merging repository Save is a no-op.
func Save(ctx context.Context, r *repo.Repository) error {
	changed, err := r.HasUncommittedChanges()
	if err != nil {
		return err
	}
	merging := merge.Ongoing(r)
	if !changed && !merging {
		return nil
	}

	head, err := r.Head()
	if err != nil {
		return err
	}
	if head.Detached {
		return fmt.Errorf("%w: attempted to save WIP with detached HEAD", repo.ErrUnsupportedOperation)
	}
	wipName := branchname.ToWIP(head.Name)

	// A stale WIP branch may be left over; replace it.
	if err := r.RemoveBranch(wipName); err != nil && !errors.Is(err, repo.ErrBranchNotFound) {
		return err
	}

	headExists := r.HeadExists()
	wipRef := "refs/heads/" + wipName

	if merging {
		message, err := merge.Message(r)
		if err != nil {
			message = ""
		}

		parents := []string{"MERGE_HEAD"}
		if headExists {
			parents = []string{"HEAD", "MERGE_HEAD"}
		}
		if _, err := r.CommitAllRevs(ctx, wipRef, CommitPrefix+"\n"+message, parents); err != nil {
			return err
		}
		return merge.CleanupState(r)
	}

	var parents []string
	if headExists {
		parents = []string{"HEAD"}
	}
	_, err = r.CommitAllRevs(ctx, wipRef, CommitPrefix, parents)
	return err
}

// Restore re-applies the WIP commit of the current branch to the working
// directory and deletes the WIP branch. A WIP commit with two parents
// restarts the merge it captured, including its message and index conflicts.
// Without a WIP branch Restore is a no-op.
func Restore(ctx context.Context, r *repo.Repository) error {
	head, err := r.Head()
	if err != nil {
		return err
	}
	if head.Detached {
		return fmt.Errorf("%w: attempted to restore WIP with detached HEAD", repo.ErrUnsupportedOperation)
	}
	wipName := branchname.ToWIP(head.Name)

	if !r.BranchExists(wipName) {
		return nil
	}

	wipCommit, err := r.GetCommit(wipName)
	if err != nil {
		return err
	}

	var conflicts []repo.Conflict
	if wipCommit.NumParents() > 1 {
		// The WIP captured a merge; re-enter it against the second parent.
		mergeHead := wipCommit.ParentHashes[1].String()
		if err := merge.Start(ctx, r, mergeHead); err != nil {
			return err
		}

		// The merge message was stored after the first line of the WIP
		// commit message. A single-line message only happens if the commit
		// was tampered with; then the restarted merge's default stands.
		if _, rest, found := strings.Cut(wipCommit.Message, "\n"); found {
			if err := merge.SetMessage(r, rest); err != nil {
				return err
			}
		}

		// Take the conflicts out of the index so the checkout below is
		// allowed; they are re-applied afterwards so index and working
		// directory match their state when the WIP commit was created.
		idx, err := r.Index()
		if err != nil {
			return err
		}
		conflicts = repo.SnapshotConflicts(idx)
		repo.RemoveConflicts(idx)
		if err := r.SetIndex(idx); err != nil {
			return err
		}
	}

	if err := r.Checkout(ctx, wipName); err != nil {
		return err
	}
	if err := r.RemoveBranch(wipName); err != nil {
		return err
	}

	if len(conflicts) > 0 {
		idx, err := r.Index()
		if err != nil {
			return err
		}
		repo.ApplyConflicts(idx, conflicts)
		if err := r.SetIndex(idx); err != nil {
			return err
		}
	}
	return nil
}

// Squash collapses the WIP branch of the current branch into a single WIP
// commit, preserving its tree, message and merge parent.
func Squash(ctx context.Context, r *repo.Repository) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name, err := r.CurrentBranchName()
	if err != nil {
		return err
	}
	wipName := branchname.ToWIP(name)

	if !r.BranchExists(wipName) {
		return ErrAttachedWIP
	}

	wipCommit, err := r.GetCommit(wipName)
	if err != nil {
		return err
	}

	var parents []plumbing.Hash
	if r.BranchExists(name) {
		base, err := r.BranchTarget(name)
		if err != nil {
			return err
		}
		parents = append(parents, base)
	}
	if wipCommit.NumParents() > 1 {
		parents = append(parents, wipCommit.ParentHashes[1])
	}

	_, err = r.WriteCommit("refs/heads/"+wipName, wipCommit.Message, wipCommit.TreeHash, parents)
	return err
}
