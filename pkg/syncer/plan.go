// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package syncer

import (
	"context"

	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/siliconsloth/metro/pkg/branchname"
	"github.com/siliconsloth/metro/pkg/wip"
)

// pushRefspec builds the refspec that pushes a branch, or deletes it on the
// remote when deleting is set.
func pushRefspec(branchName string, deleting bool) gitconfig.RefSpec {
	if deleting {
		return gitconfig.RefSpec(":refs/heads/" + branchName)
	}
	return gitconfig.RefSpec("+refs/heads/" + branchName + ":refs/heads/" + branchName)
}

// queuePush adds refspecs for a base branch and its WIP companion. Each is
// pushed only when the two sides differ; a WIP that exists only remotely is
// deleted there.
func queuePush(branchName string, targets *RefTargets, refspecs []gitconfig.RefSpec) []gitconfig.RefSpec {
	if targets.Local.Base != targets.Remote.Base {
		refspecs = append(refspecs, pushRefspec(branchName, targets.Local.Base.IsZero()))
	}

	// If neither side has a WIP branch there is nothing to push. If exactly
	// one does the heads are guaranteed to differ for a valid WIP; if both
	// do, push only when the heads differ.
	if (targets.Local.HasWIP || targets.Remote.HasWIP) && targets.Local.Head != targets.Remote.Head {
		refspecs = append(refspecs, pushRefspec(branchname.ToWIP(branchName), !targets.Local.HasWIP))
	}

	return refspecs
}

// changeBranchTarget moves a local branch to a new target, creating or
// deleting it as needed. The working directory follows when the branch is
// the current one.
func (s *Syncer) changeBranchTarget(ctx context.Context, branchName string, newTarget plumbing.Hash) error {
	if newTarget.IsZero() {
		// A WIP branch may already have gone with its base branch.
		if s.repo.BranchExists(branchName) {
			return wip.DeleteBranch(ctx, s.repo, branchName)
		}
		return nil
	}

	if err := s.repo.SetBranchTarget(branchName, newTarget, true); err != nil {
		return err
	}
	if s.repo.IsOnBranch(branchName) {
		return s.repo.Checkout(ctx, branchName)
	}
	return nil
}

// pull sets a branch and its WIP companion to the fetched remote targets.
// WIP heads are hashes at this point; wipCommits recovers the real commit.
func (s *Syncer) pull(ctx context.Context, branchName string, targets *RefTargets, wipCommits map[plumbing.Hash]plumbing.Hash) error {
	if targets.Local.Base != targets.Remote.Base {
		if err := s.changeBranchTarget(ctx, branchName, targets.Remote.Base); err != nil {
			return err
		}
	}

	if (targets.Local.HasWIP || targets.Remote.HasWIP) && targets.Local.Head != targets.Remote.Head {
		var target plumbing.Hash
		if targets.Remote.HasWIP {
			target = wipCommits[targets.Remote.Head]
		}
		if err := s.changeBranchTarget(ctx, branchname.ToWIP(branchName), target); err != nil {
			return err
		}
	}
	return nil
}

// createConflictBranches moves the diverged local commits of a branch onto a
// fresh versioned branch, pulls the remote commits under the original name,
// and queues the new branch for pushing unless the sync is pull-only. HEAD
// follows onto the new branch so the user stays on their own commits.
func (s *Syncer) createConflictBranches(ctx context.Context, branchName string, targets *RefTargets,
	direction Direction, branchTargets map[string]*RefTargets, refspecs []gitconfig.RefSpec,
	syncedBranches []string, wipCommits map[plumbing.Hash]plumbing.Hash,
) ([]gitconfig.RefSpec, []string, error) {
	newName := nextConflictBranchName(branchName, branchTargets)

	if err := s.repo.SetBranchTarget(newName, targets.Local.Base, false); err != nil {
		return refspecs, syncedBranches, err
	}
	if targets.Local.HasWIP {
		if err := s.repo.SetBranchTarget(branchname.ToWIP(newName), wipCommits[targets.Local.Head], false); err != nil {
			return refspecs, syncedBranches, err
		}
	}

	s.printf("Branch %s had remote changes that conflicted with yours; your commits have been moved to %s.", branchName, newName)

	// The new branch has identical contents, so no checkout is needed when
	// moving HEAD onto it.
	if s.repo.IsOnBranch(branchName) {
		if err := s.repo.MoveHead(newName); err != nil {
			return refspecs, syncedBranches, err
		}
		s.printf("You've been moved to %s.", newName)
	}

	if err := s.pull(ctx, branchName, targets, wipCommits); err != nil {
		return refspecs, syncedBranches, err
	}
	syncedBranches = append(syncedBranches, branchName, branchname.ToWIP(branchName))

	if direction != Down {
		refspecs = append(refspecs, pushRefspec(newName, false))
		if targets.Local.HasWIP {
			refspecs = append(refspecs, pushRefspec(branchname.ToWIP(newName), false))
		}
		syncedBranches = append(syncedBranches, newName, branchname.ToWIP(newName))
	}

	return refspecs, syncedBranches, nil
}
