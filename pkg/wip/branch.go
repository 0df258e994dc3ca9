// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package wip

import (
	"context"
	"fmt"

	"github.com/siliconsloth/metro/pkg/branchname"
	"github.com/siliconsloth/metro/pkg/repo"
)

// SwitchBranch changes the current branch to name. With saveWIP the pending
// work of the old branch is captured on its WIP companion first; otherwise
// the working directory is hard-reset to HEAD. After the checkout any WIP of
// the target branch is restored.
func SwitchBranch(ctx context.Context, r *repo.Repository, name string, saveWIP bool) error {
	if branchname.IsWIP(name) {
		return fmt.Errorf("%w: can't switch to WIP branch", repo.ErrUnsupportedOperation)
	}
	if !r.BranchExists(name) {
		return fmt.Errorf("%w: %s", repo.ErrBranchNotFound, name)
	}

	if saveWIP {
		if err := Save(ctx, r); err != nil {
			return err
		}
	} else {
		head, err := r.GetCommit("HEAD")
		if err != nil {
			return err
		}
		if err := r.ResetHead(ctx, head, true); err != nil {
			return err
		}
	}

	if err := r.Checkout(ctx, name); err != nil {
		return err
	}
	if err := r.MoveHead(name); err != nil {
		return err
	}
	return Restore(ctx, r)
}

// DeleteBranch deletes a branch and its WIP companion. Deleting the current
// branch first switches away, preferring the configured default branch and
// falling back to any other non-WIP branch.
func DeleteBranch(ctx context.Context, r *repo.Repository, name string) error {
	if r.IsOnBranch(name) {
		target, ok := r.NonWIPBranch(name)
		if !ok {
			return fmt.Errorf("%w: can't delete only non-WIP branch", repo.ErrUnsupportedOperation)
		}
		if err := SwitchBranch(ctx, r, target, false); err != nil {
			return err
		}
	}

	if !r.BranchExists(name) {
		return fmt.Errorf("%w: %s", repo.ErrBranchNotFound, name)
	}
	if err := r.RemoveBranch(name); err != nil {
		return err
	}

	wipName := branchname.ToWIP(name)
	if r.BranchExists(wipName) {
		return r.RemoveBranch(wipName)
	}
	return nil
}
