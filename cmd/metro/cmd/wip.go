// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siliconsloth/metro/pkg/branchname"
	"github.com/siliconsloth/metro/pkg/repo"
	"github.com/siliconsloth/metro/pkg/wip"
)

var wipRestoreForce bool

var wipCmd = &cobra.Command{
	Use:   "wip",
	Short: "Save, restore or squash the WIP branch",
}

var wipSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the working directory to a WIP commit in a #wip branch",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, name, err := wipContext()
		if err != nil {
			return err
		}
		if r.BranchExists(branchname.ToWIP(name)) {
			return wip.ErrDetachedWIP
		}
		return wip.Save(cmd.Context(), r)
	},
}

var wipRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the WIP branch into the working directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, name, err := wipContext()
		if err != nil {
			return err
		}
		if !r.BranchExists(branchname.ToWIP(name)) {
			return wip.ErrAttachedWIP
		}

		// Restoring replaces the working directory; without --force any
		// local changes would be lost silently.
		changed, err := r.HasUncommittedChanges()
		if err != nil {
			return err
		}
		if changed && !wipRestoreForce {
			return fmt.Errorf("%w: working directory has changes; use 'metro wip restore --force' to discard them", repo.ErrUnsupportedOperation)
		}
		if changed {
			head, err := r.GetCommit("HEAD")
			if err != nil {
				return err
			}
			if err := r.ResetHead(cmd.Context(), head, true); err != nil {
				return err
			}
		}

		return wip.Restore(cmd.Context(), r)
	},
}

var wipSquashCmd = &cobra.Command{
	Use:   "squash",
	Short: "Squash the WIP branch into a single WIP commit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, _, err := wipContext()
		if err != nil {
			return err
		}
		return wip.Squash(cmd.Context(), r)
	},
}

// wipContext opens the repository and names the branch the wip subcommands
// operate on, rejecting a detached HEAD.
func wipContext() (*repo.Repository, string, error) {
	r, err := openRepo()
	if err != nil {
		return nil, "", err
	}

	head, err := r.Head()
	if err != nil {
		return nil, "", err
	}
	if !r.HeadExists() {
		head.Name = r.Settings().Repo.DefaultBranch
		head.Detached = false
	}
	if head.Detached {
		return nil, "", fmt.Errorf("%w: 'metro wip' can only be used on a branch", repo.ErrUnsupportedOperation)
	}
	return r, head.Name, nil
}

func init() {
	wipRestoreCmd.Flags().BoolVar(&wipRestoreForce, "force", false, "Discard local changes before restoring")
	wipCmd.AddCommand(wipSaveCmd, wipRestoreCmd, wipSquashCmd)
	rootCmd.AddCommand(wipCmd)
}
