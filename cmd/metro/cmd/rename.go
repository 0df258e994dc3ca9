// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siliconsloth/metro/pkg/branchname"
	"github.com/siliconsloth/metro/pkg/repo"
)

var renameForce bool

var renameCmd = &cobra.Command{
	Use:   "rename [from] <to>",
	Short: "Rename a branch",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		out := output()

		var from, to string
		if len(args) == 1 {
			to = args[0]
			from, err = r.CurrentBranchName()
			if errors.Is(err, repo.ErrBranchNotFound) {
				return fmt.Errorf("HEAD is not pointing at any branch; try 'metro rename <branch> %s'", to)
			}
			if err != nil {
				return err
			}
		} else {
			from, to = args[0], args[1]
		}

		if err := branchname.Validate(to); err != nil {
			return err
		}

		if r.BranchExists(to) && !renameForce {
			return fmt.Errorf("%w: there is already a branch with that name; to overwrite it, use 'metro rename --force'", repo.ErrUnsupportedOperation)
		}
		if r.BranchExists(branchname.ToWIP(to)) && !renameForce {
			return fmt.Errorf("%w: there is a WIP branch for the target branch name; to overwrite it, use 'metro rename --force'", repo.ErrUnsupportedOperation)
		}

		onBranch := r.IsOnBranch(from)
		if err := r.RenameBranch(from, to, renameForce); err != nil {
			return err
		}
		if onBranch {
			if err := r.MoveHead(to); err != nil {
				return err
			}
		}

		// A leftover WIP under the new name would get adopted by the
		// renamed branch; drop it before moving ours across.
		if r.BranchExists(branchname.ToWIP(to)) {
			if err := r.RemoveBranch(branchname.ToWIP(to)); err != nil {
				return err
			}
		}
		if r.BranchExists(branchname.ToWIP(from)) {
			if err := r.RenameBranch(branchname.ToWIP(from), branchname.ToWIP(to), renameForce); err != nil {
				return err
			}
		}

		out.Successf("Renamed branch %s to %s.", from, to)
		return nil
	},
}

func init() {
	renameCmd.Flags().BoolVar(&renameForce, "force", false, "Overwrite an existing branch of the target name")
	rootCmd.AddCommand(renameCmd)
}
