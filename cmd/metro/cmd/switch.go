// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/siliconsloth/metro/pkg/branchname"
	"github.com/siliconsloth/metro/pkg/wip"
)

var switchCmd = &cobra.Command{
	Use:   "switch <branch>",
	Short: "Switch to a different branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		out := output()

		r, err := openRepo()
		if err != nil {
			return err
		}

		targetHasWIP := r.BranchExists(branchname.ToWIP(name))

		if r.IsOnBranch(name) {
			if !targetHasWIP {
				out.Printf("You are already on branch %s", name)
				return nil
			}
			if err := wip.Restore(cmd.Context(), r); err != nil {
				return err
			}
			out.Printf("Loaded changes from WIP")
			return nil
		}

		changed, err := r.HasUncommittedChanges()
		if err != nil {
			return err
		}

		if err := wip.SwitchBranch(cmd.Context(), r, name, true); err != nil {
			return err
		}

		if changed {
			out.Printf("Saved changes to WIP")
		}
		out.Successf("Switched to branch %s.", name)
		if targetHasWIP {
			out.Printf("Loaded changes from WIP")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(switchCmd)
}
