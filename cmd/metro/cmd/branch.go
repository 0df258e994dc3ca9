// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siliconsloth/metro/pkg/branchname"
	"github.com/siliconsloth/metro/pkg/wip"
)

var branchCmd = &cobra.Command{
	Use:   "branch <name>",
	Short: "Create a new branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		out := output()

		if err := branchname.Validate(name); err != nil {
			return err
		}

		r, err := openRepo()
		if err != nil {
			return err
		}
		if r.BranchExists(name) {
			return fmt.Errorf("branch %s already exists", name)
		}

		if err := r.CreateBranch(name); err != nil {
			return err
		}
		out.Successf("Created branch %s.", name)

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
		return nil
	},
}

func init() {
	rootCmd.AddCommand(branchCmd)
}
