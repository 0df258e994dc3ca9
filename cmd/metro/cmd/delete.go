// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/siliconsloth/metro/pkg/merge"
	"github.com/siliconsloth/metro/pkg/wip"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <branch>",
	Short: "Delete a branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		r, err := openRepo()
		if err != nil {
			return err
		}
		if err := merge.AssertNotMerging(r); err != nil {
			return err
		}

		if err := wip.DeleteBranch(cmd.Context(), r, name); err != nil {
			return err
		}
		output().Successf("Deleted branch %s.", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
