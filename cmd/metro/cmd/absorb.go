// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siliconsloth/metro/pkg/merge"
	"github.com/siliconsloth/metro/pkg/repo"
)

var absorbCmd = &cobra.Command{
	Use:   "absorb <other-branch>",
	Short: "Merge the changes in another branch into this one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		out := output()

		r, err := openRepo()
		if err != nil {
			return err
		}

		head, err := r.Head()
		if err != nil {
			return err
		}
		if head.Detached {
			return fmt.Errorf("%w: you must be on a branch to absorb", repo.ErrUnsupportedOperation)
		}

		conflicts, err := merge.Absorb(cmd.Context(), r, name)
		if err != nil {
			return err
		}

		if conflicts {
			out.Printf("Conflicts occurred, please resolve.")
			return nil
		}
		out.Successf("Successfully absorbed %s into %s.", name, head.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(absorbCmd)
}
