// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/siliconsloth/metro/pkg/merge"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Commit resolved conflicts after absorb",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}

		if err := merge.Resolve(cmd.Context(), r); err != nil {
			return err
		}

		name, err := r.CurrentBranchName()
		if err != nil {
			return err
		}
		output().Successf("Successfully absorbed into %s.", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
