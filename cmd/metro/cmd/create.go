// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/siliconsloth/metro/pkg/repo"
)

var createCmd = &cobra.Command{
	Use:   "create [directory]",
	Short: "Create a repo",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		directory := "."
		if len(args) > 0 {
			directory = args[0]
		}

		if _, err := repo.Create(cmd.Context(), directory); err != nil {
			return err
		}
		output().Successf("Created Metro repo.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}
