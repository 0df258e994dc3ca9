// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/siliconsloth/metro/pkg/syncer"
)

var (
	syncPush bool
	syncPull bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync repo with remote",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncPush && syncPull {
			return fmt.Errorf("--push and --pull are mutually exclusive")
		}

		direction := syncer.Both
		if syncPush {
			direction = syncer.Up
		} else if syncPull {
			direction = syncer.Down
		}

		r, err := openRepo()
		if err != nil {
			return err
		}

		s := syncer.New(r, syncer.Options{
			Output:   output().Writer(),
			Progress: os.Stderr,
		})
		return s.Sync(cmd.Context(), direction)
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncPush, "push", false, "Only push local changes")
	syncCmd.Flags().BoolVar(&syncPull, "pull", false, "Only pull remote changes")
	rootCmd.AddCommand(syncCmd)
}
