// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/siliconsloth/metro/pkg/repo"
	"github.com/siliconsloth/metro/pkg/syncer"
	"github.com/siliconsloth/metro/pkg/urldesc"
	"github.com/siliconsloth/metro/pkg/wip"
)

var cloneCmd = &cobra.Command{
	Use:   "clone <url>",
	Short: "Clone a remote repo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := args[0]
		out := output()

		name := urldesc.Parse(url).Repository
		if name == "" {
			return fmt.Errorf("%w: couldn't find repository name in URL", repo.ErrUnsupportedOperation)
		}

		out.Printf("Cloning %s into %s", url, name)
		r, err := syncer.Clone(cmd.Context(), url, name, syncer.Options{
			Output:   out.Writer(),
			Progress: os.Stderr,
		})
		if err != nil {
			return err
		}

		if head, headErr := r.Head(); headErr == nil && !head.Detached {
			if err := wip.Restore(cmd.Context(), r); err != nil {
				return err
			}
		}

		out.Successf("Cloning complete.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cloneCmd)
}
