// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siliconsloth/metro/pkg/merge"
)

var patchForce bool

var patchCmd = &cobra.Command{
	Use:   "patch [message]",
	Short: "Update the last commit with the current work",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := output()

		r, err := openRepo()
		if err != nil {
			return err
		}
		if !r.HeadExists() {
			return fmt.Errorf("no commit to patch")
		}
		if err := merge.AssertNotMerging(r); err != nil {
			return err
		}

		last, err := r.LastCommit()
		if err != nil {
			return err
		}

		// The existing message is the default.
		message := last.Message
		if len(args) == 1 {
			message = args[0]
		}

		// Patching someone else's commit replaces their signature; make the
		// user opt into that.
		if !patchForce {
			sig, err := r.Signature()
			if err != nil {
				return err
			}
			if last.Author.Name != sig.Name || last.Author.Email != sig.Email {
				out.Printf("Your credentials are different to the author of the commit you are trying to patch.")
				out.Printf("Patching the commit will override their credentials with your own.")
				out.Printf("If you would still like to patch, use metro patch --force.")
				return nil
			}
		}

		if err := r.Patch(cmd.Context(), message); err != nil {
			return err
		}
		out.Successf("Patched commit.")
		return nil
	},
}

func init() {
	patchCmd.Flags().BoolVar(&patchForce, "force", false, "Patch even if the commit author differs")
	rootCmd.AddCommand(patchCmd)
}
