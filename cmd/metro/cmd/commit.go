// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siliconsloth/metro/pkg/cliutil"
	"github.com/siliconsloth/metro/pkg/merge"
	"github.com/siliconsloth/metro/pkg/repo"
)

var commitCmd = &cobra.Command{
	Use:   "commit <message>",
	Short: "Make a commit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := args[0]
		out := output()

		r, err := openRepo()
		if err != nil {
			return err
		}
		if err := merge.AssertNotMerging(r); err != nil {
			return err
		}

		head, err := r.Head()
		if err != nil {
			return err
		}
		if head.Detached {
			return fmt.Errorf("%w: cannot commit while HEAD is detached; try switching to a branch first", repo.ErrUnsupportedOperation)
		}

		if !r.HeadExists() {
			// Initial commit of the branch, with no parent.
			if _, err := r.CommitAllRevs(cmd.Context(), "HEAD", message, nil); err != nil {
				return err
			}
			out.Successf("Made initial commit in branch %s.", head.Name)
			return nil
		}

		if _, err := r.AddAll(cmd.Context()); err != nil {
			return err
		}
		stats, err := r.CurrentChanges(cmd.Context())
		if err != nil {
			return err
		}
		if stats.Total() == 0 {
			return fmt.Errorf("%w: no files to commit", repo.ErrUnsupportedOperation)
		}

		if _, err := r.CommitAllRevs(cmd.Context(), "HEAD", message, []string{"HEAD"}); err != nil {
			return err
		}

		printStats(out, stats, statsCommitted)
		out.Successf("Saved commit to branch %s.", head.Name)
		return nil
	},
}

// Wording for change summaries: what just happened vs. what is pending.
type statsTense int

const (
	statsCommitted statsTense = iota
	statsPending
)

func printStats(out *cliutil.Output, stats repo.ChangeStats, tense statsTense) {
	line := func(n int, done, todo string) {
		if n == 0 {
			return
		}
		plural := ""
		if n > 1 {
			plural = "s"
		}
		if tense == statsCommitted {
			out.Printf("%d file%s %s", n, plural, done)
		} else {
			out.Printf("%d file%s %s", n, plural, todo)
		}
	}

	line(stats.Added, "added", "to add")
	line(stats.Deleted, "deleted", "to delete")
	line(stats.Modified, "modified", "to modify")
	line(stats.Renamed, "renamed", "to rename")
	line(stats.Copied, "copied", "to copy")
}

func init() {
	rootCmd.AddCommand(commitCmd)
}
