// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/siliconsloth/metro/pkg/cliutil"
	"github.com/siliconsloth/metro/pkg/merge"
	"github.com/siliconsloth/metro/pkg/repo"
	"github.com/siliconsloth/metro/pkg/watch"
)

var infoWatch bool

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the state of the repo",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		out := output()

		if err := printInfo(cmd.Context(), r, out); err != nil {
			return err
		}
		if !infoWatch {
			return nil
		}

		w, err := watch.NewWatcher(r.Path(), r.GitDir(), watch.Options{})
		if err != nil {
			return err
		}
		defer w.Close()

		go func() {
			for range w.Ticks() {
				out.Printf("")
				if err := printInfo(cmd.Context(), r, out); err != nil {
					out.Errorf("%v", err)
				}
			}
		}()

		err = w.Run(cmd.Context())
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func printInfo(ctx context.Context, r *repo.Repository, out *cliutil.Output) error {
	head, err := r.Head()
	if err != nil {
		return err
	}
	if head.Detached {
		out.Printf("Head is detached at commit %s", head.Name)
	} else {
		out.Printf("Current branch is %s", out.Branch(head.Name, true))
	}

	if merge.Ongoing(r) {
		out.Printf("Merge ongoing")
	} else {
		out.Printf("Not merging")
	}

	if _, err := r.AddAll(ctx); err != nil {
		return err
	}
	stats, err := r.CurrentChanges(ctx)
	if err != nil {
		return err
	}
	if stats.Total() == 0 {
		out.Printf("Nothing to commit")
		return nil
	}
	printStats(out, stats, statsPending)
	return nil
}

func init() {
	infoCmd.Flags().BoolVar(&infoWatch, "watch", false, "Keep running and re-print on changes")
	rootCmd.AddCommand(infoCmd)
}
