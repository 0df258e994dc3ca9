// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package cmd implements the CLI commands for metro.
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/siliconsloth/metro/pkg/cliutil"
	"github.com/siliconsloth/metro/pkg/repo"
)

// Global flags
var quiet bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "metro",
	Short: "Simplified version control on top of Git",
	Long: `Metro reshapes everyday branching, syncing and work-in-progress handling
into a simpler model on top of the standard Git object database.

Uncommitted work travels with its branch: switching away parks it on a
companion #wip branch and switching back restores it, conflicts included.
Syncing reconciles every branch with the remote and never loses commits —
diverged work moves to a versioned conflict branch instead.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress output (errors only)")
}

// Execute runs the root command. Ctrl+C cancels the in-flight operation
// through the command context.
func Execute(version string) {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		out := cliutil.NewOutput(os.Stderr, false)
		if ctx.Err() != nil {
			out.Errorf("Cancelled.")
		} else {
			out.Errorf("%v", err)
		}
		os.Exit(1)
	}
}

// output builds the shared writer for user-facing messages.
func output() *cliutil.Output {
	return cliutil.NewOutput(os.Stdout, quiet)
}

// openRepo opens the repository in the current directory.
func openRepo() (*repo.Repository, error) {
	return repo.Open(".")
}
