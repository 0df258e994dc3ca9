// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/siliconsloth/metro/pkg/branchname"
	"github.com/siliconsloth/metro/pkg/cliutil"
	"github.com/siliconsloth/metro/pkg/repo"
)

// listLimit caps how many commits are printed from the current branch.
var listLimit int

var listCmd = &cobra.Command{
	Use:   "list <commits|branches>",
	Short: "Lists the commits or branches",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		out := output()

		switch args[0] {
		case "branches":
			return listBranches(r, out)
		case "commits":
			return listCommits(r, out)
		default:
			return fmt.Errorf("unknown list type %q; expected commits or branches", args[0])
		}
	},
}

func listBranches(r *repo.Repository, out *cliutil.Output) error {
	names, err := r.Branches()
	if err != nil {
		return err
	}

	for _, name := range names {
		if branchname.IsWIP(name) {
			continue
		}
		marker := "  "
		if r.IsOnBranch(name) {
			marker = "* "
		}
		out.Printf("%s%s", marker, out.Branch(name, r.IsOnBranch(name)))

		if r.BranchExists(branchname.ToWIP(name)) {
			out.Subtlef("    has work in progress")
		}
	}
	return nil
}

func listCommits(r *repo.Repository, out *cliutil.Output) error {
	commit, err := r.LastCommit()
	if err != nil {
		return err
	}

	branches, err := r.Branches()
	if err != nil {
		return err
	}

	for n := 0; commit != nil && (listLimit == 0 || n < listLimit); n++ {
		// Decorate with every branch pointing at this commit.
		var decorations []string
		for _, name := range branches {
			if target, err := r.BranchTarget(name); err == nil && target == commit.Hash {
				decorations = append(decorations, out.Branch(name, r.IsOnBranch(name)))
			}
		}

		header := "Commit " + commit.Hash.String()
		if len(decorations) > 0 {
			header += " (" + strings.Join(decorations, ", ") + ")"
		}
		out.Printf("%s", header)
		out.Printf("Author: %s (%s)", commit.Author.Name, commit.Author.Email)
		out.Printf("Date: %s", commit.Author.When.Format("Mon Jan 2 15:04:05 2006 -0700"))
		out.Printf("\n    %s", strings.ReplaceAll(strings.TrimRight(commit.Message, "\n"), "\n", "\n    "))

		if commit.NumParents() == 0 {
			break
		}
		parent, err := commit.Parent(0)
		if err != nil {
			return err
		}
		commit = parent
		out.Printf("")
	}
	return nil
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of commits to print (0 = all)")
	rootCmd.AddCommand(listCmd)
}
