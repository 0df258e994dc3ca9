// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package repo provides Metro's high-level operations over a Git repository.
//
// It wraps go-git with the primitives the rest of Metro is built from:
// stage-everything, working-tree snapshots, commits with explicit parents,
// forced checkouts that leave HEAD alone, branch bookkeeping and the raw
// HEAD model. Branch switching and deletion that must pass through the WIP
// engine live in the wip package; this package only moves refs and files.
//
// # Usage
//
//	r, err := repo.Open(".")
//	head, err := r.Head()
//	hash, err := r.CommitAll(ctx, "HEAD", "message", parents)
package repo
