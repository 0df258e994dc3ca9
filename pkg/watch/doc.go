// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package watch monitors a repository's working directory for changes.
//
// It drives "metro info --watch": filesystem events from the worktree are
// debounced and delivered as ticks so the caller can re-render status.
// Events under the repository metadata directory are ignored.
package watch
