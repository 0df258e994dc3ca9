// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package syncer implements Metro's bidirectional sync engine.
//
// Syncing reconciles three views of every branch: the local refs, the
// remote-tracking refs after a pruning fetch, and the sync cache recording
// what was last agreed with the remote. Each branch and its WIP companion
// are classified as push, pull or conflict; conflicts move the local commits
// onto a fresh versioned branch instead of ever losing them. WIP commits are
// compared by a content hash so author and timestamp churn never forces a
// sync.
package syncer
