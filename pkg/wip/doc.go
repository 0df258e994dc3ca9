// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package wip implements Metro's work-in-progress engine.
//
// Every base branch may have a companion "<name>#wip" branch holding its
// uncommitted changes and any in-flight merge as a commit. Save captures the
// working directory into that commit; Restore re-applies it, re-entering the
// merge (conflicts included) and deleting the companion. Branch switching
// and deletion live here too, since both must pass through save/restore.
package wip
