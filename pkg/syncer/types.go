// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package syncer

import (
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/siliconsloth/metro/pkg/repo"
)

// Direction selects which halves of a sync run.
type Direction int

const (
	// Up only pushes local changes.
	Up Direction = iota

	// Down only pulls remote changes.
	Down

	// Both pushes and pulls.
	Both
)

// syncType classifies what a branch needs.
type syncType int

const (
	syncPush syncType = iota
	syncPull
	syncConflict
)

// DualTarget pairs a base branch target with its WIP companion's target.
// Head equals Base until a WIP target is recorded.
type DualTarget struct {
	Base   plumbing.Hash
	Head   plumbing.Hash
	HasWIP bool
}

// addTarget records one ref target on the pair.
func (d *DualTarget) addTarget(target plumbing.Hash, wip bool) {
	if wip {
		d.Head = target
		d.HasWIP = true
		return
	}
	d.Base = target
	// Head mirrors the base only while no WIP has been recorded.
	if d.Head.IsZero() {
		d.Head = target
	}
}

// isValid reports whether the WIP target, if any, is a plausible work in
// progress for the base: its head must exist and the WIP commit's first
// parent must be the base head. A null base disables the parent check.
func (d DualTarget) isValid(r *repo.Repository, wipCommits map[plumbing.Hash]plumbing.Hash) bool {
	if !d.HasWIP {
		return true
	}
	if d.Head.IsZero() {
		return false
	}
	if d.Base.IsZero() {
		return true
	}

	commit, err := r.Git().CommitObject(wipCommits[d.Head])
	if err != nil || commit.NumParents() == 0 {
		return false
	}
	return commit.ParentHashes[0] == d.Base
}

// RefTargets is the local/remote/last-synced view of one branch.
type RefTargets struct {
	Local  DualTarget
	Remote DualTarget
	Synced DualTarget
}
