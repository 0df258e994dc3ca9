// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package syncer

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/siliconsloth/metro/internal/synccache"
	"github.com/siliconsloth/metro/pkg/branchname"
	"github.com/siliconsloth/metro/pkg/repo"
)

// gatherTargets builds the local/remote/synced target triple for every
// branch known to the repository, the remote-tracking namespace or the sync
// cache. Base and WIP branches fold into one entry keyed by the base name.
func gatherTargets(r *repo.Repository, cache *synccache.Store, remoteName string) (map[string]*RefTargets, error) {
	out := map[string]*RefTargets{}

	entry := func(name string) *RefTargets {
		if t, ok := out[name]; ok {
			return t
		}
		t := &RefTargets{}
		out[name] = t
		return t
	}

	// Last-synced targets come from the sync cache; WIP entries there are
	// already stored as WIP commit hashes.
	synced, err := cache.ReadAll()
	if err != nil {
		return nil, err
	}
	for name, value := range synced {
		isWIP := branchname.IsWIP(name)
		entry(branchname.UnWIP(name)).Synced.addTarget(value, isWIP)
	}

	// Local and remote targets come from the refs. Only direct references
	// take part in syncing.
	refs, err := r.Git().References()
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	defer refs.Close()

	remotePrefix := "refs/remotes/" + remoteName + "/"
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}

		name := ref.Name().String()
		if local, ok := strings.CutPrefix(name, "refs/heads/"); ok {
			isWIP := branchname.IsWIP(local)
			entry(branchname.UnWIP(local)).Local.addTarget(ref.Hash(), isWIP)
		} else if remote, ok := strings.CutPrefix(name, remotePrefix); ok {
			isWIP := branchname.IsWIP(remote)
			entry(branchname.UnWIP(remote)).Remote.addTarget(ref.Hash(), isWIP)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}

	return out, nil
}

// nextConflictBranchName picks the branch name that receives diverged local
// commits: the same base with the version bumped past every version already
// in use for that base.
func nextConflictBranchName(name string, branchTargets map[string]*RefTargets) string {
	next := branchname.Parse(name)
	next.WIP = false

	for existing := range branchTargets {
		d := branchname.Parse(existing)
		if d.Base == next.Base && d.Version > next.Version {
			next.Version = d.Version
		}
	}

	next.Version++
	return next.String()
}

// updateSyncCache records the post-sync target of every touched branch:
// commit ids for base branches, WIP hashes for WIP branches, and deletion
// for branches that no longer exist.
func updateSyncCache(r *repo.Repository, cache *synccache.Store, branches []string) error {
	for _, name := range branches {
		if !r.BranchExists(name) {
			if err := cache.Delete(name); err != nil {
				return err
			}
			continue
		}

		target, err := r.BranchTarget(name)
		if err != nil {
			return err
		}
		if branchname.IsWIP(name) {
			target, err = WIPCommitHash(r, target)
			if err != nil {
				return err
			}
		}
		if err := cache.Write(name, target); err != nil {
			return err
		}
	}
	return nil
}
