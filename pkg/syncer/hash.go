// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package syncer

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/siliconsloth/metro/pkg/repo"
)

// WIPCommitHash fingerprints a WIP commit by its tree, message and parents,
// deliberately ignoring author, committer and timestamps so equivalent WIP
// commits hash the same across repositories.
//
// The fingerprint runs the object-database blob hash over non-blob data; it
// is only ever compared for equality and never looked up as a real object.
func WIPCommitHash(r *repo.Repository, commitID plumbing.Hash) (plumbing.Hash, error) {
	commit, err := r.Git().CommitObject(commitID)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("lookup WIP commit %s: %w", commitID, err)
	}

	messageHash := plumbing.ComputeHash(plumbing.BlobObject, []byte(commit.Message))

	data := make([]byte, 0, (commit.NumParents()+2)*len(plumbing.ZeroHash))
	data = append(data, commit.TreeHash[:]...)
	data = append(data, messageHash[:]...)
	for _, parent := range commit.ParentHashes {
		data = append(data, parent[:]...)
	}

	return plumbing.ComputeHash(plumbing.BlobObject, data), nil
}

// hashWIPCommits replaces the local and remote WIP heads in branchTargets
// with their WIP commit hashes. Synced heads already come hashed from the
// sync cache. The returned map recovers the underlying commit for each hash
// so pulls can still reach the real object.
func hashWIPCommits(r *repo.Repository, branchTargets map[string]*RefTargets) (map[plumbing.Hash]plumbing.Hash, error) {
	wipCommits := map[plumbing.Hash]plumbing.Hash{}

	for _, targets := range branchTargets {
		if targets.Local.HasWIP {
			hash, err := WIPCommitHash(r, targets.Local.Head)
			if err != nil {
				return nil, err
			}
			wipCommits[hash] = targets.Local.Head
			targets.Local.Head = hash
		}
		if targets.Remote.HasWIP {
			hash, err := WIPCommitHash(r, targets.Remote.Head)
			if err != nil {
				return nil, err
			}
			wipCommits[hash] = targets.Remote.Head
			targets.Remote.Head = hash
		}
	}
	return wipCommits, nil
}
