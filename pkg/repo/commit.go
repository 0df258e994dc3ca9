// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GetCommit resolves a revision to a commit. Supported revisions are "HEAD",
// "MERGE_HEAD", local branch names and full hex commit ids.
func (r *Repository) GetCommit(revision string) (*object.Commit, error) {
	hash, err := r.resolveRevision(revision)
	if err != nil {
		return nil, err
	}

	commit, err := r.git.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCommitNotFound, revision)
	}
	return commit, nil
}

// CommitExists reports whether the revision resolves to a commit.
func (r *Repository) CommitExists(revision string) bool {
	_, err := r.GetCommit(revision)
	return err == nil
}

// LastCommit returns the commit at the head of the current branch.
func (r *Repository) LastCommit() (*object.Commit, error) {
	return r.GetCommit("HEAD")
}

func (r *Repository) resolveRevision(revision string) (plumbing.Hash, error) {
	switch revision {
	case "HEAD":
		head, err := r.Head()
		if err != nil {
			return plumbing.ZeroHash, err
		}
		if head.Detached {
			if !plumbing.IsHash(head.Name) {
				return plumbing.ZeroHash, fmt.Errorf("%w: HEAD", ErrCommitNotFound)
			}
			return plumbing.NewHash(head.Name), nil
		}
		ref, err := r.git.Reference(plumbing.NewBranchReferenceName(head.Name), true)
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("%w: HEAD", ErrCommitNotFound)
		}
		return ref.Hash(), nil

	case "MERGE_HEAD":
		data, err := os.ReadFile(filepath.Join(r.gitDir, "MERGE_HEAD"))
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("%w: MERGE_HEAD", ErrCommitNotFound)
		}
		line := strings.TrimSpace(strings.SplitN(string(data), "\n", 2)[0])
		if !plumbing.IsHash(line) {
			return plumbing.ZeroHash, fmt.Errorf("%w: MERGE_HEAD", ErrCommitNotFound)
		}
		return plumbing.NewHash(line), nil

	default:
		if ref, err := r.git.Reference(plumbing.NewBranchReferenceName(revision), true); err == nil {
			return ref.Hash(), nil
		}
		if plumbing.IsHash(revision) {
			return plumbing.NewHash(revision), nil
		}
		return plumbing.ZeroHash, fmt.Errorf("%w: %s", ErrCommitNotFound, revision)
	}
}

// CommitAll stages every change, writes the working tree and commits it with
// the given parents, pointing updateRef at the new commit. updateRef may be
// "HEAD" to advance the current branch, or a full reference name such as
// "refs/heads/feature#wip". The new commit id is returned.
func (r *Repository) CommitAll(ctx context.Context, updateRef, message string, parents []plumbing.Hash) (plumbing.Hash, error) {
	tree, err := r.WorkingTree(ctx)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return r.WriteCommit(updateRef, message, tree, parents)
}

// CommitAllRevs is CommitAll with parents given as revision strings.
func (r *Repository) CommitAllRevs(ctx context.Context, updateRef, message string, parentRevs []string) (plumbing.Hash, error) {
	parents := make([]plumbing.Hash, 0, len(parentRevs))
	for _, rev := range parentRevs {
		commit, err := r.GetCommit(rev)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		parents = append(parents, commit.Hash)
	}
	return r.CommitAll(ctx, updateRef, message, parents)
}

// WriteCommit creates a commit object for an existing tree and points
// updateRef at it. The repository's signature is used as both author and
// committer.
func (r *Repository) WriteCommit(updateRef, message string, tree plumbing.Hash, parents []plumbing.Hash) (plumbing.Hash, error) {
	sig, err := r.Signature()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	commit := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      message,
		TreeHash:     tree,
		ParentHashes: parents,
	}

	obj := r.git.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encode commit: %w", err)
	}
	hash, err := r.git.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store commit: %w", err)
	}

	if err := r.updateRef(updateRef, hash); err != nil {
		return plumbing.ZeroHash, err
	}
	return hash, nil
}

// updateRef points updateRef at hash. "HEAD" advances the attached branch;
// committing on a detached HEAD is not supported.
func (r *Repository) updateRef(updateRef string, hash plumbing.Hash) error {
	name := updateRef
	if updateRef == "HEAD" {
		head, err := r.Head()
		if err != nil {
			return err
		}
		if head.Detached {
			return fmt.Errorf("%w: cannot commit on a detached HEAD", ErrUnsupportedOperation)
		}
		name = plumbing.NewBranchReferenceName(head.Name).String()
	}

	ref := plumbing.NewHashReference(plumbing.ReferenceName(name), hash)
	if err := r.git.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("update %s: %w", name, err)
	}
	return nil
}

// Patch amends the last commit with the current working tree and the given
// message, preserving its parents.
func (r *Repository) Patch(ctx context.Context, message string) error {
	last, err := r.LastCommit()
	if err != nil {
		return err
	}

	tree, err := r.WorkingTree(ctx)
	if err != nil {
		return err
	}

	_, err = r.WriteCommit("HEAD", message, tree, last.ParentHashes)
	return err
}

// ResetHead moves the current branch to commit. A hard reset first stages
// everything so deletions revert, then force-checkouts the target tree; a
// soft reset leaves index and working directory alone.
func (r *Repository) ResetHead(ctx context.Context, commit *object.Commit, hard bool) error {
	if hard {
		idx, err := r.AddAll(ctx)
		if err != nil {
			return err
		}
		if err := r.SetIndex(idx); err != nil {
			return err
		}
	}

	if err := r.updateRef("HEAD", commit.Hash); err != nil {
		return err
	}

	if hard {
		return r.CheckoutTree(ctx, commit)
	}
	return nil
}

// DeleteLastCommit moves the current branch back to the parent of its head
// commit. Deleting the initial commit is not supported.
func (r *Repository) DeleteLastCommit(ctx context.Context, reset bool) error {
	last, err := r.LastCommit()
	if err != nil {
		return err
	}
	if last.NumParents() == 0 {
		return fmt.Errorf("%w: can't delete initial commit", ErrUnsupportedOperation)
	}

	parent, err := last.Parent(0)
	if err != nil {
		return fmt.Errorf("resolve parent: %w", err)
	}
	return r.ResetHead(ctx, parent, reset)
}
