// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Checkout force-checkouts the tree of the commit named by revision into the
// working directory. HEAD is not moved; use MoveHead for that.
func (r *Repository) Checkout(ctx context.Context, revision string) error {
	commit, err := r.GetCommit(revision)
	if err != nil {
		return err
	}
	return r.CheckoutTree(ctx, commit)
}

// CheckoutTree makes the working directory and index match the commit's tree.
// Tracked files not present in the tree are removed; files that are neither
// tracked nor in the tree are left alone.
func (r *Repository) CheckoutTree(ctx context.Context, commit *object.Commit) error {
	tree, err := commit.Tree()
	if err != nil {
		return fmt.Errorf("resolve tree: %w", err)
	}

	wt, err := r.git.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	fs := wt.Filesystem

	idx, err := r.Index()
	if err != nil {
		return err
	}

	target := map[string]*object.File{}
	if err := tree.Files().ForEach(func(f *object.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		target[f.Name] = f
		return nil
	}); err != nil {
		return fmt.Errorf("walk tree: %w", err)
	}

	// Remove tracked files that are not in the target tree.
	for _, e := range idx.Entries {
		if _, ok := target[e.Name]; ok {
			continue
		}
		if err := fs.Remove(e.Name); err != nil && !isNotExist(err) {
			return fmt.Errorf("remove %s: %w", e.Name, err)
		}
		removeEmptyParents(fs, e.Name)
	}

	// Write out every file in the target tree and rebuild the index from it.
	fresh := &index.Index{Version: 2}
	for name, f := range target {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := r.checkoutFile(fs, f); err != nil {
			return err
		}

		entry := &index.Entry{
			Name:       name,
			Hash:       f.Hash,
			Mode:       f.Mode,
			ModifiedAt: time.Now(),
			Size:       uint32(f.Size),
		}
		fresh.Entries = append(fresh.Entries, entry)
	}

	return r.SetIndex(fresh)
}

func (r *Repository) checkoutFile(fs billy.Filesystem, f *object.File) error {
	reader, err := f.Blob.Reader()
	if err != nil {
		return fmt.Errorf("read blob %s: %w", f.Name, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read blob %s: %w", f.Name, err)
	}

	mode, err := f.Mode.ToOSFileMode()
	if err != nil {
		return fmt.Errorf("mode of %s: %w", f.Name, err)
	}

	if err := util.WriteFile(fs, f.Name, data, mode); err != nil {
		return fmt.Errorf("write %s: %w", f.Name, err)
	}
	return nil
}

// removeEmptyParents removes directories left empty after a file deletion,
// walking up towards the worktree root.
func removeEmptyParents(fs billy.Filesystem, name string) {
	for dir := path.Dir(name); dir != "." && dir != "/"; dir = path.Dir(dir) {
		entries, err := fs.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := fs.Remove(dir); err != nil {
			return
		}
	}
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// BlobContent reads the full content of a blob object.
func (r *Repository) BlobContent(hash plumbing.Hash) ([]byte, error) {
	blob, err := r.git.BlobObject(hash)
	if err != nil {
		return nil, fmt.Errorf("lookup blob %s: %w", hash, err)
	}

	reader, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", hash, err)
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

// WriteWorkdirFile writes a file inside the working directory, creating
// parent directories as needed.
func (r *Repository) WriteWorkdirFile(name string, data []byte, mode filemode.FileMode) error {
	wt, err := r.git.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}

	osMode, err := mode.ToOSFileMode()
	if err != nil {
		return fmt.Errorf("mode of %s: %w", name, err)
	}

	if err := util.WriteFile(wt.Filesystem, name, data, osMode); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// RemoveWorkdirFile removes a file from the working directory along with any
// directories the removal leaves empty. Missing files are not an error.
func (r *Repository) RemoveWorkdirFile(name string) error {
	wt, err := r.git.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}

	if err := wt.Filesystem.Remove(name); err != nil && !isNotExist(err) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	removeEmptyParents(wt.Filesystem, name)
	return nil
}
