// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package repo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// WorkingTree stages everything, writes the index out as a tree and persists
// the index, returning the tree's id. Staging replaces any index conflicts
// with the working directory content (see AddAll), so conflicted files are
// recorded as they stand on disk.
func (r *Repository) WorkingTree(ctx context.Context) (plumbing.Hash, error) {
	idx, err := r.AddAll(ctx)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	if HasConflicts(idx) {
		return plumbing.ZeroHash, ErrIndexConflicts
	}

	hash, err := r.writeTreeFromIndex(idx)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	// Keep the on-disk index in sync with the working directory, otherwise
	// removals of every file are left staged.
	if err := r.SetIndex(idx); err != nil {
		return plumbing.ZeroHash, err
	}
	return hash, nil
}

// treeNode is one directory level being assembled into tree objects.
type treeNode struct {
	blobs    map[string]index.Entry
	children map[string]*treeNode
}

func newTreeNode() *treeNode {
	return &treeNode{
		blobs:    map[string]index.Entry{},
		children: map[string]*treeNode{},
	}
}

// writeTreeFromIndex converts the stage-0 entries of the index into nested
// tree objects in the object database and returns the root tree id.
func (r *Repository) writeTreeFromIndex(idx *index.Index) (plumbing.Hash, error) {
	root := newTreeNode()

	for _, e := range idx.Entries {
		if e.Stage != 0 {
			continue
		}

		node := root
		parts := strings.Split(e.Name, "/")
		for _, dir := range parts[:len(parts)-1] {
			child, ok := node.children[dir]
			if !ok {
				child = newTreeNode()
				node.children[dir] = child
			}
			node = child
		}
		node.blobs[parts[len(parts)-1]] = *e
	}

	return r.writeTreeNode(root)
}

func (r *Repository) writeTreeNode(node *treeNode) (plumbing.Hash, error) {
	entries := make([]object.TreeEntry, 0, len(node.blobs)+len(node.children))

	for name, e := range node.blobs {
		entries = append(entries, object.TreeEntry{Name: name, Mode: e.Mode, Hash: e.Hash})
	}
	for name, child := range node.children {
		hash, err := r.writeTreeNode(child)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entries = append(entries, object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: hash})
	}

	// Canonical tree order: directories sort as if their name had a
	// trailing slash.
	sort.Slice(entries, func(i, j int) bool {
		return treeSortName(entries[i]) < treeSortName(entries[j])
	})

	tree := &object.Tree{Entries: entries}
	obj := r.git.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encode tree: %w", err)
	}

	hash, err := r.git.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store tree: %w", err)
	}
	return hash, nil
}

func treeSortName(e object.TreeEntry) string {
	if e.Mode == filemode.Dir {
		return e.Name + "/"
	}
	return e.Name
}

// WriteBlob stores content as a blob object and returns its id.
func (r *Repository) WriteBlob(content []byte) (plumbing.Hash, error) {
	obj := r.git.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)

	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("blob writer: %w", err)
	}
	if _, err := w.Write(content); err != nil {
		w.Close()
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", err)
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("close blob: %w", err)
	}

	hash, err := r.git.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store blob: %w", err)
	}
	return hash, nil
}
