// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package synccache persists the last-synced target of every branch.
//
// The cache is a directory mirror of the branch namespace at
// <gitdir>/synced/: each file's relative path is a branch name (slashes
// become subdirectories) and its content is a single hex object id — the
// commit id for base branches, the WIP commit hash for WIP branches. The
// sync engine uses these entries as the common ancestor of its three-way
// classification.
package synccache

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// dirName is the cache directory under the repository metadata directory.
const dirName = "synced"

// Store reads and writes sync cache entries for one repository.
type Store struct {
	root string
}

// NewStore creates a store rooted at the repository metadata directory.
func NewStore(gitDir string) *Store {
	return &Store{root: filepath.Join(gitDir, dirName)}
}

// ReadAll loads every cache entry into a map keyed by branch name. A missing
// cache directory yields an empty map.
func (s *Store) ReadAll() (map[string]plumbing.Hash, error) {
	out := map[string]plumbing.Hash{}

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		value := strings.TrimSpace(string(data))
		if !plumbing.IsHash(value) {
			// Leave unreadable entries out rather than failing the sync.
			return nil
		}
		out[name] = plumbing.NewHash(value)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read sync cache: %w", err)
	}
	return out, nil
}

// Write creates or overwrites the entry for a branch.
func (s *Store) Write(name string, value plumbing.Hash) error {
	path := filepath.Join(s.root, filepath.FromSlash(name))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create sync cache entry for %s: %w", name, err)
	}
	if err := os.WriteFile(path, []byte(value.String()), 0o644); err != nil {
		return fmt.Errorf("write sync cache entry for %s: %w", name, err)
	}
	return nil
}

// Delete removes the entry for a branch, if present, along with any parent
// directories the removal leaves empty.
func (s *Store) Delete(name string) error {
	path := filepath.Join(s.root, filepath.FromSlash(name))

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete sync cache entry for %s: %w", name, err)
	}

	for dir := filepath.Dir(path); dir != s.root && strings.HasPrefix(dir, s.root); dir = filepath.Dir(dir) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			break
		}
		if err := os.Remove(dir); err != nil {
			break
		}
	}
	return nil
}
