// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package merge

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/siliconsloth/metro/pkg/repo"
)

// treeEntry is one path's blob in a tree.
type treeEntry struct {
	hash plumbing.Hash
	mode filemode.FileMode
}

func sameEntry(a, b *treeEntry) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.hash == b.hash && a.mode == b.mode
}

// mergeResult accumulates the outcome of a three-way tree merge.
type mergeResult struct {
	// merged maps path to its resolved entry.
	merged map[string]treeEntry

	// conflicts are the unresolved paths with their three sides.
	conflicts []repo.Conflict

	// workdir maps conflicted paths to the content to leave on disk.
	workdir map[string][]byte
}

// mergeIntoWorktree three-way merges theirs into ours against their merge
// base and applies the result to the working directory and index. Conflicted
// paths get higher-stage index entries and conflict markers on disk.
func mergeIntoWorktree(ctx context.Context, r *repo.Repository, ours, theirs *object.Commit, label string) error {
	result, err := mergeTrees(ctx, r, ours, theirs, label)
	if err != nil {
		return err
	}
	return applyMerge(ctx, r, result)
}

func mergeTrees(ctx context.Context, r *repo.Repository, ours, theirs *object.Commit, label string) (*mergeResult, error) {
	base, err := mergeBaseFiles(ours, theirs)
	if err != nil {
		return nil, err
	}
	ourFiles, err := treeFiles(ours)
	if err != nil {
		return nil, err
	}
	theirFiles, err := treeFiles(theirs)
	if err != nil {
		return nil, err
	}

	result := &mergeResult{
		merged:  map[string]treeEntry{},
		workdir: map[string][]byte{},
	}

	for _, path := range unionPaths(base, ourFiles, theirFiles) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		b, o, t := base[path], ourFiles[path], theirFiles[path]
		switch {
		case sameEntry(o, t):
			if o != nil {
				result.merged[path] = *o
			}
		case sameEntry(b, o):
			// Ours untouched; take theirs, which may be a deletion.
			if t != nil {
				result.merged[path] = *t
			}
		case sameEntry(b, t):
			if o != nil {
				result.merged[path] = *o
			}
		default:
			if err := mergePath(r, result, path, b, o, t, label); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

// mergePath handles a path where both sides changed in different ways.
// Content that merges cleanly line-by-line becomes a new blob; anything else
// is recorded as a conflict.
func mergePath(r *repo.Repository, result *mergeResult, path string, b, o, t *treeEntry, label string) error {
	if b != nil && o != nil && t != nil && blobMode(o.mode) && blobMode(t.mode) {
		baseC, err := r.BlobContent(b.hash)
		if err != nil {
			return err
		}
		ourC, err := r.BlobContent(o.hash)
		if err != nil {
			return err
		}
		theirC, err := r.BlobContent(t.hash)
		if err != nil {
			return err
		}

		if merged, ok := mergeContent(string(baseC), string(ourC), string(theirC)); ok {
			hash, err := r.WriteBlob([]byte(merged))
			if err != nil {
				return err
			}
			mode := o.mode
			if b.mode == o.mode {
				mode = t.mode
			}
			result.merged[path] = treeEntry{hash: hash, mode: mode}
			return nil
		}
	}

	conflict := repo.Conflict{Path: path}
	if b != nil {
		conflict.Ancestor = &repo.ConflictEntry{Hash: b.hash, Mode: b.mode}
	}
	if o != nil {
		conflict.Ours = &repo.ConflictEntry{Hash: o.hash, Mode: o.mode}
	}
	if t != nil {
		conflict.Theirs = &repo.ConflictEntry{Hash: t.hash, Mode: t.mode}
	}
	result.conflicts = append(result.conflicts, conflict)

	content, err := conflictFileContent(r, o, t, label)
	if err != nil {
		return err
	}
	result.workdir[path] = content
	return nil
}

// conflictFileContent builds the working-directory content for a conflicted
// path. Both sides present produces conflict markers; a one-sided conflict
// (modify/delete) keeps the surviving content.
func conflictFileContent(r *repo.Repository, o, t *treeEntry, label string) ([]byte, error) {
	switch {
	case o != nil && t != nil:
		ourC, err := r.BlobContent(o.hash)
		if err != nil {
			return nil, err
		}
		theirC, err := r.BlobContent(t.hash)
		if err != nil {
			return nil, err
		}
		return conflictMarkers(ourC, theirC, label), nil
	case o != nil:
		return r.BlobContent(o.hash)
	case t != nil:
		return r.BlobContent(t.hash)
	default:
		return nil, nil
	}
}

func conflictMarkers(ours, theirs []byte, label string) []byte {
	var out []byte
	out = append(out, "<<<<<<< HEAD\n"...)
	out = appendWithNewline(out, ours)
	out = append(out, "=======\n"...)
	out = appendWithNewline(out, theirs)
	out = append(out, ">>>>>>> "...)
	out = append(out, label...)
	out = append(out, '\n')
	return out
}

func appendWithNewline(out, content []byte) []byte {
	out = append(out, content...)
	if len(content) > 0 && content[len(content)-1] != '\n' {
		out = append(out, '\n')
	}
	return out
}

// mergeContent merges theirs' edits into ours by patching ours with the
// base-to-theirs diff. It fails as soon as one hunk does not apply, which is
// what turns overlapping edits into conflicts.
func mergeContent(base, ours, theirs string) (string, bool) {
	dmp := diffmatchpatch.New()
	// A hunk applies only where its context and removed text appear in ours
	// unchanged (at any offset); any difference fails the hunk.
	dmp.MatchThreshold = 0.01
	dmp.MatchDistance = 100 * (len(ours) + 2*dmp.PatchMargin + 1)
	dmp.PatchDeleteThreshold = 0
	patches := dmp.PatchMake(base, theirs)
	merged, applied := dmp.PatchApply(patches, ours)
	for _, ok := range applied {
		if !ok {
			return "", false
		}
	}
	return merged, true
}

// applyMerge writes the merge result to the working directory and index.
func applyMerge(ctx context.Context, r *repo.Repository, result *mergeResult) error {
	idx, err := r.Index()
	if err != nil {
		return err
	}

	keep := map[string]bool{}
	for path := range result.merged {
		keep[path] = true
	}
	for path := range result.workdir {
		keep[path] = true
	}

	// Drop tracked files that survive on neither side.
	for _, e := range idx.Entries {
		if !keep[e.Name] {
			if err := r.RemoveWorkdirFile(e.Name); err != nil {
				return err
			}
		}
	}

	fresh := &index.Index{Version: 2}
	for _, path := range sortedKeys(result.merged) {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry := result.merged[path]
		content, err := r.BlobContent(entry.hash)
		if err != nil {
			return err
		}
		if err := r.WriteWorkdirFile(path, content, entry.mode); err != nil {
			return err
		}

		fresh.Entries = append(fresh.Entries, &index.Entry{
			Name:       path,
			Hash:       entry.hash,
			Mode:       entry.mode,
			ModifiedAt: time.Now(),
			Size:       uint32(len(content)),
		})
	}

	for path, content := range result.workdir {
		if err := r.WriteWorkdirFile(path, content, filemode.Regular); err != nil {
			return err
		}
	}
	repo.ApplyConflicts(fresh, result.conflicts)

	return r.SetIndex(fresh)
}

func mergeBaseFiles(ours, theirs *object.Commit) (map[string]*treeEntry, error) {
	bases, err := ours.MergeBase(theirs)
	if err != nil || len(bases) == 0 {
		return map[string]*treeEntry{}, nil
	}
	return treeFiles(bases[0])
}

func treeFiles(c *object.Commit) (map[string]*treeEntry, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("resolve tree: %w", err)
	}

	files := map[string]*treeEntry{}
	err = tree.Files().ForEach(func(f *object.File) error {
		files[f.Name] = &treeEntry{hash: f.Hash, mode: f.Mode}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk tree: %w", err)
	}
	return files, nil
}

func blobMode(m filemode.FileMode) bool {
	return m == filemode.Regular || m == filemode.Executable
}

func unionPaths(maps ...map[string]*treeEntry) []string {
	seen := map[string]bool{}
	for _, m := range maps {
		for p := range m {
			seen[p] = true
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func sortedKeys(m map[string]treeEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
