// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package repo

import (
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
)

// Merge stages as stored in index entries. Stage zero is a regular entry.
const (
	stageAncestor = index.AncestorMode
	stageOurs     = index.OurMode
	stageTheirs   = index.TheirMode
)

// ConflictEntry is one side of an index conflict, owned by the caller rather
// than the index it was read from.
type ConflictEntry struct {
	Hash plumbing.Hash
	Mode filemode.FileMode
}

// Conflict is the ancestor/ours/theirs triple for one conflicted path. Any
// side may be nil when that version does not exist.
type Conflict struct {
	Path     string
	Ancestor *ConflictEntry
	Ours     *ConflictEntry
	Theirs   *ConflictEntry
}

// HasConflicts reports whether the index holds any higher-stage entries.
func HasConflicts(idx *index.Index) bool {
	for _, e := range idx.Entries {
		if isConflictStage(e.Stage) {
			return true
		}
	}
	return false
}

// SnapshotConflicts deep-copies every conflict out of the index so the index
// can be cleared and rewritten while the conflicts are held aside.
func SnapshotConflicts(idx *index.Index) []Conflict {
	byPath := map[string]*Conflict{}
	var order []string

	for _, e := range idx.Entries {
		if !isConflictStage(e.Stage) {
			continue
		}

		c, ok := byPath[e.Name]
		if !ok {
			c = &Conflict{Path: e.Name}
			byPath[e.Name] = c
			order = append(order, e.Name)
		}

		entry := &ConflictEntry{Hash: e.Hash, Mode: e.Mode}
		switch e.Stage {
		case stageAncestor:
			c.Ancestor = entry
		case stageOurs:
			c.Ours = entry
		case stageTheirs:
			c.Theirs = entry
		}
	}

	conflicts := make([]Conflict, 0, len(order))
	for _, name := range order {
		conflicts = append(conflicts, *byPath[name])
	}
	return conflicts
}

// RemoveConflicts drops every higher-stage entry from the index, leaving the
// regular entries in place.
func RemoveConflicts(idx *index.Index) {
	kept := idx.Entries[:0]
	for _, e := range idx.Entries {
		if !isConflictStage(e.Stage) {
			kept = append(kept, e)
		}
	}
	idx.Entries = kept
}

// ApplyConflicts re-adds conflicts to the index. Any stage-zero entry for a
// conflicted path is removed first, matching how a conflicted merge leaves
// the index.
func ApplyConflicts(idx *index.Index, conflicts []Conflict) {
	if len(conflicts) == 0 {
		return
	}

	conflicted := map[string]bool{}
	for _, c := range conflicts {
		conflicted[c.Path] = true
	}

	kept := idx.Entries[:0]
	for _, e := range idx.Entries {
		if !conflicted[e.Name] {
			kept = append(kept, e)
		}
	}
	idx.Entries = kept

	for _, c := range conflicts {
		add := func(entry *ConflictEntry, stage index.Stage) {
			if entry == nil {
				return
			}
			idx.Entries = append(idx.Entries, &index.Entry{
				Name:  c.Path,
				Hash:  entry.Hash,
				Mode:  entry.Mode,
				Stage: stage,
			})
		}
		add(c.Ancestor, stageAncestor)
		add(c.Ours, stageOurs)
		add(c.Theirs, stageTheirs)
	}
}

// isConflictStage reports whether the stage marks a conflict entry. go-git
// reads the stage straight out of the entry flags, so regular entries carry
// stage zero.
func isConflictStage(s index.Stage) bool {
	return s != 0
}
