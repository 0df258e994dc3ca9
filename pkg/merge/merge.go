// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package merge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/siliconsloth/metro/pkg/repo"
)

// Analysis is the bitset result of comparing another head against HEAD.
type Analysis int

const (
	// AnalysisNone marks an impossible merge. Kept for parity with the
	// classification table; never produced.
	AnalysisNone Analysis = 1 << iota

	// AnalysisNormal marks a merge that needs a real merge commit.
	AnalysisNormal

	// AnalysisUpToDate marks the other head as already contained in HEAD.
	AnalysisUpToDate

	// AnalysisFastForward marks HEAD as an ancestor of the other head.
	AnalysisFastForward

	// AnalysisUnborn marks a HEAD with no commits yet.
	AnalysisUnborn
)

// Ongoing reports whether a merge is in progress, i.e. MERGE_HEAD resolves.
func Ongoing(r *repo.Repository) bool {
	return r.CommitExists("MERGE_HEAD")
}

// AssertNotMerging fails with ErrCurrentlyMerging while a merge is ongoing.
func AssertNotMerging(r *repo.Repository) error {
	if Ongoing(r) {
		return fmt.Errorf("%w: finish resolving conflicts first", ErrCurrentlyMerging)
	}
	return nil
}

// DefaultMessage is the merge commit message used when none is stored.
func DefaultMessage(mergedName string) string {
	return fmt.Sprintf("Merge commit '%s'", mergedName)
}

// Message reads the stored merge message from MERGE_MSG.
func Message(r *repo.Repository) (string, error) {
	data, err := os.ReadFile(filepath.Join(r.GitDir(), "MERGE_MSG"))
	if err != nil {
		return "", fmt.Errorf("read merge message: %w", err)
	}
	return string(data), nil
}

// SetMessage stores the merge message in MERGE_MSG.
func SetMessage(r *repo.Repository, message string) error {
	if err := os.WriteFile(filepath.Join(r.GitDir(), "MERGE_MSG"), []byte(message), 0o644); err != nil {
		return fmt.Errorf("write merge message: %w", err)
	}
	return nil
}

// CleanupState clears the merge metadata, ending an in-progress merge
// without committing it.
func CleanupState(r *repo.Repository) error {
	for _, name := range []string{"MERGE_HEAD", "MERGE_MSG", "MERGE_MODE"} {
		if err := os.Remove(filepath.Join(r.GitDir(), name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clear %s: %w", name, err)
		}
	}
	return nil
}

// Analyze compares the commit named by revision against HEAD and classifies
// how it could be merged.
func Analyze(ctx context.Context, r *repo.Repository, revision string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	other, err := r.GetCommit(revision)
	if err != nil {
		return 0, err
	}

	if !r.HeadExists() {
		return AnalysisUnborn | AnalysisFastForward, nil
	}

	head, err := r.GetCommit("HEAD")
	if err != nil {
		return 0, err
	}

	if head.Hash == other.Hash {
		return AnalysisUpToDate, nil
	}

	bases, err := head.MergeBase(other)
	if err != nil {
		return 0, fmt.Errorf("merge base: %w", err)
	}
	if len(bases) > 0 {
		if bases[0].Hash == other.Hash {
			return AnalysisUpToDate, nil
		}
		if bases[0].Hash == head.Hash {
			return AnalysisNormal | AnalysisFastForward, nil
		}
	}
	return AnalysisNormal, nil
}

// Start begins merging the commit named by revision into HEAD. The trees are
// three-way merged against their merge base; conflicts are left in the index
// and as marker files in the working directory for the user to resolve.
// MERGE_HEAD and MERGE_MSG record the in-progress merge.
func Start(ctx context.Context, r *repo.Repository, revision string) error {
	analysis, err := Analyze(ctx, r, revision)
	if err != nil {
		return err
	}
	if analysis&(AnalysisNone|AnalysisUpToDate) != 0 {
		return ErrUnnecessaryMerge
	}
	if analysis&AnalysisNormal == 0 {
		return fmt.Errorf("%w: non-normal absorb not supported", repo.ErrUnsupportedOperation)
	}

	head, err := r.GetCommit("HEAD")
	if err != nil {
		return err
	}
	other, err := r.GetCommit(revision)
	if err != nil {
		return err
	}

	if err := mergeIntoWorktree(ctx, r, head, other, revision); err != nil {
		return err
	}

	mergeHead := other.Hash.String() + "\n"
	if err := os.WriteFile(filepath.Join(r.GitDir(), "MERGE_HEAD"), []byte(mergeHead), 0o644); err != nil {
		return fmt.Errorf("write MERGE_HEAD: %w", err)
	}
	return SetMessage(r, DefaultMessage(revision))
}

// Abort discards an in-progress merge, restoring the working directory to
// HEAD's commit.
func Abort(ctx context.Context, r *repo.Repository) error {
	if !Ongoing(r) {
		return ErrNotMerging
	}

	head, err := r.GetCommit("HEAD")
	if err != nil {
		return err
	}
	if err := r.ResetHead(ctx, head, true); err != nil {
		return err
	}
	return CleanupState(r)
}

// Absorb merges the named branch into the current one. If the merge produces
// no conflicts it is committed immediately; otherwise the merge is left open
// and true is returned.
func Absorb(ctx context.Context, r *repo.Repository, name string) (conflicts bool, err error) {
	if err := AssertNotMerging(r); err != nil {
		return false, err
	}

	if err := Start(ctx, r, name); err != nil {
		return false, err
	}

	idx, err := r.Index()
	if err != nil {
		return false, err
	}
	if repo.HasConflicts(idx) {
		return true, nil
	}

	return false, commitMerge(ctx, r)
}

// Resolve commits an in-progress merge once its conflicts have been resolved
// in the working directory.
func Resolve(ctx context.Context, r *repo.Repository) error {
	if !Ongoing(r) {
		return fmt.Errorf("%w: you can only resolve while absorbing", ErrNotMerging)
	}
	return commitMerge(ctx, r)
}

// commitMerge commits the working tree with HEAD and MERGE_HEAD as parents,
// using the stored merge message, then clears the merge state.
func commitMerge(ctx context.Context, r *repo.Repository) error {
	message, err := Message(r)
	if err != nil {
		mh, mhErr := r.GetCommit("MERGE_HEAD")
		if mhErr != nil {
			return mhErr
		}
		message = DefaultMessage(mh.Hash.String())
	}

	parents := []string{"MERGE_HEAD"}
	if r.HeadExists() {
		parents = []string{"HEAD", "MERGE_HEAD"}
	}

	if _, err := r.CommitAllRevs(ctx, "HEAD", message, parents); err != nil {
		return err
	}
	return CleanupState(r)
}
