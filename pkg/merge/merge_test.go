// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package merge_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/siliconsloth/metro/internal/testutil"
	"github.com/siliconsloth/metro/pkg/merge"
	"github.com/siliconsloth/metro/pkg/repo"
)

// divergedRepo builds master and other branches that both changed since the
// shared base commit. conflicting selects whether they touch the same file.
func divergedRepo(t *testing.T, conflicting bool) *repo.Repository {
	t.Helper()
	ctx := context.Background()
	r := testutil.TempRepo(t)

	testutil.WriteFile(t, r, "f.txt", "base\n")
	testutil.CommitAll(t, r, "base")

	if err := r.CreateBranch("other"); err != nil {
		t.Fatal(err)
	}
	if err := r.MoveHead("other"); err != nil {
		t.Fatal(err)
	}
	if conflicting {
		testutil.WriteFile(t, r, "f.txt", "theirs\n")
	} else {
		testutil.WriteFile(t, r, "g.txt", "theirs\n")
	}
	testutil.CommitAll(t, r, "their change")

	if err := r.Checkout(ctx, "master"); err != nil {
		t.Fatal(err)
	}
	if err := r.MoveHead("master"); err != nil {
		t.Fatal(err)
	}
	if conflicting {
		testutil.WriteFile(t, r, "f.txt", "ours\n")
	} else {
		testutil.WriteFile(t, r, "f.txt", "ours\n")
	}
	testutil.CommitAll(t, r, "our change")

	return r
}

func TestOngoing(t *testing.T) {
	r := testutil.TempRepo(t)
	if merge.Ongoing(r) {
		t.Error("fresh repo reports ongoing merge")
	}
	if err := merge.AssertNotMerging(r); err != nil {
		t.Errorf("AssertNotMerging() = %v", err)
	}
}

func TestMessageRoundTrip(t *testing.T) {
	r := testutil.TempRepo(t)

	if err := merge.SetMessage(r, "Merge commit 'other'"); err != nil {
		t.Fatalf("SetMessage() error = %v", err)
	}
	msg, err := merge.Message(r)
	if err != nil {
		t.Fatalf("Message() error = %v", err)
	}
	if msg != "Merge commit 'other'" {
		t.Errorf("Message() = %q", msg)
	}

	if err := merge.CleanupState(r); err != nil {
		t.Fatalf("CleanupState() error = %v", err)
	}
	if _, err := merge.Message(r); err == nil {
		t.Error("Message() after cleanup should fail")
	}
}

func TestAnalyzeUpToDate(t *testing.T) {
	ctx := context.Background()
	r := testutil.TempRepo(t)

	testutil.WriteFile(t, r, "f.txt", "one\n")
	testutil.CommitAll(t, r, "one")
	if err := r.CreateBranch("behind"); err != nil {
		t.Fatal(err)
	}
	testutil.WriteFile(t, r, "f.txt", "two\n")
	testutil.CommitAll(t, r, "two")

	analysis, err := merge.Analyze(ctx, r, "behind")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if analysis&merge.AnalysisUpToDate == 0 {
		t.Errorf("Analyze(behind) = %v, want up-to-date", analysis)
	}

	if err := merge.Start(ctx, r, "behind"); !errors.Is(err, merge.ErrUnnecessaryMerge) {
		t.Errorf("Start(behind) error = %v, want ErrUnnecessaryMerge", err)
	}
}

func TestAnalyzeFastForward(t *testing.T) {
	ctx := context.Background()
	r := testutil.TempRepo(t)

	testutil.WriteFile(t, r, "f.txt", "one\n")
	testutil.CommitAll(t, r, "one")
	if err := r.CreateBranch("ahead"); err != nil {
		t.Fatal(err)
	}
	if err := r.MoveHead("ahead"); err != nil {
		t.Fatal(err)
	}
	testutil.WriteFile(t, r, "f.txt", "two\n")
	testutil.CommitAll(t, r, "two")
	if err := r.Checkout(ctx, "master"); err != nil {
		t.Fatal(err)
	}
	if err := r.MoveHead("master"); err != nil {
		t.Fatal(err)
	}

	analysis, err := merge.Analyze(ctx, r, "ahead")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if analysis&merge.AnalysisFastForward == 0 || analysis&merge.AnalysisNormal == 0 {
		t.Errorf("Analyze(ahead) = %v, want normal|fast-forward", analysis)
	}
}

func TestAbsorbWithoutConflicts(t *testing.T) {
	ctx := context.Background()
	r := divergedRepo(t, false)

	conflicts, err := merge.Absorb(ctx, r, "other")
	if err != nil {
		t.Fatalf("Absorb() error = %v", err)
	}
	if conflicts {
		t.Fatal("disjoint changes should merge cleanly")
	}

	if merge.Ongoing(r) {
		t.Error("merge state not cleaned up after clean absorb")
	}

	commit, err := r.LastCommit()
	if err != nil {
		t.Fatal(err)
	}
	if commit.NumParents() != 2 {
		t.Errorf("merge commit has %d parents, want 2", commit.NumParents())
	}

	if got := testutil.ReadFile(t, r, "f.txt"); got != "ours\n" {
		t.Errorf("f.txt = %q", got)
	}
	if got := testutil.ReadFile(t, r, "g.txt"); got != "theirs\n" {
		t.Errorf("g.txt = %q", got)
	}
}

func TestAbsorbWithConflicts(t *testing.T) {
	ctx := context.Background()
	r := divergedRepo(t, true)

	conflicts, err := merge.Absorb(ctx, r, "other")
	if err != nil {
		t.Fatalf("Absorb() error = %v", err)
	}
	if !conflicts {
		t.Fatal("overlapping changes should conflict")
	}

	if !merge.Ongoing(r) {
		t.Error("MERGE_HEAD not set during conflicted merge")
	}

	idx, err := r.Index()
	if err != nil {
		t.Fatal(err)
	}
	if !repo.HasConflicts(idx) {
		t.Error("index has no conflict entries")
	}

	content := testutil.ReadFile(t, r, "f.txt")
	if !strings.Contains(content, "<<<<<<<") || !strings.Contains(content, "ours") || !strings.Contains(content, "theirs") {
		t.Errorf("conflict markers missing: %q", content)
	}

	other, err := r.GetCommit("other")
	if err != nil {
		t.Fatal(err)
	}
	mergeHead, err := r.GetCommit("MERGE_HEAD")
	if err != nil {
		t.Fatal(err)
	}
	if mergeHead.Hash != other.Hash {
		t.Error("MERGE_HEAD points at wrong commit")
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	r := divergedRepo(t, true)

	if _, err := merge.Absorb(ctx, r, "other"); err != nil {
		t.Fatal(err)
	}

	// User resolves the conflict in the working directory.
	testutil.WriteFile(t, r, "f.txt", "resolved\n")

	if err := merge.Resolve(ctx, r); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if merge.Ongoing(r) {
		t.Error("merge state remains after resolve")
	}

	commit, err := r.LastCommit()
	if err != nil {
		t.Fatal(err)
	}
	if commit.NumParents() != 2 {
		t.Errorf("resolved merge commit has %d parents, want 2", commit.NumParents())
	}
	if got := testutil.ReadFile(t, r, "f.txt"); got != "resolved\n" {
		t.Errorf("f.txt = %q", got)
	}
}

func TestResolveWithoutMerge(t *testing.T) {
	r := testutil.TempRepo(t)
	if err := merge.Resolve(context.Background(), r); !errors.Is(err, merge.ErrNotMerging) {
		t.Errorf("Resolve() error = %v, want ErrNotMerging", err)
	}
}

func TestAbort(t *testing.T) {
	ctx := context.Background()
	r := divergedRepo(t, true)

	if _, err := merge.Absorb(ctx, r, "other"); err != nil {
		t.Fatal(err)
	}
	if err := merge.Abort(ctx, r); err != nil {
		t.Fatalf("Abort() error = %v", err)
	}

	if merge.Ongoing(r) {
		t.Error("merge state remains after abort")
	}
	if got := testutil.ReadFile(t, r, "f.txt"); got != "ours\n" {
		t.Errorf("f.txt = %q, want HEAD content restored", got)
	}
}
