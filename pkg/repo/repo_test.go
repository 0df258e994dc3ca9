// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/siliconsloth/metro/internal/testutil"
	"github.com/siliconsloth/metro/pkg/repo"
)

func TestCreate(t *testing.T) {
	r := testutil.TempRepo(t)

	head, err := r.Head()
	if err != nil {
		t.Fatalf("Head() error = %v", err)
	}
	if head.Detached {
		t.Error("fresh repo has detached HEAD")
	}
	if head.Name != "master" {
		t.Errorf("HEAD branch = %q, want master", head.Name)
	}

	commit, err := r.LastCommit()
	if err != nil {
		t.Fatalf("LastCommit() error = %v", err)
	}
	if commit.Message != "Create repository" {
		t.Errorf("root commit message = %q, want %q", commit.Message, "Create repository")
	}
	if commit.NumParents() != 0 {
		t.Errorf("root commit has %d parents, want 0", commit.NumParents())
	}

	changed, err := r.HasUncommittedChanges()
	if err != nil {
		t.Fatalf("HasUncommittedChanges() error = %v", err)
	}
	if changed {
		t.Error("fresh repo has uncommitted changes")
	}
}

func TestCreateExisting(t *testing.T) {
	r := testutil.TempRepo(t)

	_, err := repo.Create(context.Background(), r.Path())
	if !errors.Is(err, repo.ErrRepositoryExists) {
		t.Errorf("Create() on existing repo error = %v, want ErrRepositoryExists", err)
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := repo.Open(t.TempDir())
	if !errors.Is(err, repo.ErrRepositoryNotExists) {
		t.Errorf("Open() on empty dir error = %v, want ErrRepositoryNotExists", err)
	}
}

func TestCommitAndChanges(t *testing.T) {
	ctx := context.Background()
	r := testutil.TempRepo(t)

	testutil.WriteFile(t, r, "f.txt", "hello\n")

	stats, err := r.CurrentChanges(ctx)
	if err != nil {
		t.Fatalf("CurrentChanges() error = %v", err)
	}
	if stats.Added != 1 {
		t.Errorf("Added = %d, want 1", stats.Added)
	}

	testutil.CommitAll(t, r, "add f")

	commit, err := r.LastCommit()
	if err != nil {
		t.Fatalf("LastCommit() error = %v", err)
	}
	if commit.Message != "add f" {
		t.Errorf("message = %q", commit.Message)
	}
	if commit.NumParents() != 1 {
		t.Errorf("parents = %d, want 1", commit.NumParents())
	}

	changed, err := r.HasUncommittedChanges()
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("repo dirty after commit")
	}

	testutil.WriteFile(t, r, "f.txt", "edited\n")
	changed, err = r.HasUncommittedChanges()
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Error("edit not detected")
	}
}

func TestCommitDetachedHead(t *testing.T) {
	ctx := context.Background()
	r := testutil.TempRepo(t)

	commit, err := r.LastCommit()
	if err != nil {
		t.Fatal(err)
	}
	testutil.DetachHead(t, r, commit.Hash.String())

	_, err = r.CommitAllRevs(ctx, "HEAD", "nope", []string{"HEAD"})
	if !errors.Is(err, repo.ErrUnsupportedOperation) {
		t.Errorf("commit on detached HEAD error = %v, want ErrUnsupportedOperation", err)
	}
}

func TestPatch(t *testing.T) {
	ctx := context.Background()
	r := testutil.TempRepo(t)

	testutil.WriteFile(t, r, "f.txt", "one\n")
	testutil.CommitAll(t, r, "first")

	testutil.WriteFile(t, r, "f.txt", "two\n")
	if err := r.Patch(ctx, "first, amended"); err != nil {
		t.Fatalf("Patch() error = %v", err)
	}

	commit, err := r.LastCommit()
	if err != nil {
		t.Fatal(err)
	}
	if commit.Message != "first, amended" {
		t.Errorf("message = %q", commit.Message)
	}
	if commit.NumParents() != 1 {
		t.Errorf("parents = %d, want 1 (preserved)", commit.NumParents())
	}

	parent, err := commit.Parent(0)
	if err != nil {
		t.Fatal(err)
	}
	if parent.Message != "Create repository" {
		t.Errorf("parent message = %q, want root commit", parent.Message)
	}
}

func TestResetHeadHard(t *testing.T) {
	ctx := context.Background()
	r := testutil.TempRepo(t)

	testutil.WriteFile(t, r, "f.txt", "one\n")
	testutil.CommitAll(t, r, "first")
	first, err := r.LastCommit()
	if err != nil {
		t.Fatal(err)
	}

	testutil.WriteFile(t, r, "f.txt", "two\n")
	testutil.WriteFile(t, r, "g.txt", "new\n")
	testutil.CommitAll(t, r, "second")

	if err := r.ResetHead(ctx, first, true); err != nil {
		t.Fatalf("ResetHead() error = %v", err)
	}

	if got := testutil.ReadFile(t, r, "f.txt"); got != "one\n" {
		t.Errorf("f.txt = %q, want reverted content", got)
	}
	if testutil.FileExists(t, r, "g.txt") {
		t.Error("g.txt should be gone after hard reset")
	}

	head, err := r.LastCommit()
	if err != nil {
		t.Fatal(err)
	}
	if head.Hash != first.Hash {
		t.Error("HEAD not moved to target commit")
	}

	changed, err := r.HasUncommittedChanges()
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("repo dirty after hard reset")
	}
}

func TestBranchLifecycle(t *testing.T) {
	r := testutil.TempRepo(t)

	if err := r.CreateBranch("feature"); err != nil {
		t.Fatalf("CreateBranch() error = %v", err)
	}
	if !r.BranchExists("feature") {
		t.Fatal("created branch missing")
	}

	head, err := r.LastCommit()
	if err != nil {
		t.Fatal(err)
	}
	target, err := r.BranchTarget("feature")
	if err != nil {
		t.Fatal(err)
	}
	if target != head.Hash {
		t.Error("branch target != HEAD commit")
	}

	names, err := r.Branches()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Errorf("Branches() = %v, want master and feature", names)
	}

	if err := r.RenameBranch("feature", "renamed", false); err != nil {
		t.Fatalf("RenameBranch() error = %v", err)
	}
	if r.BranchExists("feature") || !r.BranchExists("renamed") {
		t.Error("rename did not move the ref")
	}

	if err := r.RemoveBranch("renamed"); err != nil {
		t.Fatalf("RemoveBranch() error = %v", err)
	}
	if err := r.RemoveBranch("renamed"); !errors.Is(err, repo.ErrBranchNotFound) {
		t.Errorf("RemoveBranch() twice error = %v, want ErrBranchNotFound", err)
	}
}

func TestCheckoutDoesNotMoveHead(t *testing.T) {
	ctx := context.Background()
	r := testutil.TempRepo(t)

	testutil.WriteFile(t, r, "f.txt", "old\n")
	testutil.CommitAll(t, r, "old state")
	if err := r.CreateBranch("snapshot"); err != nil {
		t.Fatal(err)
	}

	testutil.WriteFile(t, r, "f.txt", "new\n")
	testutil.CommitAll(t, r, "new state")

	if err := r.Checkout(ctx, "snapshot"); err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}

	if got := testutil.ReadFile(t, r, "f.txt"); got != "old\n" {
		t.Errorf("f.txt = %q, want checked-out content", got)
	}

	head, err := r.Head()
	if err != nil {
		t.Fatal(err)
	}
	if head.Name != "master" {
		t.Errorf("HEAD moved to %q by checkout", head.Name)
	}
}

func TestGetCommitMergeHead(t *testing.T) {
	r := testutil.TempRepo(t)

	commit, err := r.LastCommit()
	if err != nil {
		t.Fatal(err)
	}
	testutil.WriteGitFile(t, r, "MERGE_HEAD", commit.Hash.String()+"\n")

	got, err := r.GetCommit("MERGE_HEAD")
	if err != nil {
		t.Fatalf("GetCommit(MERGE_HEAD) error = %v", err)
	}
	if got.Hash != commit.Hash {
		t.Error("MERGE_HEAD resolved to wrong commit")
	}
}

func TestNonWIPBranch(t *testing.T) {
	r := testutil.TempRepo(t)

	if name, ok := r.NonWIPBranch("other"); !ok || name != "master" {
		t.Errorf("NonWIPBranch(other) = %q, %v; want master", name, ok)
	}
	if _, ok := r.NonWIPBranch("master"); ok {
		t.Error("NonWIPBranch(master) should have no candidate in a fresh repo")
	}
}
