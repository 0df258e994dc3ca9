// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package syncer_test

import (
	"context"
	"testing"

	"github.com/siliconsloth/metro/internal/synccache"
	"github.com/siliconsloth/metro/internal/testutil"
	"github.com/siliconsloth/metro/pkg/repo"
	"github.com/siliconsloth/metro/pkg/syncer"
)

func newSyncer(r *repo.Repository) *syncer.Syncer {
	return syncer.New(r, syncer.Options{})
}

// twoPeers builds a first repo with one commit, a shared bare remote, and a
// second clone of that remote.
func twoPeers(t *testing.T) (*repo.Repository, *repo.Repository, string) {
	t.Helper()
	ctx := context.Background()

	r1 := testutil.TempRepo(t)
	testutil.WriteFile(t, r1, "f.txt", "shared\n")
	testutil.CommitAll(t, r1, "shared base")

	remote := testutil.BareRemote(t, r1)
	if err := newSyncer(r1).Sync(ctx, syncer.Both); err != nil {
		t.Fatalf("initial sync error = %v", err)
	}

	dir := t.TempDir()
	r2, err := syncer.Clone(ctx, remote, dir, syncer.Options{})
	if err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	return r1, r2, remote
}

func TestSyncPushesToEmptyRemote(t *testing.T) {
	ctx := context.Background()
	r := testutil.TempRepo(t)
	testutil.WriteFile(t, r, "f.txt", "content\n")
	testutil.CommitAll(t, r, "first")

	testutil.BareRemote(t, r)
	if err := newSyncer(r).Sync(ctx, syncer.Both); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	// The remote-tracking ref exists only if the push landed and the next
	// fetch saw it; verify through the sync cache instead, which records
	// the agreed target.
	cache := synccache.NewStore(r.GitDir())
	entries, err := cache.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	master, err := r.BranchTarget("master")
	if err != nil {
		t.Fatal(err)
	}
	if entries["master"] != master {
		t.Errorf("sync cache master = %v, want %v", entries["master"], master)
	}
}

func TestCloneMaterialisesBranches(t *testing.T) {
	_, r2, _ := twoPeers(t)

	if !r2.BranchExists("master") {
		t.Fatal("clone has no local master")
	}
	if got := testutil.ReadFile(t, r2, "f.txt"); got != "shared\n" {
		t.Errorf("f.txt = %q", got)
	}
}

func TestSyncConvergence(t *testing.T) {
	ctx := context.Background()
	r1, r2, _ := twoPeers(t)

	testutil.WriteFile(t, r2, "g.txt", "from r2\n")
	testutil.CommitAll(t, r2, "r2 change")
	if err := newSyncer(r2).Sync(ctx, syncer.Both); err != nil {
		t.Fatalf("r2 sync error = %v", err)
	}

	if err := newSyncer(r1).Sync(ctx, syncer.Both); err != nil {
		t.Fatalf("r1 sync error = %v", err)
	}

	t1, err := r1.BranchTarget("master")
	if err != nil {
		t.Fatal(err)
	}
	t2, err := r2.BranchTarget("master")
	if err != nil {
		t.Fatal(err)
	}
	if t1 != t2 {
		t.Errorf("peers diverge: %v vs %v", t1, t2)
	}
	if got := testutil.ReadFile(t, r1, "g.txt"); got != "from r2\n" {
		t.Errorf("pulled content = %q", got)
	}

	c1, err := synccache.NewStore(r1.GitDir()).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	c2, err := synccache.NewStore(r2.GitDir()).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if c1["master"] != c2["master"] || c1["master"] != t1 {
		t.Errorf("sync caches disagree: %v vs %v (refs %v)", c1["master"], c2["master"], t1)
	}
}

func TestSyncConflictCreatesVersionedBranch(t *testing.T) {
	ctx := context.Background()
	r1, r2, _ := twoPeers(t)

	// Diverge: both sides edit the same branch differently.
	testutil.WriteFile(t, r1, "f.txt", "r1 version\n")
	testutil.CommitAll(t, r1, "r1 change")
	if err := newSyncer(r1).Sync(ctx, syncer.Both); err != nil {
		t.Fatalf("r1 sync error = %v", err)
	}

	testutil.WriteFile(t, r2, "f.txt", "r2 version\n")
	testutil.CommitAll(t, r2, "r2 change")
	r2Head, err := r2.BranchTarget("master")
	if err != nil {
		t.Fatal(err)
	}

	if err := newSyncer(r2).Sync(ctx, syncer.Both); err != nil {
		t.Fatalf("r2 sync error = %v", err)
	}

	// r2's own commits moved to master#1; master matches the remote.
	if !r2.BranchExists("master#1") {
		t.Fatal("conflict branch master#1 not created")
	}
	conflictTarget, err := r2.BranchTarget("master#1")
	if err != nil {
		t.Fatal(err)
	}
	if conflictTarget != r2Head {
		t.Error("conflict branch does not hold the prior local head")
	}

	r1Head, err := r1.BranchTarget("master")
	if err != nil {
		t.Fatal(err)
	}
	masterTarget, err := r2.BranchTarget("master")
	if err != nil {
		t.Fatal(err)
	}
	if masterTarget != r1Head {
		t.Error("master does not match the remote after conflict sync")
	}

	// HEAD follows the user's commits onto the conflict branch.
	head, err := r2.Head()
	if err != nil {
		t.Fatal(err)
	}
	if head.Name != "master#1" {
		t.Errorf("HEAD on %q, want master#1", head.Name)
	}
}

func TestSyncFastForwardsInsteadOfConflicting(t *testing.T) {
	ctx := context.Background()
	r1, r2, _ := twoPeers(t)

	// r1 advances and syncs; r2 makes no commits of its own, so r1's extra
	// commit fast-forwards into r2 without a conflict branch.
	testutil.WriteFile(t, r1, "f.txt", "ahead\n")
	testutil.CommitAll(t, r1, "ahead")
	if err := newSyncer(r1).Sync(ctx, syncer.Both); err != nil {
		t.Fatal(err)
	}

	if err := newSyncer(r2).Sync(ctx, syncer.Both); err != nil {
		t.Fatal(err)
	}

	t1, err := r1.BranchTarget("master")
	if err != nil {
		t.Fatal(err)
	}
	t2, err := r2.BranchTarget("master")
	if err != nil {
		t.Fatal(err)
	}
	if t1 != t2 {
		t.Error("fast-forward pull did not converge")
	}
	if r2.BranchExists("master#1") {
		t.Error("unnecessary conflict branch created")
	}
}

func TestSyncUpDoesNotPull(t *testing.T) {
	ctx := context.Background()
	r1, r2, _ := twoPeers(t)

	testutil.WriteFile(t, r1, "f.txt", "new\n")
	testutil.CommitAll(t, r1, "new")
	if err := newSyncer(r1).Sync(ctx, syncer.Both); err != nil {
		t.Fatal(err)
	}

	before, err := r2.BranchTarget("master")
	if err != nil {
		t.Fatal(err)
	}
	if err := newSyncer(r2).Sync(ctx, syncer.Up); err != nil {
		t.Fatal(err)
	}
	after, err := r2.BranchTarget("master")
	if err != nil {
		t.Fatal(err)
	}
	if before != after {
		t.Error("push-only sync moved the local branch")
	}
}

func TestSyncCarriesWIPBranch(t *testing.T) {
	ctx := context.Background()
	r1, r2, _ := twoPeers(t)

	// Uncommitted work on r1 travels through sync as master#wip.
	testutil.WriteFile(t, r1, "f.txt", "in progress\n")
	if err := newSyncer(r1).Sync(ctx, syncer.Both); err != nil {
		t.Fatalf("r1 sync error = %v", err)
	}

	// After the sync the WIP is restored locally...
	if got := testutil.ReadFile(t, r1, "f.txt"); got != "in progress\n" {
		t.Errorf("r1 work lost: f.txt = %q", got)
	}
	if r1.BranchExists("master#wip") {
		t.Error("master#wip still present locally after restore")
	}

	// ...and r2's sync pulls the WIP and restores it straight into the
	// working directory, consuming the branch.
	if err := newSyncer(r2).Sync(ctx, syncer.Both); err != nil {
		t.Fatalf("r2 sync error = %v", err)
	}
	if r2.BranchExists("master#wip") {
		t.Error("pulled WIP branch should be consumed by the restore")
	}
	if got := testutil.ReadFile(t, r2, "f.txt"); got != "in progress\n" {
		t.Errorf("r2 restored work = %q", got)
	}
}

func TestWIPHashIgnoresSignature(t *testing.T) {
	ctx := context.Background()
	r := testutil.TempRepo(t)

	testutil.WriteFile(t, r, "f.txt", "work\n")
	base, err := r.LastCommit()
	if err != nil {
		t.Fatal(err)
	}

	// Two WIP commits with the same tree, message and parents, created at
	// different times (so their committer timestamps differ).
	h1, err := r.CommitAllRevs(ctx, "refs/heads/a#wip", "WIP", []string{base.Hash.String()})
	if err != nil {
		t.Fatal(err)
	}
	h2, err := r.CommitAllRevs(ctx, "refs/heads/b#wip", "WIP", []string{base.Hash.String()})
	if err != nil {
		t.Fatal(err)
	}

	w1, err := syncer.WIPCommitHash(r, h1)
	if err != nil {
		t.Fatal(err)
	}
	w2, err := syncer.WIPCommitHash(r, h2)
	if err != nil {
		t.Fatal(err)
	}
	if w1 != w2 {
		t.Errorf("WIP hashes differ for equivalent commits: %v vs %v", w1, w2)
	}

	// A different message must change the hash.
	h3, err := r.CommitAllRevs(ctx, "refs/heads/c#wip", "WIP\nmerge msg", []string{base.Hash.String()})
	if err != nil {
		t.Fatal(err)
	}
	w3, err := syncer.WIPCommitHash(r, h3)
	if err != nil {
		t.Fatal(err)
	}
	if w3 == w1 {
		t.Error("different message produced identical WIP hash")
	}
}
