// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	format "github.com/go-git/go-git/v5/plumbing/format/config"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/siliconsloth/metro/internal/synccache"
	"github.com/siliconsloth/metro/pkg/branchname"
	"github.com/siliconsloth/metro/pkg/credentials"
	"github.com/siliconsloth/metro/pkg/repo"
	"github.com/siliconsloth/metro/pkg/wip"
)

// maxAuthAttempts bounds how often rejected credentials are re-requested.
const maxAuthAttempts = 3

// Options configures a Syncer.
type Options struct {
	// Credentials holds acquired credentials between retries. A fresh
	// store is used when nil.
	Credentials *credentials.Store

	// Provider acquires credentials on demand. Defaults to the
	// interactive provider.
	Provider credentials.Provider

	// Output receives user-facing progress messages.
	Output io.Writer

	// Progress receives transfer progress from the server side-band.
	Progress io.Writer
}

// Syncer reconciles a repository with its remote.
type Syncer struct {
	repo     *repo.Repository
	cache    *synccache.Store
	store    *credentials.Store
	provider credentials.Provider
	out      io.Writer
	progress io.Writer
	remote   string
}

// New creates a Syncer for the repository.
func New(r *repo.Repository, opts Options) *Syncer {
	store := opts.Credentials
	if store == nil {
		store = &credentials.Store{}
	}

	out := opts.Output
	if out == nil {
		out = io.Discard
	}

	provider := opts.Provider
	if provider == nil {
		provider = &credentials.InteractiveProvider{
			RepoRaw: repoRawConfig(r),
			Report:  func(msg string) { fmt.Fprintln(out, msg) },
		}
	}

	return &Syncer{
		repo:     r,
		cache:    synccache.NewStore(r.GitDir()),
		store:    store,
		provider: provider,
		out:      out,
		progress: opts.Progress,
		remote:   r.Settings().Repo.Remote,
	}
}

func (s *Syncer) printf(msg string, args ...any) {
	fmt.Fprintf(s.out, msg+"\n", args...)
}

// Sync reconciles every branch with the remote in the given direction.
// Pending work on the current branch is captured as WIP first so it takes
// part in the sync, and restored afterwards.
func (s *Syncer) Sync(ctx context.Context, direction Direction) (err error) {
	if err := wip.Save(ctx, s.repo); err != nil {
		return err
	}
	defer func() {
		if restoreErr := wip.Restore(context.WithoutCancel(ctx), s.repo); restoreErr != nil && err == nil {
			err = restoreErr
		}
	}()

	remote, err := s.repo.Git().Remote(s.remote)
	if err != nil {
		return fmt.Errorf("lookup remote %s: %w", s.remote, err)
	}
	url := remoteURL(remote)

	s.printf("Syncing with %s.", url)
	s.printf("Fetching all branches from remote...")
	if err := s.fetch(ctx, remote, url); err != nil {
		return err
	}

	branchTargets, err := gatherTargets(s.repo, s.cache, s.remote)
	if err != nil {
		return err
	}

	// Compare WIP commits by content hash so metadata such as timestamps
	// and authors is ignored.
	wipCommits, err := hashWIPCommits(s.repo, branchTargets)
	if err != nil {
		return err
	}

	var refspecs []gitconfig.RefSpec
	// Branches whose local and remote targets are known to agree after
	// this sync.
	var syncedBranches []string

	for _, branchName := range sortedBranchNames(branchTargets) {
		targets := branchTargets[branchName]

		refspecs, syncedBranches, err = s.syncBranch(ctx, branchName, targets, direction,
			branchTargets, refspecs, syncedBranches, wipCommits)
		if err != nil {
			return err
		}
	}

	if len(refspecs) > 0 {
		if err := s.push(ctx, remote, url, refspecs); err != nil {
			return err
		}
	}

	return updateSyncCache(s.repo, s.cache, syncedBranches)
}

// syncBranch classifies one branch against the remote and applies the
// outcome, honouring the sync direction.
func (s *Syncer) syncBranch(ctx context.Context, branchName string, targets *RefTargets,
	direction Direction, branchTargets map[string]*RefTargets, refspecs []gitconfig.RefSpec,
	syncedBranches []string, wipCommits map[plumbing.Hash]plumbing.Hash,
) ([]gitconfig.RefSpec, []string, error) {
	if targets.Local.Base == targets.Remote.Base {
		syncedBranches = append(syncedBranches, branchName)
	}

	if targets.Local.Head == targets.Remote.Head {
		if targets.Local.HasWIP {
			syncedBranches = append(syncedBranches, branchname.ToWIP(branchName))
		}
		if s.repo.IsOnBranch(branchName) {
			s.printf("Branch %s is already synced.", branchName)
		}
		return refspecs, syncedBranches, nil
	}

	localOK := targets.Local.isValid(s.repo, wipCommits)
	remoteOK := targets.Remote.isValid(s.repo, wipCommits)
	if !localOK || !remoteOK {
		// A broken WIP branch makes it hard to tell what the user
		// intended, so leave both sides alone.
		side := "Local"
		if localOK {
			side = "Remote"
		}
		s.printf("%s WIP branch for %s is not a valid work in progress branch, so neither branch can be synced. Delete %s to resolve the issue.",
			side, branchName, branchname.ToWIP(branchName))
		return refspecs, syncedBranches, nil
	}

	kind := s.classify(branchName, targets)

	switch kind {
	case syncPush:
		if direction == Up || direction == Both {
			s.printf("Pushing %s...", branchName)
			refspecs = queuePush(branchName, targets, refspecs)
			syncedBranches = append(syncedBranches, branchName, branchname.ToWIP(branchName))
		}
	case syncPull:
		if direction == Down || direction == Both {
			s.printf("Pulling %s...", branchName)
			if err := s.pull(ctx, branchName, targets, wipCommits); err != nil {
				return refspecs, syncedBranches, err
			}
			syncedBranches = append(syncedBranches, branchName, branchname.ToWIP(branchName))
		}
	case syncConflict:
		if direction != Up {
			var err error
			refspecs, syncedBranches, err = s.createConflictBranches(ctx, branchName, targets,
				direction, branchTargets, refspecs, syncedBranches, wipCommits)
			if err != nil {
				return refspecs, syncedBranches, err
			}
		} else {
			s.printf("Branch %s conflicts with remote, not pushing.", branchName)
		}
	}

	return refspecs, syncedBranches, nil
}

// classify decides push/pull/conflict for a branch by comparing both sides
// against the last-synced state, downgrading conflicts to a fast-forward
// when one head is an ancestor of the other.
func (s *Syncer) classify(branchName string, targets *RefTargets) syncType {
	var kind syncType
	switch {
	case targets.Local.Head == targets.Synced.Head:
		// Only the remote has changed.
		kind = syncPull
	case targets.Remote.Head == targets.Synced.Head:
		// Only the local side has changed.
		kind = syncPush
	default:
		kind = syncConflict
	}

	if kind != syncConflict {
		return kind
	}

	// When the heads merely fast-forward there is no divergence to keep;
	// retain all commits on both sides instead of making a conflict branch.
	base := s.mergeBase(targets.Local.Head, targets.Remote.Head)
	switch {
	case !base.IsZero() && targets.Local.Head == base:
		s.printf("Branch %s has been modified both locally and remotely, but in different ways. The local branch has been updated.", branchName)
		return syncPull
	case !base.IsZero() && targets.Remote.Head == base:
		s.printf("Branch %s has been modified both locally and remotely, but in different ways. The remote branch has been updated.", branchName)
		return syncPush
	default:
		return syncConflict
	}
}

// mergeBase returns the most recent common ancestor of two commits, or zero
// when either does not resolve to a commit or no ancestor is shared. WIP
// hashes never resolve, which keeps conflicting WIPs classified as conflict.
func (s *Syncer) mergeBase(a, b plumbing.Hash) plumbing.Hash {
	if a.IsZero() || b.IsZero() {
		return plumbing.ZeroHash
	}

	ca, err := s.repo.Git().CommitObject(a)
	if err != nil {
		return plumbing.ZeroHash
	}
	cb, err := s.repo.Git().CommitObject(b)
	if err != nil {
		return plumbing.ZeroHash
	}

	bases, err := ca.MergeBase(cb)
	if err != nil || len(bases) == 0 {
		return plumbing.ZeroHash
	}
	return bases[0].Hash
}

// fetch downloads all remote branches with pruning, acquiring credentials on
// demand.
func (s *Syncer) fetch(ctx context.Context, remote *gogit.Remote, url string) error {
	err := s.withAuth(ctx, url, func(auth transport.AuthMethod) error {
		return remote.FetchContext(ctx, &gogit.FetchOptions{
			Prune:    true,
			Force:    true,
			Auth:     auth,
			Progress: s.progress,
		})
	})
	if errors.Is(err, gogit.NoErrAlreadyUpToDate) || errors.Is(err, transport.ErrEmptyRemoteRepository) {
		return nil
	}
	return s.suppressCancelled(ctx, err, "fetch")
}

// push uploads the queued refspecs.
func (s *Syncer) push(ctx context.Context, remote *gogit.Remote, url string, refspecs []gitconfig.RefSpec) error {
	err := s.withAuth(ctx, url, func(auth transport.AuthMethod) error {
		return remote.PushContext(ctx, &gogit.PushOptions{
			RemoteName: s.remote,
			RefSpecs:   refspecs,
			Auth:       auth,
			Progress:   s.progress,
		})
	})
	if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return nil
	}
	return s.suppressCancelled(ctx, err, "push")
}

// suppressCancelled reports a cancelled transfer as the cancellation itself
// rather than whatever error the transport produced because of it.
func (s *Syncer) suppressCancelled(ctx context.Context, err error, op string) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%s: %w", op, err)
}

// withAuth runs a remote operation, acquiring credentials when the transport
// demands them and retrying after rejections with the store cleared.
func (s *Syncer) withAuth(ctx context.Context, url string, op func(transport.AuthMethod) error) error {
	return authRetry(ctx, s.store, s.provider, url, op)
}

func authRetry(ctx context.Context, store *credentials.Store, provider credentials.Provider, url string, op func(transport.AuthMethod) error) error {
	store.Tried = false

	for attempt := 0; ; attempt++ {
		auth, err := currentAuth(ctx, store, provider, url, attempt)
		if err != nil {
			return err
		}

		err = op(auth)
		if err == nil || !isAuthError(err) || attempt+1 >= maxAuthAttempts {
			return err
		}
		store.Tried = true
	}
}

// currentAuth converts the store into an auth method, invoking the provider
// first on retries or when a previous transport rejected anonymous access.
func currentAuth(ctx context.Context, store *credentials.Store, provider credentials.Provider, url string, attempt int) (transport.AuthMethod, error) {
	if attempt == 0 && store.Empty() {
		// First try without credentials; public remotes need none.
		return nil, nil
	}

	if store.Empty() || store.Tried {
		user, allowed := allowedFor(url)
		if err := provider.Acquire(ctx, url, user, allowed, store); err != nil {
			return nil, err
		}
		store.Tried = false
	}
	return store.Auth()
}

// allowedFor maps a URL to the credential kinds its transport accepts.
func allowedFor(url string) (usernameFromURL string, allowed credentials.AllowedTypes) {
	ep, err := transport.NewEndpoint(url)
	if err != nil {
		return "", credentials.AllowUserPass | credentials.AllowDefault
	}
	if ep.Protocol == "ssh" {
		return ep.User, credentials.AllowSSHKey
	}
	return ep.User, credentials.AllowUserPass | credentials.AllowDefault
}

func isAuthError(err error) bool {
	return errors.Is(err, transport.ErrAuthenticationRequired) ||
		errors.Is(err, transport.ErrAuthorizationFailed)
}

// ForcePull sets every local branch to its fetched remote target, used after
// cloning to materialise all remote branches locally.
func (s *Syncer) ForcePull(ctx context.Context) error {
	branchTargets, err := gatherTargets(s.repo, s.cache, s.remote)
	if err != nil {
		return err
	}

	wipCommits, err := hashWIPCommits(s.repo, branchTargets)
	if err != nil {
		return err
	}

	var syncedBranches []string
	for _, branchName := range sortedBranchNames(branchTargets) {
		if err := s.pull(ctx, branchName, branchTargets[branchName], wipCommits); err != nil {
			return err
		}
		syncedBranches = append(syncedBranches, branchName, branchname.ToWIP(branchName))
	}

	return updateSyncCache(s.repo, s.cache, syncedBranches)
}

func sortedBranchNames(branchTargets map[string]*RefTargets) []string {
	names := make([]string, 0, len(branchTargets))
	for name := range branchTargets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func remoteURL(remote *gogit.Remote) string {
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}

// repoRawConfig exposes the repository's raw git config for credential
// helper lookup; nil when unavailable.
func repoRawConfig(r *repo.Repository) *format.Config {
	cfg, err := r.Git().Config()
	if err != nil {
		return nil
	}
	return cfg.Raw
}
