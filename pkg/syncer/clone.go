// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/siliconsloth/metro/pkg/credentials"
	"github.com/siliconsloth/metro/pkg/repo"
)

// Clone clones url into path and then force-pulls every fetched branch into
// a local branch, so the clone starts with the full branch set. The caller
// restores any WIP of the checked-out branch afterwards.
func Clone(ctx context.Context, url, path string, opts Options) (*repo.Repository, error) {
	if _, err := os.Stat(filepath.Join(path, gogit.GitDirName)); err == nil {
		return nil, fmt.Errorf("%w: %s", repo.ErrRepositoryExists, path)
	}

	store := opts.Credentials
	if store == nil {
		store = &credentials.Store{}
	}
	provider := opts.Provider
	if provider == nil {
		provider = &credentials.InteractiveProvider{}
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}

	err := authRetry(ctx, store, provider, url, func(auth transport.AuthMethod) error {
		_, cloneErr := gogit.PlainCloneContext(ctx, path, false, &gogit.CloneOptions{
			URL:        url,
			RemoteName: "origin",
			Auth:       auth,
			Progress:   opts.Progress,
		})
		return cloneErr
	})
	if err != nil && !errors.Is(err, transport.ErrEmptyRemoteRepository) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("clone %s: %w", url, err)
	}

	r, err := repo.Open(path)
	if err != nil {
		return nil, err
	}

	// The fetch brought every branch along; materialise them locally.
	s := New(r, opts)
	if err := s.ForcePull(ctx); err != nil {
		return nil, err
	}
	return r, nil
}
