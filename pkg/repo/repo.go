// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/siliconsloth/metro/internal/config"
)

// Repository wraps a non-bare go-git repository together with the paths and
// settings the Metro operations need.
type Repository struct {
	git    *gogit.Repository
	path   string // working directory
	gitDir string // <path>/.git
	cfg    *config.Config
}

// Open opens the repository rooted at path.
func Open(path string) (*Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	g, err := gogit.PlainOpen(abs)
	if err != nil {
		if err == gogit.ErrRepositoryNotExists {
			return nil, fmt.Errorf("%w: %s", ErrRepositoryNotExists, abs)
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return &Repository{
		git:    g,
		path:   abs,
		gitDir: filepath.Join(abs, gogit.GitDirName),
		cfg:    config.LoadDefault(),
	}, nil
}

// Create initializes a new Metro repository at path with an initial root
// commit "Create repository" on the default branch.
func Create(ctx context.Context, path string) (*Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(filepath.Join(abs, gogit.GitDirName)); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrRepositoryExists, abs)
	}

	cfg := config.LoadDefault()
	head := plumbing.NewBranchReferenceName(cfg.Repo.DefaultBranch)

	g, err := gogit.PlainInitWithOptions(abs, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{DefaultBranch: head},
	})
	if err != nil {
		return nil, fmt.Errorf("init repository: %w", err)
	}

	r := &Repository{
		git:    g,
		path:   abs,
		gitDir: filepath.Join(abs, gogit.GitDirName),
		cfg:    cfg,
	}

	if _, err := r.CommitAll(ctx, "HEAD", "Create repository", nil); err != nil {
		return nil, fmt.Errorf("initial commit: %w", err)
	}
	return r, nil
}

// Git exposes the underlying go-git repository.
func (r *Repository) Git() *gogit.Repository { return r.git }

// Path returns the working directory root.
func (r *Repository) Path() string { return r.path }

// GitDir returns the repository metadata directory.
func (r *Repository) GitDir() string { return r.gitDir }

// Settings returns the Metro configuration the repository was opened with.
func (r *Repository) Settings() *config.Config { return r.cfg }

// Signature resolves the commit signature: repository git config first, then
// the global git config, then the Metro settings file.
func (r *Repository) Signature() (object.Signature, error) {
	name, email := "", ""

	for _, scope := range []gitconfig.Scope{gitconfig.LocalScope, gitconfig.GlobalScope} {
		cfg, err := r.git.ConfigScoped(scope)
		if err != nil {
			continue
		}
		if name == "" {
			name = cfg.User.Name
		}
		if email == "" {
			email = cfg.User.Email
		}
	}
	if name == "" {
		name = r.cfg.User.Name
	}
	if email == "" {
		email = r.cfg.User.Email
	}

	if name == "" || email == "" {
		return object.Signature{}, fmt.Errorf("%w: set user.name and user.email", ErrNoSignature)
	}

	return object.Signature{Name: name, Email: email, When: time.Now()}, nil
}

// SetOrigin points the sync remote at url, creating it if missing.
func (r *Repository) SetOrigin(url string) error {
	remote := r.cfg.Repo.Remote

	cfg, err := r.git.Config()
	if err != nil {
		return fmt.Errorf("read repository config: %w", err)
	}

	if rc, ok := cfg.Remotes[remote]; ok {
		rc.URLs = []string{url}
		if err := r.git.SetConfig(cfg); err != nil {
			return fmt.Errorf("update remote %s: %w", remote, err)
		}
		return nil
	}

	_, err = r.git.CreateRemote(&gitconfig.RemoteConfig{
		Name:  remote,
		URLs:  []string{url},
		Fetch: []gitconfig.RefSpec{gitconfig.RefSpec("+refs/heads/*:refs/remotes/" + remote + "/*")},
	})
	if err != nil {
		return fmt.Errorf("create remote %s: %w", remote, err)
	}
	return nil
}
