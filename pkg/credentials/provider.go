// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package credentials

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/huh"
	format "github.com/go-git/go-git/v5/plumbing/format/config"
)

// Provider fills a store with credentials for a URL when a transport needs
// them. Implementations may prompt the user.
type Provider interface {
	// Acquire fills the store. usernameFromURL is the user part of the
	// clone URL, if any; allowed restricts which credential kinds the
	// transport will accept.
	Acquire(ctx context.Context, url, usernameFromURL string, allowed AllowedTypes, store *Store) error
}

// InteractiveProvider acquires credentials the way git does: configured
// credential helpers first, then an askpass program, then terminal prompts.
type InteractiveProvider struct {
	// RepoRaw is the repository's raw git configuration; nil outside a
	// repository (e.g. during clone).
	RepoRaw *format.Config

	// Report receives non-fatal diagnostics such as helper failures.
	Report func(string)
}

// Acquire implements Provider.
func (p *InteractiveProvider) Acquire(ctx context.Context, url, usernameFromURL string, allowed AllowedTypes, store *Store) error {
	if store.Tried {
		p.report("Invalid credentials, please try again or press Ctrl+C to abort")
		store.Clear()
	}

	if store.Empty() && allowed&AllowUserPass != 0 {
		fromHelpers(ctx, []*format.Config{p.RepoRaw, loadGlobalRaw()}, url, store, p.Report)
	}

	if store.Empty() {
		if err := p.manualEntry(ctx, url, usernameFromURL, allowed, store); err != nil {
			return err
		}
	}
	return nil
}

func (p *InteractiveProvider) report(msg string) {
	if p.Report != nil {
		p.Report(msg)
	}
}

// manualEntry fills the store from askpass or terminal prompts, keyed by the
// credential kinds the transport accepts.
func (p *InteractiveProvider) manualEntry(ctx context.Context, url, usernameFromURL string, allowed AllowedTypes, store *Store) error {
	askpass := askpassCommand(p.RepoRaw)

	switch {
	case allowed == AllowDefault:
		store.StoreDefault()
		return nil

	case allowed&AllowUserPass != 0:
		username := []byte(usernameFromURL)
		if len(username) == 0 {
			u, err := readValue(ctx, askpass, "Username for "+url, false)
			if err != nil {
				return err
			}
			username = u
		}
		password, err := readValue(ctx, askpass, "Password for "+string(username), true)
		if err != nil {
			wipe(username)
			return err
		}
		store.StoreUserPass(username, password)
		return nil

	default:
		passphrase, err := readValue(ctx, askpass, "SSH key passphrase", true)
		if err != nil {
			return err
		}
		publicKey, privateKey, err := DefaultSSHKeyPaths()
		if err != nil {
			wipe(passphrase)
			return err
		}
		user := usernameFromURL
		if user == "" {
			user = "git"
		}
		store.StoreSSHKey(user, passphrase, publicKey, privateKey)
		return nil
	}
}

// askpassCommand resolves the askpass program: GIT_ASKPASS, then the
// core.askPass configuration, then SSH_ASKPASS. Empty means prompt on the
// terminal.
func askpassCommand(repoRaw *format.Config) string {
	if cmd := os.Getenv("GIT_ASKPASS"); cmd != "" {
		return cmd
	}
	for _, raw := range []*format.Config{repoRaw, loadGlobalRaw()} {
		if raw == nil {
			continue
		}
		if cmd := raw.Section("core").Option("askPass"); cmd != "" {
			return cmd
		}
	}
	return os.Getenv("SSH_ASKPASS")
}

// readValue obtains one value from the askpass command if set, falling back
// to an interactive prompt. Passwords are read without echo.
func readValue(ctx context.Context, askpass, prompt string, secret bool) ([]byte, error) {
	if askpass != "" {
		cmd := exec.CommandContext(ctx, askpass, prompt+":")
		var stdout bytes.Buffer
		cmd.Stdout = &stdout
		if err := cmd.Run(); err == nil {
			value := []byte(strings.TrimSuffix(stdout.String(), "\n"))
			if len(value) > 0 {
				return value, nil
			}
		}
	}

	var value string
	input := huh.NewInput().Title(prompt).Value(&value)
	if secret {
		input = input.EchoMode(huh.EchoModePassword)
	}
	if err := input.Run(); err != nil {
		return nil, fmt.Errorf("read %s: %w", strings.ToLower(prompt), err)
	}
	return []byte(value), nil
}
