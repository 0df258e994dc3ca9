// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package credentials

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	gitconfig "github.com/go-git/go-git/v5/config"
	format "github.com/go-git/go-git/v5/plumbing/format/config"

	"github.com/siliconsloth/metro/pkg/urldesc"
)

// helperList returns the credential helpers configured for the repository,
// local configuration first. A nil raw config contributes nothing.
func helperList(raws ...*format.Config) []string {
	var helpers []string
	for _, raw := range raws {
		if raw == nil {
			continue
		}
		helpers = append(helpers, raw.Section("credential").OptionAll("helper")...)
	}
	return helpers
}

// loadGlobalRaw reads the raw git configuration at global scope. The
// repository's own raw config, if any, is passed in by the caller.
func loadGlobalRaw() *format.Config {
	cfg, err := gitconfig.LoadConfig(gitconfig.GlobalScope)
	if err != nil {
		return nil
	}
	return cfg.Raw
}

// fromHelpers asks each configured credential helper for the URL's
// credentials, stopping at the first one that answers. Helper failures are
// reported but never fatal; manual entry remains as the fallback.
func fromHelpers(ctx context.Context, raws []*format.Config, url string, store *Store, report func(string)) {
	for _, helper := range helperList(raws...) {
		if !store.Empty() {
			return
		}
		if err := fromHelper(ctx, helper, url, store); err != nil && report != nil {
			report(err.Error())
		}
	}
}

// fromHelper runs one credential helper using git's helper command rules:
// "!cmd" runs through the shell, an absolute path runs directly, anything
// else becomes "git credential-<helper>".
func fromHelper(ctx context.Context, helper, url string, store *Store) error {
	var cmd *exec.Cmd
	switch {
	case strings.HasPrefix(helper, "!"):
		cmd = exec.CommandContext(ctx, "sh", "-c", helper[1:]+" get")
	case filepath.IsAbs(helper):
		cmd = exec.CommandContext(ctx, helper, "get")
	default:
		cmd = exec.CommandContext(ctx, "git", "credential-"+helper, "get")
	}

	desc := urldesc.Parse(url)
	details := fmt.Sprintf("protocol=%s\nhost=%s\npath=%s\n\n", desc.Protocol, desc.Host, desc.Path)
	cmd.Stdin = strings.NewReader(details)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := stdout.Bytes()
	defer wipe(out)

	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("credential helper %s: %s", helper, msg)
		}
		return fmt.Errorf("credential helper %s: %w", helper, err)
	}

	var username, password []byte
	for _, line := range bytes.Split(out, []byte("\n")) {
		key, value, found := bytes.Cut(line, []byte("="))
		if !found {
			continue
		}
		// Keep only the first username and password so replaced values
		// never linger in forgotten slices.
		switch {
		case bytes.Equal(key, []byte("username")) && username == nil:
			username = append([]byte(nil), value...)
		case bytes.Equal(key, []byte("password")) && password == nil:
			password = append([]byte(nil), value...)
		}
	}

	if username == nil && password == nil {
		return nil
	}
	store.StoreUserPass(username, password)
	return nil
}
