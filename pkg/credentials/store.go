// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// Type identifies what kind of credential the store holds.
type Type int

const (
	// TypeEmpty marks a store holding nothing.
	TypeEmpty Type = iota

	// TypeDefault defers to the transport's own defaults (ssh-agent,
	// anonymous HTTP).
	TypeDefault

	// TypeUserPass is a plaintext username/password pair.
	TypeUserPass

	// TypeSSHKey is an on-disk SSH key pair with an optional passphrase.
	TypeSSHKey
)

// AllowedTypes is the set of credential kinds a transport will accept.
type AllowedTypes int

const (
	// AllowDefault permits TypeDefault credentials.
	AllowDefault AllowedTypes = 1 << iota

	// AllowUserPass permits plaintext username/password credentials.
	AllowUserPass

	// AllowSSHKey permits SSH key credentials.
	AllowSSHKey
)

// ErrEmptyStore indicates the store was used before being filled.
var ErrEmptyStore = errors.New("can't access empty credential store")

// Store holds one acquired credential between retries of a remote operation.
//
// Secret material is kept in byte slices so Clear can overwrite it; the
// store never outlives the sync operation that created it.
type Store struct {
	typ      Type
	username []byte
	password []byte

	publicKeyPath  string
	privateKeyPath string

	// Tried records that the credential has been offered to the transport,
	// so a subsequent failure means it was rejected.
	Tried bool
}

// Empty reports whether the store holds no credential.
func (s *Store) Empty() bool { return s.typ == TypeEmpty }

// Type returns the kind of credential held.
func (s *Store) Type() Type { return s.typ }

// StoreDefault records that transport defaults should be used.
func (s *Store) StoreDefault() {
	s.typ = TypeDefault
}

// StoreUserPass stores a plaintext username/password pair. The store takes
// ownership of both slices.
func (s *Store) StoreUserPass(username, password []byte) {
	s.typ = TypeUserPass
	s.username = username
	s.password = password
}

// StoreSSHKey stores an SSH key location with its passphrase.
func (s *Store) StoreSSHKey(username string, passphrase []byte, publicKeyPath, privateKeyPath string) {
	s.typ = TypeSSHKey
	s.username = []byte(username)
	s.password = passphrase
	s.publicKeyPath = publicKeyPath
	s.privateKeyPath = privateKeyPath
}

// Clear forgets the held credential, overwriting secret memory.
func (s *Store) Clear() {
	wipe(s.username)
	wipe(s.password)
	s.username = nil
	s.password = nil
	s.publicKeyPath = ""
	s.privateKeyPath = ""
	s.typ = TypeEmpty
	s.Tried = false
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Auth converts the held credential into a go-git transport auth method.
// TypeDefault yields nil, which lets the transport use its own defaults.
func (s *Store) Auth() (transport.AuthMethod, error) {
	switch s.typ {
	case TypeDefault:
		return nil, nil
	case TypeUserPass:
		return &githttp.BasicAuth{
			Username: string(s.username),
			Password: string(s.password),
		}, nil
	case TypeSSHKey:
		keys, err := gitssh.NewPublicKeysFromFile(string(s.username), s.privateKeyPath, string(s.password))
		if err != nil {
			return nil, fmt.Errorf("load SSH key %s: %w", s.privateKeyPath, err)
		}
		return keys, nil
	default:
		return nil, ErrEmptyStore
	}
}

// DefaultSSHKeyPaths returns the conventional id_rsa key pair location.
func DefaultSSHKeyPaths() (publicKey, privateKey string, err error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("locate home directory: %w", err)
	}
	private := filepath.Join(home, ".ssh", "id_rsa")
	return private + ".pub", private, nil
}
