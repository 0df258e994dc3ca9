// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package wip

import "errors"

// Common errors for WIP operations.
var (
	// ErrAttachedWIP indicates the command needs a WIP branch but the
	// current branch has none.
	ErrAttachedWIP = errors.New("no detached WIP for this branch")

	// ErrDetachedWIP indicates the command needs the WIP to be attached but
	// a WIP branch already exists.
	ErrDetachedWIP = errors.New("branch already has a detached WIP")
)
