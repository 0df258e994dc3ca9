// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package branchname implements Metro's branch name grammar.
//
// Every branch name has the form base["#"version]["#wip"], where version is
// a non-negative decimal integer and base never ends in "#wip". The "#wip"
// suffix marks the companion branch that holds the uncommitted work of its
// partner base branch; versioned names are produced when syncing has to move
// diverged commits onto a conflict branch.
//
// # Usage
//
//	d := branchname.Parse("feature#2#wip")
//	// d.Base == "feature", d.Version == 2, d.WIP == true
//	name := d.String()
package branchname
