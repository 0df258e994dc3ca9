// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/siliconsloth/metro"
	"github.com/siliconsloth/metro/cmd/metro/cmd"
)

func main() {
	cmd.Execute(metro.VersionString())
}
