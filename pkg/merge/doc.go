// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package merge implements Metro's merging layer.
//
// A merge is started by analysing the other head against HEAD, three-way
// merging the trees and leaving any conflicts in the index and as marker
// files in the working directory. The merge state itself lives in the
// repository metadata directory as MERGE_HEAD and MERGE_MSG, which is what
// lets the WIP engine capture and re-establish an in-flight merge.
package merge
