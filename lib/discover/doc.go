// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package discover walks an input root and produces the run's asset
// list. Walking is restartable: an unchanged tree always yields the
// same logical paths in the same (lexical) order.
//
// Entries that cannot be read are skipped and reported, never fatal
// to the run. Symlinks are not followed, which makes cycles
// impossible by construction; a symlinked entry is reported as
// skipped. Dot-prefixed files and directories (".git", ".DS_Store")
// are ignored silently.
package discover
