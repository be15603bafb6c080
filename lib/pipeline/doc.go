// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline orchestrates a full build run: discover sources,
// transform them on a bounded worker pool, publish content-addressed
// outputs, and assemble the manifest.
//
// Failure isolation is per asset. A broken source file produces a
// Failure record and is absent from the manifest; every other asset
// still publishes. Only defects that poison the whole run abort it:
// an unreadable input root, a duplicate logical path, or a manifest
// that cannot be written.
//
// Cancellation is honored between assets: workers drain the queue
// without starting new work and the run reports itself incomplete.
package pipeline
