// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package publish writes finalized artifacts to the output store
// under their hashed names. Publication is idempotent: an object
// that already exists under a hashed name is assumed identical by
// construction and skipped. That invariant is what makes re-running
// the pipeline safe and lets workers publish in parallel without
// coordination.
package publish
