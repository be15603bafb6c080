// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package digest computes the content hashes that give artifacts their
// published names. All hashing is BLAKE3-256; digests render as
// lowercase hex and are truncated to a configured length for use in
// filenames.
//
// Hashing is always performed on the final post-transform payload,
// never on raw source bytes. A hashed name therefore changes exactly
// when the observable output bytes change, independent of source
// formatting.
package digest
