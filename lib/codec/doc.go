// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides deterministic CBOR encoding for persisted
// pipeline state: the incremental cache snapshot and the transform
// configuration fingerprint.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2):
// sorted map keys, smallest integer encoding, no indefinite-length
// items. Same logical data always produces identical bytes, which is
// what makes configuration fingerprints stable across runs.
package codec
