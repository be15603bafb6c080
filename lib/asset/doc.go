// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package asset defines the data model shared by the pipeline stages:
// the Asset record produced by discovery, the Kind classification that
// selects an asset's transform treatment, and the OutputDescriptor
// that describes one published artifact.
//
// Classification is extension-first with a MIME sniff fallback for
// extensionless files. Unrecognized files classify as KindOther and
// receive passthrough treatment: copied through unmodified, still
// hashed and published.
package asset
