// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest accumulates per-asset output descriptors and
// serializes the manifest document consumers resolve logical paths
// through.
//
// The manifest's top-level shape is an object mapping each logical
// path to either a single descriptor (assets with exactly one
// output) or an array of descriptors (variant-producing assets).
// Entries serialize in discovery order, so an unchanged input tree
// produces a byte-identical manifest on every run.
package manifest
