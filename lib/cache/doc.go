// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package cache persists per-asset transform results across runs so
// unchanged inputs skip transform and hash work entirely.
//
// An entry is keyed by logical path and validated against a Key that
// combines the source content digest with a fingerprint of the
// transform configuration active for the asset's kind. Editing a
// source file invalidates exactly that asset's entry; editing, say,
// the image variant list invalidates image entries while style and
// script entries keep hitting. There is never a global cache wipe.
//
// Two backends exist: a single CBOR snapshot file (the default,
// loaded at run start and rewritten at run end) and a sqlite
// database for trees large enough that rewriting one file per run
// becomes the bottleneck.
package cache
