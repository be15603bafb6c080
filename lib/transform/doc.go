// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package transform implements the per-kind transform stages of the
// pipeline. A Stage is a pure function from input bytes to one or
// more output payloads: stages never touch the output store, so a
// failed transform leaves no partial artifacts behind.
//
// Stage selection is done once per asset by ForAsset based on the
// asset's kind and the run's transform Spec. The orchestrator never
// branches on kind itself.
//
// Concrete codecs: CSS and JS minification use tdewolff/minify,
// image scaling uses golang.org/x/image/draw with the stdlib png,
// jpeg, and gif encoders (webp decodes but does not encode), and
// Markdown renders through goldmark. Precompression wraps another
// stage and emits gzip and zstd siblings of its outputs.
package transform
