// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"fmt"

	"github.com/staticforge/staticforge/lib/asset"
	"github.com/staticforge/staticforge/lib/codec"
	"github.com/staticforge/staticforge/lib/digest"
	"github.com/staticforge/staticforge/lib/transform"
)

// Key validates a cache entry. Two entries with the same logical
// path compare equal only when both the source bytes and the
// transform configuration for the asset's kind are unchanged.
type Key string

// NewKey builds a Key from a source digest and a configuration
// fingerprint.
func NewKey(source, fingerprint digest.Digest) Key {
	return Key(source.Hex() + ":" + fingerprint.Hex())
}

// Fingerprint digests the slice of the transform configuration that
// affects one asset kind, plus the hash length (which changes every
// published name). Deterministic CBOR encoding makes the fingerprint
// stable across runs and platforms.
func Fingerprint(kind asset.Kind, spec transform.Spec, hashLength int) (digest.Digest, error) {
	// Only the sub-specs that change this kind's outputs participate,
	// so a style config edit cannot invalidate image entries.
	scoped := struct {
		Kind       string
		HashLength int
		Style      *transform.StyleSpec    `cbor:",omitempty"`
		Script     *transform.ScriptSpec   `cbor:",omitempty"`
		Image      *transform.ImageSpec    `cbor:",omitempty"`
		Markup     *transform.MarkupSpec   `cbor:",omitempty"`
		Compress   *transform.CompressSpec `cbor:",omitempty"`
	}{
		Kind:       kind.String(),
		HashLength: hashLength,
	}

	switch kind {
	case asset.KindStyle:
		scoped.Style = &spec.Style
		scoped.Compress = &spec.Compress
	case asset.KindScript:
		scoped.Script = &spec.Script
		scoped.Compress = &spec.Compress
	case asset.KindImage:
		scoped.Image = &spec.Image
	case asset.KindMarkup:
		scoped.Markup = &spec.Markup
		scoped.Compress = &spec.Compress
	}

	encoded, err := codec.Marshal(scoped)
	if err != nil {
		return digest.Digest{}, fmt.Errorf("encoding fingerprint for %s: %w", kind, err)
	}
	return digest.Sum(encoded), nil
}

// Cache maps (logical path, key) to previously computed output
// descriptors. Implementations are safe for concurrent use across
// distinct logical paths; the pipeline guarantees each path is
// touched by exactly one worker per run.
type Cache interface {
	// Lookup returns the stored descriptors for logicalPath if the
	// entry's key matches exactly. A key mismatch is a miss.
	Lookup(logicalPath string, key Key) ([]asset.OutputDescriptor, bool, error)

	// Store records the descriptors computed for logicalPath under
	// key, replacing any previous entry for that path.
	Store(logicalPath string, key Key, descriptors []asset.OutputDescriptor) error

	// Flush persists pending state. Called once at run end.
	Flush() error

	// Close releases backend resources. The cache is unusable
	// afterwards.
	Close() error
}
