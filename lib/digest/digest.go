// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"encoding/hex"
	"fmt"
	"path"
	"strings"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 hash of an artifact payload.
type Digest [32]byte

// Length bounds for the truncated hex form embedded in filenames.
// Eight hex characters (32 bits) is the floor below which accidental
// collisions across a large asset tree stop being negligible; 64 is
// the full digest width.
const (
	MinHexLength     = 8
	MaxHexLength     = 64
	DefaultHexLength = 12
)

// Sum computes the BLAKE3-256 digest of data. Deterministic across
// platforms: the same bytes always produce the same digest.
func Sum(data []byte) Digest {
	return blake3.Sum256(data)
}

// Hex returns the full 64-character lowercase hex rendering.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// Short returns the first n hex characters of the digest. n is
// clamped to [MinHexLength, MaxHexLength].
func (d Digest) Short(n int) string {
	if n < MinHexLength {
		n = MinHexLength
	}
	if n > MaxHexLength {
		n = MaxHexLength
	}
	return d.Hex()[:n]
}

// Parse parses a full 64-character hex string into a Digest.
func Parse(hexString string) (Digest, error) {
	var d Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return d, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != len(d) {
		return d, fmt.Errorf("digest is %d bytes, want %d", len(decoded), len(d))
	}
	copy(d[:], decoded)
	return d, nil
}

// HashedName derives the published filename for a payload:
// "<base>.<short-digest>.<ext>" where base and ext come from the
// logical path's final element. The directory part of the logical
// path is discarded: the output store namespace is flat, keyed by
// content. A file without an extension hashes to "<base>.<short>".
func HashedName(logicalPath string, payload []byte, hexLength int) string {
	base := path.Base(logicalPath)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	short := Sum(payload).Short(hexLength)
	if ext == "" {
		return stem + "." + short
	}
	return stem + "." + short + ext
}
