// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package asset

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/staticforge/staticforge/lib/digest"
)

// Kind classifies an asset by the transform treatment it receives.
type Kind uint8

const (
	// KindOther is the default classification: passthrough treatment.
	KindOther Kind = iota

	// KindStyle is a CSS stylesheet.
	KindStyle

	// KindScript is a JavaScript source.
	KindScript

	// KindImage is a raster image eligible for variant fan-out.
	KindImage

	// KindMarkup is a Markdown document rendered to HTML.
	KindMarkup
)

// String returns the human-readable kind name used in config keys,
// logs, and cache fingerprints.
func (k Kind) String() string {
	switch k {
	case KindStyle:
		return "style"
	case KindScript:
		return "script"
	case KindImage:
		return "image"
	case KindMarkup:
		return "markup"
	case KindOther:
		return "other"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// ParseKind parses a kind from its string name.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "style":
		return KindStyle, nil
	case "script":
		return KindScript, nil
	case "image":
		return KindImage, nil
	case "markup":
		return KindMarkup, nil
	case "other":
		return KindOther, nil
	default:
		return 0, fmt.Errorf("unknown asset kind: %q", name)
	}
}

// Kinds lists every kind in fingerprint order. The order is a
// protocol constant: it feeds the cache fingerprint encoding.
func Kinds() []Kind {
	return []Kind{KindOther, KindStyle, KindScript, KindImage, KindMarkup}
}

// kindByExtension maps lowercase extensions (without the dot) to
// kinds. Extensions not listed here classify as KindOther.
var kindByExtension = map[string]Kind{
	"css":  KindStyle,
	"js":   KindScript,
	"mjs":  KindScript,
	"png":  KindImage,
	"jpg":  KindImage,
	"jpeg": KindImage,
	"gif":  KindImage,
	"webp": KindImage,
	"avif": KindImage,
	"md":   KindMarkup,
}

// Classify determines the kind of a file from its logical path, with
// a content sniff fallback for extensionless files. head should be
// the first bytes of the file (up to 512 are considered).
func Classify(logicalPath string, head []byte) Kind {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(logicalPath)), ".")
	if ext != "" {
		if kind, ok := kindByExtension[ext]; ok {
			return kind
		}
		return KindOther
	}

	// No extension: sniff. Only image types are recognizable this way
	// with any confidence; text sniffing cannot distinguish CSS from
	// plain text.
	switch sniffed := http.DetectContentType(head); sniffed {
	case "image/png", "image/jpeg", "image/gif", "image/webp":
		return KindImage
	}
	return KindOther
}

// Asset is one discovered source file. Immutable after discovery.
type Asset struct {
	// LogicalPath is the stable source-relative identifier, always
	// forward-slash separated.
	LogicalPath string

	// Kind selects the transform treatment.
	Kind Kind

	// SourceDigest is the BLAKE3 digest of the raw source bytes. It
	// anchors cache validity: any source change produces a new digest
	// and invalidates prior results.
	SourceDigest digest.Digest

	// Size is the raw source size in bytes.
	Size int64
}

// OutputDescriptor describes one published artifact derived from an
// asset. An asset produces one descriptor for most kinds; images and
// precompression fan out to several.
type OutputDescriptor struct {
	// File is the hashed output name (e.g. "app.3f9a1c2b4d5e.css").
	File string `json:"file" cbor:"1,keyasint"`

	// Label distinguishes variants under one logical path. Empty for
	// the default output; "webp-480" style for image variants; the
	// encoding name for precompressed siblings.
	Label string `json:"label,omitempty" cbor:"2,keyasint,omitempty"`

	// ContentType is the MIME type of the published bytes.
	ContentType string `json:"contentType" cbor:"3,keyasint"`

	// Size is the published payload size in bytes.
	Size int64 `json:"size" cbor:"4,keyasint"`

	// Format is the image format for image variants, empty otherwise.
	Format string `json:"format,omitempty" cbor:"5,keyasint,omitempty"`

	// Width is the image pixel width for image variants, 0 otherwise.
	Width int `json:"width,omitempty" cbor:"6,keyasint,omitempty"`
}

// contentTypeByExtension maps lowercase extensions to MIME types for
// the formats the pipeline produces or passes through. Files outside
// this table publish as application/octet-stream.
var contentTypeByExtension = map[string]string{
	"css":   "text/css",
	"js":    "text/javascript",
	"mjs":   "text/javascript",
	"html":  "text/html",
	"md":    "text/markdown",
	"txt":   "text/plain",
	"json":  "application/json",
	"svg":   "image/svg+xml",
	"png":   "image/png",
	"jpg":   "image/jpeg",
	"jpeg":  "image/jpeg",
	"gif":   "image/gif",
	"webp":  "image/webp",
	"avif":  "image/avif",
	"ico":   "image/x-icon",
	"woff":  "font/woff",
	"woff2": "font/woff2",
	"ttf":   "font/ttf",
	"otf":   "font/otf",
	"gz":    "application/gzip",
	"zst":   "application/zstd",
}

// ContentType returns the MIME type for a filename based on its
// extension, falling back to a sniff of head and finally to
// application/octet-stream.
func ContentType(name string, head []byte) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	if ct, ok := contentTypeByExtension[ext]; ok {
		return ct
	}
	if len(head) > 0 {
		// DetectContentType never returns an empty string; its
		// fallback is application/octet-stream already.
		return http.DetectContentType(head)
	}
	return "application/octet-stream"
}
