// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/staticforge/staticforge/lib/asset"
)

// Input is the payload handed to a stage: one asset's raw source
// bytes plus the identifying metadata stages need for diagnostics
// and extension handling.
type Input struct {
	// LogicalPath identifies the asset in errors and warnings.
	LogicalPath string

	// Kind is the asset's classification.
	Kind asset.Kind

	// Data is the raw source payload.
	Data []byte
}

// Output is one payload produced by a stage. The pipeline hashes and
// publishes each output independently.
type Output struct {
	// Label distinguishes sibling outputs of one asset. Empty for
	// the default output.
	Label string

	// Data is the final payload. These are the bytes that get
	// hashed, published, and measured.
	Data []byte

	// Ext is the output filename extension without the leading dot
	// (e.g. "css", "html", "css.gz"). Empty means the source
	// extension is kept.
	Ext string

	// ContentType is the MIME type of Data. Empty means it is
	// derived from the output extension.
	ContentType string

	// Format is the image format name for image variants.
	Format string

	// Width is the pixel width for image variants.
	Width int
}

// Stage transforms one input payload into one or more outputs.
// Implementations must be safe for concurrent use: one Stage value
// is shared by all workers processing assets of the same kind.
type Stage interface {
	// Name identifies the stage in errors and logs.
	Name() string

	// Apply runs the transform. The context bounds any long-running
	// work; stages that complete in microseconds may ignore it.
	Apply(ctx context.Context, in Input) ([]Output, error)
}

// Error wraps a stage failure so the pipeline can classify it as a
// per-asset transform error (asset skipped, run continues).
type Error struct {
	Stage       string
	LogicalPath string
	Err         error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: transforming %s: %v", e.Stage, e.LogicalPath, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// VariantPair is one requested image output: a target format and
// pixel width. Width 0 means the source's native width.
type VariantPair struct {
	// Format is "png", "jpeg", "gif", or "original" (re-encode in
	// the source format).
	Format string `yaml:"format" json:"format"`

	// Width is the target pixel width. Aspect ratio is preserved;
	// upscaling beyond the source width is refused per pair.
	Width int `yaml:"width" json:"width"`
}

// StyleSpec configures stylesheet treatment.
type StyleSpec struct {
	Minify bool `yaml:"minify" json:"minify"`
}

// ScriptSpec configures script treatment.
type ScriptSpec struct {
	Minify bool `yaml:"minify" json:"minify"`
}

// ImageSpec configures image variant fan-out. An empty Variants list
// means images pass through untouched.
type ImageSpec struct {
	Variants []VariantPair `yaml:"variants" json:"variants"`

	// OmitOriginal drops the implicit untouched-original variant
	// that is otherwise always included alongside the requested
	// pairs.
	OmitOriginal bool `yaml:"omit_original" json:"omit_original"`

	// JPEGQuality is the encoder quality for jpeg outputs (1-100).
	// Zero means the encoder default (75).
	JPEGQuality int `yaml:"jpeg_quality" json:"jpeg_quality"`
}

// MarkupSpec configures Markdown handling.
type MarkupSpec struct {
	// Render converts .md sources to hashed .html artifacts. When
	// false, Markdown files pass through like any other asset.
	Render bool `yaml:"render" json:"render"`
}

// CompressSpec configures precompressed sibling outputs for text
// assets (styles, scripts, rendered markup).
type CompressSpec struct {
	Gzip bool `yaml:"gzip" json:"gzip"`
	Zstd bool `yaml:"zstd" json:"zstd"`
}

// Spec is the complete per-kind transform configuration for a run.
// It is read-only during the run; its deterministic encoding is
// folded into cache keys so a config change invalidates exactly the
// entries it affects.
type Spec struct {
	Style    StyleSpec    `yaml:"style" json:"style"`
	Script   ScriptSpec   `yaml:"script" json:"script"`
	Image    ImageSpec    `yaml:"image" json:"image"`
	Markup   MarkupSpec   `yaml:"markup" json:"markup"`
	Compress CompressSpec `yaml:"compress" json:"compress"`
}

// ForAsset selects the stage for an asset kind under the given spec.
// The returned stage is shared across workers; ForAsset itself is
// called once per asset and must stay cheap.
func ForAsset(kind asset.Kind, spec Spec, logger *slog.Logger) Stage {
	var stage Stage = Passthrough{}
	compressible := false

	switch kind {
	case asset.KindStyle:
		if spec.Style.Minify {
			stage = CSSMinify{}
		}
		compressible = true
	case asset.KindScript:
		if spec.Script.Minify {
			stage = JSMinify{}
		}
		compressible = true
	case asset.KindImage:
		if len(spec.Image.Variants) > 0 {
			stage = &ImageVariants{Spec: spec.Image, Logger: logger}
		}
	case asset.KindMarkup:
		if spec.Markup.Render {
			stage = MarkdownRender{}
		}
		compressible = true
	}

	if compressible && (spec.Compress.Gzip || spec.Compress.Zstd) {
		stage = NewPrecompress(stage, spec.Compress)
	}
	return stage
}

// sourceExt returns the logical path's extension without the dot.
func sourceExt(logicalPath string) string {
	for i := len(logicalPath) - 1; i >= 0; i-- {
		switch logicalPath[i] {
		case '.':
			return logicalPath[i+1:]
		case '/':
			return ""
		}
	}
	return ""
}

// Passthrough copies the input through unmodified. The identity
// stage for unrecognized kinds and for kinds whose transforms are
// disabled.
type Passthrough struct{}

// Name implements Stage.
func (Passthrough) Name() string { return "passthrough" }

// Apply implements Stage.
func (Passthrough) Apply(_ context.Context, in Input) ([]Output, error) {
	return []Output{{Data: in.Data}}, nil
}
