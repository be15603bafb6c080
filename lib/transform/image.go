// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"

	"golang.org/x/image/draw"

	// WebP decodes via x/image; there is no pure-Go WebP encoder,
	// so webp is decode-only. png/jpeg/gif register their decoders
	// through the named imports above.
	_ "golang.org/x/image/webp"
)

// EncodeFormats lists the image formats the pipeline can produce.
// Config validation rejects variant pairs outside this set (plus the
// "original" alias).
var EncodeFormats = []string{"png", "jpeg", "gif"}

// FormatOriginal is the variant format alias meaning "re-encode in
// the source image's own format".
const FormatOriginal = "original"

// ImageVariants fans one raster image out into the configured
// (format, width) variants. Aspect ratio is preserved. A pair that
// would upscale beyond the source resolution is skipped with a
// warning rather than failing the asset. The untouched original
// bytes are included as the default variant unless configured off.
type ImageVariants struct {
	Spec   ImageSpec
	Logger *slog.Logger
}

// Name implements Stage.
func (s *ImageVariants) Name() string { return "image-variants" }

// Apply implements Stage.
func (s *ImageVariants) Apply(ctx context.Context, in Input) ([]Output, error) {
	src, srcFormat, err := image.Decode(bytes.NewReader(in.Data))
	if err != nil {
		return nil, &Error{Stage: "image-variants", LogicalPath: in.LogicalPath, Err: err}
	}

	bounds := src.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	var outputs []Output

	if !s.Spec.OmitOriginal {
		// The default variant is the source bytes untouched: no
		// re-encode, so re-runs cannot drift by encoder version.
		outputs = append(outputs, Output{
			Data:        in.Data,
			Format:      srcFormat,
			Width:       srcWidth,
			ContentType: asContentType(srcFormat),
			Ext:         "", // keep the source extension
		})
	}

	for _, pair := range s.Spec.Variants {
		if err := ctx.Err(); err != nil {
			return nil, &Error{Stage: "image-variants", LogicalPath: in.LogicalPath, Err: err}
		}

		format := pair.Format
		if format == FormatOriginal {
			format = srcFormat
		}
		if !encodable(format) {
			// srcFormat can be webp/avif via "original"; those have
			// no encoder. Explicit formats are rejected at config
			// validation, so this only triggers for "original".
			s.Logger.Warn("no encoder for source format, skipping variant",
				"asset", in.LogicalPath, "format", format, "width", pair.Width)
			continue
		}

		width := pair.Width
		if width == 0 {
			width = srcWidth
		}
		if width > srcWidth {
			s.Logger.Warn("variant would upscale, skipping",
				"asset", in.LogicalPath, "format", format,
				"width", width, "source_width", srcWidth)
			continue
		}

		scaled := scale(src, width, srcWidth, srcHeight)
		encoded, err := s.encode(scaled, format)
		if err != nil {
			return nil, &Error{Stage: "image-variants", LogicalPath: in.LogicalPath, Err: err}
		}

		outputs = append(outputs, Output{
			Label:       fmt.Sprintf("%s-%d", format, width),
			Data:        encoded,
			Format:      format,
			Width:       width,
			ContentType: asContentType(format),
			Ext:         formatExt(format),
		})
	}

	if len(outputs) == 0 {
		return nil, &Error{
			Stage:       "image-variants",
			LogicalPath: in.LogicalPath,
			Err:         fmt.Errorf("no variants produced: original omitted and all %d pairs skipped", len(s.Spec.Variants)),
		}
	}
	return outputs, nil
}

// scale resizes src to the target width, preserving aspect ratio.
// Returns src itself when no resize is needed.
func scale(src image.Image, width, srcWidth, srcHeight int) image.Image {
	if width == srcWidth {
		return src
	}
	height := (width*srcHeight + srcWidth/2) / srcWidth
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// encode serializes an image in the given format.
func (s *ImageVariants) encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		quality := s.Spec.JPEGQuality
		if quality == 0 {
			quality = jpeg.DefaultQuality
		}
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = fmt.Errorf("no encoder for format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

func encodable(format string) bool {
	for _, f := range EncodeFormats {
		if f == format {
			return true
		}
	}
	return false
}

// formatExt returns the conventional filename extension for an
// encodable format.
func formatExt(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}

// asContentType maps an image format name to its MIME type.
func asContentType(format string) string {
	switch format {
	case "png":
		return "image/png"
	case "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "avif":
		return "image/avif"
	default:
		return "application/octet-stream"
	}
}
