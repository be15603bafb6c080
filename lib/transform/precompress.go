// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"bytes"
	"context"
	"fmt"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Precompress wraps another stage and adds gzip and/or zstd siblings
// for each of its outputs, so servers can send precompressed bodies
// without compressing at request time. A sibling is only emitted
// when it is actually smaller than the uncompressed payload.
type Precompress struct {
	inner   Stage
	gzip    bool
	zstd    bool
	encoder *zstd.Encoder
}

// NewPrecompress wraps inner with the configured encodings.
func NewPrecompress(inner Stage, spec CompressSpec) *Precompress {
	p := &Precompress{inner: inner, gzip: spec.Gzip, zstd: spec.Zstd}
	if spec.Zstd {
		// EncodeAll on a shared encoder is safe for concurrent use.
		// Construction only fails for invalid options; the defaults
		// plus a concurrency cap cannot fail.
		p.encoder, _ = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
			zstd.WithEncoderConcurrency(1))
	}
	return p
}

// Name implements Stage.
func (p *Precompress) Name() string { return p.inner.Name() + "+precompress" }

// Apply implements Stage.
func (p *Precompress) Apply(ctx context.Context, in Input) ([]Output, error) {
	outputs, err := p.inner.Apply(ctx, in)
	if err != nil {
		return nil, err
	}

	ext := func(out Output) string {
		if out.Ext != "" {
			return out.Ext
		}
		return sourceExt(in.LogicalPath)
	}

	siblings := make([]Output, 0, 2*len(outputs))
	for _, out := range outputs {
		if p.gzip {
			compressed, err := gzipBytes(out.Data)
			if err != nil {
				return nil, &Error{Stage: "precompress", LogicalPath: in.LogicalPath, Err: err}
			}
			if len(compressed) < len(out.Data) {
				siblings = append(siblings, Output{
					Label:       joinLabel(out.Label, "gzip"),
					Data:        compressed,
					Ext:         ext(out) + ".gz",
					ContentType: "application/gzip",
				})
			}
		}
		if p.zstd {
			compressed := p.encoder.EncodeAll(out.Data, nil)
			if len(compressed) < len(out.Data) {
				siblings = append(siblings, Output{
					Label:       joinLabel(out.Label, "zstd"),
					Data:        compressed,
					Ext:         ext(out) + ".zst",
					ContentType: "application/zstd",
				})
			}
		}
	}
	return append(outputs, siblings...), nil
}

// gzipBytes compresses data at the maximum gzip level. Precompressed
// assets are written once and served many times, so encode cost does
// not matter.
func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("gzip writer: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("gzip write: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("gzip close: %w", err)
	}
	return buf.Bytes(), nil
}

func joinLabel(base, suffix string) string {
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
