// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/staticforge/staticforge/lib/asset"
)

// testPNG encodes a width x height gradient as PNG bytes.
func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 11), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test PNG: %v", err)
	}
	return buf.Bytes()
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding variant: %v", err)
	}
	return cfg.Width, cfg.Height
}

func applyVariants(t *testing.T, spec ImageSpec, data []byte) []Output {
	t.Helper()
	stage := &ImageVariants{Spec: spec, Logger: testLogger()}
	outputs, err := stage.Apply(context.Background(), Input{
		LogicalPath: "img/photo.png",
		Kind:        asset.KindImage,
		Data:        data,
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	return outputs
}

func TestImageVariantsFanOut(t *testing.T) {
	source := testPNG(t, 200, 100)
	outputs := applyVariants(t, ImageSpec{
		OmitOriginal: true,
		Variants: []VariantPair{
			{Format: "png", Width: 100},
			{Format: "jpeg", Width: 100},
			{Format: "png", Width: 50},
		},
	}, source)

	if len(outputs) != 3 {
		t.Fatalf("got %d outputs, want 3", len(outputs))
	}

	wantLabels := []string{"png-100", "jpeg-100", "png-50"}
	for i, out := range outputs {
		if out.Label != wantLabels[i] {
			t.Errorf("outputs[%d].Label = %q, want %q", i, out.Label, wantLabels[i])
		}
	}

	// Aspect ratio preserved: 200x100 at width 100 is 100x50.
	w, h := decodeDims(t, outputs[0].Data)
	if w != 100 || h != 50 {
		t.Errorf("png-100 dimensions = %dx%d, want 100x50", w, h)
	}
	w, h = decodeDims(t, outputs[2].Data)
	if w != 50 || h != 25 {
		t.Errorf("png-50 dimensions = %dx%d, want 50x25", w, h)
	}

	if outputs[1].ContentType != "image/jpeg" || outputs[1].Ext != "jpg" {
		t.Errorf("jpeg variant metadata = %q/%q", outputs[1].ContentType, outputs[1].Ext)
	}
}

func TestImageVariantsIncludesOriginal(t *testing.T) {
	source := testPNG(t, 64, 64)
	outputs := applyVariants(t, ImageSpec{
		Variants: []VariantPair{{Format: "jpeg", Width: 32}},
	}, source)

	if len(outputs) != 2 {
		t.Fatalf("got %d outputs, want 2 (original + jpeg-32)", len(outputs))
	}
	if outputs[0].Label != "" {
		t.Errorf("first output label = %q, want empty (original)", outputs[0].Label)
	}
	if !bytes.Equal(outputs[0].Data, source) {
		t.Error("original variant bytes were re-encoded")
	}
	if outputs[0].Format != "png" || outputs[0].Width != 64 {
		t.Errorf("original metadata = %s/%d", outputs[0].Format, outputs[0].Width)
	}
}

func TestImageVariantsSkipsUpscale(t *testing.T) {
	source := testPNG(t, 40, 40)
	outputs := applyVariants(t, ImageSpec{
		OmitOriginal: true,
		Variants: []VariantPair{
			{Format: "png", Width: 400}, // upscale: skipped
			{Format: "png", Width: 20},
		},
	}, source)

	if len(outputs) != 1 {
		t.Fatalf("got %d outputs, want 1", len(outputs))
	}
	if outputs[0].Label != "png-20" {
		t.Errorf("surviving variant = %q, want png-20", outputs[0].Label)
	}
}

func TestImageVariantsAllSkippedFails(t *testing.T) {
	source := testPNG(t, 40, 40)
	stage := &ImageVariants{
		Spec: ImageSpec{
			OmitOriginal: true,
			Variants:     []VariantPair{{Format: "png", Width: 400}},
		},
		Logger: testLogger(),
	}
	_, err := stage.Apply(context.Background(), Input{LogicalPath: "img/a.png", Data: source})
	if err == nil {
		t.Fatal("expected error when no variants survive")
	}
}

func TestImageVariantsMalformedInput(t *testing.T) {
	stage := &ImageVariants{
		Spec:   ImageSpec{Variants: []VariantPair{{Format: "png", Width: 10}}},
		Logger: testLogger(),
	}
	_, err := stage.Apply(context.Background(), Input{
		LogicalPath: "img/broken.png",
		Data:        []byte("not an image"),
	})
	if err == nil {
		t.Fatal("malformed image did not fail")
	}
}

func TestImageVariantsDeterministic(t *testing.T) {
	source := testPNG(t, 120, 80)
	spec := ImageSpec{OmitOriginal: true, Variants: []VariantPair{{Format: "png", Width: 60}}}

	first := applyVariants(t, spec, source)
	second := applyVariants(t, spec, source)
	if !bytes.Equal(first[0].Data, second[0].Data) {
		t.Error("same input and spec produced different variant bytes")
	}
}
