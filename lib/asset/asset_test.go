// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package asset

import (
	"strings"
	"testing"
)

func TestClassifyByExtension(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"styles/app.css", KindStyle},
		{"js/app.js", KindScript},
		{"js/app.mjs", KindScript},
		{"img/logo.png", KindImage},
		{"img/photo.JPG", KindImage},
		{"img/photo.jpeg", KindImage},
		{"img/anim.gif", KindImage},
		{"img/hero.webp", KindImage},
		{"img/hero.avif", KindImage},
		{"docs/readme.md", KindMarkup},
		{"data/config.json", KindOther},
		{"fonts/inter.woff2", KindOther},
		{"notes.txt", KindOther},
	}
	for _, tt := range tests {
		if got := Classify(tt.path, nil); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestClassifySniffsExtensionless(t *testing.T) {
	// Minimal PNG signature.
	pngHead := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
	if got := Classify("images/favicon", pngHead); got != KindImage {
		t.Errorf("Classify(png header) = %v, want KindImage", got)
	}

	if got := Classify("LICENSE", []byte("Apache License")); got != KindOther {
		t.Errorf("Classify(text) = %v, want KindOther", got)
	}
}

func TestKindStringRoundtrip(t *testing.T) {
	for _, kind := range Kinds() {
		parsed, err := ParseKind(kind.String())
		if err != nil {
			t.Fatalf("ParseKind(%q) failed: %v", kind.String(), err)
		}
		if parsed != kind {
			t.Errorf("ParseKind(%q) = %v, want %v", kind.String(), parsed, kind)
		}
	}

	if _, err := ParseKind("video"); err == nil {
		t.Error("ParseKind accepted an unknown kind")
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"app.3f9a1c2b4d5e.css", "text/css"},
		{"app.3f9a1c2b4d5e.js", "text/javascript"},
		{"logo.3f9a1c2b4d5e.png", "image/png"},
		{"photo.3f9a1c2b4d5e.jpg", "image/jpeg"},
		{"page.3f9a1c2b4d5e.html", "text/html"},
		{"app.3f9a1c2b4d5e.css.gz", "application/gzip"},
		{"app.3f9a1c2b4d5e.css.zst", "application/zstd"},
	}
	for _, tt := range tests {
		if got := ContentType(tt.name, nil); got != tt.want {
			t.Errorf("ContentType(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestContentTypeFallback(t *testing.T) {
	if got := ContentType("blob.bin", nil); got != "application/octet-stream" {
		t.Errorf("ContentType(no head) = %q, want application/octet-stream", got)
	}

	got := ContentType("notes.unknownext", []byte("plain text content"))
	if !strings.HasPrefix(got, "text/plain") {
		t.Errorf("ContentType(sniffed text) = %q, want text/plain prefix", got)
	}
}
