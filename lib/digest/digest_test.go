// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"strings"
	"testing"
)

func TestSumDeterministic(t *testing.T) {
	a := Sum([]byte("body{color:red}"))
	b := Sum([]byte("body{color:red}"))
	if a != b {
		t.Error("same bytes produced different digests")
	}

	c := Sum([]byte("body{color:blue}"))
	if a == c {
		t.Error("different bytes produced the same digest")
	}
}

func TestSumEmptyPayload(t *testing.T) {
	// BLAKE3 of the empty input, a protocol-level constant.
	const want = "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"
	if got := Sum(nil).Hex(); got != want {
		t.Errorf("Sum(nil).Hex() = %s, want %s", got, want)
	}
}

func TestHexForm(t *testing.T) {
	h := Sum([]byte("payload")).Hex()
	if len(h) != 64 {
		t.Fatalf("hex length = %d, want 64", len(h))
	}
	if h != strings.ToLower(h) {
		t.Error("hex rendering is not lowercase")
	}
}

func TestShortClamping(t *testing.T) {
	d := Sum([]byte("payload"))

	tests := []struct {
		n    int
		want int
	}{
		{0, MinHexLength},
		{4, MinHexLength},
		{12, 12},
		{64, 64},
		{100, MaxHexLength},
	}
	for _, tt := range tests {
		if got := len(d.Short(tt.n)); got != tt.want {
			t.Errorf("Short(%d) length = %d, want %d", tt.n, got, tt.want)
		}
	}

	if !strings.HasPrefix(d.Hex(), d.Short(12)) {
		t.Error("Short is not a prefix of Hex")
	}
}

func TestParseRoundtrip(t *testing.T) {
	d := Sum([]byte("roundtrip"))
	parsed, err := Parse(d.Hex())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed != d {
		t.Error("parsed digest does not match original")
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	if _, err := Parse("zz"); err == nil {
		t.Error("Parse accepted non-hex input")
	}
	if _, err := Parse("abcd"); err == nil {
		t.Error("Parse accepted short input")
	}
}

func TestHashedName(t *testing.T) {
	payload := []byte("body{color:red}")
	short := Sum(payload).Short(12)

	tests := []struct {
		logical string
		want    string
	}{
		{"styles/app.css", "app." + short + ".css"},
		{"app.css", "app." + short + ".css"},
		{"js/vendor/lib.min.js", "lib.min." + short + ".js"},
		{"LICENSE", "LICENSE." + short},
	}
	for _, tt := range tests {
		if got := HashedName(tt.logical, payload, 12); got != tt.want {
			t.Errorf("HashedName(%q) = %q, want %q", tt.logical, got, tt.want)
		}
	}
}

func TestHashedNameTracksContent(t *testing.T) {
	a := HashedName("styles/app.css", []byte("body{color:red}"), 12)
	b := HashedName("styles/app.css", []byte("body{color:blue}"), 12)
	if a == b {
		t.Error("different payloads produced the same hashed name")
	}

	c := HashedName("other/app.css", []byte("body{color:red}"), 12)
	if a != c {
		t.Error("equal payloads with the same basename produced different hashed names")
	}
}
