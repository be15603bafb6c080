// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/staticforge/staticforge/lib/transform"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "staticforge.yaml", `
input: assets
hash_length: 16
concurrency: 4
store:
  backend: dir
  output: dist
transform:
  style:
    minify: false
  image:
    variants:
      - format: png
        width: 480
      - format: jpeg
        width: 960
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Input != "assets" || cfg.HashLength != 16 || cfg.Concurrency != 4 {
		t.Errorf("top-level fields = %q %d %d", cfg.Input, cfg.HashLength, cfg.Concurrency)
	}
	if cfg.Store.Output != "dist" {
		t.Errorf("store.output = %q", cfg.Store.Output)
	}
	if cfg.Transform.Style.Minify {
		t.Error("style.minify override lost")
	}
	// Defaults survive where the file is silent.
	if !cfg.Transform.Script.Minify {
		t.Error("script.minify default lost")
	}
	if len(cfg.Transform.Image.Variants) != 2 || cfg.Transform.Image.Variants[1].Width != 960 {
		t.Errorf("variants = %+v", cfg.Transform.Image.Variants)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config invalid: %v", err)
	}
}

func TestLoadJSONC(t *testing.T) {
	path := writeConfig(t, "staticforge.jsonc", `{
	// build inputs
	"input": "web",
	"store": {"backend": "dir", "output": "out"}, // trailing comment
}`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Input != "web" || cfg.Store.Output != "out" {
		t.Errorf("parsed %q %q", cfg.Input, cfg.Store.Output)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing config file did not error")
	}
}

func TestVariableExpansion(t *testing.T) {
	t.Setenv("SF_TEST_SECRET", "hunter2")
	t.Setenv("SF_TEST_EMPTY", "")

	path := writeConfig(t, "staticforge.yaml", `
store:
  backend: s3
  s3:
    endpoint: minio.internal:9000
    bucket: assets
    access_key: ${SF_TEST_EMPTY:-anonymous}
    secret_key: ${SF_TEST_SECRET}
cache:
  path: ${SF_TEST_EMPTY:-/tmp}/cache.cbor
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Store.S3.SecretKey != "hunter2" {
		t.Errorf("secret_key = %q", cfg.Store.S3.SecretKey)
	}
	if cfg.Store.S3.AccessKey != "anonymous" {
		t.Errorf("access_key = %q", cfg.Store.S3.AccessKey)
	}
	if cfg.Cache.Path != "/tmp/cache.cbor" {
		t.Errorf("cache.path = %q", cfg.Cache.Path)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Input = ""
	cfg.HashLength = 4
	cfg.Store.Backend = "ftp"
	cfg.Cache.Backend = "redis"
	cfg.Transform.Image.Variants = []transform.VariantPair{
		{Format: "webp", Width: 100},
		{Format: "png", Width: -1},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid config passed validation")
	}
	msg := err.Error()
	for _, want := range []string{
		"input is required",
		"hash_length",
		"store.backend",
		"cache.backend",
		"variants[0]",
		"variants[1]",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error missing %q:\n%s", want, msg)
		}
	}
}

func TestValidateS3RequiresCredentials(t *testing.T) {
	cfg := Default()
	cfg.Store.Backend = StoreS3
	cfg.Store.S3.Endpoint = "minio.internal:9000"
	cfg.Store.S3.Bucket = "assets"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "access_key") {
		t.Errorf("missing credentials not reported: %v", err)
	}
}

func TestValidateAcceptsOriginalVariant(t *testing.T) {
	cfg := Default()
	cfg.Transform.Image.Variants = []transform.VariantPair{{Format: "original", Width: 640}}
	if err := cfg.Validate(); err != nil {
		t.Errorf("original variant rejected: %v", err)
	}
}

func TestWorkers(t *testing.T) {
	cfg := Default()
	cfg.Concurrency = 3
	if got := cfg.Workers(); got != 3 {
		t.Errorf("Workers() = %d", got)
	}
	cfg.Concurrency = 0
	if got := cfg.Workers(); got < 1 {
		t.Errorf("Workers() with zero concurrency = %d", got)
	}
}
