// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/staticforge/staticforge/lib/transform"
)

// Store backend names accepted in store.backend.
const (
	StoreDir = "dir"
	StoreS3  = "s3"
)

// Cache backend names accepted in cache.backend.
const (
	CacheFile   = "file"
	CacheSQLite = "sqlite"
)

// Config is the complete configuration for a pipeline run.
type Config struct {
	// Input is the root directory scanned for source assets.
	Input string `yaml:"input" json:"input"`

	// HashLength is the number of hex characters of the content
	// digest embedded in published names. Clamped to [8, 64].
	HashLength int `yaml:"hash_length" json:"hash_length"`

	// Concurrency bounds the transform worker pool. Zero means one
	// worker per CPU.
	Concurrency int `yaml:"concurrency" json:"concurrency"`

	// ManifestPath is where the manifest document is written.
	// Relative paths resolve against the dir store's output
	// directory; with the s3 store an absolute path is required.
	ManifestPath string `yaml:"manifest_path" json:"manifest_path"`

	// Store configures where published artifacts land.
	Store StoreConfig `yaml:"store" json:"store"`

	// Cache configures incremental-build state.
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Transform configures per-kind asset treatment.
	Transform transform.Spec `yaml:"transform" json:"transform"`
}

// StoreConfig selects and configures the artifact store backend.
type StoreConfig struct {
	// Backend is "dir" or "s3".
	Backend string `yaml:"backend" json:"backend"`

	// Output is the flat output directory for the dir backend.
	Output string `yaml:"output" json:"output"`

	// S3 configures the s3 backend. Ignored for dir.
	S3 S3Config `yaml:"s3" json:"s3"`
}

// S3Config carries the settings for an S3-compatible object store.
// Credential fields usually reference environment variables via
// ${VAR} expansion so secrets stay out of the config file.
type S3Config struct {
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	Region    string `yaml:"region" json:"region"`
	Bucket    string `yaml:"bucket" json:"bucket"`
	AccessKey string `yaml:"access_key" json:"access_key"`
	SecretKey string `yaml:"secret_key" json:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl" json:"use_ssl"`
}

// CacheConfig selects and configures the incremental cache backend.
type CacheConfig struct {
	// Backend is "file" or "sqlite".
	Backend string `yaml:"backend" json:"backend"`

	// Path is the cache file or database location.
	Path string `yaml:"path" json:"path"`
}

// Default returns the configuration used when no file is given:
// current-directory input, a dir store in ./public, a CBOR file
// cache, and minification on for styles and scripts.
func Default() *Config {
	return &Config{
		Input:        ".",
		HashLength:   12,
		Concurrency:  0,
		ManifestPath: "manifest.json",
		Store: StoreConfig{
			Backend: StoreDir,
			Output:  "public",
			S3: S3Config{
				Region: "us-east-1",
				UseSSL: true,
			},
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			Path:    filepath.Join(".staticforge", "cache.cbor"),
		},
		Transform: transform.Spec{
			Style:  transform.StyleSpec{Minify: true},
			Script: transform.ScriptSpec{Minify: true},
		},
	}
}

// Load loads configuration from the STATICFORGE_CONFIG environment
// variable. It fails when the variable is unset; pass --config for
// an explicit path instead.
func Load() (*Config, error) {
	path := os.Getenv("STATICFORGE_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("STATICFORGE_CONFIG environment variable not set; " +
			"set it to your staticforge.yaml path, or use the --config flag")
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path, merging over Default.
// YAML is the primary format; .json and .jsonc files are parsed as
// JSON with comments and trailing commas permitted.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in every path
// and credential field.
func (c *Config) expandVariables() {
	c.Input = expandVars(c.Input)
	c.ManifestPath = expandVars(c.ManifestPath)
	c.Store.Output = expandVars(c.Store.Output)
	c.Store.S3.Endpoint = expandVars(c.Store.S3.Endpoint)
	c.Store.S3.Bucket = expandVars(c.Store.S3.Bucket)
	c.Store.S3.AccessKey = expandVars(c.Store.S3.AccessKey)
	c.Store.S3.SecretKey = expandVars(c.Store.S3.SecretKey)
	c.Cache.Path = expandVars(c.Cache.Path)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// Workers resolves Concurrency to an effective worker count.
func (c *Config) Workers() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return runtime.NumCPU()
}

// Validate checks the configuration and reports every problem at
// once rather than stopping at the first.
func (c *Config) Validate() error {
	var errs []error

	if c.Input == "" {
		errs = append(errs, fmt.Errorf("input is required"))
	}
	if c.HashLength < 8 || c.HashLength > 64 {
		errs = append(errs, fmt.Errorf("hash_length must be between 8 and 64, got %d", c.HashLength))
	}
	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency))
	}
	if c.ManifestPath == "" {
		errs = append(errs, fmt.Errorf("manifest_path is required"))
	}

	switch c.Store.Backend {
	case StoreDir:
		if c.Store.Output == "" {
			errs = append(errs, fmt.Errorf("store.output is required for the dir backend"))
		}
	case StoreS3:
		if c.Store.S3.Endpoint == "" {
			errs = append(errs, fmt.Errorf("store.s3.endpoint is required for the s3 backend"))
		}
		if c.Store.S3.Bucket == "" {
			errs = append(errs, fmt.Errorf("store.s3.bucket is required for the s3 backend"))
		}
		if c.Store.S3.AccessKey == "" || c.Store.S3.SecretKey == "" {
			errs = append(errs, fmt.Errorf("store.s3.access_key and store.s3.secret_key are required for the s3 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend must be %q or %q, got %q", StoreDir, StoreS3, c.Store.Backend))
	}

	switch c.Cache.Backend {
	case CacheFile, CacheSQLite:
		if c.Cache.Path == "" {
			errs = append(errs, fmt.Errorf("cache.path is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be %q or %q, got %q", CacheFile, CacheSQLite, c.Cache.Backend))
	}

	for i, pair := range c.Transform.Image.Variants {
		if !validVariantFormat(pair.Format) {
			errs = append(errs, fmt.Errorf("transform.image.variants[%d]: format %q is not encodable (want one of %s, or %q)",
				i, pair.Format, strings.Join(transform.EncodeFormats, ", "), transform.FormatOriginal))
		}
		if pair.Width < 0 {
			errs = append(errs, fmt.Errorf("transform.image.variants[%d]: width must not be negative, got %d", i, pair.Width))
		}
	}
	if jq := c.Transform.Image.JPEGQuality; jq < 0 || jq > 100 {
		errs = append(errs, fmt.Errorf("transform.image.jpeg_quality must be between 0 and 100, got %d", jq))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func validVariantFormat(format string) bool {
	if format == transform.FormatOriginal {
		return true
	}
	for _, known := range transform.EncodeFormats {
		if format == known {
			return true
		}
	}
	return false
}
