// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

// staticforge builds a directory of static assets into a
// content-addressed output store plus a manifest mapping source
// paths to published names.
//
// Usage:
//
//	staticforge run [flags]
//	staticforge version
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/staticforge/staticforge/lib/cache"
	"github.com/staticforge/staticforge/lib/config"
	"github.com/staticforge/staticforge/lib/discover"
	"github.com/staticforge/staticforge/lib/objstore"
	"github.com/staticforge/staticforge/lib/pipeline"
	"github.com/staticforge/staticforge/lib/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// A .env next to the config keeps S3 credentials out of both
	// the config file and the shell profile. Absence is fine.
	_ = godotenv.Load()

	logLevel := slog.LevelInfo
	if os.Getenv("STATICFORGE_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	options := &slog.HandlerOptions{Level: logLevel}

	// Text logs for a terminal, JSON when piped into something.
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	logger := slog.New(handler)

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "run":
		err = runCmd(args, logger)
	case "version", "--version", "-v":
		fmt.Printf("staticforge %s\n", version.Info())
		return
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`staticforge - Content-addressed static asset builds

USAGE
    staticforge <command> [flags]

COMMANDS
    run       Build the asset tree and write the manifest
    version   Show version

RUN FLAGS
    --config        Path to staticforge.yaml (or .json/.jsonc)
    --input         Override the input root
    --output        Override the dir store output directory
    --concurrency   Override the worker count
    --manifest      Override the manifest path

EXAMPLES
    # Build ./assets into ./public with defaults
    staticforge run --input=assets --output=public

    # Build with an explicit config
    staticforge run --config=staticforge.yaml

ENVIRONMENT
    STATICFORGE_CONFIG   Config path used when --config is not given
    STATICFORGE_DEBUG    Enable debug logging
`)
}

func runCmd(args []string, logger *slog.Logger) error {
	var (
		configPath   string
		input        string
		output       string
		concurrency  int
		manifestPath string
	)

	flagSet := pflag.NewFlagSet("staticforge run", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to config file")
	flagSet.StringVar(&input, "input", "", "input root (overrides config)")
	flagSet.StringVar(&output, "output", "", "dir store output directory (overrides config)")
	flagSet.IntVar(&concurrency, "concurrency", 0, "worker count (overrides config)")
	flagSet.StringVar(&manifestPath, "manifest", "", "manifest path (overrides config)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if input != "" {
		cfg.Input = input
	}
	if output != "" {
		cfg.Store.Output = output
	}
	if concurrency > 0 {
		cfg.Concurrency = concurrency
	}
	if manifestPath != "" {
		cfg.ManifestPath = manifestPath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	buildCache, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer buildCache.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orch := pipeline.New(discover.NewWalker(cfg.Input, logger), store, buildCache, pipeline.Options{
		Workers:    cfg.Workers(),
		HashLength: cfg.HashLength,
		Spec:       cfg.Transform,
	}, logger)

	result, err := orch.Run(ctx)
	if err != nil {
		return err
	}

	if err := result.Manifest.WriteFile(resolveManifestPath(cfg)); err != nil {
		return err
	}

	for _, failure := range result.Failures {
		logger.Error("asset failed", "asset", failure.LogicalPath, "phase", string(failure.Phase), "error", failure.Err)
	}
	if result.Incomplete {
		return errors.New("run interrupted before all assets were processed")
	}
	if len(result.Failures) > 0 {
		return fmt.Errorf("%d of %d assets failed", len(result.Failures), result.Stats.Discovered)
	}
	return nil
}

// loadConfig resolves the run configuration: an explicit --config
// path, then STATICFORGE_CONFIG, then built-in defaults.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	if os.Getenv("STATICFORGE_CONFIG") != "" {
		return config.Load()
	}
	return config.Default(), nil
}

func openStore(cfg *config.Config) (objstore.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreS3:
		return objstore.NewS3(objstore.S3Config{
			Endpoint:  cfg.Store.S3.Endpoint,
			Region:    cfg.Store.S3.Region,
			Bucket:    cfg.Store.S3.Bucket,
			AccessKey: cfg.Store.S3.AccessKey,
			SecretKey: cfg.Store.S3.SecretKey,
			UseSSL:    cfg.Store.S3.UseSSL,
		})
	default:
		return objstore.NewDir(cfg.Store.Output)
	}
}

func openCache(cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheSQLite:
		return cache.OpenSQLite(cfg.Cache.Path)
	default:
		return cache.OpenFile(cfg.Cache.Path)
	}
}

// resolveManifestPath anchors a relative manifest path at the dir
// store's output directory so "manifest.json" lands next to the
// published objects. With the s3 backend the configured path is used
// as-is; validation requires it to be usable locally.
func resolveManifestPath(cfg *config.Config) string {
	if filepath.IsAbs(cfg.ManifestPath) || cfg.Store.Backend != config.StoreDir {
		return cfg.ManifestPath
	}
	return filepath.Join(cfg.Store.Output, cfg.ManifestPath)
}
