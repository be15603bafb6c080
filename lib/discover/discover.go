// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package discover

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/staticforge/staticforge/lib/asset"
	"github.com/staticforge/staticforge/lib/digest"
)

// Skip records one entry that discovery could not include in the run.
type Skip struct {
	// Path is the entry's path relative to the input root (or the
	// root itself for a root-level failure).
	Path string

	// Reason describes why the entry was skipped.
	Reason string
}

// Walker discovers assets under a single input root.
type Walker struct {
	root   string
	logger *slog.Logger
}

// NewWalker creates a Walker for the given input root. The root must
// be an existing directory; that is verified at walk time so that a
// Walker can be constructed before the tree exists.
func NewWalker(root string, logger *slog.Logger) *Walker {
	return &Walker{root: root, logger: logger}
}

// Walk traverses the input root and returns the discovered assets in
// lexical path order, plus the entries that were skipped. Only the
// root being unreadable is a hard error.
func (w *Walker) Walk() ([]asset.Asset, []Skip, error) {
	info, err := os.Stat(w.root)
	if err != nil {
		return nil, nil, fmt.Errorf("input root %s: %w", w.root, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("input root %s is not a directory", w.root)
	}

	var assets []asset.Asset
	var skips []Skip

	skip := func(relPath, reason string) {
		skips = append(skips, Skip{Path: relPath, Reason: reason})
		w.logger.Warn("skipping entry", "path", relPath, "reason", reason)
	}

	walkErr := filepath.WalkDir(w.root, func(path string, entry fs.DirEntry, err error) error {
		relPath, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			relPath = path
		}
		logical := filepath.ToSlash(relPath)

		if err != nil {
			// Unreadable directory or lstat failure: record and keep
			// walking siblings.
			skip(logical, err.Error())
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") && logical != "." {
			if entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if entry.IsDir() {
			return nil
		}

		// WalkDir does not follow symlinks; report them rather than
		// silently dropping, since a symlinked asset is usually a
		// mistake in the source tree.
		if entry.Type()&fs.ModeSymlink != 0 {
			skip(logical, "symlink not followed")
			return nil
		}
		if !entry.Type().IsRegular() {
			skip(logical, "not a regular file")
			return nil
		}

		a, err := w.load(path, logical)
		if err != nil {
			skip(logical, err.Error())
			return nil
		}
		assets = append(assets, a)
		return nil
	})
	if walkErr != nil {
		return nil, skips, fmt.Errorf("walking %s: %w", w.root, walkErr)
	}

	return assets, skips, nil
}

// ReadSource reads the raw bytes of a previously discovered asset.
func (w *Walker) ReadSource(logicalPath string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(w.root, filepath.FromSlash(logicalPath)))
	if err != nil {
		return nil, fmt.Errorf("reading source %s: %w", logicalPath, err)
	}
	return data, nil
}

// load builds the Asset record for one regular file.
func (w *Walker) load(path, logical string) (asset.Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return asset.Asset{}, err
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}

	return asset.Asset{
		LogicalPath:  logical,
		Kind:         asset.Classify(logical, head),
		SourceDigest: digest.Sum(data),
		Size:         int64(len(data)),
	}, nil
}
