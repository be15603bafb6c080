// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package objstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// tmpDir is the staging directory inside the store root. Writes land
// here first and reach their final name by atomic rename, so readers
// never observe a partially written object.
const tmpDir = ".tmp"

// Dir is a local-filesystem Store rooted at a single directory. The
// namespace is flat: object names map directly to filenames.
type Dir struct {
	root string
}

// NewDir creates a Dir store rooted at the given directory, creating
// it (and its staging subdirectory) if needed.
func NewDir(root string) (*Dir, error) {
	for _, dir := range []string{root, filepath.Join(root, tmpDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory %s: %w", dir, err)
		}
	}
	return &Dir{root: root}, nil
}

// Root returns the store's root directory.
func (d *Dir) Root() string { return d.root }

// Exists implements Store.
func (d *Dir) Exists(_ context.Context, name string) (bool, error) {
	path, err := d.objectPath(name)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", name, err)
	}
	return true, nil
}

// Put implements Store. The write goes through a temp file and an
// atomic rename. If the final name already exists the temp file is
// discarded: the existing object is identical by construction.
func (d *Dir) Put(_ context.Context, name string, data []byte, _ string) error {
	finalPath, err := d.objectPath(name)
	if err != nil {
		return err
	}

	if _, err := os.Stat(finalPath); err == nil {
		return nil
	}

	tmpFile, err := os.CreateTemp(filepath.Join(d.root, tmpDir), "put-*")
	if err != nil {
		return fmt.Errorf("creating temp object file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing object %s: %w", name, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing object %s: %w", name, err)
	}

	// Lost the race to another writer carrying the same bytes: the
	// existing object wins, nothing to do.
	if _, err := os.Stat(finalPath); err == nil {
		os.Remove(tmpPath)
		success = true
		return nil
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("renaming object to %s: %w", finalPath, err)
	}
	success = true
	return nil
}

// Get implements Store.
func (d *Dir) Get(_ context.Context, name string) ([]byte, error) {
	path, err := d.objectPath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("reading object %s: %w", name, err)
	}
	return data, nil
}

// objectPath validates an object name and returns its filesystem
// path. Names are single flat path elements; anything that could
// escape the root is rejected.
func (d *Dir) objectPath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return filepath.Join(d.root, name), nil
}
