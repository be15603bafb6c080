// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/staticforge/staticforge/lib/asset"
	"github.com/staticforge/staticforge/lib/codec"
)

// snapshotVersion guards the snapshot format. A version bump reads
// as an empty cache, which is always safe: every asset just misses.
const snapshotVersion = 1

// snapshot is the on-disk CBOR document.
type snapshot struct {
	Version int                      `cbor:"1,keyasint"`
	Entries map[string]snapshotEntry `cbor:"2,keyasint"`
}

type snapshotEntry struct {
	Key         string                   `cbor:"1,keyasint"`
	Descriptors []asset.OutputDescriptor `cbor:"2,keyasint"`
}

// File is a Cache persisted as a single CBOR snapshot. Entries live
// in a sync.Map during the run so workers insert distinct keys
// without a global exclusive lock; Flush serializes the whole map
// and writes it atomically.
type File struct {
	path    string
	entries sync.Map // logical path -> snapshotEntry
}

// OpenFile loads the snapshot at path. A missing file is a cold
// start (empty cache); a corrupt or version-mismatched file is
// discarded with the same effect.
func OpenFile(path string) (*File, error) {
	f := &File{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache snapshot %s: %w", path, err)
	}

	var snap snapshot
	if err := codec.Unmarshal(data, &snap); err != nil || snap.Version != snapshotVersion {
		// Unreadable state is equivalent to no state.
		return f, nil
	}
	for logical, entry := range snap.Entries {
		f.entries.Store(logical, entry)
	}
	return f, nil
}

// Lookup implements Cache.
func (f *File) Lookup(logicalPath string, key Key) ([]asset.OutputDescriptor, bool, error) {
	value, ok := f.entries.Load(logicalPath)
	if !ok {
		return nil, false, nil
	}
	entry := value.(snapshotEntry)
	if entry.Key != string(key) {
		return nil, false, nil
	}
	return entry.Descriptors, true, nil
}

// Store implements Cache.
func (f *File) Store(logicalPath string, key Key, descriptors []asset.OutputDescriptor) error {
	f.entries.Store(logicalPath, snapshotEntry{
		Key:         string(key),
		Descriptors: append([]asset.OutputDescriptor(nil), descriptors...),
	})
	return nil
}

// Flush implements Cache: serializes the snapshot and writes it via
// temp file and atomic rename.
func (f *File) Flush() error {
	snap := snapshot{Version: snapshotVersion, Entries: map[string]snapshotEntry{}}
	f.entries.Range(func(key, value any) bool {
		snap.Entries[key.(string)] = value.(snapshotEntry)
		return true
	})

	data, err := codec.Marshal(snap)
	if err != nil {
		return fmt.Errorf("serializing cache snapshot: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "cache-*.cbor")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
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
		return fmt.Errorf("writing cache snapshot: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing cache snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("renaming cache snapshot to %s: %w", f.path, err)
	}
	success = true
	return nil
}

// Close implements Cache. The file backend holds no resources
// beyond the in-memory map.
func (f *File) Close() error { return nil }

// Paths returns the cached logical paths in sorted order. Test and
// diagnostic helper.
func (f *File) Paths() []string {
	var paths []string
	f.entries.Range(func(key, _ any) bool {
		paths = append(paths, key.(string))
		return true
	})
	sort.Strings(paths)
	return paths
}
