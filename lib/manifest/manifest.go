// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/staticforge/staticforge/lib/asset"
)

// ErrDuplicateAsset signals two records for the same logical path in
// one run: a discovery defect that would make the manifest
// ambiguous. This aborts the run.
var ErrDuplicateAsset = fmt.Errorf("duplicate asset")

// Entry is one manifest entry: a logical path and its published
// descriptors, in stage output order.
type Entry struct {
	LogicalPath string
	Descriptors []asset.OutputDescriptor

	// sequence is the asset's discovery index. Workers record
	// entries in completion order; Finalize sorts by sequence so
	// the serialized manifest follows discovery order.
	sequence int
}

// Builder accumulates entries as workers finish assets. Safe for
// concurrent use; each logical path is recorded by exactly one
// worker, so contention is only on the internal index.
type Builder struct {
	mu      sync.Mutex
	entries []Entry
	seen    map[string]struct{}
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// Record adds the descriptors for one logical path. sequence is the
// asset's discovery index, used only for serialization order. A
// second record for the same path fails with ErrDuplicateAsset.
func (b *Builder) Record(sequence int, logicalPath string, descriptors []asset.OutputDescriptor) error {
	if len(descriptors) == 0 {
		return fmt.Errorf("recording %s: no descriptors", logicalPath)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, dup := b.seen[logicalPath]; dup {
		return fmt.Errorf("recording %s: %w", logicalPath, ErrDuplicateAsset)
	}
	b.seen[logicalPath] = struct{}{}
	b.entries = append(b.entries, Entry{
		LogicalPath: logicalPath,
		Descriptors: append([]asset.OutputDescriptor(nil), descriptors...),
		sequence:    sequence,
	})
	return nil
}

// Finalize returns the accumulated manifest with entries sorted into
// discovery order. The Builder must not be used after Finalize.
func (b *Builder) Finalize() *Manifest {
	b.mu.Lock()
	defer b.mu.Unlock()
	sort.Slice(b.entries, func(i, j int) bool {
		return b.entries[i].sequence < b.entries[j].sequence
	})
	return &Manifest{entries: b.entries}
}

// Manifest is the finalized mapping from logical paths to output
// descriptors.
type Manifest struct {
	entries []Entry
}

// Len returns the number of entries.
func (m *Manifest) Len() int { return len(m.entries) }

// Entries returns the entries in record order.
func (m *Manifest) Entries() []Entry { return m.entries }

// Lookup returns the descriptors for a logical path.
func (m *Manifest) Lookup(logicalPath string) ([]asset.OutputDescriptor, bool) {
	for _, entry := range m.entries {
		if entry.LogicalPath == logicalPath {
			return entry.Descriptors, true
		}
	}
	return nil, false
}

// MarshalJSON serializes the manifest object with keys in entry
// order. encoding/json's map marshaling sorts keys; the manifest
// preserves discovery order instead, so the object is assembled by
// hand.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range m.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.LogicalPath)
		if err != nil {
			return nil, fmt.Errorf("marshaling key %s: %w", entry.LogicalPath, err)
		}
		buf.Write(key)
		buf.WriteByte(':')

		// Exactly one descriptor serializes as a bare object; fan-out
		// serializes as an array.
		var value any
		if len(entry.Descriptors) == 1 {
			value = entry.Descriptors[0]
		} else {
			value = entry.Descriptors
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshaling entry %s: %w", entry.LogicalPath, err)
		}
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteFile serializes the manifest (pretty-printed) and writes it
// atomically via a temp file and rename. Failure to write the final
// manifest is a run-level error.
func (m *Manifest) WriteFile(path string) error {
	compact, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("serializing manifest: %w", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, compact, "", "  "); err != nil {
		return fmt.Errorf("formatting manifest: %w", err)
	}
	pretty.WriteByte('\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "manifest-*.json")
	if err != nil {
		return fmt.Errorf("creating temp manifest: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(pretty.Bytes()); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing manifest: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming manifest to %s: %w", path, err)
	}
	success = true
	return nil
}
