// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/staticforge/staticforge/lib/asset"
	"github.com/staticforge/staticforge/lib/codec"
)

// SQLite is a Cache backed by a sqlite database. Unlike the file
// backend it persists entries as they are stored, so an interrupted
// run keeps the work it completed.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if necessary) the cache database at
// path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database %s: %w", path, err)
	}

	// database/sql pools connections; sqlite wants a single writer.
	db.SetMaxOpenConns(1)

	const schema = `
		CREATE TABLE IF NOT EXISTS entries (
			logical_path TEXT PRIMARY KEY,
			cache_key    TEXT NOT NULL,
			descriptors  BLOB NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Lookup implements Cache.
func (s *SQLite) Lookup(logicalPath string, key Key) ([]asset.OutputDescriptor, bool, error) {
	var storedKey string
	var blob []byte
	err := s.db.QueryRow(
		`SELECT cache_key, descriptors FROM entries WHERE logical_path = ?`,
		logicalPath,
	).Scan(&storedKey, &blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup %s: %w", logicalPath, err)
	}
	if storedKey != string(key) {
		return nil, false, nil
	}

	var descriptors []asset.OutputDescriptor
	if err := codec.Unmarshal(blob, &descriptors); err != nil {
		// A corrupt row is a miss, not a failure: the pipeline will
		// recompute and overwrite it.
		return nil, false, nil
	}
	return descriptors, true, nil
}

// Store implements Cache.
func (s *SQLite) Store(logicalPath string, key Key, descriptors []asset.OutputDescriptor) error {
	blob, err := codec.Marshal(descriptors)
	if err != nil {
		return fmt.Errorf("encoding descriptors for %s: %w", logicalPath, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO entries (logical_path, cache_key, descriptors) VALUES (?, ?, ?)
		 ON CONFLICT(logical_path) DO UPDATE SET cache_key = excluded.cache_key, descriptors = excluded.descriptors`,
		logicalPath, string(key), blob,
	)
	if err != nil {
		return fmt.Errorf("cache store %s: %w", logicalPath, err)
	}
	return nil
}

// Flush implements Cache. Writes are durable as they happen.
func (s *SQLite) Flush() error { return nil }

// Close implements Cache.
func (s *SQLite) Close() error { return s.db.Close() }
