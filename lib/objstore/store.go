// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package objstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for names with no stored object.
var ErrNotFound = errors.New("object not found")

// Store is the output store the pipeline publishes artifacts into.
// Implementations must be safe for concurrent use across distinct
// names; puts of the same name may race but always carry equivalent
// bytes (names are content-derived).
type Store interface {
	// Exists reports whether an object is stored under name.
	Exists(ctx context.Context, name string) (bool, error)

	// Put stores data under name. contentType is advisory; backends
	// without object metadata ignore it.
	Put(ctx context.Context, name string, data []byte, contentType string) error

	// Get reads the object stored under name. Returns ErrNotFound
	// (possibly wrapped) when absent.
	Get(ctx context.Context, name string) ([]byte, error)
}
