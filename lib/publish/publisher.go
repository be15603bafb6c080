// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package publish

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/staticforge/staticforge/lib/objstore"
)

// memoSize bounds the in-process memo of names known to exist in the
// store. 4096 entries covers typical asset trees; eviction only
// costs an extra existence probe.
const memoSize = 4096

// Result describes the outcome of one publish call.
type Result struct {
	// Written is true when bytes were actually sent to the store,
	// false when the object already existed.
	Written bool
}

// Publisher performs idempotent writes to an output store. Safe for
// concurrent use.
type Publisher struct {
	store  objstore.Store
	known  *lru.Cache[string, struct{}]
	logger *slog.Logger
}

// NewPublisher creates a Publisher over the given store.
func NewPublisher(store objstore.Store, logger *slog.Logger) *Publisher {
	// lru.New only fails for a non-positive size.
	known, err := lru.New[string, struct{}](memoSize)
	if err != nil {
		panic("publish: LRU initialization failed: " + err.Error())
	}
	return &Publisher{store: store, known: known, logger: logger}
}

// Publish stores data under its hashed name unless an object with
// that name already exists. Concurrent publishes of the same name
// are safe to race: every writer carries equivalent bytes.
func (p *Publisher) Publish(ctx context.Context, hashedName string, data []byte, contentType string) (Result, error) {
	if p.known.Contains(hashedName) {
		return Result{Written: false}, nil
	}

	exists, err := p.store.Exists(ctx, hashedName)
	if err != nil {
		return Result{}, fmt.Errorf("checking %s: %w", hashedName, err)
	}
	if exists {
		p.known.Add(hashedName, struct{}{})
		p.logger.Debug("object already published", "name", hashedName)
		return Result{Written: false}, nil
	}

	if err := p.store.Put(ctx, hashedName, data, contentType); err != nil {
		return Result{}, fmt.Errorf("publishing %s: %w", hashedName, err)
	}
	p.known.Add(hashedName, struct{}{})
	p.logger.Debug("published object", "name", hashedName, "bytes", len(data))
	return Result{Written: true}, nil
}
