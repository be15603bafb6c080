// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package objstore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func newTestDir(t *testing.T) *Dir {
	t.Helper()
	store, err := NewDir(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatalf("NewDir failed: %v", err)
	}
	return store
}

func TestDirRoundtrip(t *testing.T) {
	store := newTestDir(t)
	ctx := context.Background()
	payload := []byte("body{color:red}")

	exists, err := store.Exists(ctx, "app.3f9a1c2b4d5e.css")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("object exists before Put")
	}

	if err := store.Put(ctx, "app.3f9a1c2b4d5e.css", payload, "text/css"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	exists, err = store.Exists(ctx, "app.3f9a1c2b4d5e.css")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("object missing after Put")
	}

	data, err := store.Get(ctx, "app.3f9a1c2b4d5e.css")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("Get = %q, want %q", data, payload)
	}
}

func TestDirGetMissing(t *testing.T) {
	store := newTestDir(t)
	_, err := store.Get(context.Background(), "absent.css")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get of missing object = %v, want ErrNotFound", err)
	}
}

func TestDirPutIdempotent(t *testing.T) {
	store := newTestDir(t)
	ctx := context.Background()
	payload := []byte("payload")

	for i := 0; i < 3; i++ {
		if err := store.Put(ctx, "blob.aabbccddeeff", payload, ""); err != nil {
			t.Fatalf("Put %d failed: %v", i, err)
		}
	}

	data, err := store.Get(ctx, "blob.aabbccddeeff")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Error("repeated Put corrupted the object")
	}
}

func TestDirPutLeavesNoTempFiles(t *testing.T) {
	store := newTestDir(t)
	ctx := context.Background()

	for i := byte(0); i < 10; i++ {
		if err := store.Put(ctx, string(rune('a'+i))+".css", []byte{i}, "text/css"); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(store.Root(), tmpDir))
	if err != nil {
		t.Fatalf("reading staging dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("%d stale temp files left behind", len(entries))
	}
}

func TestDirRejectsEscapingNames(t *testing.T) {
	store := newTestDir(t)
	ctx := context.Background()

	for _, name := range []string{"", ".", "..", "a/b.css", `a\b.css`} {
		if err := store.Put(ctx, name, []byte("x"), ""); err == nil {
			t.Errorf("Put accepted invalid name %q", name)
		}
		if _, err := store.Get(ctx, name); err == nil {
			t.Errorf("Get accepted invalid name %q", name)
		}
	}
}

func TestDirConcurrentSameName(t *testing.T) {
	store := newTestDir(t)
	ctx := context.Background()
	payload := []byte("identical bytes from every writer")

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.Put(ctx, "shared.001122334455.bin", payload, "")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("writer %d failed: %v", i, err)
		}
	}

	data, err := store.Get(ctx, "shared.001122334455.bin")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Error("racing writers corrupted the object")
	}
}
