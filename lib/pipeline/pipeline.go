// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/staticforge/staticforge/lib/asset"
	"github.com/staticforge/staticforge/lib/cache"
	"github.com/staticforge/staticforge/lib/digest"
	"github.com/staticforge/staticforge/lib/discover"
	"github.com/staticforge/staticforge/lib/manifest"
	"github.com/staticforge/staticforge/lib/objstore"
	"github.com/staticforge/staticforge/lib/publish"
	"github.com/staticforge/staticforge/lib/transform"
)

// Phase names a pipeline step for failure classification.
type Phase string

const (
	PhaseRead      Phase = "read"
	PhaseTransform Phase = "transform"
	PhasePublish   Phase = "publish"
)

// Failure records one asset that could not be carried through to the
// manifest. The run continues past it.
type Failure struct {
	LogicalPath string
	Phase       Phase
	Err         error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %s: %v", f.LogicalPath, f.Phase, f.Err)
}

// Stats counts what one run did.
type Stats struct {
	Discovered  int
	Skipped     int
	CacheHits   int64
	Transformed int64
	Published   int64
	Reused      int64
	Failed      int
}

// Result is the outcome of a run.
type Result struct {
	Manifest *manifest.Manifest
	Skips    []discover.Skip
	Failures []Failure
	Stats    Stats

	// Incomplete is true when cancellation stopped the run before
	// every discovered asset was processed. The manifest covers only
	// the assets that finished.
	Incomplete bool
}

// Options configures an Orchestrator.
type Options struct {
	// Workers bounds the transform pool. Values below one are
	// treated as one.
	Workers int

	// HashLength is the truncated digest length in published names.
	HashLength int

	// Spec is the per-kind transform configuration.
	Spec transform.Spec
}

// Orchestrator runs the build pipeline. Construct with New; one
// Orchestrator performs one run at a time.
type Orchestrator struct {
	walker    *discover.Walker
	store     objstore.Store
	publisher *publish.Publisher
	cache     cache.Cache
	opts      Options
	logger    *slog.Logger
}

// New assembles an Orchestrator from its collaborators.
func New(walker *discover.Walker, store objstore.Store, c cache.Cache, opts Options, logger *slog.Logger) *Orchestrator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Orchestrator{
		walker:    walker,
		store:     store,
		publisher: publish.NewPublisher(store, logger),
		cache:     c,
		opts:      opts,
		logger:    logger,
	}
}

// job is one discovered asset plus its discovery index, which fixes
// its position in the serialized manifest.
type job struct {
	sequence int
	asset    asset.Asset
}

// Run executes one full build. The returned error is run-level
// (discovery root failure, duplicate logical path); per-asset
// problems surface in Result.Failures instead.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	assets, skips, err := o.walker.Walk()
	if err != nil {
		return nil, err
	}

	result := &Result{Skips: skips}
	result.Stats.Discovered = len(assets)
	result.Stats.Skipped = len(skips)

	fingerprints, err := o.fingerprints(assets)
	if err != nil {
		return nil, err
	}
	stages := o.stages(assets)

	// Workers drain from here; the sender stops on cancellation so
	// a slow transform never blocks shutdown.
	jobs := make(chan job)
	builder := manifest.NewBuilder()

	var (
		mu       sync.Mutex
		failures []Failure
	)
	var processed atomic.Int64

	// A duplicate logical path makes the manifest ambiguous and
	// aborts the whole run.
	runCtx, cancelRun := context.WithCancelCause(ctx)
	defer cancelRun(nil)

	var wg sync.WaitGroup
	for i := 0; i < o.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				descriptors, failure := o.process(runCtx, j.asset, fingerprints[j.asset.Kind], stages[j.asset.Kind], &result.Stats)
				if failure != nil {
					mu.Lock()
					failures = append(failures, *failure)
					mu.Unlock()
					processed.Add(1)
					continue
				}
				if err := builder.Record(j.sequence, j.asset.LogicalPath, descriptors); err != nil {
					if errors.Is(err, manifest.ErrDuplicateAsset) {
						cancelRun(err)
						return
					}
					mu.Lock()
					failures = append(failures, Failure{LogicalPath: j.asset.LogicalPath, Phase: PhasePublish, Err: err})
					mu.Unlock()
				}
				processed.Add(1)
			}
		}()
	}

send:
	for i, a := range assets {
		select {
		case jobs <- job{sequence: i, asset: a}:
		case <-runCtx.Done():
			break send
		}
	}
	close(jobs)
	wg.Wait()

	if cause := context.Cause(runCtx); cause != nil && errors.Is(cause, manifest.ErrDuplicateAsset) {
		return nil, cause
	}

	result.Failures = failures
	result.Stats.Failed = len(failures)
	result.Incomplete = runCtx.Err() != nil && int(processed.Load()) < len(assets)
	result.Manifest = builder.Finalize()

	// The cache is an optimization: a failed flush costs the next
	// run time, not correctness.
	if err := o.cache.Flush(); err != nil {
		o.logger.Warn("cache flush failed", "error", err)
	}

	o.logger.Info("run complete",
		"discovered", result.Stats.Discovered,
		"skipped", result.Stats.Skipped,
		"cache_hits", result.Stats.CacheHits,
		"transformed", result.Stats.Transformed,
		"published", result.Stats.Published,
		"reused", result.Stats.Reused,
		"failed", result.Stats.Failed,
		"incomplete", result.Incomplete)
	return result, nil
}

// fingerprints computes the per-kind configuration fingerprint for
// every kind present in the asset list.
func (o *Orchestrator) fingerprints(assets []asset.Asset) (map[asset.Kind]digest.Digest, error) {
	fps := make(map[asset.Kind]digest.Digest)
	for _, a := range assets {
		if _, done := fps[a.Kind]; done {
			continue
		}
		fp, err := cache.Fingerprint(a.Kind, o.opts.Spec, o.opts.HashLength)
		if err != nil {
			return nil, fmt.Errorf("fingerprinting kind %s: %w", a.Kind, err)
		}
		fps[a.Kind] = fp
	}
	return fps, nil
}

// stages builds the shared stage instance for every kind present.
func (o *Orchestrator) stages(assets []asset.Asset) map[asset.Kind]transform.Stage {
	stages := make(map[asset.Kind]transform.Stage)
	for _, a := range assets {
		if _, done := stages[a.Kind]; done {
			continue
		}
		stages[a.Kind] = transform.ForAsset(a.Kind, o.opts.Spec, o.logger)
	}
	return stages
}

// process carries one asset from cache lookup through publication and
// returns its manifest descriptors.
func (o *Orchestrator) process(ctx context.Context, a asset.Asset, fingerprint digest.Digest, stage transform.Stage, stats *Stats) ([]asset.OutputDescriptor, *Failure) {
	key := cache.NewKey(a.SourceDigest, fingerprint)

	if descriptors, ok := o.cachedAndPresent(ctx, a, key); ok {
		atomic.AddInt64(&stats.CacheHits, 1)
		o.logger.Debug("cache hit", "asset", a.LogicalPath)
		return descriptors, nil
	}

	data, err := o.walker.ReadSource(a.LogicalPath)
	if err != nil {
		return nil, &Failure{LogicalPath: a.LogicalPath, Phase: PhaseRead, Err: err}
	}

	outputs, err := stage.Apply(ctx, transform.Input{
		LogicalPath: a.LogicalPath,
		Kind:        a.Kind,
		Data:        data,
	})
	if err != nil {
		return nil, &Failure{LogicalPath: a.LogicalPath, Phase: PhaseTransform, Err: err}
	}
	atomic.AddInt64(&stats.Transformed, 1)

	descriptors := make([]asset.OutputDescriptor, 0, len(outputs))
	for _, out := range outputs {
		name := outputName(a.LogicalPath, out, o.opts.HashLength)
		contentType := out.ContentType
		if contentType == "" {
			contentType = asset.ContentType(name, out.Data)
		}

		published, err := o.publisher.Publish(ctx, name, out.Data, contentType)
		if err != nil {
			return nil, &Failure{LogicalPath: a.LogicalPath, Phase: PhasePublish, Err: err}
		}
		if published.Written {
			atomic.AddInt64(&stats.Published, 1)
		} else {
			atomic.AddInt64(&stats.Reused, 1)
		}

		descriptors = append(descriptors, asset.OutputDescriptor{
			File:        name,
			Label:       out.Label,
			ContentType: contentType,
			Size:        int64(len(out.Data)),
			Format:      out.Format,
			Width:       out.Width,
		})
	}

	if err := o.cache.Store(a.LogicalPath, key, descriptors); err != nil {
		o.logger.Warn("cache store failed", "asset", a.LogicalPath, "error", err)
	}
	return descriptors, nil
}

// cachedAndPresent returns the cached descriptors for an asset when
// the entry is valid and every published object still exists in the
// store. A wiped or partially wiped output store reads as a miss, so
// the asset is rebuilt instead of the manifest referencing objects
// that are gone.
func (o *Orchestrator) cachedAndPresent(ctx context.Context, a asset.Asset, key cache.Key) ([]asset.OutputDescriptor, bool) {
	descriptors, hit, err := o.cache.Lookup(a.LogicalPath, key)
	if err != nil {
		o.logger.Warn("cache lookup failed", "asset", a.LogicalPath, "error", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	for _, d := range descriptors {
		exists, err := o.store.Exists(ctx, d.File)
		if err != nil || !exists {
			return nil, false
		}
	}
	return descriptors, true
}

// outputName derives the published name for one stage output. The
// stem comes from the logical path; the extension is the output's
// own when the stage set one (rendered markup, image variants,
// compressed siblings), otherwise the source extension.
func outputName(logicalPath string, out transform.Output, hexLength int) string {
	if out.Ext == "" {
		return digest.HashedName(logicalPath, out.Data, hexLength)
	}
	base := path.Base(logicalPath)
	stem := strings.TrimSuffix(base, path.Ext(base))
	return stem + "." + digest.Sum(out.Data).Short(hexLength) + "." + out.Ext
}
