// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cache

import (
	"context"
	"errors"
	"log/slog"
)

// Artifacts provides read-through caching of processing bundles keyed by
// content fingerprint. Cache failures never fail the caller: a read error is
// a miss and a write error is logged and dropped, so the pipeline degrades to
// recomputing instead of erroring.
type Artifacts struct {
	store  Store
	logger *slog.Logger
}

// ArtifactsOption configures an Artifacts cache.
type ArtifactsOption func(*Artifacts)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ArtifactsOption {
	return func(a *Artifacts) {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
	}
}

// NewArtifacts creates an artifact cache over the given store.
func NewArtifacts(store Store, opts ...ArtifactsOption) *Artifacts {
	a := &Artifacts{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Get returns the cached bundle for the fingerprint, or false on a miss.
// Corrupt or unreadable entries are treated as misses.
func (a *Artifacts) Get(ctx context.Context, fingerprint string) (Bundle, bool) {
	data, err := a.store.Get(ctx, fingerprint)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.logger.Warn("artifact read failed, treating as miss", "fingerprint", fingerprint, "err", err)
		}
		return Bundle{}, false
	}

	bundle, err := UnmarshalBundle(data)
	if err != nil {
		a.logger.Warn("corrupt artifact entry, treating as miss", "fingerprint", fingerprint, "err", err)
		return Bundle{}, false
	}

	a.logger.Debug("artifact cache hit", "fingerprint", fingerprint, "chunks", len(bundle.Chunks))
	return bundle, true
}

// Put stores the bundle under the fingerprint. Write failures are logged
// and dropped.
func (a *Artifacts) Put(ctx context.Context, fingerprint string, bundle Bundle) {
	if err := a.store.Put(ctx, fingerprint, MarshalBundle(bundle)); err != nil {
		a.logger.Warn("artifact write failed, continuing without cache", "fingerprint", fingerprint, "err", err)
		return
	}
	a.logger.Debug("artifact cached", "fingerprint", fingerprint, "chunks", len(bundle.Chunks))
}

// Close closes the underlying store.
func (a *Artifacts) Close() error {
	return a.store.Close()
}
