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


// Package passage is a hybrid passage-retrieval engine: documents are
// extracted, chunked, embedded and lexically indexed, then queried with
// fused semantic and lexical ranking refined by a cross-encoder.
package passage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/passage/ai"
	"github.com/poiesic/passage/ai/openai"
	"github.com/poiesic/passage/cache"
	badgerstore "github.com/poiesic/passage/cache/badger"
	"github.com/poiesic/passage/chunk"
	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/extract"
	"github.com/poiesic/passage/index"
	"github.com/poiesic/passage/orchestrate"
	"github.com/poiesic/passage/rerank"
	"github.com/poiesic/passage/retrieve"
	"github.com/poiesic/passage/webfetch"
	"github.com/poiesic/passage/websearch"
)

// Engine wires the full document pipeline behind one lifecycle: extract,
// split, embed, index, cache, retrieve and rerank.
type Engine struct {
	artifacts *cache.Artifacts
	provider  ai.Provider
	indexer   ai.LexicalIndexer
	extractor *extract.Extractor
	splitter  *chunk.Splitter
	retriever *retrieve.Retriever
	reranker  *rerank.Reranker
	fetcher   *webfetch.Fetcher
	modelID   string
	logger    *slog.Logger
}

var _ orchestrate.Pipeline = (*Engine)(nil)

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig     *ai.Config
	provider     ai.Provider
	indexer      ai.LexicalIndexer
	store        cache.Store
	inMemory     bool
	chunkSize    int
	chunkOverlap int
	alpha        float64
	fetchPool    int
	logger       *slog.Logger
}

// WithAIConfig sets the model service configuration used when no explicit
// provider is injected.
func WithAIConfig(cfg *ai.Config) EngineOption {
	return func(o *engineOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithProvider injects a model provider, bypassing the default
// openai-compatible clients.
func WithProvider(provider ai.Provider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithIndexer injects a lexical indexer.
func WithIndexer(indexer ai.LexicalIndexer) EngineOption {
	return func(o *engineOptions) {
		o.indexer = indexer
	}
}

// WithStore injects an artifact store, bypassing the default badger store
// at the engine's cache path.
func WithStore(store cache.Store) EngineOption {
	return func(o *engineOptions) {
		o.store = store
	}
}

// WithInMemoryCache keeps the artifact cache in memory. Useful for tests
// and one-shot runs.
func WithInMemoryCache() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithChunkSize sets the splitter's target span length.
func WithChunkSize(size int) EngineOption {
	return func(o *engineOptions) {
		if size > 0 {
			o.chunkSize = size
		}
	}
}

// WithChunkOverlap sets the splitter's span overlap.
func WithChunkOverlap(overlap int) EngineOption {
	return func(o *engineOptions) {
		if overlap >= 0 {
			o.chunkOverlap = overlap
		}
	}
}

// WithAlpha sets the semantic weight in rank fusion.
func WithAlpha(alpha float64) EngineOption {
	return func(o *engineOptions) {
		o.alpha = alpha
	}
}

// WithFetchPoolSize sets the web fetch worker pool size.
func WithFetchPoolSize(size int) EngineOption {
	return func(o *engineOptions) {
		if size > 0 {
			o.fetchPool = size
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates an engine with its artifact cache at cachePath.
func New(cachePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig:     ai.DefaultConfig(),
		chunkSize:    chunk.DefaultChunkSize,
		chunkOverlap: chunk.DefaultChunkOverlap,
		alpha:        retrieve.DefaultAlpha,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			return nil, fmt.Errorf("creating model provider: %w", err)
		}
	}

	store := options.store
	if store == nil {
		var err error
		store, err = badgerstore.OpenStore(cachePath, options.inMemory)
		if err != nil {
			provider.Close()
			return nil, fmt.Errorf("opening artifact store: %w", err)
		}
	}

	indexer := options.indexer
	if indexer == nil {
		indexer = index.NewIndexer(index.WithLogger(options.logger))
	}

	reranker, err := rerank.NewReranker(provider.Scorer(), rerank.WithLogger(options.logger))
	if err != nil {
		store.Close()
		provider.Close()
		return nil, err
	}

	fetcher, err := webfetch.NewFetcher(options.fetchPool, webfetch.WithLogger(options.logger))
	if err != nil {
		store.Close()
		provider.Close()
		return nil, err
	}

	return &Engine{
		artifacts: cache.NewArtifacts(store, cache.WithLogger(options.logger)),
		provider:  provider,
		indexer:   indexer,
		extractor: extract.NewExtractor(extract.WithLogger(options.logger)),
		splitter: chunk.NewSplitter(
			chunk.WithChunkSize(options.chunkSize),
			chunk.WithChunkOverlap(options.chunkOverlap),
			chunk.WithLogger(options.logger),
		),
		retriever: retrieve.NewRetriever(provider.Embedder(),
			retrieve.WithAlpha(options.alpha),
			retrieve.WithLogger(options.logger)),
		reranker: reranker,
		fetcher:  fetcher,
		modelID:  options.aiConfig.EmbeddingModel,
		logger:   options.logger,
	}, nil
}

// Close releases the engine's resources.
func (e *Engine) Close() error {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing model provider", "err", err)
	}
	e.fetcher.Close()
	if err := e.artifacts.Close(); err != nil {
		e.logger.Error("error closing artifact store", "err", err)
		return err
	}
	return nil
}

// Process turns a raw document into a retrievable bundle: extract, split,
// embed and lexically index. Results are cached by content fingerprint, so
// reprocessing identical bytes with identical parameters skips the model
// calls. The caller owns the returned bundle and should Close it.
func (e *Engine) Process(ctx context.Context, data []byte, kind core.ContentKind) (*cache.Bundle, error) {
	if len(data) == 0 {
		return nil, core.ErrFileRequired
	}

	fingerprint := cache.Fingerprint(data, cache.Params{
		ModelID:      e.modelID,
		ChunkSize:    e.splitter.ChunkSize(),
		ChunkOverlap: e.splitter.ChunkOverlap(),
	})

	if bundle, ok := e.artifacts.Get(ctx, fingerprint); ok {
		lexical, err := e.indexer.Build(ctx, chunkTexts(bundle.Chunks))
		if err != nil {
			return nil, fmt.Errorf("rebuilding lexical index: %w", err)
		}
		bundle.Lexical = lexical
		if err := bundle.Validate(); err != nil {
			lexical.Close()
			return nil, err
		}
		return &bundle, nil
	}

	text, docMeta, err := e.extractor.Extract(ctx, data, kind)
	if err != nil {
		return nil, err
	}

	chunks, err := e.splitter.Split(text, docMeta)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, core.ErrNoContent
	}

	texts := chunkTexts(chunks)
	embeddings, err := e.provider.Embedder().EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding chunks: %w", err)
	}
	for i, row := range embeddings {
		embeddings[i] = core.NormalizeVector(row)
	}

	bundle := cache.Bundle{Chunks: chunks, Embeddings: embeddings}
	if err := bundle.Validate(); err != nil {
		return nil, fmt.Errorf("embedding chunks: %w", err)
	}
	e.artifacts.Put(ctx, fingerprint, bundle)

	lexical, err := e.indexer.Build(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("building lexical index: %w", err)
	}
	bundle.Lexical = lexical
	return &bundle, nil
}

// Retrieve returns the topK chunks of the bundle most relevant to the query
// using fused semantic and lexical ranking.
func (e *Engine) Retrieve(ctx context.Context, query string, bundle *cache.Bundle, topK int) ([]core.ScoredChunk, error) {
	query, err := core.ValidateQuery(query)
	if err != nil {
		return nil, err
	}
	return e.retriever.Retrieve(ctx, query, bundle, topK)
}

// Rerank rescores candidates with the cross-encoder.
func (e *Engine) Rerank(ctx context.Context, query string, candidates []core.ScoredChunk) ([]core.ScoredChunk, error) {
	return e.reranker.Rerank(ctx, query, candidates)
}

// RetrieveDocument runs the full pipeline for one document and query:
// process, retrieve, rerank.
func (e *Engine) RetrieveDocument(ctx context.Context, query string, data []byte, kind core.ContentKind, topK int) (*core.RetrievalResult, error) {
	query, err := core.ValidateQuery(query)
	if err != nil {
		return nil, err
	}

	bundle, err := e.Process(ctx, data, kind)
	if err != nil {
		return nil, err
	}
	defer bundle.Close()

	candidates, err := e.retriever.Retrieve(ctx, query, bundle, topK)
	if err != nil {
		return nil, err
	}

	results, err := e.reranker.Rerank(ctx, query, candidates)
	if err != nil {
		return nil, err
	}

	return &core.RetrievalResult{
		Query:   query,
		Results: results,
		Count:   len(results),
	}, nil
}

// NewOrchestrator creates a web-augmented retrieval orchestrator backed by
// this engine and the given search provider.
func (e *Engine) NewOrchestrator(searcher websearch.Provider, opts ...orchestrate.Option) *Orchestrator {
	merged := append([]orchestrate.Option{orchestrate.WithLogger(e.logger)}, opts...)
	return orchestrate.NewOrchestrator(e, searcher, e.fetcher, merged...)
}

// Orchestrator is re-exported for callers of Engine.NewOrchestrator.
type Orchestrator = orchestrate.Orchestrator

func chunkTexts(chunks []core.Chunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	return texts
}
