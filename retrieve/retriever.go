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


package retrieve

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/poiesic/passage/ai"
	"github.com/poiesic/passage/cache"
	"github.com/poiesic/passage/core"
)

// queryInstruction is prepended to queries before embedding. Retrieval
// models of the bge family are trained with this exact prefix on the query
// side only; passages are embedded bare.
const queryInstruction = "Represent this sentence for searching relevant passages: "

// DefaultTopK is the result count used when the caller passes topK <= 0.
const DefaultTopK = 10

// DefaultAlpha is the semantic weight in rank fusion.
const DefaultAlpha = 0.5

// Retriever scores chunks against a query by fusing semantic and lexical
// rankings.
type Retriever struct {
	embedder ai.Embedder
	alpha    float64
	logger   *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithAlpha sets the semantic weight in [0, 1]. The lexical weight is its
// complement.
func WithAlpha(alpha float64) Option {
	return func(r *Retriever) {
		if alpha >= 0 && alpha <= 1 {
			r.alpha = alpha
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewRetriever creates a hybrid retriever over the given embedder.
func NewRetriever(embedder ai.Embedder, opts ...Option) *Retriever {
	r := &Retriever{
		embedder: embedder,
		alpha:    DefaultAlpha,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns the topK chunks most relevant to the query.
//
// Semantic and lexical candidate lists are computed independently, min-max
// normalized into [0, 1], and fused as alpha*semantic + (1-alpha)*lexical
// with a missing contribution counting as zero. Result order is descending
// fused score; ties keep candidate discovery order.
func (r *Retriever) Retrieve(ctx context.Context, query string, bundle *cache.Bundle, topK int) ([]core.ScoredChunk, error) {
	if bundle == nil || bundle.Chunks == nil || bundle.Embeddings == nil || bundle.Lexical == nil {
		return nil, core.ErrMissingIndex
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > len(bundle.Chunks) {
		topK = len(bundle.Chunks)
	}
	if topK == 0 {
		return []core.ScoredChunk{}, nil
	}

	semantic, err := r.semanticHits(ctx, query, bundle, topK)
	if err != nil {
		return nil, err
	}

	lexical, err := bundle.Lexical.ScoreQuery(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("lexical retrieval: %w", err)
	}

	fused := fuse(semantic, lexical, r.alpha)

	r.logger.Debug("hybrid retrieval",
		"semantic_hits", len(semantic),
		"lexical_hits", len(lexical),
		"fused", len(fused))

	if len(fused) > topK {
		fused = fused[:topK]
	}

	results := make([]core.ScoredChunk, len(fused))
	for i, f := range fused {
		results[i] = core.ScoredChunk{
			Chunk: bundle.Chunks[f.Index],
			Score: f.Score,
		}
	}
	return results, nil
}

// semanticHits embeds the instructed query and ranks chunks by dot product.
// Embeddings are unit-normalized, so dot product equals cosine similarity.
func (r *Retriever) semanticHits(ctx context.Context, query string, bundle *cache.Bundle, topK int) ([]ai.LexicalHit, error) {
	vector, err := r.embedder.EmbedText(ctx, queryInstruction+query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	vector = core.NormalizeVector(vector)

	hits := make([]ai.LexicalHit, len(bundle.Embeddings))
	for i, row := range bundle.Embeddings {
		hits[i] = ai.LexicalHit{Index: i, Score: float64(core.DotProduct(vector, row))}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// minMaxNormalize maps scores into [0, 1]. When all scores are equal every
// entry becomes 1.0, which keeps a single-hit list from zeroing out.
func minMaxNormalize(hits []ai.LexicalHit) map[int]float64 {
	normalized := make(map[int]float64, len(hits))
	if len(hits) == 0 {
		return normalized
	}

	lo, hi := hits[0].Score, hits[0].Score
	for _, h := range hits[1:] {
		if h.Score < lo {
			lo = h.Score
		}
		if h.Score > hi {
			hi = h.Score
		}
	}

	for _, h := range hits {
		if hi == lo {
			normalized[h.Index] = 1.0
		} else {
			normalized[h.Index] = (h.Score - lo) / (hi - lo)
		}
	}
	return normalized
}

// fuse combines normalized semantic and lexical scores over the union of
// candidates. Union order is semantic hits first, then lexical-only hits,
// and the final stable sort preserves that order among equal scores.
func fuse(semantic, lexical []ai.LexicalHit, alpha float64) []ai.LexicalHit {
	semScores := minMaxNormalize(semantic)
	lexScores := minMaxNormalize(lexical)

	union := make([]int, 0, len(semantic)+len(lexical))
	seen := make(map[int]bool, len(semantic)+len(lexical))
	for _, h := range semantic {
		if !seen[h.Index] {
			seen[h.Index] = true
			union = append(union, h.Index)
		}
	}
	for _, h := range lexical {
		if !seen[h.Index] {
			seen[h.Index] = true
			union = append(union, h.Index)
		}
	}

	fused := make([]ai.LexicalHit, len(union))
	for i, idx := range union {
		fused[i] = ai.LexicalHit{
			Index: idx,
			Score: alpha*semScores[idx] + (1-alpha)*lexScores[idx],
		}
	}

	sort.SliceStable(fused, func(a, b int) bool {
		return fused[a].Score > fused[b].Score
	})
	return fused
}
