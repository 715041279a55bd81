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


package rerank

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/pkoukk/tiktoken-go"

	"github.com/poiesic/passage/ai"
	"github.com/poiesic/passage/core"
)

const encodingName = "cl100k_base"

// smallBatchThreshold is the candidate count below which everything goes in
// a single call.
const smallBatchThreshold = 5

// Reranker rescores retrieval candidates with a pairwise cross-encoder.
// Batches adapt to passage length so long passages don't blow the scorer's
// context window.
type Reranker struct {
	scorer   ai.PairwiseScorer
	encoding *tiktoken.Tiktoken
	logger   *slog.Logger
}

// Option configures a Reranker.
type Option func(*Reranker)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reranker) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewReranker creates a reranker over the given scorer.
func NewReranker(scorer ai.PairwiseScorer, opts ...Option) (*Reranker, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("loading %s encoding: %w", encodingName, err)
	}

	r := &Reranker{
		scorer:   scorer,
		encoding: encoding,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Rerank rescores the candidates against the query and returns them in
// descending cross-encoder score order. The returned slice is new; the input
// slice and its chunks are not modified. Cross-encoder scores replace the
// fusion scores outright.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []core.ScoredChunk) ([]core.ScoredChunk, error) {
	if len(candidates) == 0 {
		return []core.ScoredChunk{}, nil
	}

	passages := make([]string, len(candidates))
	for i, c := range candidates {
		passages[i] = c.Content
	}

	batchSize := r.batchSize(passages)
	r.logger.Debug("reranking", "candidates", len(candidates), "batch_size", batchSize)

	scores := make([]float64, 0, len(passages))
	for start := 0; start < len(passages); start += batchSize {
		end := start + batchSize
		if end > len(passages) {
			end = len(passages)
		}
		batchScores, err := r.scorer.ScorePairs(ctx, query, passages[start:end])
		if err != nil {
			return nil, fmt.Errorf("scoring batch at %d: %w", start, err)
		}
		if len(batchScores) != end-start {
			return nil, fmt.Errorf("scorer returned %d scores for %d passages", len(batchScores), end-start)
		}
		scores = append(scores, batchScores...)
	}

	reranked := make([]core.ScoredChunk, len(candidates))
	for i, c := range candidates {
		reranked[i] = core.ScoredChunk{Chunk: c.Chunk, Score: scores[i]}
	}

	sort.SliceStable(reranked, func(a, b int) bool {
		return reranked[a].Score > reranked[b].Score
	})
	return reranked, nil
}

// batchSize picks a batch size from the average passage token length.
// Fewer than smallBatchThreshold passages always go in one call.
func (r *Reranker) batchSize(passages []string) int {
	if len(passages) < smallBatchThreshold {
		return len(passages)
	}

	total := 0
	for _, p := range passages {
		total += len(r.encoding.Encode(p, nil, nil))
	}
	avg := total / len(passages)

	var size int
	switch {
	case avg < 256:
		size = 16
	case avg < 512:
		size = 8
	case avg < 1024:
		size = 4
	default:
		size = 2
	}
	if size > len(passages) {
		size = len(passages)
	}
	return size
}
