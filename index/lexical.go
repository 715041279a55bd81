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


package index

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/blevesearch/bleve"

	"github.com/poiesic/passage/ai"
)

// Indexer builds in-memory lexical indexes over chunk texts.
// It implements ai.LexicalIndexer.
type Indexer struct {
	logger *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
	}
}

// NewIndexer creates a lexical indexer.
func NewIndexer(opts ...Option) *Indexer {
	ix := &Indexer{logger: slog.Default()}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Build indexes the texts in order and returns a queryable index.
// Document identity is ordinal position, so rebuilding from the same
// texts always yields an equivalent index.
func (ix *Indexer) Build(ctx context.Context, texts []string) (ai.LexicalIndex, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating lexical index: %w", err)
	}

	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			_ = idx.Close()
			return nil, err
		}
		doc := map[string]string{"content": text}
		if err := idx.Index(strconv.Itoa(i), doc); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("indexing document %d: %w", i, err)
		}
	}

	ix.logger.Debug("built lexical index", "documents", len(texts))
	return &lexical{idx: idx, count: len(texts), logger: ix.logger}, nil
}

// lexical is a bleve-backed ai.LexicalIndex.
type lexical struct {
	idx    bleve.Index
	count  int
	logger *slog.Logger
}

func (l *lexical) ScoreQuery(ctx context.Context, query string, topK int) ([]ai.LexicalHit, error) {
	if topK <= 0 || l.count == 0 {
		return nil, nil
	}

	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, topK, 0, false)

	res, err := l.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("lexical query: %w", err)
	}

	hits := make([]ai.LexicalHit, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ordinal, err := strconv.Atoi(hit.ID)
		if err != nil {
			l.logger.Warn("skipping hit with non-ordinal id", "id", hit.ID)
			continue
		}
		hits = append(hits, ai.LexicalHit{Index: ordinal, Score: hit.Score})
	}
	return hits, nil
}

func (l *lexical) DocCount() int {
	return l.count
}

func (l *lexical) Close() error {
	return l.idx.Close()
}
