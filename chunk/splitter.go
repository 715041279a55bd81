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


package chunk

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/poiesic/passage/core"
)

const (
	// DefaultChunkSize is the target span length in characters.
	DefaultChunkSize = 500
	// DefaultChunkOverlap is the character overlap between adjacent spans.
	DefaultChunkOverlap = 50
)

// separators are tried in order, preferring paragraph and sentence
// boundaries before falling back to word and character splits.
var separators = []string{"\n\n", "\n", ". ", "—", ", ", " ", ""}

// Splitter divides extracted text into overlapping spans sized for
// embedding, preferring natural boundaries.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	splitter     textsplitter.RecursiveCharacter
	logger       *slog.Logger
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithChunkSize sets the target span length in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithChunkOverlap sets the overlap between adjacent spans in characters.
func WithChunkOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.chunkOverlap = overlap
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Splitter) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewSplitter creates a text splitter with the given options.
func NewSplitter(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.splitter = textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.chunkSize),
		textsplitter.WithChunkOverlap(s.chunkOverlap),
		textsplitter.WithSeparators(separators),
	)
	return s
}

// ChunkSize returns the configured target span length.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// ChunkOverlap returns the configured span overlap.
func (s *Splitter) ChunkOverlap() int { return s.chunkOverlap }

// Split divides text into chunks, attaching the document metadata plus
// positional chunk_index and total_chunks entries to each.
// Empty input yields zero chunks.
func (s *Splitter) Split(text string, docMeta map[string]string) ([]core.Chunk, error) {
	if text == "" {
		return nil, nil
	}

	spans, err := s.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("splitting text: %w", err)
	}

	s.logger.Debug("split text", "chars", len(text), "chunks", len(spans))

	total := strconv.Itoa(len(spans))
	chunks := make([]core.Chunk, len(spans))
	for i, span := range spans {
		metadata := make(map[string]string, len(docMeta)+2)
		for k, v := range docMeta {
			metadata[k] = v
		}
		metadata[core.MetaChunkIndex] = strconv.Itoa(i)
		metadata[core.MetaTotalChunks] = total
		chunks[i] = core.Chunk{
			Content:  span,
			Metadata: metadata,
			Index:    i,
		}
	}
	return chunks, nil
}
