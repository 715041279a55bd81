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
	"fmt"

	"github.com/poiesic/passage/ai"
	"github.com/poiesic/passage/core"
)

// Bundle holds the output of document processing: the chunks, their embedding
// rows in matching order, and the lexical index over the chunk texts. Only
// chunks and embeddings are serialized; the lexical index is rebuilt
// deterministically from the chunk texts after a cache load.
type Bundle struct {
	Chunks     []core.Chunk
	Embeddings [][]float32
	Lexical    ai.LexicalIndex
}

// Validate checks the structural invariants of a bundle.
func (b Bundle) Validate() error {
	if len(b.Chunks) != len(b.Embeddings) {
		return fmt.Errorf("bundle mismatch: %d chunks, %d embedding rows", len(b.Chunks), len(b.Embeddings))
	}
	if b.Lexical != nil && b.Lexical.DocCount() != len(b.Chunks) {
		return fmt.Errorf("bundle mismatch: %d chunks, %d indexed documents", len(b.Chunks), b.Lexical.DocCount())
	}
	if len(b.Embeddings) > 0 {
		dim := len(b.Embeddings[0])
		for i, row := range b.Embeddings {
			if len(row) != dim {
				return fmt.Errorf("bundle embedding row %d has dimension %d, want %d", i, len(row), dim)
			}
		}
	}
	return nil
}

// Close releases the lexical index, if any.
func (b *Bundle) Close() error {
	if b.Lexical != nil {
		return b.Lexical.Close()
	}
	return nil
}

// MarshalBundle serializes a bundle using the MUS format.
func MarshalBundle(b Bundle) []byte {
	size := core.ChunkSliceMUS.Size(b.Chunks) + core.MatrixMUS.Size(b.Embeddings)
	bs := make([]byte, size)
	n := core.ChunkSliceMUS.Marshal(b.Chunks, bs)
	core.MatrixMUS.Marshal(b.Embeddings, bs[n:])
	return bs
}

// UnmarshalBundle deserializes a bundle and validates its invariants.
func UnmarshalBundle(bs []byte) (Bundle, error) {
	var b Bundle

	chunks, n, err := core.ChunkSliceMUS.Unmarshal(bs)
	if err != nil {
		return b, fmt.Errorf("unmarshaling bundle chunks: %w", err)
	}
	embeddings, _, err := core.MatrixMUS.Unmarshal(bs[n:])
	if err != nil {
		return b, fmt.Errorf("unmarshaling bundle embeddings: %w", err)
	}

	b.Chunks = chunks
	b.Embeddings = embeddings
	if err := b.Validate(); err != nil {
		return Bundle{}, err
	}
	return b, nil
}
