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


package core

import (
	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for cacheable pipeline artifacts.
var (
	// ChunkMUS serializes a single Chunk.
	ChunkMUS = chunkMUS{}

	// ChunkSliceMUS serializes an ordered sequence of chunks.
	ChunkSliceMUS = ord.NewSliceSer[Chunk](ChunkMUS)

	// VectorMUS serializes one embedding vector.
	VectorMUS = ord.NewSliceSer[float32](raw.Float32)

	// MatrixMUS serializes an embedding matrix as a slice of row vectors.
	MatrixMUS = ord.NewSliceSer[[]float32](VectorMUS)
)

var metadataMUS = ord.NewMapSer[string, string](ord.String, ord.String)

type chunkMUS struct{}

var _ mus.Serializer[Chunk] = chunkMUS{}

func (s chunkMUS) Marshal(c Chunk, bs []byte) (n int) {
	n = ord.String.Marshal(c.Content, bs)
	n += metadataMUS.Marshal(c.Metadata, bs[n:])
	n += varint.Int.Marshal(c.Index, bs[n:])
	return n
}

func (s chunkMUS) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var n1 int
	c.Content, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	c.Metadata, n1, err = metadataMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Index, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	return
}

func (s chunkMUS) Size(c Chunk) (size int) {
	size = ord.String.Size(c.Content)
	size += metadataMUS.Size(c.Metadata)
	size += varint.Int.Size(c.Index)
	return size
}

func (s chunkMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	n1, err = metadataMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	return
}
