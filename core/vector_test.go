package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVector(t *testing.T) {
	t.Run("unit length result", func(t *testing.T) {
		v := NormalizeVector([]float32{3, 4})
		assert.InDelta(t, 0.6, v[0], 1e-6)
		assert.InDelta(t, 0.8, v[1], 1e-6)

		var mag float64
		for _, x := range v {
			mag += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(mag), 1e-6)
	})

	t.Run("zero vector stays zero", func(t *testing.T) {
		v := NormalizeVector([]float32{0, 0, 0})
		assert.Equal(t, []float32{0, 0, 0}, v)
	})

	t.Run("empty vector", func(t *testing.T) {
		assert.Empty(t, NormalizeVector(nil))
	})
}

func TestDotProduct(t *testing.T) {
	assert.InDelta(t, 1.0, float64(DotProduct([]float32{1, 0}, []float32{1, 0})), 1e-6)
	assert.InDelta(t, 0.0, float64(DotProduct([]float32{1, 0}, []float32{0, 1})), 1e-6)
	assert.InDelta(t, 0.5, float64(DotProduct([]float32{0.5, 0.5}, []float32{1, 0})), 1e-6)

	t.Run("dimension mismatch scores zero", func(t *testing.T) {
		assert.Equal(t, float32(0), DotProduct([]float32{1, 1, 1}, []float32{1, 1}))
		assert.Equal(t, float32(0), DotProduct(nil, []float32{1}))
	})
}

func TestChunkMUSRoundTrip(t *testing.T) {
	chunk := Chunk{
		Content: "This is a sample chunk.",
		Metadata: map[string]string{
			MetaChunkIndex:  "0",
			MetaTotalChunks: "2",
			MetaTitle:       "Test",
		},
		Index: 0,
	}

	buf := make([]byte, ChunkMUS.Size(chunk))
	n := ChunkMUS.Marshal(chunk, buf)
	require.Equal(t, len(buf), n)

	decoded, n, err := ChunkMUS.Unmarshal(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	assert.Equal(t, chunk, decoded)
}

func TestMatrixMUSRoundTrip(t *testing.T) {
	matrix := [][]float32{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}}

	buf := make([]byte, MatrixMUS.Size(matrix))
	MatrixMUS.Marshal(matrix, buf)

	decoded, _, err := MatrixMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, matrix, decoded)
}
