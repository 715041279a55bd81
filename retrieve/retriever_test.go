package retrieve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/passage/ai"
	"github.com/poiesic/passage/ai/mock"
	"github.com/poiesic/passage/cache"
	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/index"
)

func buildBundle(t *testing.T, texts []string) *cache.Bundle {
	t.Helper()
	ctx := context.Background()

	embedder := mock.NewMockEmbedder()
	embeddings, err := embedder.EmbedTexts(ctx, texts)
	require.NoError(t, err)

	lexical, err := index.NewIndexer().Build(ctx, texts)
	require.NoError(t, err)
	t.Cleanup(func() { lexical.Close() })

	chunks := make([]core.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = core.Chunk{Content: text, Metadata: map[string]string{}, Index: i}
	}
	return &cache.Bundle{Chunks: chunks, Embeddings: embeddings, Lexical: lexical}
}

func TestRetrieveSampleChunks(t *testing.T) {
	bundle := buildBundle(t, []string{
		"This is a sample chunk.",
		"Another sample chunk.",
	})

	r := NewRetriever(mock.NewMockEmbedder())
	results, err := r.Retrieve(context.Background(), "sample query", bundle, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for i, res := range results {
		assert.GreaterOrEqual(t, res.Score, 0.0, "result %d", i)
		assert.LessOrEqual(t, res.Score, 1.0, "result %d", i)
		assert.NotEmpty(t, res.Content)
	}
	// Descending order.
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestRetrieveMissingComponents(t *testing.T) {
	r := NewRetriever(mock.NewMockEmbedder())
	ctx := context.Background()

	t.Run("nil bundle", func(t *testing.T) {
		_, err := r.Retrieve(ctx, "query", nil, 10)
		assert.True(t, errors.Is(err, core.ErrMissingIndex))
	})

	t.Run("nil lexical index", func(t *testing.T) {
		bundle := buildBundle(t, []string{"text"})
		bundle.Lexical = nil
		_, err := r.Retrieve(ctx, "query", bundle, 10)
		assert.True(t, errors.Is(err, core.ErrMissingIndex))
	})

	t.Run("nil embeddings", func(t *testing.T) {
		bundle := buildBundle(t, []string{"text"})
		bundle.Embeddings = nil
		_, err := r.Retrieve(ctx, "query", bundle, 10)
		assert.True(t, errors.Is(err, core.ErrMissingIndex))
	})
}

func TestRetrieveTopKClamp(t *testing.T) {
	bundle := buildBundle(t, []string{
		"alpha text one", "beta text two", "gamma text three",
	})
	r := NewRetriever(mock.NewMockEmbedder())

	t.Run("topK above corpus size", func(t *testing.T) {
		results, err := r.Retrieve(context.Background(), "text", bundle, 50)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(results), 3)
	})

	t.Run("topK limits results", func(t *testing.T) {
		results, err := r.Retrieve(context.Background(), "text", bundle, 1)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})
}

func TestMinMaxNormalize(t *testing.T) {
	t.Run("spreads into unit interval", func(t *testing.T) {
		got := minMaxNormalize([]ai.LexicalHit{
			{Index: 0, Score: 2.0},
			{Index: 1, Score: 6.0},
			{Index: 2, Score: 4.0},
		})
		assert.InDelta(t, 0.0, got[0], 1e-9)
		assert.InDelta(t, 1.0, got[1], 1e-9)
		assert.InDelta(t, 0.5, got[2], 1e-9)
	})

	t.Run("all equal becomes one", func(t *testing.T) {
		got := minMaxNormalize([]ai.LexicalHit{
			{Index: 0, Score: 3.3},
			{Index: 1, Score: 3.3},
		})
		assert.Equal(t, 1.0, got[0])
		assert.Equal(t, 1.0, got[1])
	})

	t.Run("single hit becomes one", func(t *testing.T) {
		got := minMaxNormalize([]ai.LexicalHit{{Index: 7, Score: 0.01}})
		assert.Equal(t, 1.0, got[7])
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, minMaxNormalize(nil))
	})
}

func TestFuse(t *testing.T) {
	t.Run("weights both signals", func(t *testing.T) {
		semantic := []ai.LexicalHit{{Index: 0, Score: 0.9}, {Index: 1, Score: 0.1}}
		lexical := []ai.LexicalHit{{Index: 1, Score: 5.0}, {Index: 2, Score: 1.0}}

		fused := fuse(semantic, lexical, 0.5)
		require.Len(t, fused, 3)

		scores := map[int]float64{}
		for _, f := range fused {
			scores[f.Index] = f.Score
		}
		// Index 0: semantic 1.0 only → 0.5. Index 1: semantic 0.0 + lexical 1.0 → 0.5.
		// Index 2: lexical 0.0 only → 0.0.
		assert.InDelta(t, 0.5, scores[0], 1e-9)
		assert.InDelta(t, 0.5, scores[1], 1e-9)
		assert.InDelta(t, 0.0, scores[2], 1e-9)
	})

	t.Run("ties keep union insertion order", func(t *testing.T) {
		semantic := []ai.LexicalHit{{Index: 3, Score: 1.0}, {Index: 4, Score: 1.0}}
		fused := fuse(semantic, nil, 0.5)
		require.Len(t, fused, 2)
		assert.Equal(t, 3, fused[0].Index)
		assert.Equal(t, 4, fused[1].Index)
	})

	t.Run("alpha one ignores lexical", func(t *testing.T) {
		semantic := []ai.LexicalHit{{Index: 0, Score: 2.0}, {Index: 1, Score: 1.0}}
		lexical := []ai.LexicalHit{{Index: 1, Score: 10.0}}

		fused := fuse(semantic, lexical, 1.0)
		assert.Equal(t, 0, fused[0].Index)
	})

	t.Run("raising a lexical score never lowers its rank", func(t *testing.T) {
		semantic := []ai.LexicalHit{{Index: 0, Score: 0.8}, {Index: 1, Score: 0.6}, {Index: 2, Score: 0.4}}
		weak := []ai.LexicalHit{{Index: 2, Score: 1.0}, {Index: 1, Score: 2.0}, {Index: 0, Score: 3.0}}
		strong := []ai.LexicalHit{{Index: 2, Score: 9.0}, {Index: 1, Score: 2.0}, {Index: 0, Score: 3.0}}

		rank := func(fused []ai.LexicalHit, idx int) int {
			for pos, f := range fused {
				if f.Index == idx {
					return pos
				}
			}
			return -1
		}

		before := rank(fuse(semantic, weak, 0.5), 2)
		after := rank(fuse(semantic, strong, 0.5), 2)
		assert.LessOrEqual(t, after, before)
	})
}
