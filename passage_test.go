package passage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/passage/ai/mock"
	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/orchestrate"
	"github.com/poiesic/passage/websearch"
)

const sampleDocument = `Gravitational waves are ripples in spacetime caused by accelerating masses.

They were predicted by general relativity in 1916 and first observed directly in 2015 by the LIGO detectors.

The first detection came from two merging black holes about 1.3 billion light years away.

Unrelated paragraph about the history of cheese making in alpine villages.`

func newTestEngine(t *testing.T) (*Engine, *mock.MockEmbedder, *mock.MockScorer) {
	t.Helper()

	embedder := mock.NewMockEmbedder()
	scorer := mock.NewMockScorer()
	provider := mock.NewMockProviderWithServices(embedder, scorer)

	engine, err := New("", WithInMemoryCache(), WithProvider(provider))
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	return engine, embedder, scorer
}

func TestRetrieveDocument(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	result, err := engine.RetrieveDocument(context.Background(),
		"when were gravitational waves first observed",
		[]byte(sampleDocument), core.KindPlainText, 3)
	require.NoError(t, err)

	assert.Equal(t, "when were gravitational waves first observed", result.Query)
	assert.Equal(t, len(result.Results), result.Count)
	require.NotEmpty(t, result.Results)
	assert.LessOrEqual(t, len(result.Results), 3)

	for i := 1; i < len(result.Results); i++ {
		assert.GreaterOrEqual(t, result.Results[i-1].Score, result.Results[i].Score)
	}
	for _, r := range result.Results {
		assert.NotEmpty(t, r.Metadata[core.MetaChunkIndex])
		assert.NotEmpty(t, r.Metadata[core.MetaTotalChunks])
	}
}

func TestRetrieveDocumentValidation(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	t.Run("empty query", func(t *testing.T) {
		_, err := engine.RetrieveDocument(ctx, "  ", []byte(sampleDocument), core.KindPlainText, 3)
		assert.True(t, errors.Is(err, core.ErrEmptyQuery))
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := engine.RetrieveDocument(ctx, "query", nil, core.KindPlainText, 3)
		assert.True(t, errors.Is(err, core.ErrFileRequired))
	})

	t.Run("unsupported kind", func(t *testing.T) {
		_, err := engine.RetrieveDocument(ctx, "query", []byte("data"), core.ContentKind("image/png"), 3)
		assert.True(t, errors.Is(err, core.ErrUnsupportedKind))
	})
}

func TestProcessCachesEmbeddings(t *testing.T) {
	engine, embedder, _ := newTestEngine(t)
	ctx := context.Background()

	first, err := engine.Process(ctx, []byte(sampleDocument), core.KindPlainText)
	require.NoError(t, err)
	defer first.Close()
	require.Equal(t, 1, embedder.CallCount())

	second, err := engine.Process(ctx, []byte(sampleDocument), core.KindPlainText)
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, 1, embedder.CallCount(), "identical content must hit the cache")
	assert.Equal(t, first.Chunks, second.Chunks)
	assert.Equal(t, first.Embeddings, second.Embeddings)
	require.NotNil(t, second.Lexical)
	assert.Equal(t, len(second.Chunks), second.Lexical.DocCount())
}

func TestProcessEmbeddingCountMismatch(t *testing.T) {
	engine, embedder, _ := newTestEngine(t)
	ctx := context.Background()

	// An embedder violating its contract with an extra row must fail the
	// processing call, not surface later as a bad index during retrieval.
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		rows := make([][]float32, len(texts)+1)
		for i := range rows {
			rows[i] = []float32{1, 0, 0}
		}
		return rows, nil
	}

	_, err := engine.Process(ctx, []byte(sampleDocument), core.KindPlainText)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")

	// The broken bundle must not have been cached.
	embedder.Reset()
	bundle, err := engine.Process(ctx, []byte(sampleDocument), core.KindPlainText)
	require.NoError(t, err)
	defer bundle.Close()
	assert.Equal(t, 1, embedder.CallCount(), "expected a cache miss after the failed call")
	assert.Equal(t, len(bundle.Chunks), len(bundle.Embeddings))
}

func TestProcessNoContent(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.Process(context.Background(), []byte("<html><head></head><body></body></html>"), core.KindHTML)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNoContent))
}

func TestEngineOrchestrator(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	page := `<!DOCTYPE html><html><head><title>Waves</title></head><body><article>
	<h1>Waves</h1>
	<p>Gravitational waves were first observed directly in 2015 by LIGO, a
	century after general relativity predicted them.</p>
	<p>The observed signal matched two merging black holes.</p>
	</article></body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	searcher := websearch.ProviderFunc(func(context.Context, string, int) ([]websearch.Result, error) {
		return []websearch.Result{
			{Title: "Waves", URL: server.URL, Snippet: "Gravitational waves observed in 2015."},
		}, nil
	})

	o := engine.NewOrchestrator(searcher)

	var stages []orchestrate.Stage
	result, err := o.RunWithMonitor(context.Background(), "gravitational waves observed", 5,
		orchestrate.MonitorFunc(func(stage orchestrate.Stage, _ string) {
			stages = append(stages, stage)
		}))
	require.NoError(t, err)
	require.NotEmpty(t, result.Results)

	assert.Contains(t, stages, orchestrate.StageSearching)
	assert.Contains(t, stages, orchestrate.StageSecondReranking)
	assert.Equal(t, orchestrate.StageCompleted, stages[len(stages)-1])
	assert.Equal(t, server.URL, result.Results[0].Metadata[core.MetaSourceURL])
}
