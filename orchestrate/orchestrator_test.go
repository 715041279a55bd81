package orchestrate

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/passage/cache"
	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/webfetch"
	"github.com/poiesic/passage/websearch"
)

// stubPipeline is a paragraph-level fake of the document pipeline.
type stubPipeline struct {
	processCalls int
}

func (p *stubPipeline) Process(_ context.Context, data []byte, _ core.ContentKind) (*cache.Bundle, error) {
	p.processCalls++
	paragraphs := strings.Split(string(data), "\n\n")
	chunks := make([]core.Chunk, len(paragraphs))
	embeddings := make([][]float32, len(paragraphs))
	for i, para := range paragraphs {
		chunks[i] = core.Chunk{Content: para, Metadata: map[string]string{}, Index: i}
		embeddings[i] = []float32{1}
	}
	return &cache.Bundle{Chunks: chunks, Embeddings: embeddings}, nil
}

func (p *stubPipeline) Retrieve(_ context.Context, _ string, bundle *cache.Bundle, topK int) ([]core.ScoredChunk, error) {
	out := make([]core.ScoredChunk, 0, topK)
	for _, c := range bundle.Chunks {
		if len(out) == topK {
			break
		}
		out = append(out, core.ScoredChunk{Chunk: c, Score: 0.5})
	}
	return out, nil
}

func (p *stubPipeline) Rerank(_ context.Context, query string, candidates []core.ScoredChunk) ([]core.ScoredChunk, error) {
	words := strings.Fields(strings.ToLower(query))
	out := make([]core.ScoredChunk, len(candidates))
	for i, c := range candidates {
		matched := 0
		lowered := strings.ToLower(c.Content)
		for _, w := range words {
			if strings.Contains(lowered, w) {
				matched++
			}
		}
		out[i] = core.ScoredChunk{Chunk: c.Chunk, Score: float64(matched)}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	return out, nil
}

type mapFetcher map[string]webfetch.Result

func (m mapFetcher) FetchAll(_ context.Context, urls []string) map[string]webfetch.Result {
	out := make(map[string]webfetch.Result, len(urls))
	for _, u := range urls {
		out[u] = m[u]
	}
	return out
}

func stubSearcher(results []websearch.Result, err error) websearch.Provider {
	return websearch.ProviderFunc(func(context.Context, string, int) ([]websearch.Result, error) {
		return results, err
	})
}

type stageRecorder struct {
	stages []Stage
}

func (r *stageRecorder) OnStage(stage Stage, _ string) {
	r.stages = append(r.stages, stage)
}

var testHits = []websearch.Result{
	{Title: "Go Concurrency", URL: "https://a.example/go", Snippet: "Goroutines and channels explained."},
	{Title: "Rust Ownership", URL: "https://b.example/rust", Snippet: "The borrow checker in practice."},
}

var testPages = map[string]webfetch.Result{
	"https://a.example/go":   {Title: "Go Concurrency", Text: "Goroutines are lightweight threads managed by the Go runtime. Channels connect goroutines."},
	"https://b.example/rust": {Title: "Rust Ownership", Text: "Ownership rules govern how Rust manages memory without a garbage collector."},
}

func TestRunTwoPasses(t *testing.T) {
	pipeline := &stubPipeline{}
	o := NewOrchestrator(pipeline, stubSearcher(testHits, nil), mapFetcher(testPages))

	recorder := &stageRecorder{}
	result, err := o.RunWithMonitor(context.Background(), "goroutines channels", 10, recorder)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, []Stage{
		StageSearching, StageResultsFound, StageFetching, StageFetched,
		StageIndexing, StageRetrieving, StageReranking,
		StageSecondIndexing, StageSecondRetrieving, StageSecondReranking,
		StageCompleted,
	}, recorder.stages)

	assert.Equal(t, 2, pipeline.processCalls)
	assert.Equal(t, "goroutines channels", result.Query)
	assert.Equal(t, len(result.Results), result.Count)
	require.NotEmpty(t, result.Results)

	// Second-pass results come from page text and carry source attribution.
	top := result.Results[0]
	assert.Contains(t, top.Content, "Goroutines")
	assert.Equal(t, "https://a.example/go", top.Metadata[core.MetaSourceURL])
	assert.Equal(t, "Go Concurrency", top.Metadata[core.MetaSourceTitle])
}

func TestRunFallsBackToSnippets(t *testing.T) {
	pipeline := &stubPipeline{}
	empty := mapFetcher{} // every fetch fails
	o := NewOrchestrator(pipeline, stubSearcher(testHits, nil), empty)

	recorder := &stageRecorder{}
	result, err := o.RunWithMonitor(context.Background(), "goroutines", 10, recorder)
	require.NoError(t, err)

	assert.Equal(t, []Stage{
		StageSearching, StageResultsFound, StageFetching, StageFetched,
		StageIndexing, StageRetrieving, StageReranking,
		StageCompleted,
	}, recorder.stages)

	assert.Equal(t, 1, pipeline.processCalls)
	require.NotEmpty(t, result.Results)
	assert.Contains(t, result.Results[0].Content, "Goroutines and channels explained")
}

func TestRunSecondPassDisabled(t *testing.T) {
	pipeline := &stubPipeline{}
	o := NewOrchestrator(pipeline, stubSearcher(testHits, nil), mapFetcher(testPages),
		WithSecondPass(false))

	recorder := &stageRecorder{}
	_, err := o.RunWithMonitor(context.Background(), "goroutines", 10, recorder)
	require.NoError(t, err)

	assert.Equal(t, 1, pipeline.processCalls)
	assert.NotContains(t, recorder.stages, StageSecondIndexing)
	assert.Contains(t, recorder.stages, StageCompleted)
}

func TestRunSearchFailure(t *testing.T) {
	o := NewOrchestrator(&stubPipeline{}, stubSearcher(nil, errors.New("engine down")), mapFetcher{})

	recorder := &stageRecorder{}
	_, err := o.RunWithMonitor(context.Background(), "query", 10, recorder)
	require.Error(t, err)
	assert.Equal(t, StageFailed, recorder.stages[len(recorder.stages)-1])
}

func TestRunNoResults(t *testing.T) {
	o := NewOrchestrator(&stubPipeline{}, stubSearcher(nil, nil), mapFetcher{})

	_, err := o.Run(context.Background(), "query", 10)
	assert.True(t, errors.Is(err, ErrNoResults))
}

func TestRunEmptyQuery(t *testing.T) {
	o := NewOrchestrator(&stubPipeline{}, stubSearcher(testHits, nil), mapFetcher{})

	_, err := o.Run(context.Background(), "   ", 10)
	assert.True(t, errors.Is(err, core.ErrEmptyQuery))
}

func TestAttributeSources(t *testing.T) {
	blocks := []block{
		{text: "First block text about apples.", url: "https://a", title: "A"},
		{text: "Second block text about oranges.", url: "https://b", title: "B"},
	}
	joined := blocks[0].text + blockSeparator + blocks[1].text

	chunks := []core.ScoredChunk{
		{Chunk: core.Chunk{Content: "Second block text about oranges.", Metadata: map[string]string{}}},
		{Chunk: core.Chunk{Content: "First block text", Metadata: map[string]string{}}},
		{Chunk: core.Chunk{Content: "not present anywhere", Metadata: map[string]string{}}},
	}

	attributeSources(chunks, joined, blocks)

	assert.Equal(t, "https://b", chunks[0].Metadata[core.MetaSourceURL])
	assert.Equal(t, "https://a", chunks[1].Metadata[core.MetaSourceURL])
	assert.Empty(t, chunks[2].Metadata[core.MetaSourceURL])
}
