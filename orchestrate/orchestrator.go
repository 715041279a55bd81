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


package orchestrate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/poiesic/passage/cache"
	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/webfetch"
	"github.com/poiesic/passage/websearch"
)

const (
	// blockSeparator joins corpus blocks; it matches the splitter's most
	// preferred boundary so chunks rarely straddle two blocks.
	blockSeparator = "\n\n"

	defaultSearchMax      = 5
	defaultSecondPassURLs = 3
)

// Pipeline is the document processing surface the orchestrator drives.
// The root engine implements it.
type Pipeline interface {
	Process(ctx context.Context, data []byte, kind core.ContentKind) (*cache.Bundle, error)
	Retrieve(ctx context.Context, query string, bundle *cache.Bundle, topK int) ([]core.ScoredChunk, error)
	Rerank(ctx context.Context, query string, candidates []core.ScoredChunk) ([]core.ScoredChunk, error)
}

// Fetcher downloads a set of URLs and reports per-URL results.
type Fetcher interface {
	FetchAll(ctx context.Context, urls []string) map[string]webfetch.Result
}

// Orchestrator runs web-augmented retrieval: search the web, build an
// ephemeral corpus from the hits, and retrieve over it in up to two passes.
//
// Pass one ranks search snippets, which is cheap and filters the candidate
// pages. Pass two rebuilds the corpus from the full text of the top-ranked
// pages and retrieves again. When no top page yielded usable text the pass
// one results stand.
type Orchestrator struct {
	pipeline Pipeline
	searcher websearch.Provider
	fetcher  Fetcher

	secondPass     bool
	searchMax      int
	secondPassURLs int
	logger         *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSecondPass toggles the page-text refinement pass.
// Enabled by default.
func WithSecondPass(enabled bool) Option {
	return func(o *Orchestrator) {
		o.secondPass = enabled
	}
}

// WithSearchMax sets how many search results to request.
func WithSearchMax(max int) Option {
	return func(o *Orchestrator) {
		if max > 0 {
			o.searchMax = max
		}
	}
}

// WithSecondPassURLs sets how many top-ranked pages feed the second pass.
func WithSecondPassURLs(count int) Option {
	return func(o *Orchestrator) {
		if count > 0 {
			o.secondPassURLs = count
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
	}
}

// NewOrchestrator creates an orchestrator over the given collaborators.
func NewOrchestrator(pipeline Pipeline, searcher websearch.Provider, fetcher Fetcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		pipeline:       pipeline,
		searcher:       searcher,
		fetcher:        fetcher,
		secondPass:     true,
		searchMax:      defaultSearchMax,
		secondPassURLs: defaultSecondPassURLs,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the flow without progress reporting.
func (o *Orchestrator) Run(ctx context.Context, query string, topK int) (*core.RetrievalResult, error) {
	return o.RunWithMonitor(ctx, query, topK, &noopMonitor{})
}

// RunWithMonitor executes the flow, emitting every stage transition to the
// monitor. On failure the FAILED stage carries the error message.
func (o *Orchestrator) RunWithMonitor(ctx context.Context, query string, topK int, monitor Monitor) (result *core.RetrievalResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("orchestration panic", "query", query, "panic", r)
			err = fmt.Errorf("retrieval processing failed")
			result = nil
		}
		if err != nil {
			monitor.OnStage(StageFailed, err.Error())
		}
	}()

	query, err = core.ValidateQuery(query)
	if err != nil {
		return nil, err
	}

	monitor.OnStage(StageSearching, query)
	hits, err := o.searcher.Search(ctx, query, o.searchMax)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}
	if len(hits) == 0 {
		return nil, ErrNoResults
	}
	monitor.OnStage(StageResultsFound, strconv.Itoa(len(hits)))

	urls := make([]string, 0, len(hits))
	for _, h := range hits {
		urls = append(urls, h.URL)
	}

	monitor.OnStage(StageFetching, strconv.Itoa(len(urls)))
	pages := o.fetcher.FetchAll(ctx, urls)
	usable := 0
	for _, page := range pages {
		if page.Text != "" {
			usable++
		}
	}
	monitor.OnStage(StageFetched, strconv.Itoa(usable))

	// Pass one ranks the snippets.
	snippetBlocks := make([]block, 0, len(hits))
	for _, h := range hits {
		text := strings.TrimSpace(h.Title + "\n" + h.Snippet)
		if text == "" {
			continue
		}
		snippetBlocks = append(snippetBlocks, block{text: text, url: h.URL, title: h.Title})
	}

	firstPass, err := o.runPass(ctx, query, topK, snippetBlocks, monitor,
		StageIndexing, StageRetrieving, StageReranking)
	if err != nil {
		return nil, err
	}

	results := firstPass
	if o.secondPass {
		pageBlocks := o.pageBlocks(firstPass, hits, pages)
		if len(pageBlocks) == 0 {
			o.logger.Info("no usable page text, keeping snippet results", "query", query)
		} else {
			secondPass, err := o.runPass(ctx, query, topK, pageBlocks, monitor,
				StageSecondIndexing, StageSecondRetrieving, StageSecondReranking)
			if err != nil {
				return nil, err
			}
			results = secondPass
		}
	}

	monitor.OnStage(StageCompleted, strconv.Itoa(len(results)))
	return &core.RetrievalResult{
		Query:   query,
		Results: results,
		Count:   len(results),
	}, nil
}

// block is one attributable region of an ephemeral corpus.
type block struct {
	text  string
	url   string
	title string
}

// runPass processes the blocks into a corpus and retrieves over it.
func (o *Orchestrator) runPass(ctx context.Context, query string, topK int, blocks []block, monitor Monitor, indexing, retrieving, reranking Stage) ([]core.ScoredChunk, error) {
	texts := make([]string, len(blocks))
	for i, b := range blocks {
		texts[i] = b.text
	}
	joined := strings.Join(texts, blockSeparator)

	monitor.OnStage(indexing, strconv.Itoa(len(blocks)))
	bundle, err := o.pipeline.Process(ctx, []byte(joined), core.KindPlainText)
	if err != nil {
		return nil, fmt.Errorf("indexing corpus: %w", err)
	}
	defer bundle.Close()

	monitor.OnStage(retrieving, "")
	candidates, err := o.pipeline.Retrieve(ctx, query, bundle, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieving: %w", err)
	}

	monitor.OnStage(reranking, strconv.Itoa(len(candidates)))
	reranked, err := o.pipeline.Rerank(ctx, query, candidates)
	if err != nil {
		return nil, fmt.Errorf("reranking: %w", err)
	}

	attributeSources(reranked, joined, blocks)
	return reranked, nil
}

// pageBlocks selects the fetched page texts for the second pass: the
// distinct source URLs of the top-ranked first-pass chunks, in rank order,
// keeping only pages that yielded text.
func (o *Orchestrator) pageBlocks(ranked []core.ScoredChunk, hits []websearch.Result, pages map[string]webfetch.Result) []block {
	titles := make(map[string]string, len(hits))
	for _, h := range hits {
		titles[h.URL] = h.Title
	}

	var blocks []block
	seen := map[string]bool{}
	for _, chunk := range ranked {
		url := chunk.Metadata[core.MetaSourceURL]
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true

		page := pages[url]
		if page.Text == "" {
			continue
		}
		title := page.Title
		if title == "" {
			title = titles[url]
		}
		blocks = append(blocks, block{text: page.Text, url: url, title: title})
		if len(blocks) == o.secondPassURLs {
			break
		}
	}
	return blocks
}

// attributeSources maps each chunk back to the block containing its start
// offset in the joined corpus and records the source URL and title in the
// chunk metadata.
func attributeSources(chunks []core.ScoredChunk, joined string, blocks []block) {
	starts := make([]int, len(blocks))
	offset := 0
	for i, b := range blocks {
		starts[i] = offset
		offset += len(b.text) + len(blockSeparator)
	}

	for i := range chunks {
		pos := strings.Index(joined, chunks[i].Content)
		if pos < 0 {
			continue
		}
		// Last block starting at or before the chunk.
		idx := sort.Search(len(starts), func(j int) bool { return starts[j] > pos }) - 1
		if idx < 0 {
			continue
		}
		if chunks[i].Metadata == nil {
			chunks[i].Metadata = map[string]string{}
		}
		chunks[i].Metadata[core.MetaSourceURL] = blocks[idx].url
		chunks[i].Metadata[core.MetaSourceTitle] = blocks[idx].title
	}
}
