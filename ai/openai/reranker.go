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


package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/poiesic/passage/ai"
)

// Reranker implements ai.PairwiseScorer against the /v1/rerank endpoint
// exposed by vLLM, Infinity, and Jina-compatible model servers.
type Reranker struct {
	host   string
	model  string
	client *http.Client
	logger *slog.Logger
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// newReranker is an internal constructor that returns the concrete type.
func newReranker(config *ai.Config) (*Reranker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Reranker{
		host:   config.RerankHost,
		model:  config.RerankModel,
		client: http.DefaultClient,
		logger: slog.Default().With("component", "openai-reranker"),
	}, nil
}

// NewReranker creates a cross-encoder scorer using the provided configuration.
//
// Returns ai.PairwiseScorer interface to enforce abstraction.
func NewReranker(config *ai.Config) (ai.PairwiseScorer, error) {
	return newReranker(config)
}

// ScorePairs scores every (query, passage) pair in one request and returns
// scores in passage order.
func (r *Reranker) ScorePairs(ctx context.Context, query string, passages []string) ([]float64, error) {
	if len(passages) == 0 {
		return []float64{}, nil
	}

	body, err := json.Marshal(rerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: passages,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.host+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("rerank request failed", "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rerank service returned status %d", resp.StatusCode)
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if len(parsed.Results) != len(passages) {
		return nil, fmt.Errorf("rerank result mismatch. expected %d, received %d", len(passages), len(parsed.Results))
	}

	// The service orders results by score; restore passage order.
	scores := make([]float64, len(passages))
	for _, result := range parsed.Results {
		if result.Index < 0 || result.Index >= len(scores) {
			return nil, fmt.Errorf("rerank result index %d out of range", result.Index)
		}
		scores[result.Index] = result.RelevanceScore
	}
	return scores, nil
}
