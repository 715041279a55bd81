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


// Package openai provides model service implementations for OpenAI-compatible APIs.
//
// The embedder uses the langchaingo library to talk to OpenAI or
// OpenAI-compatible embedding services (Ollama, LocalAI, vLLM). The reranker
// posts to the /v1/rerank endpoint served by vLLM, Infinity, and
// Jina-compatible model servers.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithEmbeddingHost("http://localhost:11434"), // /v1 added automatically
//	    ai.WithRerankHost("http://localhost:8000"),
//	)
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vectors, err := provider.Embedder().EmbedTexts(ctx, texts)
//	scores, err := provider.Scorer().ScorePairs(ctx, query, passages)
package openai
