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


// Package ai provides abstractions for the model services used by the
// retrieval pipeline.
//
// This package defines narrow capability interfaces for the three model-backed
// operations the pipeline consumes, so the pipeline depends only on behavior
// contracts and implementations can be substituted with test doubles:
//
//   - Embedder: maps batches of strings to fixed-dimension vectors
//   - PairwiseScorer: cross-encoder relevance scoring of (query, passage) pairs
//   - LexicalIndex / LexicalIndexer: term-frequency scoring over tokenized corpora
//
// # Implementation Packages
//
//   - ai/openai: production embedder and rerank client for OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles with injectable behavior
//
// Public constructors in implementation packages return interface types to
// enforce abstraction; mock constructors return concrete types so tests can
// inject behavior and assert on call counts.
package ai
