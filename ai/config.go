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


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for model service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// RerankHost is the base URL for the cross-encoder rerank service API.
	// Example: "http://localhost:8000/v1" for a vLLM or Infinity server
	RerankHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "bge-base-en-v1.5", "text-embedding-3-small"
	EmbeddingModel string

	// RerankModel is the model identifier to use for pairwise relevance scoring.
	// Example: "jina-reranker-v2-base-multilingual", "bge-reranker-v2-m3"
	RerankModel string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithRerankHost sets the rerank service host URL.
func WithRerankHost(host string) ConfigOption {
	return func(c *Config) {
		c.RerankHost = host
	}
}

// WithHost sets both embedding and rerank hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.RerankHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithRerankModel sets the rerank model identifier.
func WithRerankModel(model string) ConfigOption {
	return func(c *Config) {
		c.RerankModel = model
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:  "http://localhost:11434/v1",
		RerankHost:     "http://localhost:8000/v1",
		EmbeddingModel: "bge-base-en-v1.5",
		RerankModel:    "jina-reranker-v2-base-multilingual",
	}
}

// NewConfig creates a Config with the default values and applies the provided
// options. This is the recommended way to create a Config with custom settings.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithEmbeddingModel("text-embedding-3-small"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
	if c.RerankHost != "" && !strings.HasSuffix(c.RerankHost, "/v1") {
		c.RerankHost = strings.TrimSuffix(c.RerankHost, "/")
		c.RerankHost = c.RerankHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.RerankHost == "" {
		return errors.New("ai config: RerankHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.RerankModel == "" {
		return errors.New("ai config: RerankModel is required")
	}
	return nil
}
