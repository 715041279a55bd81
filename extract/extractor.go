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


package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
	"github.com/poiesic/passage/core"
	"github.com/tmc/langchaingo/documentloaders"
)

// Extractor converts raw payloads of a declared content kind into plain text
// plus any structural metadata it can recover.
type Extractor struct {
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// NewExtractor creates a new content extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns plain text and recovered metadata for the payload.
// Returns core.ErrUnsupportedKind for kinds outside the supported set and
// core.ErrExtraction wrapping the cause when decoding or parsing fails.
func (e *Extractor) Extract(ctx context.Context, data []byte, kind core.ContentKind) (string, map[string]string, error) {
	e.logger.Debug("extracting text", "kind", string(kind), "bytes", len(data))

	if !kind.Supported() {
		e.logger.Error("unsupported content kind", "kind", string(kind))
		return "", nil, fmt.Errorf("%w: %s", core.ErrUnsupportedKind, kind)
	}

	metadata := map[string]string{}

	switch kind {
	case core.KindPDF:
		return e.extractPDF(ctx, data, metadata)
	case core.KindJSON:
		return extractJSON(data, metadata)
	case core.KindHTML:
		return ExtractHTML(data, metadata)
	default:
		// Plain, script, stylesheet, markdown, YAML, and XML kinds pass
		// through decoded text unchanged.
		if !utf8.Valid(data) {
			return "", nil, fmt.Errorf("%w: payload is not valid UTF-8", core.ErrExtraction)
		}
		return string(data), metadata, nil
	}
}

func (e *Extractor) extractPDF(ctx context.Context, data []byte, metadata map[string]string) (string, map[string]string, error) {
	loader := documentloaders.NewPDF(bytes.NewReader(data), int64(len(data)))
	docs, err := loader.Load(ctx)
	if err != nil {
		e.logger.Error("pdf extraction failed", "err", err)
		return "", nil, fmt.Errorf("%w: %v", core.ErrExtraction, err)
	}

	// Concatenate per-page text in page order; document-level properties
	// (everything except per-page counters) go into metadata.
	pages := make([]string, 0, len(docs))
	for _, doc := range docs {
		pages = append(pages, doc.PageContent)
		for k, v := range doc.Metadata {
			if k == "page" || k == "total_pages" {
				continue
			}
			metadata[k] = fmt.Sprint(v)
		}
	}
	return strings.Join(pages, "\n"), metadata, nil
}

func extractJSON(data []byte, metadata map[string]string) (string, map[string]string, error) {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return "", nil, fmt.Errorf("%w: %v", core.ErrExtraction, err)
	}
	// Re-serialize with stable indentation; raw single-line JSON makes for
	// terrible chunk boundaries.
	indented, err := json.MarshalIndent(decoded, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", core.ErrExtraction, err)
	}
	return string(indented), metadata, nil
}

// ExtractHTML strips script/style markup and returns whitespace-normalized
// visible text, recovering title and description metadata when present.
// Shared with the web fetch coordinator so uploaded HTML and fetched pages
// get identical handling.
func ExtractHTML(data []byte, metadata map[string]string) (string, map[string]string, error) {
	article, err := readability.FromReader(bytes.NewReader(data), &url.URL{})
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", core.ErrExtraction, err)
	}

	if metadata == nil {
		metadata = map[string]string{}
	}
	metadata[core.MetaTitle] = strings.TrimSpace(article.Title)
	metadata[core.MetaDescription] = strings.TrimSpace(article.Excerpt)

	return strings.Join(strings.Fields(article.TextContent), " "), metadata, nil
}
