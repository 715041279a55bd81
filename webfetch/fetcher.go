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


package webfetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/extract"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultPoolSize  = 8
	defaultUserAgent = "passage/1.0 (+https://github.com/poiesic/passage)"

	// maxBodyBytes caps response reads so a hostile page can't exhaust memory.
	maxBodyBytes = 10 << 20
)

// Result is the readable content of one fetched page. Failed fetches leave
// both fields empty.
type Result struct {
	Title string
	Text  string
}

// Fetcher downloads pages concurrently and reduces them to readable text.
type Fetcher struct {
	client    *http.Client
	pool      *ants.Pool
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header on outgoing requests.
func WithUserAgent(userAgent string) Option {
	return func(f *Fetcher) {
		if userAgent != "" {
			f.userAgent = userAgent
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
	}
}

// NewFetcher creates a fetcher with a bounded worker pool of the given size.
// Size values below one fall back to the default.
func NewFetcher(poolSize int, opts ...Option) (*Fetcher, error) {
	if poolSize < 1 {
		poolSize = defaultPoolSize
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("creating fetch pool: %w", err)
	}

	f := &Fetcher{
		client:    &http.Client{},
		pool:      pool,
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// FetchAll downloads every URL concurrently and returns a map with one entry
// per input URL. A failed fetch yields an empty Result for that URL only;
// FetchAll itself never fails.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) map[string]Result {
	results := make(map[string]Result, len(urls))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, pageURL := range urls {
		pageURL := pageURL
		wg.Add(1)
		err := f.pool.Submit(func() {
			defer wg.Done()
			res := f.fetchOne(ctx, pageURL)
			mu.Lock()
			results[pageURL] = res
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			f.logger.Warn("fetch submit failed", "url", pageURL, "err", err)
			mu.Lock()
			results[pageURL] = Result{}
			mu.Unlock()
		}
	}

	wg.Wait()
	return results
}

// fetchOne downloads and extracts a single page. Any failure returns an
// empty Result.
func (f *Fetcher) fetchOne(ctx context.Context, pageURL string) Result {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		f.logger.Warn("building fetch request failed", "url", pageURL, "err", err)
		return Result{}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("fetch failed", "url", pageURL, "err", err)
		return Result{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Warn("fetch returned non-success status", "url", pageURL, "status", resp.StatusCode)
		return Result{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		f.logger.Warn("reading fetch body failed", "url", pageURL, "err", err)
		return Result{}
	}

	text, meta, err := extract.ExtractHTML(body, nil)
	if err != nil {
		f.logger.Warn("page extraction failed", "url", pageURL, "err", err)
		return Result{}
	}

	f.logger.Debug("fetched page", "url", pageURL, "chars", len(text))
	return Result{Title: meta[core.MetaTitle], Text: text}
}

// Close releases the worker pool.
func (f *Fetcher) Close() {
	f.pool.Release()
}
