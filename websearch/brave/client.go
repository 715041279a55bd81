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


package brave

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/poiesic/passage/websearch"
)

const defaultEndpoint = "https://api.search.brave.com/res/v1/web/search"

// Client queries the Brave Search API.
// It implements websearch.Provider.
type Client struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

var _ websearch.Provider = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the API endpoint. Useful for tests.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// NewClient creates a Brave Search client with the given subscription token.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("brave search api key is required")
	}
	c := &Client{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		client:   &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Search returns up to max web results for the query.
func (c *Client) Search(ctx context.Context, query string, max int) ([]websearch.Result, error) {
	if max < 1 {
		max = 10
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(max))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var decoded braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	results := make([]websearch.Result, 0, len(decoded.Web.Results))
	for _, r := range decoded.Web.Results {
		results = append(results, websearch.Result{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Description,
		})
	}
	if len(results) > max {
		results = results[:max]
	}
	return results, nil
}
