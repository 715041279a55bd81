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


package websearch

import "context"

// Result is one search engine hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Provider finds candidate pages for a query.
type Provider interface {
	Search(ctx context.Context, query string, max int) ([]Result, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, query string, max int) ([]Result, error)

// Search calls the wrapped function.
func (f ProviderFunc) Search(ctx context.Context, query string, max int) ([]Result, error) {
	return f(ctx, query, max)
}
