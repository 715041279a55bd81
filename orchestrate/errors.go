package orchestrate

import "errors"

// ErrNoResults indicates the search engine returned no candidate pages.
var ErrNoResults = errors.New("no search results for query")
