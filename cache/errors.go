package cache

import "errors"

// ErrNotFound indicates no entry exists for the requested fingerprint.
var ErrNotFound = errors.New("cache entry not found")
