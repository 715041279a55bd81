// Package cache persists processed document artifacts keyed by content
// fingerprint.
//
// The fingerprint covers the payload bytes and every parameter that affects
// processing output, so a hit is always safe to reuse. Cached bundles hold
// chunks and embeddings only; lexical indexes are rebuilt from chunk texts
// when a bundle is loaded. The cache is strictly best-effort: read failures
// become misses and write failures are logged and ignored.
package cache
