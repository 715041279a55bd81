// Package webfetch downloads web pages concurrently and reduces them to
// readable text.
//
// Fetches fan out over a bounded worker pool with a per-request timeout.
// Failures are strictly per-URL: a page that times out, returns an error
// status, or fails extraction contributes an empty result while the rest of
// the batch proceeds.
package webfetch
