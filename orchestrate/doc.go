// Package orchestrate coordinates web-augmented retrieval.
//
// A query is answered from the live web in two passes. The first pass
// searches, fetches the candidate pages concurrently, and ranks the search
// snippets; the second pass rebuilds the corpus from the full text of the
// top-ranked pages and retrieves again. Each stage transition is reported
// through a Monitor so callers can stream progress.
package orchestrate
