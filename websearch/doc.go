// Package websearch defines the search engine collaborator used by
// web-augmented retrieval.
//
// The core pipeline depends only on the Provider interface; concrete engine
// clients live in subpackages.
package websearch
