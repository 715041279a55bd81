// Package index provides in-memory lexical indexing over chunk texts.
//
// Indexes are ephemeral and deterministic: documents are identified by their
// ordinal position, so an index rebuilt from the same text slice scores
// queries identically. This keeps persisted artifacts free of index
// internals; only the texts need to survive a restart.
package index
