// Package retrieve implements hybrid chunk retrieval.
//
// A query is scored two ways: semantically, by cosine similarity between the
// instructed query embedding and chunk embeddings, and lexically, by the
// chunk index's term matching. Both score lists are min-max normalized and
// fused with a configurable semantic weight. The fused ranking is what the
// reranker later refines.
package retrieve
