// Package rerank refines retrieval candidates with a cross-encoder.
//
// Cross-encoders read the query and passage together, so they rank better
// than embedding similarity but cost a forward pass per pair. Candidates are
// therefore scored in batches sized by average passage length, and only the
// short fused candidate list ever reaches the model.
package rerank
