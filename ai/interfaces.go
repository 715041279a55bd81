package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in the same order as the
	// input texts. Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// PairwiseScorer scores (query, passage) pairs with a cross-encoder relevance
// model. Scores are used only for ordering and carry no fixed scale.
// Implementations must be thread-safe for concurrent use.
type PairwiseScorer interface {
	// ScorePairs returns one relevance score per passage, in input order.
	ScorePairs(ctx context.Context, query string, passages []string) ([]float64, error)
}

// LexicalHit is one scored document position from a lexical index.
type LexicalHit struct {
	// Index is the ordinal of the document within the indexed corpus.
	Index int

	// Score is the term-frequency relevance score. Raw scale is
	// implementation defined; callers normalize before fusing.
	Score float64
}

// LexicalIndex scores queries against a tokenized document corpus using a
// term-frequency/inverse-document-frequency scheme.
type LexicalIndex interface {
	// ScoreQuery tokenizes and lowercases the query, scores it against the
	// corpus, and returns up to topK hits ordered by descending score.
	ScoreQuery(ctx context.Context, query string, topK int) ([]LexicalHit, error)

	// DocCount returns the number of documents in the index.
	DocCount() int

	// Close releases index resources.
	Close() error
}

// LexicalIndexer builds lexical indexes over document corpora.
// Builds are deterministic: identical texts produce an index with identical
// scoring behavior.
type LexicalIndexer interface {
	Build(ctx context.Context, texts []string) (LexicalIndex, error)
}

// Provider aggregates model services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// PairwiseScorer instances, ensuring they share configuration appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Scorer returns the cross-encoder relevance service.
	// The returned PairwiseScorer is safe for concurrent use.
	Scorer() PairwiseScorer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
