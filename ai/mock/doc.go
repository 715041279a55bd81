// Package mock provides test double implementations of model service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.PairwiseScorer,
// and ai.Provider for use in unit tests. The mocks allow tests to run without
// external model services and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vectors, err := mockProvider.Embedder().EmbedTexts(ctx, texts)
//
//	// Custom behavior injection
//	mockScorer := mock.NewMockScorer()
//	mockScorer.ScorePairsFunc = func(ctx context.Context, query string, passages []string) ([]float64, error) {
//	    return []float64{0.2, 0.9, 0.5}, nil
//	}
//
//	// Check call counts
//	count := mockScorer.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: returns deterministic unit vectors derived from text hash
//   - MockScorer: scores passages by query-word overlap
//   - MockProvider: aggregates mock embedder and scorer
package mock
