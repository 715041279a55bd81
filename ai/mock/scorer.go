package mock

import (
	"context"
	"strings"
)

// MockScorer is a test double for ai.PairwiseScorer.
// It allows custom behavior injection via function fields.
type MockScorer struct {
	// ScorePairsFunc is called by ScorePairs if set.
	// If nil, uses default deterministic behavior.
	ScorePairsFunc func(ctx context.Context, query string, passages []string) ([]float64, error)

	callCount int
}

// NewMockScorer creates a mock scorer with default deterministic behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockScorer() *MockScorer {
	return &MockScorer{}
}

// ScorePairs scores each passage by the fraction of lowercased query words it
// contains, which is deterministic and roughly relevance-shaped.
func (m *MockScorer) ScorePairs(ctx context.Context, query string, passages []string) ([]float64, error) {
	m.callCount++

	if m.ScorePairsFunc != nil {
		return m.ScorePairsFunc(ctx, query, passages)
	}

	queryWords := strings.Fields(strings.ToLower(query))
	scores := make([]float64, len(passages))
	for i, passage := range passages {
		if len(queryWords) == 0 {
			continue
		}
		lowered := strings.ToLower(passage)
		matched := 0
		for _, word := range queryWords {
			if strings.Contains(lowered, word) {
				matched++
			}
		}
		scores[i] = float64(matched) / float64(len(queryWords))
	}
	return scores, nil
}

// CallCount returns the number of times ScorePairs was called.
func (m *MockScorer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockScorer) Reset() {
	m.callCount = 0
	m.ScorePairsFunc = nil
}
