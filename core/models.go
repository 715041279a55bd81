package core

// Metadata keys populated by the pipeline.
const (
	MetaChunkIndex  = "chunk_index"
	MetaTotalChunks = "total_chunks"
	MetaTitle       = "title"
	MetaDescription = "description"
	MetaSourceURL   = "source_url"
	MetaSourceTitle = "source_title"
)

// Chunk is a bounded, overlap-aware span of extracted document text.
// Metadata always carries chunk_index and total_chunks; structured formats
// (HTML, PDF) contribute additional fields such as title and description.
// A Chunk is immutable after creation.
type Chunk struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	Index    int               `json:"-"`
}

// ScoredChunk pairs a chunk with a relevance score. The score belongs to
// exactly one pipeline stage at a time: fused retrieval relevance after
// retrieval, model-assigned relevance after reranking. It is overwritten,
// never accumulated.
type ScoredChunk struct {
	Chunk
	Score float64 `json:"score"`
}

// RetrievalResult is the synchronous response record for one retrieval run.
type RetrievalResult struct {
	Query   string        `json:"query"`
	Results []ScoredChunk `json:"results"`
	Count   int           `json:"count"`
}
