package orchestrate

// Stage identifies a step of the web-augmented retrieval flow. Stages are
// emitted in declaration order; SECOND_* stages only appear when the second
// pass runs, and FAILED can follow any stage.
type Stage string

const (
	StageSearching        Stage = "SEARCHING"
	StageResultsFound     Stage = "RESULTS_FOUND"
	StageFetching         Stage = "FETCHING"
	StageFetched          Stage = "FETCHED"
	StageIndexing         Stage = "INDEXING"
	StageRetrieving       Stage = "RETRIEVING"
	StageReranking        Stage = "RERANKING"
	StageSecondIndexing   Stage = "SECOND_INDEXING"
	StageSecondRetrieving Stage = "SECOND_RETRIEVING"
	StageSecondReranking  Stage = "SECOND_RERANKING"
	StageCompleted        Stage = "COMPLETED"
	StageFailed           Stage = "FAILED"
)
