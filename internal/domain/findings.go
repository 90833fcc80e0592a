package domain

import "time"

// Confidence levels reported by the downstream evaluator.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Finding is one structured fragment produced by a sub-query evaluator.
// Evidence references the chunk the finding came from.
type Finding struct {
	Point      string `json:"point"`
	Evidence   string `json:"evidence"`
	Confidence string `json:"confidence"`
}

// SubcallResult is the full structured response for one dispatched chunk.
type SubcallResult struct {
	ChunkID          string    `json:"chunk_id"`
	Query            string    `json:"query"`
	Findings         []Finding `json:"findings"`
	SuggestedQueries []string  `json:"suggested_queries,omitempty"`
	AnswerIfComplete string    `json:"answer_if_complete,omitempty"`
	Error            string    `json:"error,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Failed reports whether this result is a failure marker rather than a
// usable evaluation.
func (r SubcallResult) Failed() bool {
	return r.Error != ""
}
