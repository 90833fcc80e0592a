package orchestrator

import (
	"encoding/json"
	"strings"

	"github.com/sightglass-mcp/sightglass/internal/domain"
)

// subcallResponse is the JSON shape the evaluator is instructed to emit.
type subcallResponse struct {
	Findings         []domain.Finding `json:"findings"`
	SuggestedQueries []string         `json:"suggested_queries"`
	AnswerIfComplete string           `json:"answer_if_complete"`
}

// parseSubcallResponse decodes an evaluator reply. Models wrap JSON in
// prose or markdown fences often enough that a failed direct decode falls
// back to the outermost brace pair.
func parseSubcallResponse(raw string) (subcallResponse, error) {
	var out subcallResponse
	trimmed := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(trimmed), &out); err == nil {
		return out, nil
	}

	start := strings.IndexByte(trimmed, '{')
	end := strings.LastIndexByte(trimmed, '}')
	if start < 0 || end <= start {
		return out, domain.InvalidInputf("no JSON object in evaluator response")
	}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &out); err != nil {
		return out, domain.InvalidInputf("malformed evaluator response: %v", err)
	}
	return out, nil
}
