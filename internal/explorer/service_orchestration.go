package explorer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sightglass-mcp/sightglass/internal/domain"
	"github.com/sightglass-mcp/sightglass/internal/orchestrator"
	"github.com/sightglass-mcp/sightglass/internal/project"
	"github.com/sightglass-mcp/sightglass/internal/session"
)

// LLMQueryResult is the outcome of evaluating one buffer.
type LLMQueryResult struct {
	Result       domain.SubcallResult `json:"result"`
	ResultBuffer string               `json:"result_buffer"`
}

// LLMQuery sends a buffer's content to the evaluator with a query. The
// structured result is kept in the session's subcall list and mirrored
// into a subcall_<buffer> buffer; the buffer content itself never returns
// to the caller.
func (s *Service) LLMQuery(ctx context.Context, instance, bufferName, query string) (LLMQueryResult, error) {
	orch, err := s.orchestrate()
	if err != nil {
		return LLMQueryResult{}, err
	}
	sess, handle, err := s.open(instance)
	if err != nil {
		return LLMQueryResult{}, err
	}
	defer handle.Release()

	buf, err := sess.Buffer(bufferName)
	if err != nil {
		return LLMQueryResult{}, err
	}

	result := orch.Query(ctx, orchestrator.Chunk{ID: bufferName, Content: buf.Content}, query)
	sess.AddSubcallResults([]domain.SubcallResult{result})
	resultBuffer := s.storeSubcall(sess, result)
	sess.Record("llm_query", bufferName, domain.Preview(query))
	return LLMQueryResult{Result: result, ResultBuffer: resultBuffer}, nil
}

// SubcallSummary is the metadata view of one batched subcall.
type SubcallSummary struct {
	ChunkID      string `json:"chunk_id"`
	Findings     int    `json:"findings"`
	Failed       bool   `json:"failed"`
	Error        string `json:"error,omitempty"`
	ResultBuffer string `json:"result_buffer"`
}

// BatchResult is the outcome of dispatching a file's chunks.
type BatchResult struct {
	File     string           `json:"file"`
	Count    int              `json:"count"`
	Failures int              `json:"failures"`
	Subcalls []SubcallSummary `json:"subcalls"`
}

// SubcallBatch chunks a file and evaluates every chunk against the query
// in parallel. Count includes failed chunks; their summaries carry the
// failure marker.
func (s *Service) SubcallBatch(ctx context.Context, instance, file, query string, maxChunkBytes int) (BatchResult, error) {
	orch, err := s.orchestrate()
	if err != nil {
		return BatchResult{}, err
	}
	sess, handle, err := s.open(instance)
	if err != nil {
		return BatchResult{}, err
	}
	defer handle.Release()

	chunks, err := s.fileChunks(handle, file, maxChunkBytes)
	if err != nil {
		return BatchResult{}, err
	}

	results := orch.Batch(ctx, chunks, query)
	sess.AddSubcallResults(results)

	out := BatchResult{File: file, Count: len(results)}
	for _, r := range results {
		summary := SubcallSummary{
			ChunkID:      r.ChunkID,
			Findings:     len(r.Findings),
			Failed:       r.Failed(),
			Error:        r.Error,
			ResultBuffer: s.storeSubcall(sess, r),
		}
		if r.Failed() {
			out.Failures++
		}
		out.Subcalls = append(out.Subcalls, summary)
	}
	sess.Record("subcall_batch", file, fmt.Sprintf("%d chunks, %d failed", out.Count, out.Failures))
	return out, nil
}

// DeepQueryResult is the synthesized outcome of a recursive query.
type DeepQueryResult struct {
	Answer       string `json:"answer"`
	AnswerBuffer string `json:"answer_buffer"`
	ChunkCount   int    `json:"chunk_count"`
	Failures     int    `json:"failures"`
	Findings     int    `json:"findings"`
	Depth        int    `json:"depth"`
}

// DeepQuery chunks a file, scouts every chunk, and synthesizes one answer.
// Consumes one recursion level. A call made from inside a running deep
// query (the recursion state travels in ctx) descends from the enclosing
// depth; a top-level call starts at the root with maxDepth as its ceiling,
// falling back to the configured limit when non-positive.
func (s *Service) DeepQuery(ctx context.Context, instance, file, query string, maxDepth int) (DeepQueryResult, error) {
	orch, err := s.orchestrate()
	if err != nil {
		return DeepQueryResult{}, err
	}
	sess, handle, err := s.open(instance)
	if err != nil {
		return DeepQueryResult{}, err
	}
	defer handle.Release()

	chunks, err := s.fileChunks(handle, file, 0)
	if err != nil {
		return DeepQueryResult{}, err
	}

	cc, nested := orchestrator.FromContext(ctx)
	if !nested {
		if maxDepth <= 0 {
			maxDepth = s.limits.MaxDepth
		}
		cc = orchestrator.Root(maxDepth)
	}
	deep, err := orch.DeepQuery(ctx, cc, chunks, query)
	if err != nil {
		return DeepQueryResult{}, err
	}
	sess.AddSubcallResults(deep.Subcalls)
	for _, f := range deep.Findings {
		sess.AddFinding(f)
	}

	info, err := sess.CreateBuffer(sess.NextName("deep"), deep.Answer, domain.Provenance{
		Type:  domain.ProvenanceSubcall,
		Path:  file,
		Query: query,
	})
	if err != nil {
		return DeepQueryResult{}, err
	}
	sess.Record("deep_query", file, domain.Preview(deep.Answer))
	return DeepQueryResult{
		Answer:       deep.Answer,
		AnswerBuffer: info.Name,
		ChunkCount:   deep.ChunkCount,
		Failures:     deep.Failures,
		Findings:     len(deep.Findings),
		Depth:        deep.Depth,
	}, nil
}

// fileChunks loads a file and converts its semantic chunks into evaluator
// dispatch units.
func (s *Service) fileChunks(handle *project.Handle, file string, maxBytes int) ([]orchestrator.Chunk, error) {
	if maxBytes <= 0 {
		maxBytes = s.limits.MaxChunkBytes
	}
	ix := handle.Project().Index
	content, err := ix.Content(file)
	if err != nil {
		return nil, err
	}
	semantic, err := ix.SemanticChunks(file, maxBytes)
	if err != nil {
		return nil, err
	}
	chunks := make([]orchestrator.Chunk, len(semantic))
	for i, c := range semantic {
		chunks[i] = orchestrator.Chunk{
			ID:      fmt.Sprintf("%s#%d", file, c.Index),
			Content: string(content[c.ByteStart:c.ByteEnd]),
		}
	}
	return chunks, nil
}

// storeSubcall records one result in the session and mirrors its JSON into
// a subcall buffer, returning the buffer name.
func (s *Service) storeSubcall(sess *session.Session, result domain.SubcallResult) string {
	name := "subcall_" + sanitizeName(result.ChunkID)
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		data = []byte(result.Error)
	}
	info, err := sess.CreateBuffer(name, string(data), domain.Provenance{
		Type:        domain.ProvenanceSubcall,
		Query:       result.Query,
		Description: "subcall result for " + result.ChunkID,
	})
	if err != nil {
		return ""
	}
	return info.Name
}
