package explorer

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// OrchestratorTools handles sub-evaluator dispatch tools.
type OrchestratorTools struct {
	service *Service
}

// NewOrchestratorTools creates the orchestration handlers.
func NewOrchestratorTools(service *Service) *OrchestratorTools {
	return &OrchestratorTools{service: service}
}

// LLMQueryArgs defines llm_query parameters.
type LLMQueryArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	Buffer   string `json:"buffer" jsonschema_description:"Buffer whose content to evaluate"`
	Query    string `json:"query" jsonschema_description:"Question to ask about the buffer content"`
}

// LLMQuery evaluates one buffer against a query.
func (t *OrchestratorTools) LLMQuery(ctx context.Context, req *mcp.CallToolRequest, args LLMQueryArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.LLMQuery(ctx, args.Instance, args.Buffer, args.Query)
	if err != nil {
		return failure(err)
	}
	if res.Result.Failed() {
		return success(fmt.Sprintf("Subcall failed: %s", res.Result.Error), res)
	}
	return success(fmt.Sprintf("%d findings from %q, result in buffer %q",
		len(res.Result.Findings), args.Buffer, res.ResultBuffer), res)
}

// SubcallBatchArgs defines subcall_batch parameters.
type SubcallBatchArgs struct {
	Instance      string `json:"instance" jsonschema_description:"Instance id from init"`
	File          string `json:"file" jsonschema_description:"File to chunk and evaluate"`
	Query         string `json:"query" jsonschema_description:"Question to ask each chunk"`
	MaxChunkBytes int    `json:"max_chunk_bytes,omitempty" jsonschema_description:"Target chunk size in bytes (default 5000)"`
}

// SubcallBatch evaluates every chunk of a file in parallel.
func (t *OrchestratorTools) SubcallBatch(ctx context.Context, req *mcp.CallToolRequest, args SubcallBatchArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.SubcallBatch(ctx, args.Instance, args.File, args.Query, args.MaxChunkBytes)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("%d chunks of %s evaluated, %d failed", res.Count, res.File, res.Failures), res)
}

// DeepQueryArgs defines deep_query parameters.
type DeepQueryArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	File     string `json:"file" jsonschema_description:"File to scout"`
	Query    string `json:"query" jsonschema_description:"Question to answer about the file"`
	MaxDepth int    `json:"max_depth,omitempty" jsonschema_description:"Recursion ceiling for nested deep queries (default 2)"`
}

// DeepQuery scouts a file's chunks and synthesizes one answer.
func (t *OrchestratorTools) DeepQuery(ctx context.Context, req *mcp.CallToolRequest, args DeepQueryArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.DeepQuery(ctx, args.Instance, args.File, args.Query, args.MaxDepth)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("Answer from %d chunks (%d failed) in buffer %q",
		res.ChunkCount, res.Failures, res.AnswerBuffer), res)
}

// RegisterOrchestratorTools registers the sub-evaluator tools.
func RegisterOrchestratorTools(server *mcp.Server, service *Service) {
	t := NewOrchestratorTools(service)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "llm_query",
		Description: "Evaluate one buffer's content against a query",
	}, t.LLMQuery)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "subcall_batch",
		Description: "Chunk a file and evaluate every chunk in parallel",
	}, t.SubcallBatch)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "deep_query",
		Description: "Scout a file's chunks and synthesize one answer",
	}, t.DeepQuery)
}
