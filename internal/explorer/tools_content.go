package explorer

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ContentTools handles content-window and chunking tools.
type ContentTools struct {
	service *Service
}

// NewContentTools creates the content query handlers.
func NewContentTools(service *Service) *ContentTools {
	return &ContentTools{service: service}
}

// PeekArgs defines peek parameters.
type PeekArgs struct {
	Instance  string `json:"instance" jsonschema_description:"Instance id from init"`
	File      string `json:"file" jsonschema_description:"File path relative to the project root"`
	StartLine int    `json:"start_line,omitempty" jsonschema_description:"First line of the window, 1-based (default 1)"`
	EndLine   int    `json:"end_line,omitempty" jsonschema_description:"Last line of the window (default start+99)"`
}

// Peek loads a line window of a file into a buffer.
func (t *ContentTools) Peek(ctx context.Context, req *mcp.CallToolRequest, args PeekArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.Peek(args.Instance, args.File, args.StartLine, args.EndLine)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("Lines %d-%d of %s in buffer %q", res.StartLine, res.EndLine, res.File, res.Buffer.Name), res)
}

// GrepArgs defines grep parameters.
type GrepArgs struct {
	Instance     string `json:"instance" jsonschema_description:"Instance id from init"`
	Pattern      string `json:"pattern" jsonschema_description:"Go regular expression"`
	FileGlob     string `json:"file_glob,omitempty" jsonschema_description:"Restrict to files matching this glob (e.g. *.go)"`
	Scope        string `json:"scope,omitempty" jsonschema_description:"all (default) or code to skip comments and strings"`
	ContextLines int    `json:"context_lines,omitempty" jsonschema_description:"Context lines stored around each match (default 2)"`
	Limit        int    `json:"limit,omitempty" jsonschema_description:"Maximum matches returned (default 5)"`
}

// Grep searches indexed files with a regex.
func (t *ContentTools) Grep(ctx context.Context, req *mcp.CallToolRequest, args GrepArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.Grep(args.Instance, args.Pattern, args.FileGlob, args.Scope, args.ContextLines, args.Limit)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("%d of %d matches, full lines in buffer %q", len(res.Matches), res.Total, res.Buffer.Name), res)
}

// SemanticChunksArgs defines semantic_chunks parameters.
type SemanticChunksArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	File     string `json:"file" jsonschema_description:"File path relative to the project root"`
	MaxBytes int    `json:"max_bytes,omitempty" jsonschema_description:"Target chunk size in bytes (default 5000)"`
}

// SemanticChunks splits a file along symbol boundaries.
func (t *ContentTools) SemanticChunks(ctx context.Context, req *mcp.CallToolRequest, args SemanticChunksArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.SemanticChunks(args.Instance, args.File, args.MaxBytes)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("%s splits into %d chunks", res.File, res.Count), res)
}

// RegisterContentTools registers the content-window tools.
func RegisterContentTools(server *mcp.Server, service *Service) {
	t := NewContentTools(service)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "peek",
		Description: "Load a line window of a file into a session buffer",
	}, t.Peek)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "grep",
		Description: "Regex search over indexed files, matches buffered",
	}, t.Grep)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "semantic_chunks",
		Description: "Split a file into symbol-aligned chunks",
	}, t.SemanticChunks)
}
