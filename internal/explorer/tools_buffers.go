package explorer

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// BufferTools handles session buffer tools.
type BufferTools struct {
	service *Service
}

// NewBufferTools creates the buffer handlers.
func NewBufferTools(service *Service) *BufferTools {
	return &BufferTools{service: service}
}

// BufferListArgs defines buffer_list parameters.
type BufferListArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
}

// List returns metadata for every session buffer.
func (t *BufferTools) List(ctx context.Context, req *mcp.CallToolRequest, args BufferListArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.BufferList(args.Instance)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("%d buffers", res.Count), res)
}

// BufferCreateArgs defines buffer_create parameters.
type BufferCreateArgs struct {
	Instance    string `json:"instance" jsonschema_description:"Instance id from init"`
	Name        string `json:"name" jsonschema_description:"Buffer name; an existing buffer of this name is replaced"`
	Content     string `json:"content" jsonschema_description:"Content to store"`
	Description string `json:"description,omitempty" jsonschema_description:"What this content is"`
}

// Create stores caller-supplied content in a buffer.
func (t *BufferTools) Create(ctx context.Context, req *mcp.CallToolRequest, args BufferCreateArgs) (*mcp.CallToolResult, any, error) {
	info, err := t.service.BufferCreate(args.Instance, args.Name, args.Content, args.Description)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("Buffer %q holds %d bytes", info.Name, info.SizeBytes), info)
}

// BufferFromFileArgs defines buffer_from_file parameters.
type BufferFromFileArgs struct {
	Instance  string `json:"instance" jsonschema_description:"Instance id from init"`
	File      string `json:"file" jsonschema_description:"File path relative to the project root"`
	Name      string `json:"name,omitempty" jsonschema_description:"Buffer name (defaults to file_<path>)"`
	StartLine int    `json:"start_line,omitempty" jsonschema_description:"First line to include, 1-based"`
	EndLine   int    `json:"end_line,omitempty" jsonschema_description:"Last line to include"`
}

// FromFile loads a file (or line window) into a buffer.
func (t *BufferTools) FromFile(ctx context.Context, req *mcp.CallToolRequest, args BufferFromFileArgs) (*mcp.CallToolResult, any, error) {
	info, err := t.service.BufferFromFile(args.Instance, args.Name, args.File, args.StartLine, args.EndLine)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("Buffer %q holds %d lines of %s", info.Name, info.LineCount, args.File), info)
}

// BufferFromSymbolArgs defines buffer_from_symbol parameters.
type BufferFromSymbolArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	File     string `json:"file" jsonschema_description:"File containing the symbol"`
	Symbol   string `json:"symbol" jsonschema_description:"Symbol name"`
	Name     string `json:"name,omitempty" jsonschema_description:"Buffer name (defaults to impl_<symbol>)"`
}

// FromSymbol loads a symbol's definition into a buffer.
func (t *BufferTools) FromSymbol(ctx context.Context, req *mcp.CallToolRequest, args BufferFromSymbolArgs) (*mcp.CallToolResult, any, error) {
	info, err := t.service.BufferFromSymbol(args.Instance, args.Name, args.File, args.Symbol)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("Buffer %q holds %s::%s", info.Name, args.File, args.Symbol), info)
}

// BufferInfoArgs defines buffer_info parameters.
type BufferInfoArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	Name     string `json:"name" jsonschema_description:"Buffer name"`
}

// Info returns one buffer's metadata.
func (t *BufferTools) Info(ctx context.Context, req *mcp.CallToolRequest, args BufferInfoArgs) (*mcp.CallToolResult, any, error) {
	info, err := t.service.BufferInfo(args.Instance, args.Name)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("Buffer %q: %d bytes, %d lines", info.Name, info.SizeBytes, info.LineCount), info)
}

// BufferPeekArgs defines buffer_peek parameters.
type BufferPeekArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	Name     string `json:"name" jsonschema_description:"Buffer name"`
	Offset   int    `json:"offset,omitempty" jsonschema_description:"Byte offset to start at"`
	Length   int    `json:"length,omitempty" jsonschema_description:"Bytes to return (capped at 500)"`
}

// Peek returns a bounded slice of raw buffer content.
func (t *BufferTools) Peek(ctx context.Context, req *mcp.CallToolRequest, args BufferPeekArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.BufferPeek(args.Instance, args.Name, args.Offset, args.Length)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("%d bytes of %q from offset %d, %d remaining", len(res.Content), res.Name, res.Offset, res.Remaining), res)
}

// BufferDeleteArgs defines buffer_delete parameters.
type BufferDeleteArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	Name     string `json:"name" jsonschema_description:"Buffer name"`
}

// Delete removes a buffer.
func (t *BufferTools) Delete(ctx context.Context, req *mcp.CallToolRequest, args BufferDeleteArgs) (*mcp.CallToolResult, any, error) {
	if err := t.service.BufferDelete(args.Instance, args.Name); err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("Deleted buffer %q", args.Name), nil)
}

// RegisterBufferTools registers the buffer tools.
func RegisterBufferTools(server *mcp.Server, service *Service) {
	t := NewBufferTools(service)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "buffer_list",
		Description: "List session buffers with size, lines, and provenance",
	}, t.List)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "buffer_create",
		Description: "Store content in a named session buffer",
	}, t.Create)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "buffer_from_file",
		Description: "Load a file or line window into a buffer",
	}, t.FromFile)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "buffer_from_symbol",
		Description: "Load a symbol's definition into a buffer",
	}, t.FromSymbol)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "buffer_info",
		Description: "Get a buffer's metadata without its content",
	}, t.Info)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "buffer_peek",
		Description: "Read a bounded byte range of a buffer",
	}, t.Peek)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "buffer_delete",
		Description: "Delete a session buffer",
	}, t.Delete)
}
