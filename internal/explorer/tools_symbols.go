package explorer

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SymbolTools handles structural query tools.
type SymbolTools struct {
	service *Service
}

// NewSymbolTools creates the structural query handlers.
func NewSymbolTools(service *Service) *SymbolTools {
	return &SymbolTools{service: service}
}

// StructureArgs defines structure parameters.
type StructureArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	MaxDepth int    `json:"max_depth,omitempty" jsonschema_description:"Tree depth to render (0 for unlimited)"`
}

// Structure renders the project tree into the structure buffer.
func (t *SymbolTools) Structure(ctx context.Context, req *mcp.CallToolRequest, args StructureArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.Structure(args.Instance, args.MaxDepth)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("Tree of %d files in buffer %q", res.Files, res.Buffer.Name), res)
}

// SearchArgs defines search parameters.
type SearchArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	Query    string `json:"query" jsonschema_description:"Symbol name or fragment to search for"`
	Kind     string `json:"kind,omitempty" jsonschema_description:"Restrict to one symbol kind (function, method, class, struct, interface, enum, trait, type, constant, module, test)"`
	Limit    int    `json:"limit,omitempty" jsonschema_description:"Maximum results (default 5)"`
}

// Search ranks symbols against a name query.
func (t *SymbolTools) Search(ctx context.Context, req *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.Search(args.Instance, args.Query, args.Kind, args.Limit)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("%d of %d matches for %q", len(res.Results), res.Total, args.Query), res)
}

// SymbolsArgs defines symbols parameters.
type SymbolsArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	File     string `json:"file" jsonschema_description:"File path relative to the project root"`
	Kind     string `json:"kind,omitempty" jsonschema_description:"Restrict to one symbol kind"`
	Limit    int    `json:"limit,omitempty" jsonschema_description:"Maximum results (default 10)"`
}

// Symbols lists a file's definitions.
func (t *SymbolTools) Symbols(ctx context.Context, req *mcp.CallToolRequest, args SymbolsArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.Symbols(args.Instance, args.File, args.Kind, args.Limit)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("%d of %d symbols in %s", len(res.Symbols), res.Total, args.File), res)
}

// ImplArgs defines impl parameters.
type ImplArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	File     string `json:"file" jsonschema_description:"File containing the symbol"`
	Name     string `json:"name" jsonschema_description:"Symbol name"`
}

// Impl loads a symbol's implementation into a buffer.
func (t *SymbolTools) Impl(ctx context.Context, req *mcp.CallToolRequest, args ImplArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.Impl(args.Instance, args.File, args.Name)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("%s (%d lines) in buffer %q", res.Symbol.Signature, res.Buffer.LineCount, res.Buffer.Name), res)
}

// CallersArgs defines callers parameters.
type CallersArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	Name     string `json:"name" jsonschema_description:"Callee name to find references to"`
	Limit    int    `json:"limit,omitempty" jsonschema_description:"Maximum results (default 5)"`
}

// Callers lists lexical call sites of a name.
func (t *SymbolTools) Callers(ctx context.Context, req *mcp.CallToolRequest, args CallersArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.Callers(args.Instance, args.Name, args.Limit)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("%d of %d call sites for %q", len(res.Callers), res.Total, args.Name), res)
}

// TestsArgs defines tests parameters.
type TestsArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	Name     string `json:"name" jsonschema_description:"Symbol name to find tests for"`
	Limit    int    `json:"limit,omitempty" jsonschema_description:"Maximum results (default 5)"`
}

// Tests lists test definitions mentioning a symbol.
func (t *SymbolTools) Tests(ctx context.Context, req *mcp.CallToolRequest, args TestsArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.Tests(args.Instance, args.Name, args.Limit)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("%d of %d tests mention %q", len(res.Tests), res.Total, args.Name), res)
}

// VariablesArgs defines variables parameters.
type VariablesArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	File     string `json:"file" jsonschema_description:"File containing the symbol"`
	Symbol   string `json:"symbol" jsonschema_description:"Symbol whose local variables to list"`
}

// Variables lists the locals of a symbol.
func (t *SymbolTools) Variables(ctx context.Context, req *mcp.CallToolRequest, args VariablesArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.Variables(args.Instance, args.File, args.Symbol)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("%d variables in %s::%s", res.Total, args.File, args.Symbol), res)
}

// RegisterSymbolTools registers the structural query tools.
func RegisterSymbolTools(server *mcp.Server, service *Service) {
	t := NewSymbolTools(service)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "structure",
		Description: "Render the project directory tree into a buffer",
	}, t.Structure)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search",
		Description: "Rank indexed symbols against a name query",
	}, t.Search)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "symbols",
		Description: "List the definitions in one file",
	}, t.Symbols)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "impl",
		Description: "Load a symbol's implementation into a session buffer",
	}, t.Impl)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "callers",
		Description: "List call sites referencing a symbol name",
	}, t.Callers)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "tests",
		Description: "List tests whose bodies mention a symbol",
	}, t.Tests)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "variables",
		Description: "List the local variables bound inside a symbol",
	}, t.Variables)
}
