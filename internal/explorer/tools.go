package explorer

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// failure converts a service error into a tool-level failure the caller
// sees as text. Protocol errors stay nil; a bad query is not a broken
// server.
func failure(err error) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}, nil, nil
}

// success pairs a short text summary with the structured result.
func success(summary string, out any) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: summary}},
	}, out, nil
}

// RegisterAllTools registers the complete tool surface on an MCP server.
func RegisterAllTools(server *mcp.Server, service *Service) {
	RegisterSessionTools(server, service)
	RegisterSymbolTools(server, service)
	RegisterContentTools(server, service)
	RegisterBufferTools(server, service)
	RegisterVarTools(server, service)
	RegisterAnnotationTools(server, service)
	RegisterOrchestratorTools(server, service)
	RegisterReplTool(server, service)
}
