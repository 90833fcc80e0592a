package explorer

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReplTool handles the Starlark scripting tool.
type ReplTool struct {
	service *Service
}

// NewReplTool creates the script execution handler.
func NewReplTool(service *Service) *ReplTool {
	return &ReplTool{service: service}
}

// ReplArgs defines repl parameters.
type ReplArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	Code     string `json:"code" jsonschema_description:"Starlark script; print() output goes to a stdout buffer"`
}

// Run executes a script against the session. Script errors come back in
// the result so partial stdout is still usable.
func (t *ReplTool) Run(ctx context.Context, req *mcp.CallToolRequest, args ReplArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.Repl(ctx, args.Instance, args.Code)
	if err != nil {
		return failure(err)
	}
	if res.Error != "" {
		return success(fmt.Sprintf("Script failed after %d steps, stdout in buffer %q: %s",
			res.Steps, res.StdoutBuffer.Name, res.Error), res)
	}
	return success(fmt.Sprintf("Script ran %d steps, stdout in buffer %q", res.Steps, res.StdoutBuffer.Name), res)
}

// RegisterReplTool registers the scripting tool.
func RegisterReplTool(server *mcp.Server, service *Service) {
	t := NewReplTool(service)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "repl",
		Description: "Run a Starlark script with query, buffer, and subcall builtins",
	}, t.Run)
}
