package explorer

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// VarTools handles session variable tools.
type VarTools struct {
	service *Service
}

// NewVarTools creates the session variable handlers.
func NewVarTools(service *Service) *VarTools {
	return &VarTools{service: service}
}

// VarListArgs defines var_list parameters.
type VarListArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
}

// List lists the session's variables with value previews.
func (t *VarTools) List(ctx context.Context, req *mcp.CallToolRequest, args VarListArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.VarList(args.Instance)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("%d variables, final set: %v", len(res.Variables), res.FinalSet), res)
}

// VarSetArgs defines var_set parameters.
type VarSetArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	Name     string `json:"name" jsonschema_description:"Variable name; Final fills the final-result slot"`
	Value    string `json:"value" jsonschema_description:"Value to store"`
}

// Set stores a variable.
func (t *VarTools) Set(ctx context.Context, req *mcp.CallToolRequest, args VarSetArgs) (*mcp.CallToolResult, any, error) {
	if err := t.service.VarSet(args.Instance, args.Name, args.Value); err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("Set %q (%d bytes)", args.Name, len(args.Value)), nil)
}

// VarGetArgs defines var_get parameters.
type VarGetArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	Name     string `json:"name" jsonschema_description:"Variable name"`
}

// VarGetResult carries a variable's full value.
type VarGetResult struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Get reads a variable's full value.
func (t *VarTools) Get(ctx context.Context, req *mcp.CallToolRequest, args VarGetArgs) (*mcp.CallToolResult, any, error) {
	value, err := t.service.VarGet(args.Instance, args.Name)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("%q holds %d bytes", args.Name, len(value)), VarGetResult{Name: args.Name, Value: value})
}

// VarDeleteArgs defines var_delete parameters.
type VarDeleteArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	Name     string `json:"name" jsonschema_description:"Variable name"`
}

// Delete removes a variable.
func (t *VarTools) Delete(ctx context.Context, req *mcp.CallToolRequest, args VarDeleteArgs) (*mcp.CallToolResult, any, error) {
	if err := t.service.VarDelete(args.Instance, args.Name); err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("Deleted %q", args.Name), nil)
}

// RegisterVarTools registers the variable tools.
func RegisterVarTools(server *mcp.Server, service *Service) {
	t := NewVarTools(service)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "var_list",
		Description: "List session variables with value previews",
	}, t.List)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "var_set",
		Description: "Store a session variable; Final records the final answer",
	}, t.Set)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "var_get",
		Description: "Read a session variable's full value",
	}, t.Get)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "var_delete",
		Description: "Delete a session variable",
	}, t.Delete)
}
