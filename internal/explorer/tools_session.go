package explorer

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SessionTools handles session and project lifecycle tools.
type SessionTools struct {
	service *Service
}

// NewSessionTools creates the session lifecycle handlers.
func NewSessionTools(service *Service) *SessionTools {
	return &SessionTools{service: service}
}

// InitArgs defines init parameters.
type InitArgs struct {
	ProjectRoot string `json:"project_root" jsonschema_description:"Absolute path of the project directory to index"`
	Instance    string `json:"instance_id,omitempty" jsonschema_description:"Previously issued instance id to resume; omit to start fresh"`
}

// Init opens a project and returns an instance id bound to it.
func (t *SessionTools) Init(ctx context.Context, req *mcp.CallToolRequest, args InitArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.Init(ctx, args.ProjectRoot, args.Instance)
	if err != nil {
		return failure(err)
	}
	verb := "Session"
	if res.Resumed {
		verb = "Resumed session"
	}
	return success(fmt.Sprintf("%s %s on %s: %d files, %d symbols", verb, res.Instance, res.Root, res.Files, res.Symbols), res)
}

// CleanupArgs defines cleanup parameters.
type CleanupArgs struct {
	ProjectRoot string `json:"project_root" jsonschema_description:"Project root to close"`
}

// Cleanup closes a project and drops its sessions.
func (t *SessionTools) Cleanup(ctx context.Context, req *mcp.CallToolRequest, args CleanupArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.Cleanup(args.ProjectRoot)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("Closed %s, dropped %d sessions", res.Root, res.SessionsDropped), res)
}

// StatusArgs defines status parameters.
type StatusArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
}

// Status reports project and session accounting.
func (t *SessionTools) Status(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.Status(args.Instance)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("%s: %d files, %d symbols, %d buffers holding %d bytes",
		res.ProjectRoot, res.Files, res.Symbols, len(res.Buffers), res.BufferBytes), res)
}

// HistoryArgs defines history parameters.
type HistoryArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	Limit    int    `json:"limit,omitempty" jsonschema_description:"Most recent entries to return (0 for all)"`
}

// History lists served queries.
func (t *SessionTools) History(ctx context.Context, req *mcp.CallToolRequest, args HistoryArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.History(args.Instance, args.Limit)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("%d of %d history entries", len(res.Entries), res.Total), res)
}

// CheckFinalArgs defines check_final parameters.
type CheckFinalArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
}

// CheckFinal reports whether a final answer was produced.
func (t *SessionTools) CheckFinal(ctx context.Context, req *mcp.CallToolRequest, args CheckFinalArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.service.CheckFinal(args.Instance)
	if err != nil {
		return failure(err)
	}
	if !res.Set {
		return success("No final answer yet", res)
	}
	return success("Final answer is set", res)
}

// RegisterSessionTools registers session lifecycle tools.
func RegisterSessionTools(server *mcp.Server, service *Service) {
	t := NewSessionTools(service)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "init",
		Description: "Index a project directory and start an exploration session",
	}, t.Init)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "cleanup",
		Description: "Close an open project and drop its sessions",
	}, t.Cleanup)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "status",
		Description: "Report project, session, buffer, and token accounting",
	}, t.Status)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "history",
		Description: "List the queries served in this session",
	}, t.History)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_final",
		Description: "Check whether the session produced a final answer",
	}, t.CheckFinal)
}
