package explorer

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AnnotationTools handles project annotation tools.
type AnnotationTools struct {
	service *Service
}

// NewAnnotationTools creates the annotation handlers.
func NewAnnotationTools(service *Service) *AnnotationTools {
	return &AnnotationTools{service: service}
}

// DefineFileArgs defines define_file parameters.
type DefineFileArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	File     string `json:"file" jsonschema_description:"File path relative to the project root"`
	Text     string `json:"text" jsonschema_description:"Definition text"`
}

// DefineFile attaches a first-time definition to a file.
func (t *AnnotationTools) DefineFile(ctx context.Context, req *mcp.CallToolRequest, args DefineFileArgs) (*mcp.CallToolResult, any, error) {
	if err := t.service.DefineFile(args.Instance, args.File, args.Text); err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("Defined %s", args.File), nil)
}

// RedefineFile replaces a file definition.
func (t *AnnotationTools) RedefineFile(ctx context.Context, req *mcp.CallToolRequest, args DefineFileArgs) (*mcp.CallToolResult, any, error) {
	if err := t.service.RedefineFile(args.Instance, args.File, args.Text); err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("Redefined %s", args.File), nil)
}

// DefineSymbolArgs defines define_symbol parameters.
type DefineSymbolArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	File     string `json:"file" jsonschema_description:"File containing the symbol"`
	Symbol   string `json:"symbol" jsonschema_description:"Symbol name"`
	Text     string `json:"text" jsonschema_description:"Definition text"`
}

// DefineSymbol attaches a first-time definition to a symbol.
func (t *AnnotationTools) DefineSymbol(ctx context.Context, req *mcp.CallToolRequest, args DefineSymbolArgs) (*mcp.CallToolResult, any, error) {
	if err := t.service.DefineSymbol(args.Instance, args.File, args.Symbol, args.Text); err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("Defined %s::%s", args.File, args.Symbol), nil)
}

// RedefineSymbol replaces a symbol definition.
func (t *AnnotationTools) RedefineSymbol(ctx context.Context, req *mcp.CallToolRequest, args DefineSymbolArgs) (*mcp.CallToolResult, any, error) {
	if err := t.service.RedefineSymbol(args.Instance, args.File, args.Symbol, args.Text); err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("Redefined %s::%s", args.File, args.Symbol), nil)
}

// MarkFileArgs defines mark_file parameters.
type MarkFileArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
	File     string `json:"file" jsonschema_description:"File path relative to the project root"`
	Status   string `json:"status" jsonschema_description:"Exploration status (e.g. explored, partial, skip)"`
	Note     string `json:"note,omitempty" jsonschema_description:"Optional note"`
}

// MarkFile records an exploration status for a file.
func (t *AnnotationTools) MarkFile(ctx context.Context, req *mcp.CallToolRequest, args MarkFileArgs) (*mcp.CallToolResult, any, error) {
	if err := t.service.MarkFile(args.Instance, args.File, args.Status, args.Note); err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("Marked %s as %s", args.File, args.Status), nil)
}

// AnnotationsArgs defines save_annotations and load_annotations parameters.
type AnnotationsArgs struct {
	Instance string `json:"instance" jsonschema_description:"Instance id from init"`
}

// Save persists annotations to the project's annotation file.
func (t *AnnotationTools) Save(ctx context.Context, req *mcp.CallToolRequest, args AnnotationsArgs) (*mcp.CallToolResult, any, error) {
	sum, err := t.service.SaveAnnotations(args.Instance)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("Saved %d file and %d symbol definitions, %d marks", sum.Files, sum.Symbols, sum.Marked), sum)
}

// Load reloads annotations from disk.
func (t *AnnotationTools) Load(ctx context.Context, req *mcp.CallToolRequest, args AnnotationsArgs) (*mcp.CallToolResult, any, error) {
	sum, err := t.service.LoadAnnotations(args.Instance)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("Loaded %d file and %d symbol definitions, %d marks", sum.Files, sum.Symbols, sum.Marked), sum)
}

// RegisterAnnotationTools registers the annotation tools.
func RegisterAnnotationTools(server *mcp.Server, service *Service) {
	t := NewAnnotationTools(service)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "define_file",
		Description: "Attach a definition to a file; fails if one exists",
	}, t.DefineFile)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "redefine_file",
		Description: "Replace a file's definition",
	}, t.RedefineFile)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "define_symbol",
		Description: "Attach a definition to a symbol; fails if one exists",
	}, t.DefineSymbol)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "redefine_symbol",
		Description: "Replace a symbol's definition",
	}, t.RedefineSymbol)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "mark_file",
		Description: "Record an exploration status for a file",
	}, t.MarkFile)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_annotations",
		Description: "Persist annotations to the project's annotation file",
	}, t.Save)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "load_annotations",
		Description: "Reload annotations from disk, replacing in-memory state",
	}, t.Load)
}
