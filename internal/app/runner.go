package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sightglass-mcp/sightglass/internal/config"
	"github.com/sightglass-mcp/sightglass/internal/explorer"
	mcputil "github.com/sightglass-mcp/sightglass/internal/mcp"
	"github.com/sightglass-mcp/sightglass/internal/orchestrator"
	"github.com/sightglass-mcp/sightglass/internal/project"
	"github.com/sightglass-mcp/sightglass/internal/session"
	"github.com/spf13/pflag"
)

// RunParams contains dependencies for the run function
type RunParams struct {
	LoadSettings      func(*pflag.FlagSet) (*config.Settings, error)
	ValidSettings     func(*config.Settings) error
	StartSSEServer    func(*mcp.Server, *config.Settings) error
	CreateServer      func(*config.Settings) (*mcp.Server, func(), error)
	CustomIOTransport mcp.Transport // Optional: for testing with custom IO
}

// DefaultRunParams returns production dependencies
func DefaultRunParams() RunParams {
	return RunParams{
		LoadSettings:   config.LoadSettingsWithFlags,
		ValidSettings:  config.ValidateSettings,
		StartSSEServer: StartSSEServer,
		CreateServer:   CreateMCPServer,
	}
}

// RunWithDeps executes the server with the provided dependencies
func RunWithDeps(ctx context.Context, params RunParams, flags *pflag.FlagSet, version string) error {
	// Load settings
	settings, err := params.LoadSettings(flags)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// Validate settings for conflicting configurations
	if err := params.ValidSettings(settings); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Configure logging - always use stderr; stdout belongs to the stdio
	// transport
	handler := slog.NewTextHandler(os.Stderr, nil)
	slog.SetDefault(slog.New(handler))

	slog.Info("Starting sightglass server", "version", version)
	config.Log(settings)

	mcpServer, cleanup, err := params.CreateServer(settings)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	// Start server
	if settings.Transport == "stdio" {
		// Use custom transport if provided (for testing), otherwise use stdio
		transport := params.CustomIOTransport
		if transport == nil {
			transport = &mcp.StdioTransport{}
		}
		return mcpServer.Run(ctx, transport)
	} else {
		slog.Info("Starting SSE server", "host", settings.Host, "port", settings.Port)
		return params.StartSSEServer(mcpServer, settings)
	}
}

// CreateMCPServer wires the registry, session store, orchestrator, and
// explorer service into an MCP server with registered tools
func CreateMCPServer(settings *config.Settings) (*mcp.Server, func(), error) {
	log := slog.Default()

	sessions := session.NewStore()
	registry := project.NewRegistry(settings.Explorer.ProjectCapacity, sessions, log)

	var orch *orchestrator.Orchestrator
	if settings.Evaluator.Enabled {
		eval := orchestrator.NewChatEvaluator(orchestrator.ChatConfig{
			BaseURL: settings.Evaluator.BaseURL,
			Model:   settings.Evaluator.Model,
			Timeout: settings.Evaluator.Timeout,
		})
		orch = orchestrator.New(eval, log, settings.Evaluator.Parallelism, settings.Evaluator.MaxDepth)
	}

	service := explorer.NewService(registry, sessions, orch, explorer.Limits{
		MaxChunkBytes: settings.Explorer.MaxChunkBytes,
		PeekMaxLines:  settings.Explorer.PeekMaxLines,
		MaxDepth:      settings.Evaluator.MaxDepth,
		ReplMaxSteps:  settings.Explorer.ReplMaxSteps,
	}, log)

	server := mcputil.CreateServer(mcputil.ServerConfig{
		Name:    "sightglass",
		Version: "1.0.0",
		Service: service,
	})

	cleanup := func() {
		for _, root := range registry.Roots() {
			if _, err := registry.Remove(root); err != nil {
				slog.Error("Failed to close project", "root", root, "error", err)
			}
		}
	}

	return server, cleanup, nil
}
