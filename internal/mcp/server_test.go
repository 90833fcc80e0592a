package mcp

import (
	"log/slog"
	"testing"

	"github.com/sightglass-mcp/sightglass/internal/explorer"
	"github.com/sightglass-mcp/sightglass/internal/project"
	"github.com/sightglass-mcp/sightglass/internal/session"
)

func testService() *explorer.Service {
	log := slog.New(slog.DiscardHandler)
	sessions := session.NewStore()
	registry := project.NewRegistry(5, sessions, log)
	return explorer.NewService(registry, sessions, nil, explorer.Limits{}, log)
}

func TestCreateServer(t *testing.T) {
	cfg := ServerConfig{
		Name:    "test-server",
		Version: "1.0.0",
		Service: testService(),
	}

	server := CreateServer(cfg)
	if server == nil {
		t.Fatal("Expected server to be created")
	}
}

func TestCreateServer_WithVersion(t *testing.T) {
	cfg := ServerConfig{
		Name:    "sightglass",
		Version: "2.0.0",
		Service: testService(),
	}

	server := CreateServer(cfg)
	if server == nil {
		t.Fatal("Expected server to be created")
	}
}

func TestCreateServer_ToolsRegistered(t *testing.T) {
	cfg := ServerConfig{
		Name:    "test-server",
		Version: "1.0.0",
		Service: testService(),
	}

	server := CreateServer(cfg)
	if server == nil {
		t.Fatal("Expected server to be created")
	}

	// The server is created with tools registered.
	// The MCP SDK doesn't expose a way to list registered tools,
	// so we just verify the server was created successfully.
	// Integration tests will verify tools are accessible via MCP protocol.
}
