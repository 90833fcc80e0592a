package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sightglass-mcp/sightglass/internal/explorer"
)

// ServerConfig contains configuration for creating an MCP server
type ServerConfig struct {
	Name    string
	Version string
	Service *explorer.Service
}

// CreateServer creates the MCP server and registers the explorer tool
// surface on it.
func CreateServer(cfg ServerConfig) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	explorer.RegisterAllTools(s, cfg.Service)

	return s
}
