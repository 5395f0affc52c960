package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/zigbee-shepherd/shepherd/pkg/shepherd"
)

// Server wraps the MCP server, exposing the Shepherd's façade as a set
// of tool calls over stdio.
type Server struct {
	mcpServer *server.MCPServer
	shepherd  *shepherd.Shepherd
}

// NewServer creates a new MCP server over a started (or startable)
// Shepherd.
func NewServer(s *shepherd.Shepherd) *Server {
	srv := &Server{shepherd: s}

	srv.mcpServer = server.NewMCPServer(
		"shepherd",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	srv.registerTools()

	return srv
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
