// ABOUTME: MCP server setup for the rehab progression engine.
// ABOUTME: Wraps the MCP server with an engine and a default user.
package mcp

import (
	"context"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
)

// Server wraps the MCP server with engine access.
type Server struct {
	mcpServer *mcp.Server
	engine    *engine.Engine
	userID    string
	log       logrus.FieldLogger
}

// NewServer creates a new MCP server. userID is used by tools and
// resources when a call does not name a user.
func NewServer(eng *engine.Engine, userID string, log logrus.FieldLogger) (*Server, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "rehab",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		engine:    eng,
		userID:    userID,
		log:       log,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.log.WithField("user", s.userID).Info("mcp server listening on stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// user picks the explicit user or the server default.
func (s *Server) user(id string) string {
	if id != "" {
		return id
	}
	return s.userID
}
