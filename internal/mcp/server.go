// ABOUTME: MCP server setup for the workout log.
// ABOUTME: Reads through the storage Repository and writes through the session reconciler.
package mcp

import (
	"context"
	"time"

	"github.com/harperreed/lift/internal/storage"
	"github.com/harperreed/lift/internal/workout"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with storage access for one user.
type Server struct {
	mcpServer *mcp.Server
	repo      storage.Repository
	rec       *workout.Reconciler
	userID    int64
	now       func() time.Time
}

// NewServer creates a new MCP server for userID.
func NewServer(repo storage.Repository, rec *workout.Reconciler, userID int64) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "lift",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		rec:       rec,
		userID:    userID,
		now:       time.Now,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
