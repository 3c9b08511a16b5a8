// ABOUTME: MCP server initialization and configuration
// ABOUTME: Sets up server with todo and activity tools and resources for AI agents

package mcp

import (
	"context"
	"fmt"

	"github.com/harper/stride/internal/identity"
	"github.com/harper/stride/internal/models"
	"github.com/harper/stride/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps an MCP server with a storage repository.
type Server struct {
	mcp   *mcp.Server
	repo  storage.Repository
	users identity.Provider
	goal  float64
}

// Option configures a Server.
type Option func(*Server)

// WithGoal sets the distance goal reported by log_activity.
func WithGoal(meters float64) Option {
	return func(s *Server) { s.goal = meters }
}

// NewServer creates MCP server with all capabilities.
func NewServer(repo storage.Repository, users identity.Provider, opts ...Option) (*Server, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if users == nil {
		return nil, fmt.Errorf("identity provider is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "stride",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:   mcpServer,
		repo:  repo,
		users: users,
		goal:  models.DefaultGoalMeters,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) userID(ctx context.Context) (string, error) {
	id, err := s.users.UserID(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve user: %w", err)
	}
	return id, nil
}
