// ABOUTME: MCP resource definitions
// ABOUTME: Provides read-only views of todos and activity history

package mcp

import (
	"context"
	"encoding/json"

	"github.com/harper/stride/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	todosURI      = "stride://todos"
	activitiesURI = "stride://activities"
)

func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		Name:        todosURI,
		Description: "All of the user's todos ordered by start time",
		URI:         todosURI,
		MIMEType:    "application/json",
	}, s.handleTodosResource)

	s.mcp.AddResource(&mcp.Resource{
		Name:        activitiesURI,
		Description: "The user's activity history, newest first",
		URI:         activitiesURI,
		MIMEType:    "application/json",
	}, s.handleActivitiesResource)
}

func jsonResource(uri string, v interface{}) *mcp.ReadResourceResult {
	jsonBytes, _ := json.MarshalIndent(v, "", "  ") //nolint:errchkjson // output is always serializable
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		},
	}
}

func (s *Server) handleTodosResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	output, err := s.listTodos(ctx, models.TodoFilter{})
	if err != nil {
		return nil, err
	}
	return jsonResource(todosURI, output), nil
}

func (s *Server) handleActivitiesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	output, err := s.listActivities(ctx, "", 0)
	if err != nil {
		return nil, err
	}
	return jsonResource(activitiesURI, output), nil
}
