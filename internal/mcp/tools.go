// ABOUTME: MCP tool definitions and handlers
// ABOUTME: Todo CRUD and activity logging for AI agents

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harper/stride/internal/location"
	"github.com/harper/stride/internal/models"
	"github.com/harper/stride/internal/storage"
	"github.com/harper/stride/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	s.registerAddTodoTool()
	s.registerListTodosTool()
	s.registerUpdateTodoStatusTool()
	s.registerDeleteTodoTool()
	s.registerLogActivityTool()
	s.registerListActivitiesTool()
}

func textResult(v interface{}) *mcp.CallToolResult {
	jsonBytes, _ := json.MarshalIndent(v, "", "  ") //nolint:errchkjson // output is always serializable
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(jsonBytes)}},
	}
}

// TodoOutput defines output for todo tools.
type TodoOutput struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
}

func todoOutput(t *models.Todo) TodoOutput {
	return TodoOutput{
		ID:          t.ID.String(),
		Title:       t.Title,
		Category:    t.Category,
		StartTime:   t.StartTime,
		EndTime:     t.EndTime,
		Description: t.Description,
		Status:      t.Status(),
	}
}

// AddTodoInput defines input for add_todo tool.
type AddTodoInput struct {
	Title          string `json:"title"`
	Category       string `json:"category,omitempty"`
	CustomCategory string `json:"custom_category,omitempty"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time,omitempty"`
	EndTime        string `json:"end_time,omitempty"`
	Description    string `json:"description,omitempty"`
}

func (s *Server) registerAddTodoTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "add_todo",
		Description: "Add a todo scheduled on a date with an optional time range.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"title": map[string]interface{}{
					"type":        "string",
					"description": "What needs doing (e.g., 'tempo run')",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "One of Running, Cycling, Yoga, Design, Other (default Design)",
				},
				"custom_category": map[string]interface{}{
					"type":        "string",
					"description": "Category text used when category is Other",
				},
				"date": map[string]interface{}{
					"type":        "string",
					"description": "Date in YYYY-MM-DD format",
				},
				"start_time": map[string]interface{}{
					"type":        "string",
					"description": "Start time HH:MM (default 09:00)",
				},
				"end_time": map[string]interface{}{
					"type":        "string",
					"description": "End time HH:MM (default one hour after start)",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Optional notes",
				},
			},
			"required": []string{"title", "date"},
		},
	}, s.handleAddTodo)
}

func (s *Server) handleAddTodo(ctx context.Context, req *mcp.CallToolRequest, input AddTodoInput) (*mcp.CallToolResult, TodoOutput, error) {
	if err := models.ValidateTitle(input.Title); err != nil {
		return nil, TodoOutput{}, err
	}
	start, end, err := models.ParseSchedule(input.Date, input.StartTime, input.EndTime, time.Local)
	if err != nil {
		return nil, TodoOutput{}, err
	}
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, TodoOutput{}, err
	}

	todo := models.NewTodo(userID, input.Title, models.ResolveCategory(input.Category, input.CustomCategory), start, end)
	todo.Description = input.Description
	if err := s.repo.CreateTodo(todo); err != nil {
		return nil, TodoOutput{}, fmt.Errorf("failed to create todo: %w", err)
	}

	output := todoOutput(todo)
	return textResult(output), output, nil
}

// ListTodosInput defines input for list_todos tool.
type ListTodosInput struct {
	Query    string `json:"query,omitempty"`
	Status   string `json:"status,omitempty"`
	Category string `json:"category,omitempty"`
}

// ListTodosOutput defines output for list_todos tool.
type ListTodosOutput struct {
	Todos []TodoOutput `json:"todos"`
	Count int          `json:"count"`
}

func (s *Server) registerListTodosTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_todos",
		Description: "List the user's todos ordered by start time, optionally filtered.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Case-insensitive title search",
				},
				"status": map[string]interface{}{
					"type":        "string",
					"description": "all, completed, or pending",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Only todos in this category",
				},
			},
		},
	}, s.handleListTodos)
}

func (s *Server) listTodos(ctx context.Context, filter models.TodoFilter) (ListTodosOutput, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return ListTodosOutput{}, err
	}
	todos, err := s.repo.ListTodosByUser(userID)
	if err != nil {
		return ListTodosOutput{}, fmt.Errorf("failed to list todos: %w", err)
	}
	todos = models.FilterTodos(todos, filter)

	outputs := make([]TodoOutput, len(todos))
	for i, t := range todos {
		outputs[i] = todoOutput(t)
	}
	return ListTodosOutput{Todos: outputs, Count: len(outputs)}, nil
}

func (s *Server) handleListTodos(ctx context.Context, req *mcp.CallToolRequest, input ListTodosInput) (*mcp.CallToolResult, ListTodosOutput, error) {
	switch input.Status {
	case "", models.StatusAll, models.StatusCompleted, models.StatusPending:
	default:
		return nil, ListTodosOutput{}, fmt.Errorf("invalid status %q (use all, completed, or pending)", input.Status)
	}
	output, err := s.listTodos(ctx, models.TodoFilter{Query: input.Query, Status: input.Status, Category: input.Category})
	if err != nil {
		return nil, ListTodosOutput{}, err
	}
	return textResult(output), output, nil
}

// UpdateTodoStatusInput defines input for update_todo_status tool.
type UpdateTodoStatusInput struct {
	ID        string `json:"id"`
	Completed bool   `json:"completed"`
}

func (s *Server) registerUpdateTodoStatusTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "update_todo_status",
		Description: "Mark a todo completed or pending.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Todo id or a unique prefix of it",
				},
				"completed": map[string]interface{}{
					"type":        "boolean",
					"description": "true for completed, false for pending",
				},
			},
			"required": []string{"id", "completed"},
		},
	}, s.handleUpdateTodoStatus)
}

func (s *Server) handleUpdateTodoStatus(ctx context.Context, req *mcp.CallToolRequest, input UpdateTodoStatusInput) (*mcp.CallToolResult, TodoOutput, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, TodoOutput{}, err
	}
	todo, err := storage.FindTodo(s.repo, userID, input.ID)
	if err != nil {
		return nil, TodoOutput{}, fmt.Errorf("todo '%s' not found: %w", input.ID, err)
	}

	todo.SetStatus(input.Completed)
	if err := s.repo.UpdateTodo(todo); err != nil {
		return nil, TodoOutput{}, fmt.Errorf("failed to update todo: %w", err)
	}

	output := todoOutput(todo)
	return textResult(output), output, nil
}

// DeleteTodoInput defines input for delete_todo tool.
type DeleteTodoInput struct {
	ID string `json:"id"`
}

// DeleteOutput defines output for delete tools.
type DeleteOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) registerDeleteTodoTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_todo",
		Description: "Delete a todo. This cannot be undone.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Todo id or a unique prefix of it",
				},
			},
			"required": []string{"id"},
		},
	}, s.handleDeleteTodo)
}

func (s *Server) handleDeleteTodo(ctx context.Context, req *mcp.CallToolRequest, input DeleteTodoInput) (*mcp.CallToolResult, DeleteOutput, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, DeleteOutput{}, err
	}
	todo, err := storage.FindTodo(s.repo, userID, input.ID)
	if err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("todo '%s' not found: %w", input.ID, err)
	}

	if err := s.repo.DeleteTodo(todo.ID); err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete todo: %w", err)
	}

	output := DeleteOutput{
		Success: true,
		Message: fmt.Sprintf("Deleted '%s'", todo.Title),
	}
	return textResult(output), output, nil
}

// SampleInput is one location fix sent by an agent.
type SampleInput struct {
	Lat   float64  `json:"lat"`
	Lng   float64  `json:"lng"`
	Speed *float64 `json:"speed,omitempty"`
	At    string   `json:"at,omitempty"`
}

// LogActivityInput defines input for log_activity tool.
type LogActivityInput struct {
	Type            string        `json:"type"`
	Samples         []SampleInput `json:"samples,omitempty"`
	DurationSeconds int64         `json:"duration_seconds,omitempty"`
	At              string        `json:"at,omitempty"`
}

// ActivityOutput defines output for activity tools.
type ActivityOutput struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	DistanceMeters  float64   `json:"distance_meters"`
	DurationSeconds int64     `json:"duration_seconds"`
	RecordedAt      time.Time `json:"recorded_at"`
	StartGeohash    string    `json:"start_geohash,omitempty"`
	Points          int       `json:"points"`
	GoalReached     *bool     `json:"goal_reached,omitempty"`
}

func activityOutput(e *models.ActivityEntry) ActivityOutput {
	return ActivityOutput{
		ID:              e.ID.String(),
		Type:            string(e.Type),
		DistanceMeters:  e.DistanceMeters,
		DurationSeconds: e.DurationSeconds,
		RecordedAt:      e.RecordedAt,
		StartGeohash:    e.StartGeohash,
		Points:          len(e.Track),
	}
}

func (s *Server) registerLogActivityTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "log_activity",
		Description: "Record a finished walk, run, or yoga session. Distance is computed from the ordered location samples; yoga takes a duration only.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"type": map[string]interface{}{
					"type":        "string",
					"description": "walking, running, or yoga",
				},
				"samples": map[string]interface{}{
					"type":        "array",
					"description": "Location fixes in the order they were taken",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"lat":   map[string]interface{}{"type": "number"},
							"lng":   map[string]interface{}{"type": "number"},
							"speed": map[string]interface{}{"type": "number", "description": "meters per second"},
							"at":    map[string]interface{}{"type": "string", "description": "RFC3339 timestamp"},
						},
						"required": []string{"lat", "lng"},
					},
				},
				"duration_seconds": map[string]interface{}{
					"type":        "integer",
					"description": "Session length; defaults to the time between the first and last sample",
				},
				"at": map[string]interface{}{
					"type":        "string",
					"description": "Optional recorded time in RFC3339 format",
				},
			},
			"required": []string{"type"},
		},
	}, s.handleLogActivity)
}

func (s *Server) handleLogActivity(ctx context.Context, req *mcp.CallToolRequest, input LogActivityInput) (*mcp.CallToolResult, ActivityOutput, error) {
	typ, err := models.ParseActivityType(input.Type)
	if err != nil {
		return nil, ActivityOutput{}, err
	}
	if input.DurationSeconds < 0 {
		return nil, ActivityOutput{}, fmt.Errorf("duration_seconds must not be negative")
	}

	recordedAt := time.Now()
	if input.At != "" {
		recordedAt, err = time.Parse(time.RFC3339, input.At)
		if err != nil {
			return nil, ActivityOutput{}, fmt.Errorf("invalid timestamp: %w", err)
		}
	}

	var (
		distance float64
		duration = input.DurationSeconds
		track    []models.TrackPoint
	)
	if typ.UsesLocation() && len(input.Samples) > 0 {
		samples := make([]tracker.GeoSample, len(input.Samples))
		for i, in := range input.Samples {
			at := recordedAt
			if in.At != "" {
				at, err = time.Parse(time.RFC3339, in.At)
				if err != nil {
					return nil, ActivityOutput{}, fmt.Errorf("sample %d: invalid timestamp: %w", i+1, err)
				}
			}
			samples[i] = tracker.NewSample(in.Lat, in.Lng, at)
			samples[i].Speed = in.Speed
		}

		summary, err := location.Replay(ctx, &location.SliceSource{Label: "samples", Samples: samples}, location.ReplayOptions{})
		if err != nil {
			return nil, ActivityOutput{}, err
		}
		distance = summary.DistanceMeters
		track = summary.Track
		if duration == 0 {
			duration = summary.ElapsedSeconds
		}
	}

	userID, err := s.userID(ctx)
	if err != nil {
		return nil, ActivityOutput{}, err
	}
	entry := models.NewActivityEntryAt(userID, typ, distance, duration, track, recordedAt)
	if err := s.repo.CreateActivity(entry); err != nil {
		return nil, ActivityOutput{}, fmt.Errorf("failed to log activity: %w", err)
	}

	output := activityOutput(entry)
	if typ.UsesLocation() {
		reached := models.GoalReached(distance, s.goal)
		output.GoalReached = &reached
	}
	return textResult(output), output, nil
}

// ListActivitiesInput defines input for list_activities tool.
type ListActivitiesInput struct {
	Type  string `json:"type,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// ListActivitiesOutput defines output for list_activities tool.
type ListActivitiesOutput struct {
	Activities          []ActivityOutput `json:"activities"`
	Count               int              `json:"count"`
	TotalDistanceMeters float64          `json:"total_distance_meters"`
}

func (s *Server) registerListActivitiesTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_activities",
		Description: "List the user's activity history, newest first.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"type": map[string]interface{}{
					"type":        "string",
					"description": "Only walking, running, or yoga entries",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of entries",
				},
			},
		},
	}, s.handleListActivities)
}

func (s *Server) listActivities(ctx context.Context, typ models.ActivityType, limit int) (ListActivitiesOutput, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return ListActivitiesOutput{}, err
	}
	entries, err := s.repo.ListActivities(userID)
	if err != nil {
		return ListActivitiesOutput{}, fmt.Errorf("failed to list activities: %w", err)
	}

	output := ListActivitiesOutput{Activities: []ActivityOutput{}}
	for _, e := range entries {
		if typ != "" && e.Type != typ {
			continue
		}
		if limit > 0 && len(output.Activities) >= limit {
			break
		}
		output.Activities = append(output.Activities, activityOutput(e))
		output.TotalDistanceMeters += e.DistanceMeters
	}
	output.Count = len(output.Activities)
	return output, nil
}

func (s *Server) handleListActivities(ctx context.Context, req *mcp.CallToolRequest, input ListActivitiesInput) (*mcp.CallToolResult, ListActivitiesOutput, error) {
	var typ models.ActivityType
	if input.Type != "" {
		var err error
		if typ, err = models.ParseActivityType(input.Type); err != nil {
			return nil, ListActivitiesOutput{}, err
		}
	}
	output, err := s.listActivities(ctx, typ, input.Limit)
	if err != nil {
		return nil, ListActivitiesOutput{}, err
	}
	return textResult(output), output, nil
}
