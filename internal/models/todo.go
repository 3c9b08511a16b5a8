// ABOUTME: Todo items with categories and date/time ranges
// ABOUTME: Includes the search, status, and category filter used by list views

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CategoryOther is the catch-all category that takes custom text.
const CategoryOther = "Other"

// DefaultCategories are the categories offered when creating a todo.
var DefaultCategories = []string{"Running", "Cycling", "Yoga", "Design", CategoryOther}

// DefaultCategory is used when none is given.
const DefaultCategory = "Design"

// Todo is a task owned by a single user.
type Todo struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Description string    `json:"description,omitempty"`
	UserID      string    `json:"user_id"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTodo creates a todo for userID spanning [start, end] with a generated UUID.
// Dates and times share the same instants until edited separately.
func NewTodo(userID, title, category string, start, end time.Time) *Todo {
	now := time.Now()
	if category == "" {
		category = DefaultCategory
	}
	return &Todo{
		ID:        uuid.New(),
		Title:     title,
		Category:  category,
		StartDate: start,
		EndDate:   end,
		StartTime: start,
		EndTime:   end,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ResolveCategory returns custom when category is Other and custom is set.
func ResolveCategory(category, custom string) string {
	if category == CategoryOther && strings.TrimSpace(custom) != "" {
		return strings.TrimSpace(custom)
	}
	if category == "" {
		return DefaultCategory
	}
	return category
}

// SetStatus marks the todo completed or pending and bumps UpdatedAt.
func (t *Todo) SetStatus(completed bool) {
	t.Completed = completed
	t.UpdatedAt = time.Now()
}

// Status returns "completed" or "pending".
func (t *Todo) Status() string {
	if t.Completed {
		return StatusCompleted
	}
	return StatusPending
}

// Todo status filter values.
const (
	StatusAll       = "all"
	StatusCompleted = "completed"
	StatusPending   = "pending"
)

// TodoFilter narrows a todo list. Empty fields match everything.
type TodoFilter struct {
	Query    string
	Status   string
	Category string
}

// Matches reports whether t passes the filter.
func (f TodoFilter) Matches(t *Todo) bool {
	if f.Query != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Query)) {
		return false
	}
	switch f.Status {
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	case StatusPending:
		if t.Completed {
			return false
		}
	}
	if f.Category != "" && !strings.EqualFold(f.Category, t.Category) {
		return false
	}
	return true
}

// FilterTodos returns the todos matching f, preserving order.
func FilterTodos(todos []*Todo, f TodoFilter) []*Todo {
	out := make([]*Todo, 0, len(todos))
	for _, t := range todos {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// ParseSchedule combines a YYYY-MM-DD date with HH:MM start and end clocks in loc.
// An empty end clock defaults to one hour after the start.
func ParseSchedule(date, startClock, endClock string, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", date, err)
	}
	if startClock == "" {
		startClock = "09:00"
	}
	start, err := atClock(day, startClock)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if endClock == "" {
		return start, start.Add(time.Hour), nil
	}
	end, err := atClock(day, endClock)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end time %s is before start time %s", endClock, startClock)
	}
	return start, end, nil
}

func atClock(day time.Time, clock string) (time.Time, error) {
	c, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (use HH:MM): %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), 0, 0, day.Location()), nil
}
