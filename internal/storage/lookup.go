// ABOUTME: Resolves todos and activities from full UUIDs or short id prefixes
// ABOUTME: Lookups are scoped to a single user

package storage

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harper/stride/internal/models"
)

// MinPrefixLen is the shortest id prefix accepted by the finders.
const MinPrefixLen = 4

// FindTodo returns the user's todo whose id equals or starts with ref.
func FindTodo(repo TodoRepository, userID, ref string) (*models.Todo, error) {
	if id, err := uuid.Parse(ref); err == nil {
		todo, err := repo.GetTodo(id)
		if err != nil {
			return nil, err
		}
		if todo.UserID != userID {
			return nil, ErrNotFound
		}
		return todo, nil
	}

	todos, err := repo.ListTodosByUser(userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(todos))
	for i, t := range todos {
		ids[i] = t.ID
	}
	idx, err := matchPrefix(ids, ref)
	if err != nil {
		return nil, fmt.Errorf("todo %q: %w", ref, err)
	}
	return todos[idx], nil
}

// FindActivity returns the user's activity whose id equals or starts with ref.
func FindActivity(repo ActivityRepository, userID, ref string) (*models.ActivityEntry, error) {
	if id, err := uuid.Parse(ref); err == nil {
		entry, err := repo.GetActivity(id)
		if err != nil {
			return nil, err
		}
		if entry.UserID != userID {
			return nil, ErrNotFound
		}
		return entry, nil
	}

	entries, err := repo.ListActivities(userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	idx, err := matchPrefix(ids, ref)
	if err != nil {
		return nil, fmt.Errorf("activity %q: %w", ref, err)
	}
	return entries[idx], nil
}

func matchPrefix(ids []uuid.UUID, ref string) (int, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if len(ref) < MinPrefixLen {
		return -1, fmt.Errorf("id prefix must be at least %d characters", MinPrefixLen)
	}
	found := -1
	for i, id := range ids {
		if strings.HasPrefix(id.String(), ref) {
			if found >= 0 {
				return -1, fmt.Errorf("ambiguous id prefix")
			}
			found = i
		}
	}
	if found < 0 {
		return -1, ErrNotFound
	}
	return found, nil
}
