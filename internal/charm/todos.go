// ABOUTME: Todo CRUD operations using Charm KV
// ABOUTME: Stores each todo as JSON under a todo:<uuid> key

package charm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/charmbracelet/charm/kv"
	"github.com/google/uuid"
	"github.com/harper/stride/internal/models"
	"github.com/harper/stride/internal/storage"
)

func todoKey(id uuid.UUID) []byte {
	return []byte(TodoPrefix + id.String())
}

// CreateTodo stores a new todo.
func (c *Client) CreateTodo(todo *models.Todo) error {
	data, err := json.Marshal(todo)
	if err != nil {
		return fmt.Errorf("marshal todo: %w", err)
	}
	return c.do(func(k *kv.KV) error {
		return k.Set(todoKey(todo.ID), data)
	})
}

// GetTodo retrieves a todo by its UUID.
func (c *Client) GetTodo(id uuid.UUID) (*models.Todo, error) {
	data, err := c.get(todoKey(id))
	if err != nil {
		if errors.Is(err, kv.ErrMissingKey) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get todo: %w", err)
	}

	var todo models.Todo
	if err := json.Unmarshal(data, &todo); err != nil {
		return nil, fmt.Errorf("unmarshal todo: %w", err)
	}
	return &todo, nil
}

// UpdateTodo overwrites an existing todo.
func (c *Client) UpdateTodo(todo *models.Todo) error {
	data, err := json.Marshal(todo)
	if err != nil {
		return fmt.Errorf("marshal todo: %w", err)
	}
	return c.do(func(k *kv.KV) error {
		if _, err := k.Get(todoKey(todo.ID)); err != nil {
			if errors.Is(err, kv.ErrMissingKey) {
				return storage.ErrNotFound
			}
			return fmt.Errorf("get todo: %w", err)
		}
		return k.Set(todoKey(todo.ID), data)
	})
}

// DeleteTodo removes a todo.
func (c *Client) DeleteTodo(id uuid.UUID) error {
	return c.do(func(k *kv.KV) error {
		if _, err := k.Get(todoKey(id)); err != nil {
			if errors.Is(err, kv.ErrMissingKey) {
				return storage.ErrNotFound
			}
			return fmt.Errorf("get todo: %w", err)
		}
		return k.Delete(todoKey(id))
	})
}

// ListTodosByUser returns a user's todos ordered by start time.
func (c *Client) ListTodosByUser(userID string) ([]*models.Todo, error) {
	all, err := c.ListAllTodos()
	if err != nil {
		return nil, err
	}
	todos := []*models.Todo{}
	for _, t := range all {
		if t.UserID == userID {
			todos = append(todos, t)
		}
	}
	return todos, nil
}

// ListAllTodos returns every todo ordered by start time.
func (c *Client) ListAllTodos() ([]*models.Todo, error) {
	todos := []*models.Todo{}
	prefix := []byte(TodoPrefix)

	err := c.doReadOnly(func(k *kv.KV) error {
		keys, err := k.Keys()
		if err != nil {
			return fmt.Errorf("list keys: %w", err)
		}

		for _, key := range keys {
			if !bytes.HasPrefix(key, prefix) {
				continue
			}

			data, err := k.Get(key)
			if err != nil {
				return fmt.Errorf("get todo %s: %w", key, err)
			}

			var todo models.Todo
			if err := json.Unmarshal(data, &todo); err != nil {
				return fmt.Errorf("unmarshal todo: %w", err)
			}
			todos = append(todos, &todo)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(todos, func(i, j int) bool {
		if todos[i].StartTime.Equal(todos[j].StartTime) {
			return todos[i].CreatedAt.Before(todos[j].CreatedAt)
		}
		return todos[i].StartTime.Before(todos[j].StartTime)
	})
	return todos, nil
}
