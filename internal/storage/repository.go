// ABOUTME: Repository interfaces for todos and activity history
// ABOUTME: Enables testability and storage backend swapping

package storage

import (
	"github.com/google/uuid"
	"github.com/harper/stride/internal/models"
)

// TodoRepository defines operations for managing todo documents.
type TodoRepository interface {
	CreateTodo(todo *models.Todo) error
	GetTodo(id uuid.UUID) (*models.Todo, error)
	UpdateTodo(todo *models.Todo) error
	DeleteTodo(id uuid.UUID) error
	ListTodosByUser(userID string) ([]*models.Todo, error)
	ListAllTodos() ([]*models.Todo, error)
}

// ActivityRepository defines operations for a user's committed activity history.
type ActivityRepository interface {
	CreateActivity(entry *models.ActivityEntry) error
	GetActivity(id uuid.UUID) (*models.ActivityEntry, error)
	ListActivities(userID string) ([]*models.ActivityEntry, error)
	ListAllActivities() ([]*models.ActivityEntry, error)
	DeleteActivity(id uuid.UUID) error
}

// Repository combines all repository operations with lifecycle management.
type Repository interface {
	TodoRepository
	ActivityRepository
	Close() error
	Sync() error
	Reset() error
}
