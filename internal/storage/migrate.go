// ABOUTME: Data migration between stride storage backends
// ABOUTME: Copies todos and activity history from source to destination repository

package storage

import "fmt"

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Todos      int
	Activities int
}

// MigrateData copies all data from src to dst storage.
// The destination should be empty before calling this function.
func MigrateData(src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	todos, err := src.ListAllTodos()
	if err != nil {
		return nil, fmt.Errorf("list source todos: %w", err)
	}
	for _, todo := range todos {
		if err := dst.CreateTodo(todo); err != nil {
			return nil, fmt.Errorf("create todo %q: %w", todo.Title, err)
		}
		summary.Todos++
	}

	activities, err := src.ListAllActivities()
	if err != nil {
		return nil, fmt.Errorf("list source activities: %w", err)
	}
	// Oldest first so destinations that order by insertion agree with recorded_at.
	for i := len(activities) - 1; i >= 0; i-- {
		if err := dst.CreateActivity(activities[i]); err != nil {
			return nil, fmt.Errorf("create activity %s: %w", activities[i].ID, err)
		}
		summary.Activities++
	}

	return summary, nil
}
