// ABOUTME: Export and import functionality for stride data
// ABOUTME: Supports YAML backup format and markdown export

package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harper/stride/internal/models"
	"gopkg.in/yaml.v3"
)

// BackupVersion is the current backup format version.
const BackupVersion = "1.0"

// BackupTool identifies backups written by this program.
const BackupTool = "stride"

// Backup represents the YAML backup format.
type Backup struct {
	Version    string           `yaml:"version"`
	ExportedAt time.Time        `yaml:"exported_at"`
	Tool       string           `yaml:"tool"`
	Todos      []TodoBackup     `yaml:"todos"`
	Activities []ActivityBackup `yaml:"activities"`
}

// TodoBackup represents a todo in the backup format.
type TodoBackup struct {
	ID          string    `yaml:"id"`
	UserID      string    `yaml:"user_id"`
	Title       string    `yaml:"title"`
	Category    string    `yaml:"category"`
	StartDate   time.Time `yaml:"start_date"`
	EndDate     time.Time `yaml:"end_date"`
	StartTime   time.Time `yaml:"start_time"`
	EndTime     time.Time `yaml:"end_time"`
	Description string    `yaml:"description,omitempty"`
	Completed   bool      `yaml:"completed"`
	CreatedAt   time.Time `yaml:"created_at"`
	UpdatedAt   time.Time `yaml:"updated_at"`
}

// ActivityBackup represents a history entry in the backup format.
type ActivityBackup struct {
	ID              string              `yaml:"id"`
	UserID          string              `yaml:"user_id"`
	Type            string              `yaml:"type"`
	DistanceMeters  float64             `yaml:"distance_meters"`
	DurationSeconds int64               `yaml:"duration_seconds"`
	StartGeohash    string              `yaml:"start_geohash,omitempty"`
	RecordedAt      time.Time           `yaml:"recorded_at"`
	Track           []models.TrackPoint `yaml:"track,omitempty"`
}

// ExportToYAML exports all data to YAML format.
func ExportToYAML(repo Repository) ([]byte, error) {
	todos, err := repo.ListAllTodos()
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	activities, err := repo.ListAllActivities()
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	backup := Backup{
		Version:    BackupVersion,
		ExportedAt: time.Now().UTC(),
		Tool:       BackupTool,
		Todos:      make([]TodoBackup, len(todos)),
		Activities: make([]ActivityBackup, len(activities)),
	}

	for i, t := range todos {
		backup.Todos[i] = TodoBackup{
			ID:          t.ID.String(),
			UserID:      t.UserID,
			Title:       t.Title,
			Category:    t.Category,
			StartDate:   t.StartDate,
			EndDate:     t.EndDate,
			StartTime:   t.StartTime,
			EndTime:     t.EndTime,
			Description: t.Description,
			Completed:   t.Completed,
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		}
	}

	for i, a := range activities {
		backup.Activities[i] = ActivityBackup{
			ID:              a.ID.String(),
			UserID:          a.UserID,
			Type:            string(a.Type),
			DistanceMeters:  a.DistanceMeters,
			DurationSeconds: a.DurationSeconds,
			StartGeohash:    a.StartGeohash,
			RecordedAt:      a.RecordedAt,
			Track:           a.Track,
		}
	}

	return yaml.Marshal(backup)
}

// ImportFromYAML imports data from YAML format into repo.
func ImportFromYAML(repo Repository, data []byte) error {
	var backup Backup
	if err := yaml.Unmarshal(data, &backup); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version: %s (expected %s)", backup.Version, BackupVersion)
	}

	if backup.Tool != BackupTool {
		return fmt.Errorf("wrong tool: %s (expected %s)", backup.Tool, BackupTool)
	}

	for _, tb := range backup.Todos {
		id, err := uuid.Parse(tb.ID)
		if err != nil {
			return fmt.Errorf("invalid todo ID %s: %w", tb.ID, err)
		}
		todo := &models.Todo{
			ID:          id,
			UserID:      tb.UserID,
			Title:       tb.Title,
			Category:    tb.Category,
			StartDate:   tb.StartDate,
			EndDate:     tb.EndDate,
			StartTime:   tb.StartTime,
			EndTime:     tb.EndTime,
			Description: tb.Description,
			Completed:   tb.Completed,
			CreatedAt:   tb.CreatedAt,
			UpdatedAt:   tb.UpdatedAt,
		}
		if err := repo.CreateTodo(todo); err != nil {
			return fmt.Errorf("create todo %q: %w", tb.Title, err)
		}
	}

	for _, ab := range backup.Activities {
		id, err := uuid.Parse(ab.ID)
		if err != nil {
			return fmt.Errorf("invalid activity ID %s: %w", ab.ID, err)
		}
		typ, err := models.ParseActivityType(ab.Type)
		if err != nil {
			return fmt.Errorf("activity %s: %w", ab.ID, err)
		}
		entry := &models.ActivityEntry{
			ID:              id,
			UserID:          ab.UserID,
			Type:            typ,
			DistanceMeters:  ab.DistanceMeters,
			DurationSeconds: ab.DurationSeconds,
			StartGeohash:    ab.StartGeohash,
			RecordedAt:      ab.RecordedAt,
			Track:           ab.Track,
		}
		if err := repo.CreateActivity(entry); err != nil {
			return fmt.Errorf("create activity: %w", err)
		}
	}

	return nil
}

// ExportToMarkdown renders a user's todos and activity history as markdown.
// An empty userID exports every user.
func ExportToMarkdown(repo Repository, userID string) ([]byte, error) {
	var (
		todos      []*models.Todo
		activities []*models.ActivityEntry
		err        error
	)
	if userID == "" {
		todos, err = repo.ListAllTodos()
	} else {
		todos, err = repo.ListTodosByUser(userID)
	}
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	if userID == "" {
		activities, err = repo.ListAllActivities()
	} else {
		activities, err = repo.ListActivities(userID)
	}
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	var sb strings.Builder

	now := time.Now().UTC()
	sb.WriteString(fmt.Sprintf("# Stride Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	sb.WriteString("## Todos\n\n")
	if len(todos) == 0 {
		sb.WriteString("No todos.\n\n")
	} else {
		sb.WriteString("| Status | Title | Category | Start | End |\n")
		sb.WriteString("|--------|-------|----------|-------|-----|\n")
		for _, t := range todos {
			box := "[ ]"
			if t.Completed {
				box = "[x]"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
				box, t.Title, t.Category,
				t.StartTime.Format("2006-01-02 15:04"), t.EndTime.Format("2006-01-02 15:04")))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Activities\n\n")
	if len(activities) == 0 {
		sb.WriteString("No activities recorded.\n")
		return []byte(sb.String()), nil
	}

	sb.WriteString("| Date | Type | Distance (m) | Duration (s) | Start |\n")
	sb.WriteString("|------|------|--------------|--------------|-------|\n")
	for _, a := range activities {
		start := "-"
		if a.StartGeohash != "" {
			start = a.StartGeohash
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %.2f | %d | %s |\n",
			a.RecordedAt.Format("2006-01-02 15:04"), a.Type, a.DistanceMeters, a.DurationSeconds, start))
	}

	return []byte(sb.String()), nil
}

// ExportBackup creates a YAML backup (alias for ExportToYAML).
func ExportBackup(repo Repository) ([]byte, error) {
	return ExportToYAML(repo)
}

// ImportBackup restores from a YAML backup (alias for ImportFromYAML).
func ImportBackup(repo Repository, data []byte) error {
	return ImportFromYAML(repo, data)
}
