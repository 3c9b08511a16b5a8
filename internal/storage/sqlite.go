// ABOUTME: SQLite storage implementation for todos and activity history
// ABOUTME: Provides local-only persistence using pure Go SQLite driver

package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/harper/stride/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements Repository with a local SQLite database.
type SQLiteDB struct {
	db   *sql.DB
	path string
}

// Compile-time check that SQLiteDB implements Repository.
var _ Repository = (*SQLiteDB)(nil)

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".local", "share", "stride", "stride.db")
}

// NewSQLiteDB creates a new SQLite database at the given path.
// Creates the directory and database file if they don't exist.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil { //nolint:gosec // 0750 is appropriate for user data directory
		return nil, fmt.Errorf("create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteDB{db: db, path: path}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteDB) Path() string {
	return s.path
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS todos (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			category TEXT NOT NULL,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			start_time DATETIME NOT NULL,
			end_time DATETIME NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			completed INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS activities (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			distance_meters REAL NOT NULL,
			duration_seconds INTEGER NOT NULL,
			start_geohash TEXT NOT NULL DEFAULT '',
			recorded_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS activity_points (
			activity_id TEXT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			recorded_at DATETIME NOT NULL,
			PRIMARY KEY (activity_id, seq)
		);

		CREATE INDEX IF NOT EXISTS idx_todos_user_id ON todos(user_id);
		CREATE INDEX IF NOT EXISTS idx_activities_user_id ON activities(user_id);
		CREATE INDEX IF NOT EXISTS idx_activities_recorded_at ON activities(recorded_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Sync is a no-op for local SQLite (no cloud sync).
func (s *SQLiteDB) Sync() error {
	return nil
}

// Reset clears all data from the database.
func (s *SQLiteDB) Reset() error {
	_, err := s.db.Exec("DELETE FROM activity_points; DELETE FROM activities; DELETE FROM todos;")
	return err
}

const todoColumns = `id, user_id, title, category, start_date, end_date, start_time, end_time,
	description, completed, created_at, updated_at`

// CreateTodo inserts a new todo.
func (s *SQLiteDB) CreateTodo(todo *models.Todo) error {
	_, err := s.db.Exec(
		`INSERT INTO todos (`+todoColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		todo.ID.String(), todo.UserID, todo.Title, todo.Category,
		utc(todo.StartDate), utc(todo.EndDate), utc(todo.StartTime), utc(todo.EndTime),
		todo.Description, todo.Completed, utc(todo.CreatedAt), utc(todo.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

// GetTodo retrieves a todo by its UUID.
func (s *SQLiteDB) GetTodo(id uuid.UUID) (*models.Todo, error) {
	row := s.db.QueryRow(`SELECT `+todoColumns+` FROM todos WHERE id = ?`, id.String())
	todo, err := scanTodo(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return todo, err
}

// UpdateTodo replaces every mutable field of an existing todo.
func (s *SQLiteDB) UpdateTodo(todo *models.Todo) error {
	res, err := s.db.Exec(
		`UPDATE todos SET title = ?, category = ?, start_date = ?, end_date = ?, start_time = ?,
		 end_time = ?, description = ?, completed = ?, updated_at = ? WHERE id = ?`,
		todo.Title, todo.Category, utc(todo.StartDate), utc(todo.EndDate), utc(todo.StartTime),
		utc(todo.EndTime), todo.Description, todo.Completed, utc(todo.UpdatedAt), todo.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	return requireAffected(res)
}

// DeleteTodo removes a todo.
func (s *SQLiteDB) DeleteTodo(id uuid.UUID) error {
	res, err := s.db.Exec("DELETE FROM todos WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return requireAffected(res)
}

// ListTodosByUser returns a user's todos ordered by start time.
func (s *SQLiteDB) ListTodosByUser(userID string) ([]*models.Todo, error) {
	rows, err := s.db.Query(
		`SELECT `+todoColumns+` FROM todos WHERE user_id = ? ORDER BY start_time, created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanTodos(rows)
}

// ListAllTodos returns every todo across all users.
func (s *SQLiteDB) ListAllTodos() ([]*models.Todo, error) {
	rows, err := s.db.Query(`SELECT ` + todoColumns + ` FROM todos ORDER BY start_time, created_at`)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanTodos(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (*models.Todo, error) {
	var idStr string
	var t models.Todo
	err := row.Scan(&idStr, &t.UserID, &t.Title, &t.Category,
		&t.StartDate, &t.EndDate, &t.StartTime, &t.EndTime,
		&t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan todo: %w", err)
	}
	t.ID, _ = uuid.Parse(idStr)
	return &t, nil
}

func scanTodos(rows *sql.Rows) ([]*models.Todo, error) {
	var todos []*models.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// CreateActivity inserts an activity and its track in one transaction.
func (s *SQLiteDB) CreateActivity(entry *models.ActivityEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`INSERT INTO activities (id, user_id, type, distance_meters, duration_seconds, start_geohash, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID.String(), entry.UserID, string(entry.Type), entry.DistanceMeters,
		entry.DurationSeconds, entry.StartGeohash, utc(entry.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}

	for i, p := range entry.Track {
		_, err := tx.Exec(
			`INSERT INTO activity_points (activity_id, seq, latitude, longitude, recorded_at)
			 VALUES (?, ?, ?, ?, ?)`,
			entry.ID.String(), i, p.Latitude, p.Longitude, utc(p.RecordedAt),
		)
		if err != nil {
			return fmt.Errorf("insert activity point: %w", err)
		}
	}

	return tx.Commit()
}

const activityColumns = `id, user_id, type, distance_meters, duration_seconds, start_geohash, recorded_at`

// GetActivity retrieves an activity, including its track, by UUID.
func (s *SQLiteDB) GetActivity(id uuid.UUID) (*models.ActivityEntry, error) {
	row := s.db.QueryRow(`SELECT `+activityColumns+` FROM activities WHERE id = ?`, id.String())
	entry, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadTrack(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListActivities returns a user's history, newest first.
func (s *SQLiteDB) ListActivities(userID string) ([]*models.ActivityEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+activityColumns+` FROM activities WHERE user_id = ? ORDER BY recorded_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	return s.collectActivities(rows)
}

// ListAllActivities returns every activity across all users, newest first.
func (s *SQLiteDB) ListAllActivities() ([]*models.ActivityEntry, error) {
	rows, err := s.db.Query(`SELECT ` + activityColumns + ` FROM activities ORDER BY recorded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	return s.collectActivities(rows)
}

// DeleteActivity removes an activity (track points cascade delete automatically).
func (s *SQLiteDB) DeleteActivity(id uuid.UUID) error {
	res, err := s.db.Exec("DELETE FROM activities WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return requireAffected(res)
}

// collectActivities drains rows before loading tracks so only one cursor is open at a time.
func (s *SQLiteDB) collectActivities(rows *sql.Rows) ([]*models.ActivityEntry, error) {
	var entries []*models.ActivityEntry
	for rows.Next() {
		entry, err := scanActivity(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	for _, entry := range entries {
		if err := s.loadTrack(entry); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (s *SQLiteDB) loadTrack(entry *models.ActivityEntry) error {
	rows, err := s.db.Query(
		`SELECT latitude, longitude, recorded_at FROM activity_points
		 WHERE activity_id = ? ORDER BY seq`,
		entry.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("query activity points: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var p models.TrackPoint
		if err := rows.Scan(&p.Latitude, &p.Longitude, &p.RecordedAt); err != nil {
			return fmt.Errorf("scan activity point: %w", err)
		}
		entry.Track = append(entry.Track, p)
	}
	return rows.Err()
}

func scanActivity(row rowScanner) (*models.ActivityEntry, error) {
	var idStr, typ string
	var e models.ActivityEntry
	err := row.Scan(&idStr, &e.UserID, &typ, &e.DistanceMeters, &e.DurationSeconds,
		&e.StartGeohash, &e.RecordedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan activity: %w", err)
	}
	e.ID, _ = uuid.Parse(idStr)
	e.Type = models.ActivityType(typ)
	return &e, nil
}

// utc normalises times before binding. Timestamps are stored as text, so
// ORDER BY on them is only chronological when every row shares one zone.
func utc(t time.Time) time.Time {
	return t.UTC()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
