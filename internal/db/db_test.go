package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"taskdeck/internal/models"
)

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conn, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	// every new :memory: connection is a fresh database
	conn.SetMaxOpenConns(1)

	ddl := `
CREATE TABLE tasks (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT,
  completed BOOLEAN NOT NULL DEFAULT 0,
  priority TEXT NOT NULL,
  due_date TIMESTAMP,
  category_id TEXT,
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
);
CREATE TABLE categories (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  color TEXT NOT NULL,
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
);
CREATE INDEX idx_tasks_user_id ON tasks(user_id);
CREATE INDEX idx_categories_user_id ON categories(user_id);
`
	if _, err := conn.Exec(ddl); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return conn
}

type seed struct {
	title     string
	completed bool
	priority  models.Priority
	dueDate   *time.Time
	createdAt time.Time
}

func insertTask(t *testing.T, repo *TaskRepository, owner uuid.UUID, s seed) models.TaskRow {
	t.Helper()
	row := models.TaskRow{
		ID:        uuid.New(),
		UserID:    owner,
		Title:     s.title,
		Completed: s.completed,
		Priority:  s.priority,
		DueDate:   s.dueDate,
		CreatedAt: s.createdAt,
		UpdatedAt: s.createdAt,
	}
	if row.Priority == "" {
		row.Priority = models.PriorityMedium
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
		row.UpdatedAt = row.CreatedAt
	}
	if err := repo.Create(context.Background(), &row); err != nil {
		t.Fatalf("insert task %q: %v", s.title, err)
	}
	return row
}

func timePtr(t time.Time) *time.Time { return &t }
