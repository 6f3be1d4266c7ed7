package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"taskdeck/internal/models"
)

func insertCategory(t *testing.T, repo *CategoryRepository, owner uuid.UUID, name string, createdAt time.Time) models.CategoryRow {
	t.Helper()
	row := models.CategoryRow{
		ID:        uuid.New(),
		UserID:    owner,
		Name:      name,
		Color:     "#336699",
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := repo.Create(context.Background(), &row); err != nil {
		t.Fatalf("insert category %q: %v", name, err)
	}
	return row
}

func TestCategoryRepositoryListScopedAndOrdered(t *testing.T) {
	repo := NewCategoryRepository(setupDB(t))
	owner := uuid.New()
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	insertCategory(t, repo, owner, "second", base.Add(time.Hour))
	insertCategory(t, repo, owner, "first", base)
	insertCategory(t, repo, uuid.New(), "foreign", base)

	rows, err := repo.List(context.Background(), Scope{UserID: owner})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(rows))
	}
	// categories list oldest first
	if rows[0].Name != "first" || rows[1].Name != "second" {
		t.Errorf("wrong order: %q, %q", rows[0].Name, rows[1].Name)
	}
}

func TestCategoryRepositoryListEmpty(t *testing.T) {
	repo := NewCategoryRepository(setupDB(t))
	rows, err := repo.List(context.Background(), Scope{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no categories, got %+v", rows)
	}
}
