package db

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"taskdeck/internal/apperr"
	"taskdeck/internal/models"
)

var categoryColumns = []string{"id", "user_id", "name", "color", "created_at", "updated_at"}

type CategoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns all of the caller's categories, oldest first.
func (r *CategoryRepository) List(ctx context.Context, scope Scope) ([]models.CategoryRow, error) {
	query, args, err := psql.Select(categoryColumns...).
		From("categories").
		Where(squirrel.Eq{"user_id": scope.UserID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, &apperr.Upstream{Op: "build category list", Err: err}
	}

	rows := []models.CategoryRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, &apperr.Upstream{Op: "list categories", Err: err}
	}
	return rows, nil
}

// Create inserts a new category row.
func (r *CategoryRepository) Create(ctx context.Context, row *models.CategoryRow) error {
	query, args, err := psql.Insert("categories").
		Columns(categoryColumns...).
		Values(row.ID, row.UserID, row.Name, row.Color, row.CreatedAt, row.UpdatedAt).
		ToSql()
	if err != nil {
		return &apperr.Upstream{Op: "build category insert", Err: err}
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return &apperr.Upstream{Op: "insert category", Err: err}
	}
	return nil
}
