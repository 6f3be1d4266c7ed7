package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"taskdeck/internal/apperr"
	"taskdeck/internal/models"
)

var taskColumns = []string{
	"id", "user_id", "title", "description", "completed",
	"priority", "due_date", "category_id", "created_at", "updated_at",
}

type TaskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// taskFilter translates the filter set into one conjunctive predicate. The
// owner restriction always comes first and is never optional. A range that
// contradicts itself (before < after) is passed through and simply matches
// nothing.
func taskFilter(scope Scope, f models.TaskFilters) squirrel.And {
	and := squirrel.And{squirrel.Eq{"user_id": scope.UserID}}
	if f.Completed != nil {
		and = append(and, squirrel.Eq{"completed": *f.Completed})
	}
	if f.Priority != nil {
		and = append(and, squirrel.Eq{"priority": *f.Priority})
	}
	if f.CategoryID != nil {
		and = append(and, squirrel.Eq{"category_id": *f.CategoryID})
	}
	if f.Search != nil {
		pattern := "%" + strings.ToLower(*f.Search) + "%"
		and = append(and, squirrel.Or{
			squirrel.Expr("LOWER(title) LIKE ?", pattern),
			squirrel.Expr("LOWER(description) LIKE ?", pattern),
		})
	}
	if f.DueDateBefore != nil {
		and = append(and, squirrel.LtOrEq{"due_date": *f.DueDateBefore})
	}
	if f.DueDateAfter != nil {
		and = append(and, squirrel.GtOrEq{"due_date": *f.DueDateAfter})
	}
	return and
}

// List returns one page of the caller's tasks, newest created first, plus
// the total match count before pagination.
func (r *TaskRepository) List(ctx context.Context, scope Scope, f models.TaskFilters) ([]models.TaskRow, int, error) {
	where := taskFilter(scope, f)

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("tasks").Where(where).ToSql()
	if err != nil {
		return nil, 0, &apperr.Upstream{Op: "build task count", Err: err}
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, &apperr.Upstream{Op: "count tasks", Err: err}
	}

	query, args, err := psql.Select(taskColumns...).
		From("tasks").
		Where(where).
		OrderBy("created_at DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, &apperr.Upstream{Op: "build task list", Err: err}
	}

	rows := []models.TaskRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, &apperr.Upstream{Op: "list tasks", Err: err}
	}
	return rows, total, nil
}

// Get returns the caller's task with the given id.
func (r *TaskRepository) Get(ctx context.Context, scope Scope, id uuid.UUID) (*models.TaskRow, error) {
	query, args, err := psql.Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"id": id, "user_id": scope.UserID}).
		ToSql()
	if err != nil {
		return nil, &apperr.Upstream{Op: "build task get", Err: err}
	}

	var row models.TaskRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, &apperr.Upstream{Op: "get task", Err: err}
	}
	return &row, nil
}

// Create inserts a new task row.
func (r *TaskRepository) Create(ctx context.Context, row *models.TaskRow) error {
	query, args, err := psql.Insert("tasks").
		Columns(taskColumns...).
		Values(row.ID, row.UserID, row.Title, row.Description, row.Completed,
			row.Priority, row.DueDate, row.CategoryID, row.CreatedAt, row.UpdatedAt).
		ToSql()
	if err != nil {
		return &apperr.Upstream{Op: "build task insert", Err: err}
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return &apperr.Upstream{Op: "insert task", Err: err}
	}
	return nil
}

// Update applies a sparse patch to the caller's task. Only fields present in
// the patch are written; updated_at is always refreshed. Returns the row
// after the update.
func (r *TaskRepository) Update(ctx context.Context, scope Scope, id uuid.UUID, patch models.TaskPatch) (*models.TaskRow, error) {
	ub := psql.Update("tasks").Set("updated_at", time.Now().UTC())
	if patch.Title != nil {
		ub = ub.Set("title", *patch.Title)
	}
	if patch.Description != nil {
		ub = ub.Set("description", *patch.Description)
	}
	if patch.Completed != nil {
		ub = ub.Set("completed", *patch.Completed)
	}
	if patch.Priority != nil {
		ub = ub.Set("priority", *patch.Priority)
	}
	if patch.DueDate != nil {
		ub = ub.Set("due_date", *patch.DueDate)
	}
	if patch.CategoryID != nil {
		ub = ub.Set("category_id", *patch.CategoryID)
	}

	query, args, err := ub.Where(squirrel.Eq{"id": id, "user_id": scope.UserID}).ToSql()
	if err != nil {
		return nil, &apperr.Upstream{Op: "build task update", Err: err}
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, &apperr.Upstream{Op: "update task", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, &apperr.Upstream{Op: "update task", Err: err}
	}
	if affected == 0 {
		return nil, apperr.ErrNotFound
	}
	return r.Get(ctx, scope, id)
}

// Delete removes the caller's task. Deleting an id that does not exist for
// the caller is a no-op, reported as deleted=false.
func (r *TaskRepository) Delete(ctx context.Context, scope Scope, id uuid.UUID) (bool, error) {
	query, args, err := psql.Delete("tasks").
		Where(squirrel.Eq{"id": id, "user_id": scope.UserID}).
		ToSql()
	if err != nil {
		return false, &apperr.Upstream{Op: "build task delete", Err: err}
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, &apperr.Upstream{Op: "delete task", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, &apperr.Upstream{Op: "delete task", Err: err}
	}
	return affected > 0, nil
}

// Stats recomputes the caller's aggregate counts. Ordering is irrelevant
// here, so the four queries are plain counts.
func (r *TaskRepository) Stats(ctx context.Context, scope Scope) (models.TaskStats, error) {
	now := time.Now().UTC()

	total, err := r.count(ctx, squirrel.And{squirrel.Eq{"user_id": scope.UserID}})
	if err != nil {
		return models.TaskStats{}, err
	}
	completed, err := r.count(ctx, squirrel.And{
		squirrel.Eq{"user_id": scope.UserID},
		squirrel.Eq{"completed": true},
	})
	if err != nil {
		return models.TaskStats{}, err
	}
	pending, err := r.count(ctx, squirrel.And{
		squirrel.Eq{"user_id": scope.UserID},
		squirrel.Eq{"completed": false},
	})
	if err != nil {
		return models.TaskStats{}, err
	}
	overdue, err := r.count(ctx, squirrel.And{
		squirrel.Eq{"user_id": scope.UserID},
		squirrel.Eq{"completed": false},
		squirrel.Lt{"due_date": now},
	})
	if err != nil {
		return models.TaskStats{}, err
	}

	return models.NewTaskStats(total, completed, pending, overdue), nil
}

func (r *TaskRepository) count(ctx context.Context, where squirrel.And) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From("tasks").Where(where).ToSql()
	if err != nil {
		return 0, &apperr.Upstream{Op: "build task count", Err: err}
	}
	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, &apperr.Upstream{Op: "count tasks", Err: err}
	}
	return n, nil
}
