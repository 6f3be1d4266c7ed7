package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is the public API shape of a category.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	UserID    uuid.UUID `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CategoryRow is the storage shape of a category.
type CategoryRow struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Name      string    `db:"name"`
	Color     string    `db:"color"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r CategoryRow) API() Category {
	return Category{
		ID:        r.ID,
		Name:      r.Name,
		Color:     r.Color,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (c Category) Row() CategoryRow {
	return CategoryRow{
		ID:        c.ID,
		UserID:    c.UserID,
		Name:      c.Name,
		Color:     c.Color,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CategoryDraft carries the validated fields of a create-category request.
type CategoryDraft struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}
