package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// TaskFilters describes one list query. Nil pointers mean the filter is not
// applied. It is never persisted; each request reconstructs it.
type TaskFilters struct {
	Completed     *bool       `json:"completed,omitempty"`
	Priority      *Priority   `json:"priority,omitempty"`
	CategoryID    *uuid.UUID  `json:"categoryId,omitempty"`
	Search        *string     `json:"search,omitempty"`
	DueDateBefore *time.Time  `json:"dueDateBefore,omitempty"`
	DueDateAfter  *time.Time  `json:"dueDateAfter,omitempty"`
	Page          int         `json:"page,omitempty"`
	Limit         int         `json:"limit,omitempty"`
}

// Normalize applies the paging defaults, floors page at 1 and clamps limit
// to [1, MaxLimit].
func (f *TaskFilters) Normalize() {
	if f.Page < DefaultPage {
		f.Page = DefaultPage
	}
	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit < 1 {
		f.Limit = 1
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
}

// Offset returns the pagination window start for the current page.
func (f TaskFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Merge returns a copy of f with every field present in patch overwritten.
// Absent fields (nil pointers, zero page/limit) keep their current value.
func (f TaskFilters) Merge(patch TaskFilters) TaskFilters {
	out := f
	if patch.Completed != nil {
		out.Completed = patch.Completed
	}
	if patch.Priority != nil {
		out.Priority = patch.Priority
	}
	if patch.CategoryID != nil {
		out.CategoryID = patch.CategoryID
	}
	if patch.Search != nil {
		out.Search = patch.Search
	}
	if patch.DueDateBefore != nil {
		out.DueDateBefore = patch.DueDateBefore
	}
	if patch.DueDateAfter != nil {
		out.DueDateAfter = patch.DueDateAfter
	}
	if patch.Page != 0 {
		out.Page = patch.Page
	}
	if patch.Limit != 0 {
		out.Limit = patch.Limit
	}
	return out
}
