package client

import (
	"context"

	"github.com/google/uuid"

	"taskdeck/internal/models"
)

// Tag types, one per resource.
const (
	TagTask     = "Task"
	TagCategory = "Category"
)

// API binds the HTTP client to the cache: queries subscribe with provider
// tags, mutations invalidate them. Mirrors of the server endpoints.
type API struct {
	Client *Client
	Cache  *Cache
}

func NewAPI(c *Client) *API {
	return &API{Client: c, Cache: NewCache()}
}

// SubscribeTasks caches one filtered task page under the collection tag.
func (a *API) SubscribeTasks(ctx context.Context, f models.TaskFilters) *Subscription {
	key := "tasks?" + FilterValues(f).Encode()
	return a.Cache.Subscribe(ctx, key, []Tag{{Type: TagTask}}, func(ctx context.Context) (any, error) {
		return a.Client.GetTasks(ctx, f)
	})
}

// SubscribeTask caches a single task under its entity tag.
func (a *API) SubscribeTask(ctx context.Context, id uuid.UUID) *Subscription {
	key := "tasks/" + id.String()
	tags := []Tag{{Type: TagTask, ID: id.String()}}
	return a.Cache.Subscribe(ctx, key, tags, func(ctx context.Context) (any, error) {
		return a.Client.GetTask(ctx, id)
	})
}

// SubscribeTaskStats refreshes whenever any task changes, so it carries the
// collection tag.
func (a *API) SubscribeTaskStats(ctx context.Context) *Subscription {
	return a.Cache.Subscribe(ctx, "tasks/stats", []Tag{{Type: TagTask}}, func(ctx context.Context) (any, error) {
		return a.Client.GetTaskStats(ctx)
	})
}

func (a *API) SubscribeCategories(ctx context.Context) *Subscription {
	return a.Cache.Subscribe(ctx, "categories", []Tag{{Type: TagCategory}}, func(ctx context.Context) (any, error) {
		return a.Client.GetCategories(ctx)
	})
}

// CreateTask creates and invalidates the task collection, so every
// subscribed list and the stats query refetch in the background.
func (a *API) CreateTask(ctx context.Context, draft models.TaskDraft) (models.Task, error) {
	task, err := a.Client.CreateTask(ctx, draft)
	if err != nil {
		return models.Task{}, err
	}
	a.Cache.Invalidate(Tag{Type: TagTask})
	return task, nil
}

func (a *API) UpdateTask(ctx context.Context, id uuid.UUID, patch models.TaskPatch) (models.Task, error) {
	task, err := a.Client.UpdateTask(ctx, id, patch)
	if err != nil {
		return models.Task{}, err
	}
	a.Cache.Invalidate(Tag{Type: TagTask, ID: id.String()}, Tag{Type: TagTask})
	return task, nil
}

func (a *API) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if err := a.Client.DeleteTask(ctx, id); err != nil {
		return err
	}
	a.Cache.Invalidate(Tag{Type: TagTask, ID: id.String()}, Tag{Type: TagTask})
	return nil
}

func (a *API) CreateCategory(ctx context.Context, draft models.CategoryDraft) (models.Category, error) {
	category, err := a.Client.CreateCategory(ctx, draft)
	if err != nil {
		return models.Category{}, err
	}
	a.Cache.Invalidate(Tag{Type: TagCategory})
	return category, nil
}
