// Package client is the Go consumer of the taskdeck API: an HTTP transport
// that attaches the caller's bearer token, a tag-addressed response cache
// with background refetch, and the view-facing UI state store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"taskdeck/internal/apperr"
	"taskdeck/internal/models"
)

// TokenFunc supplies the bearer token for each request, so a refreshed
// session is picked up without rebuilding the client.
type TokenFunc func(ctx context.Context) (string, error)

type Client struct {
	baseURL string
	http    *http.Client
	token   TokenFunc
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, token TokenFunc, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		token:   token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pagination is the list-response paging metadata.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// TaskPage is one page of tasks plus its paging metadata.
type TaskPage struct {
	Tasks      []models.Task
	Pagination Pagination
}

func (c *Client) GetTasks(ctx context.Context, f models.TaskFilters) (TaskPage, error) {
	var out struct {
		Data       []models.Task `json:"data"`
		Pagination Pagination    `json:"pagination"`
	}
	if err := c.do(ctx, http.MethodGet, "/tasks", FilterValues(f), nil, &out); err != nil {
		return TaskPage{}, err
	}
	return TaskPage{Tasks: out.Data, Pagination: out.Pagination}, nil
}

func (c *Client) GetTask(ctx context.Context, id uuid.UUID) (models.Task, error) {
	var out struct {
		Data models.Task `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/tasks/"+id.String(), nil, nil, &out); err != nil {
		return models.Task{}, err
	}
	return out.Data, nil
}

func (c *Client) CreateTask(ctx context.Context, draft models.TaskDraft) (models.Task, error) {
	var out struct {
		Data models.Task `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, draft, &out); err != nil {
		return models.Task{}, err
	}
	return out.Data, nil
}

func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, patch models.TaskPatch) (models.Task, error) {
	var out struct {
		Data models.Task `json:"data"`
	}
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+id.String(), nil, patch, &out); err != nil {
		return models.Task{}, err
	}
	return out.Data, nil
}

func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id.String(), nil, nil, nil)
}

func (c *Client) GetTaskStats(ctx context.Context) (models.TaskStats, error) {
	var out struct {
		Data models.TaskStats `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/tasks/stats", nil, nil, &out); err != nil {
		return models.TaskStats{}, err
	}
	return out.Data, nil
}

func (c *Client) GetCategories(ctx context.Context) ([]models.Category, error) {
	var out struct {
		Data []models.Category `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) CreateCategory(ctx context.Context, draft models.CategoryDraft) (models.Category, error) {
	var out struct {
		Data models.Category `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/categories", nil, draft, &out); err != nil {
		return models.Category{}, err
	}
	return out.Data, nil
}

// FilterValues encodes filters as the list endpoint's query parameters.
func FilterValues(f models.TaskFilters) url.Values {
	q := url.Values{}
	if f.Completed != nil {
		q.Set("completed", strconv.FormatBool(*f.Completed))
	}
	if f.Priority != nil {
		q.Set("priority", string(*f.Priority))
	}
	if f.CategoryID != nil {
		q.Set("categoryId", f.CategoryID.String())
	}
	if f.Search != nil {
		q.Set("search", *f.Search)
	}
	if f.DueDateBefore != nil {
		q.Set("dueDateBefore", f.DueDateBefore.Format(time.RFC3339))
	}
	if f.DueDateAfter != nil {
		q.Set("dueDateAfter", f.DueDateAfter.Format(time.RFC3339))
	}
	if f.Page != 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit != 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	token, err := c.token(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrUnauthenticated, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &apperr.Upstream{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeError maps a failure response back onto the error taxonomy.
func decodeError(resp *http.Response) error {
	var body struct {
		Error   string          `json:"error"`
		Details json.RawMessage `json:"details"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)

	switch resp.StatusCode {
	case http.StatusBadRequest:
		var fields []apperr.FieldError
		if err := json.Unmarshal(body.Details, &fields); err == nil && len(fields) > 0 {
			return &apperr.ValidationError{Fields: fields}
		}
		return &apperr.ValidationError{Fields: []apperr.FieldError{
			{Field: "body", Message: body.Error},
		}}
	case http.StatusUnauthorized:
		return apperr.ErrUnauthenticated
	case http.StatusNotFound:
		return apperr.ErrNotFound
	default:
		return &apperr.Upstream{
			Op:  "request",
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, body.Error),
		}
	}
}
