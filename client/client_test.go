package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"taskdeck/internal/apperr"
	"taskdeck/internal/models"
)

func staticToken(token string) TokenFunc {
	return func(ctx context.Context) (string, error) { return token, nil }
}

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"data": []models.Task{}})
	}))
	defer server.Close()

	c := New(server.URL, staticToken("tok-123"))
	if _, err := c.GetTasks(context.Background(), models.TaskFilters{}); err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestFilterValues(t *testing.T) {
	completed := true
	high := models.PriorityHigh
	search := "milk"
	categoryID := uuid.New()
	before := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	q := FilterValues(models.TaskFilters{
		Completed:     &completed,
		Priority:      &high,
		CategoryID:    &categoryID,
		Search:        &search,
		DueDateBefore: &before,
		Page:          2,
		Limit:         50,
	})

	want := map[string]string{
		"completed":     "true",
		"priority":      "high",
		"categoryId":    categoryID.String(),
		"search":        "milk",
		"dueDateBefore": "2025-06-01T00:00:00Z",
		"page":          "2",
		"limit":         "50",
	}
	for k, v := range want {
		if got := q.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if q.Has("dueDateAfter") {
		t.Error("absent filter was encoded")
	}

	// the empty filter set encodes to no parameters at all
	if got := FilterValues(models.TaskFilters{}).Encode(); got != "" {
		t.Errorf("empty filters encode to %q", got)
	}
}

func TestClientDecodesErrorTaxonomy(t *testing.T) {
	var status int
	var body any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	defer server.Close()
	c := New(server.URL, staticToken("tok"))

	status = http.StatusNotFound
	body = map[string]any{"error": "Task not found"}
	_, err := c.GetTask(context.Background(), uuid.New())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("404: got %v, want ErrNotFound", err)
	}

	status = http.StatusUnauthorized
	body = map[string]any{"error": "Unauthorized"}
	_, err = c.GetTask(context.Background(), uuid.New())
	if !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("401: got %v, want ErrUnauthenticated", err)
	}

	status = http.StatusBadRequest
	body = map[string]any{
		"error":   "Invalid request data",
		"details": []map[string]string{{"field": "title", "message": "Title is required"}},
	}
	_, err = c.CreateTask(context.Background(), models.TaskDraft{})
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("400: got %v, want ValidationError", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0].Field != "title" {
		t.Errorf("400 fields = %+v", verr.Fields)
	}

	status = http.StatusBadGateway
	body = map[string]any{"error": "upstream exploded"}
	_, err = c.GetTask(context.Background(), uuid.New())
	var up *apperr.Upstream
	if !errors.As(err, &up) {
		t.Errorf("502: got %v, want Upstream", err)
	}
}

func TestClientTokenFailureIsUnauthenticated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the server without a token")
	}))
	defer server.Close()

	c := New(server.URL, func(ctx context.Context) (string, error) {
		return "", errors.New("session expired")
	})
	_, err := c.GetTasks(context.Background(), models.TaskFilters{})
	if !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("got %v, want ErrUnauthenticated", err)
	}
}

// fakeBackend serves the task endpoints from an in-memory slice so API-level
// cache behavior can be observed end to end.
type fakeBackend struct {
	mu    sync.Mutex
	tasks []models.Task
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tasks", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{
			"data":       b.tasks,
			"pagination": Pagination{Page: 1, Limit: 20, Total: len(b.tasks), TotalPages: 1},
		})
	})
	mux.HandleFunc("POST /tasks", func(w http.ResponseWriter, r *http.Request) {
		var draft models.TaskDraft
		json.NewDecoder(r.Body).Decode(&draft)
		task := models.Task{ID: uuid.New(), Title: draft.Title, Priority: draft.Priority}
		b.mu.Lock()
		b.tasks = append(b.tasks, task)
		b.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"data": task})
	})
	return mux
}

func TestAPICreateTaskRefreshesSubscribedList(t *testing.T) {
	backend := &fakeBackend{}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	api := NewAPI(New(server.URL, staticToken("tok")))
	sub := api.SubscribeTasks(context.Background(), models.TaskFilters{})
	defer sub.Close()

	res := waitResult(t, sub)
	if res.Err != nil || len(res.Data.(TaskPage).Tasks) != 0 {
		t.Fatalf("initial page = %+v", res)
	}

	created, err := api.CreateTask(context.Background(), models.TaskDraft{Title: "Buy milk", Priority: models.PriorityLow})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	res = waitResult(t, sub)
	if res.Err != nil {
		t.Fatalf("refetch failed: %v", res.Err)
	}
	page := res.Data.(TaskPage)
	if len(page.Tasks) != 1 || page.Tasks[0].ID != created.ID {
		t.Errorf("refetched page = %+v, want the created task", page.Tasks)
	}
}
