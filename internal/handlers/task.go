package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"taskdeck/internal/apperr"
	"taskdeck/internal/models"
	"taskdeck/internal/validate"
)

const maxBodyBytes = 1 << 20 // 1MB

// listTasks handles GET /tasks.
func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(r)
	if !ok {
		h.respondError(w, apperr.ErrUnauthenticated, "Task")
		return
	}

	filters, err := validate.TaskFilterQuery(r.URL.Query())
	if err != nil {
		h.respondError(w, err, "Task")
		return
	}

	rows, total, err := h.tasks.List(r.Context(), scope, filters)
	if err != nil {
		h.respondError(w, err, "Task")
		return
	}

	tasks := make([]models.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.API())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":       tasks,
		"pagination": newPagination(filters.Page, filters.Limit, total),
	})
}

// createTask handles POST /tasks. The owner always comes from the verified
// identity; any owner-like field in the payload is ignored.
func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(r)
	if !ok {
		h.respondError(w, apperr.ErrUnauthenticated, "Task")
		return
	}
	if !isJSONContentType(r) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Content-Type must be application/json"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	draft, err := validate.CreateTask(r.Body)
	if err != nil {
		h.respondError(w, err, "Task")
		return
	}

	now := time.Now().UTC()
	row := &models.TaskRow{
		ID:          uuid.New(),
		UserID:      scope.UserID,
		Title:       draft.Title,
		Description: draft.Description,
		Completed:   false,
		Priority:    draft.Priority,
		DueDate:     draft.DueDate,
		CategoryID:  draft.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.tasks.Create(r.Context(), row); err != nil {
		h.respondError(w, err, "Task")
		return
	}

	h.hub.Broadcast(scope.UserID, Event{Event: "created", Resource: "task", ID: row.ID})
	writeData(w, http.StatusCreated, row.API())
}

// getTask handles GET /tasks/{id}.
func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(r)
	if !ok {
		h.respondError(w, apperr.ErrUnauthenticated, "Task")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, apperr.ErrNotFound, "Task")
		return
	}

	row, err := h.tasks.Get(r.Context(), scope, id)
	if err != nil {
		h.respondError(w, err, "Task")
		return
	}
	writeData(w, http.StatusOK, row.API())
}

// updateTask handles PATCH /tasks/{id}. Only supplied fields change;
// updated_at is refreshed regardless.
func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(r)
	if !ok {
		h.respondError(w, apperr.ErrUnauthenticated, "Task")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, apperr.ErrNotFound, "Task")
		return
	}
	if !isJSONContentType(r) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Content-Type must be application/json"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	patch, err := validate.UpdateTask(r.Body)
	if err != nil {
		h.respondError(w, err, "Task")
		return
	}

	row, err := h.tasks.Update(r.Context(), scope, id, patch)
	if err != nil {
		h.respondError(w, err, "Task")
		return
	}

	h.hub.Broadcast(scope.UserID, Event{Event: "updated", Resource: "task", ID: id})
	writeData(w, http.StatusOK, row.API())
}

// deleteTask handles DELETE /tasks/{id}. Deleting an id that does not exist
// for the caller is still a success, so callers cannot probe for existence.
func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(r)
	if !ok {
		h.respondError(w, apperr.ErrUnauthenticated, "Task")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
		return
	}

	deleted, err := h.tasks.Delete(r.Context(), scope, id)
	if err != nil {
		h.respondError(w, err, "Task")
		return
	}
	if deleted {
		h.hub.Broadcast(scope.UserID, Event{Event: "deleted", Resource: "task", ID: id})
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

// taskStats handles GET /tasks/stats.
func (h *Handler) taskStats(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(r)
	if !ok {
		h.respondError(w, apperr.ErrUnauthenticated, "Task")
		return
	}

	stats, err := h.tasks.Stats(r.Context(), scope)
	if err != nil {
		h.respondError(w, err, "Task")
		return
	}
	writeData(w, http.StatusOK, stats)
}

type bulkFailure struct {
	ID    uuid.UUID `json:"id"`
	Error string    `json:"error"`
}

// bulkUpdateTasks handles PATCH /tasks/bulk. Each id is updated
// independently under the caller's scope; there is no atomicity across the
// set, so the response reports a per-id outcome.
func (h *Handler) bulkUpdateTasks(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(r)
	if !ok {
		h.respondError(w, apperr.ErrUnauthenticated, "Task")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var body struct {
		IDs  []string        `json:"ids"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid JSON body"})
		return
	}

	ids, err := validate.UUIDList("ids", body.IDs)
	if err != nil {
		h.respondError(w, err, "Task")
		return
	}
	patch, err := validate.UpdateTask(bytesReader(body.Data))
	if err != nil {
		h.respondError(w, err, "Task")
		return
	}

	updated := make([]models.Task, 0, len(ids))
	failed := []bulkFailure{}
	for _, id := range ids {
		row, err := h.tasks.Update(r.Context(), scope, id, patch)
		if err != nil {
			failed = append(failed, bulkFailure{ID: id, Error: failureReason(err)})
			continue
		}
		updated = append(updated, row.API())
		h.hub.Broadcast(scope.UserID, Event{Event: "updated", Resource: "task", ID: id})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": updated, "failed": failed})
}

// bulkDeleteTasks handles DELETE /tasks/bulk with the same per-id outcome
// contract as bulk update.
func (h *Handler) bulkDeleteTasks(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(r)
	if !ok {
		h.respondError(w, apperr.ErrUnauthenticated, "Task")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid JSON body"})
		return
	}

	ids, err := validate.UUIDList("ids", body.IDs)
	if err != nil {
		h.respondError(w, err, "Task")
		return
	}

	deleted := make([]uuid.UUID, 0, len(ids))
	failed := []bulkFailure{}
	for _, id := range ids {
		ok, err := h.tasks.Delete(r.Context(), scope, id)
		if err != nil {
			failed = append(failed, bulkFailure{ID: id, Error: failureReason(err)})
			continue
		}
		if ok {
			deleted = append(deleted, id)
			h.hub.Broadcast(scope.UserID, Event{Event: "deleted", Resource: "task", ID: id})
		} else {
			failed = append(failed, bulkFailure{ID: id, Error: "Task not found"})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Tasks deleted",
		"deleted": deleted,
		"failed":  failed,
	})
}

// bytesReader treats an absent bulk patch as the empty update, which only
// refreshes updated_at.
func bytesReader(raw json.RawMessage) io.Reader {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	return bytes.NewReader(raw)
}

func failureReason(err error) string {
	if errors.Is(err, apperr.ErrNotFound) {
		return "Task not found"
	}
	return "Internal server error"
}
