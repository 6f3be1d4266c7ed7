package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"taskdeck/internal/apperr"
	"taskdeck/internal/models"
	"taskdeck/internal/validate"
)

// listCategories handles GET /categories.
func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(r)
	if !ok {
		h.respondError(w, apperr.ErrUnauthenticated, "Category")
		return
	}

	rows, err := h.categories.List(r.Context(), scope)
	if err != nil {
		h.respondError(w, err, "Category")
		return
	}

	categories := make([]models.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, row.API())
	}
	writeData(w, http.StatusOK, categories)
}

// createCategory handles POST /categories.
func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(r)
	if !ok {
		h.respondError(w, apperr.ErrUnauthenticated, "Category")
		return
	}
	if !isJSONContentType(r) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Content-Type must be application/json"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	draft, err := validate.CreateCategory(r.Body)
	if err != nil {
		h.respondError(w, err, "Category")
		return
	}

	now := time.Now().UTC()
	row := &models.CategoryRow{
		ID:        uuid.New(),
		UserID:    scope.UserID,
		Name:      draft.Name,
		Color:     draft.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.categories.Create(r.Context(), row); err != nil {
		h.respondError(w, err, "Category")
		return
	}

	h.hub.Broadcast(scope.UserID, Event{Event: "created", Resource: "category", ID: row.ID})
	writeData(w, http.StatusCreated, row.API())
}
