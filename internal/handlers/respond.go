package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"taskdeck/internal/apperr"
)

type pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func newPagination(page, limit, total int) pagination {
	totalPages := (total + limit - 1) / limit
	return pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"data": data})
}

var errMisconfiguredVerifier = apperr.Misconfigured{Detail: "token verification key is not set"}

type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// respondError converts a taxonomy error into its wire shape. resource names
// the entity for the 404 message ("Task not found").
func (h *Handler) respondError(w http.ResponseWriter, err error, resource string) {
	var verr *apperr.ValidationError
	var mis *apperr.Misconfigured

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "Invalid request data",
			Details: verr.Fields,
		})
	case errors.Is(err, apperr.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: resource + " not found"})
	case errors.As(err, &mis):
		h.logger.Error("backend misconfigured", "detail", mis.Detail)
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:   "Backend not configured",
			Details: mis.Detail,
		})
	default:
		h.logger.Error("request failed", "resource", strings.ToLower(resource), "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
	}
}

func isJSONContentType(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return ct == "" || strings.HasPrefix(ct, "application/json")
}
