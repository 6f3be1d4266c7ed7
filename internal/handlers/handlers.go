// Package handlers is the HTTP layer: routing, auth middleware, request
// decoding and the response envelope.
package handlers

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"taskdeck/internal/auth"
	"taskdeck/internal/db"
)

type Handler struct {
	tasks      *db.TaskRepository
	categories *db.CategoryRepository
	verifier   *auth.Verifier
	limiter    *RateLimiter
	hub        *Hub
	logger     *log.Logger
}

func New(tasks *db.TaskRepository, categories *db.CategoryRepository, verifier *auth.Verifier, limiter *RateLimiter, hub *Hub, logger *log.Logger) *Handler {
	return &Handler{
		tasks:      tasks,
		categories: categories,
		verifier:   verifier,
		limiter:    limiter,
		hub:        hub,
		logger:     logger,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(h.logger))
	r.Use(h.limiter.Middleware)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.listTasks)
			r.Post("/", h.createTask)
			r.Get("/stats", h.taskStats)
			r.Patch("/bulk", h.bulkUpdateTasks)
			r.Delete("/bulk", h.bulkDeleteTasks)
			r.Get("/{id}", h.getTask)
			r.Patch("/{id}", h.updateTask)
			r.Delete("/{id}", h.deleteTask)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.listCategories)
			r.Post("/", h.createCategory)
		})

		r.Get("/ws", h.handleWebSocket)
	})

	return r
}

// requireAuth resolves the bearer token to an identity before any data
// access. A missing verification key is a server error, never a 401.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.verifier.Configured() {
			h.respondError(w, &errMisconfiguredVerifier, "Auth")
			return
		}
		token, err := auth.BearerToken(r)
		if err != nil {
			h.respondError(w, err, "Auth")
			return
		}
		identity, err := h.verifier.Verify(token)
		if err != nil {
			h.respondError(w, err, "Auth")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
	})
}

// requestScope yields the data handle scoped to the verified caller. Every
// repository call goes through it; there is no unscoped path.
func requestScope(r *http.Request) (db.Scope, bool) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		return db.Scope{}, false
	}
	return db.Scope{UserID: identity.UserID}, true
}

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}
