package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/taskpilot-api/internal/api"
	apimiddleware "github.com/phrazzld/taskpilot-api/internal/api/middleware"
	"github.com/phrazzld/taskpilot-api/internal/api/shared"
)

// healthCheckTimeout bounds the database ping behind /health.
const healthCheckTimeout = 2 * time.Second

// setupRouter creates and configures the application's HTTP router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apimiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)

	authHandler := api.NewAuthHandler(app.authService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	aiHandler := api.NewAIHandler(app.summaryService, app.logger)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.authService)

	r.Get("/", app.handleBanner)
	r.Get("/health", app.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/me", authHandler.Me)
			r.Put("/auth/me", authHandler.UpdateMe)

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", taskHandler.CreateTask)
				r.Get("/", taskHandler.ListTasks)
				r.Get("/overdue", taskHandler.ListOverdue)
				r.Get("/due-today", taskHandler.ListDueToday)
				r.Get("/status/{status}", taskHandler.ListByStatus)
				r.Post("/bulk-update", taskHandler.BulkUpdate)
				r.Get("/{id}", taskHandler.GetTask)
				r.Put("/{id}", taskHandler.UpdateTask)
				r.Patch("/{id}/status", taskHandler.UpdateTaskStatus)
				r.Delete("/{id}", taskHandler.DeleteTask)
			})

			r.Post("/ai/summarize-tasks", aiHandler.SummarizeTasks)
			r.Get("/ai/summary", aiHandler.Summary)
		})
	})

	return r
}

func (app *application) handleBanner(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
		"message": "TaskPilot API",
		"version": version,
		"docs":    "/api/v1",
	})
}

// handleHealth reports liveness; it fails when the database is unreachable.
func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := app.db.PingContext(ctx); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "healthy"})
}
