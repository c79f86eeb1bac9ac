package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/curricula-api/internal/api"
	apiMiddleware "github.com/phrazzld/curricula-api/internal/api/middleware"
)

// setupRouter creates the application router with its middleware and routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(app.config.Server.RequestTimeout()))

	r.Get("/health", api.Health)

	courseHandler := api.NewCourseHandler(app.orchestrator, app.validator, app.logger)
	courseHandler.RegisterRoutes(r)

	return r
}
