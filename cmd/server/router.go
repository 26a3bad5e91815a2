package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/scry-tutor/internal/api"
	"github.com/phrazzld/scry-tutor/internal/api/middleware"
	"github.com/phrazzld/scry-tutor/internal/api/shared"
)

// setupRouter creates and configures the application router with all middleware and routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TraceMiddleware(app.logger))

	authMiddleware := middleware.NewAuthMiddleware(app.jwtService)
	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.workspaces, app.logger)
	workspaceHandler := api.NewWorkspaceHandler(app.workspaces, app.logger)
	sessionHandler := api.NewSessionHandler(app.sessionService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)

			r.Route("/workspace", func(r chi.Router) {
				r.Get("/", workspaceHandler.Get)
				r.Post("/document", workspaceHandler.SubmitDocument)
				r.Post("/questions/{id}/select", workspaceHandler.SelectQuestion)
				r.Post("/answer", workspaceHandler.SubmitAnswer)
				r.Post("/new", workspaceHandler.NewSession)
			})

			r.Get("/sessions", sessionHandler.List)
			r.Post("/sessions/{id}/restore", sessionHandler.Restore)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
