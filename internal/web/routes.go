package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/annolab/facepair/internal/web/handlers"
	"github.com/annolab/facepair/internal/web/middleware"
)

func (s *Server) setupRoutes(sessionManager *middleware.SessionManager) {
	// Create handlers
	sessionHandler := handlers.NewSessionHandler(s.config, sessionManager, s.catalog, s.ledger)
	annotateHandler := handlers.NewAnnotateHandler(s.config, s.resolver, s.ledger)
	imagesHandler := handlers.NewImagesHandler(s.resolver)
	reviewHandler := handlers.NewReviewHandler(s.catalog, s.resolver)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Entry screen routes (no session needed for login/instructions)
		r.Post("/session/login", sessionHandler.Login)
		r.Post("/session/logout", sessionHandler.Logout)
		r.Get("/session/status", sessionHandler.Status)
		r.Get("/instructions", sessionHandler.Instructions)

		// Annotation flow
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(sessionManager))

			r.Get("/annotate/current", annotateHandler.Current)
			r.Post("/annotate/submit", annotateHandler.Submit)
			r.Post("/annotate/followup", annotateHandler.Followup)
			r.Post("/annotate/restart", annotateHandler.Restart)
			r.Post("/annotate/instructions", annotateHandler.ShowInstructions)
			r.Post("/annotate/continue", annotateHandler.Continue)

			r.Get("/images/{name}", imagesHandler.Serve)
		})

		// Review browser (super users only)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(sessionManager))
			r.Use(middleware.RequireSuperUser())

			r.Get("/review/current", reviewHandler.Current)
			r.Put("/review/filter", reviewHandler.SetFilter)
			r.Post("/review/prev", reviewHandler.Prev)
			r.Post("/review/next", reviewHandler.Next)
			r.Post("/review/jump", reviewHandler.Jump)
			r.Get("/review/flags", reviewHandler.ListFlags)
			r.Post("/review/flags", reviewHandler.AddFlag)
			r.Get("/review/flags/export", reviewHandler.ExportFlags)
		})
	})

	// Placeholder page until a frontend is built
	s.router.Get("/*", serveIndex)
}

// serveIndex serves a placeholder page pointing at the API.
func serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Face Pair Annotation</title>
    <style>
        body { font-family: system-ui, sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #1a1a2e; color: #eee; }
        .container { text-align: center; }
        h1 { color: #00d9ff; }
        p { color: #aaa; }
        a { color: #00d9ff; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Face Pair Annotation</h1>
        <p>Frontend is not built yet.</p>
        <p>API is available at <a href="/api/v1/health">/api/v1/health</a></p>
    </div>
</body>
</html>`))
}
