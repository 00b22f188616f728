package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/annolab/facepair/internal/catalog"
	"github.com/annolab/facepair/internal/config"
	"github.com/annolab/facepair/internal/images"
	"github.com/annolab/facepair/internal/ledger"
	"github.com/annolab/facepair/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config         *config.Config
	router         *chi.Mux
	httpServer     *http.Server
	sessionManager *middleware.SessionManager
	catalog        *catalog.Catalog
	ledger         ledger.Ledger
	resolver       *images.Resolver
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, port int, host string, cat *catalog.Catalog, led ledger.Ledger, resolver *images.Resolver) *Server {
	r := chi.NewRouter()

	sessionManager := middleware.NewSessionManager(cfg.Web.SessionSecret)

	s := &Server{
		config:         cfg,
		router:         r,
		sessionManager: sessionManager,
		catalog:        cat,
		ledger:         led,
		resolver:       resolver,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(middleware.CORS(cfg.Web.AllowedOrigins))
	r.Use(middleware.SecurityHeaders())

	// Set up routes
	s.setupRoutes(sessionManager)

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
