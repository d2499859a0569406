package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/askhub/internal/audit"
	"github.com/ziadkadry99/askhub/internal/ingest"
	"github.com/ziadkadry99/askhub/internal/orchestrator"
	"github.com/ziadkadry99/askhub/internal/vectordb"
)

// Config holds server configuration.
type Config struct {
	Port     int
	DataDir  string // directory for uploaded documents and index files
	AllowAll bool   // allow all CORS origins (dev mode)
}

// Server exposes the query orchestrator and document management over HTTP.
type Server struct {
	cfg          Config
	orchestrator *orchestrator.Orchestrator
	pipeline     *ingest.Pipeline
	store        vectordb.Store
	auditLog     *audit.Store
	router       chi.Router
	httpServer   *http.Server
}

// New creates a Server with all dependencies.
func New(cfg Config, orch *orchestrator.Orchestrator, pipeline *ingest.Pipeline, store vectordb.Store, auditLog *audit.Store) *Server {
	s := &Server{
		cfg:          cfg,
		orchestrator: orch,
		pipeline:     pipeline,
		store:        store,
		auditLog:     auditLog,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Post("/documents", s.handleUploadDocument)
		r.Get("/documents", s.handleListDocuments)
		r.Delete("/documents/{name}", s.handleDeleteDocument)
		r.Get("/logs", s.handleLogs)
		r.Get("/stats", s.handleStats)
	})

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("askhub server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
