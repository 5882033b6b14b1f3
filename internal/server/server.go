// Package server exposes the anonymization pipeline over HTTP: an upload
// form for a single operator, a download response with the redacted file,
// and a WebSocket feed of processing events.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/docveil/docveil/internal/config"
	"github.com/docveil/docveil/internal/events"
	"github.com/docveil/docveil/internal/logger"
	"github.com/docveil/docveil/internal/web"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server represents the upload server
type Server struct {
	config     *config.Config
	logger     *logger.Logger
	router     *mux.Router
	server     *http.Server
	hub        *events.Hub
	limiter    *ipLimiter
	scratchDir string
}

// New creates a new server instance
func New(cfg *config.Config, log *logger.Logger, hub *events.Hub) (*Server, error) {
	scratchDir := cfg.Dirs.Scratch
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	if err := os.MkdirAll(scratchDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}

	router := mux.NewRouter()
	server := &Server{
		config:     cfg,
		logger:     log.WithComponent("server"),
		router:     router,
		hub:        hub,
		limiter:    newIPLimiter(cfg.Limits.RequestsPerMin),
		scratchDir: scratchDir,
	}

	server.setupRoutes()

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Info endpoint
	s.router.HandleFunc("/info", s.handleInfo).Methods("GET")

	// Upload form - embedded HTML
	s.router.HandleFunc("/", web.ServeUploadPage).Methods("GET")

	// WebSocket endpoint for the live event feed
	if s.config.WebSocket.Enabled {
		s.router.HandleFunc(s.config.WebSocket.Path, s.handleWebSocket).Methods("GET")
	}

	// Anonymization endpoint
	anonymize := s.router.PathPrefix("/anonymize").Subrouter()
	anonymize.Use(s.loggingMiddleware)
	anonymize.Use(s.rateLimitMiddleware)
	anonymize.Methods("POST").HandlerFunc(s.handleAnonymize)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting upload server",
		zap.Int("port", s.config.Server.Port),
		zap.String("rules_path", s.config.Rules.Path),
		zap.String("output_dir", s.config.Dirs.Output),
	)

	go s.hub.Run()

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping upload server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// handleWebSocket hands the connection to the event hub
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.hub.HandleWebSocket(w, r)
}
