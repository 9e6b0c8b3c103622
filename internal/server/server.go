package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/genelens/genelens/ensembl"
	"github.com/genelens/genelens/internal/config"
	apperrors "github.com/genelens/genelens/internal/errors"
	"github.com/genelens/genelens/internal/observability"
	"github.com/genelens/genelens/internal/server/handlers"
	servermw "github.com/genelens/genelens/internal/server/middleware"
)

// Server is the local Ensembl gateway. All /v1 routes share the limiter of
// the ensembl client they were built with.
type Server struct {
	router *chi.Mux
	server *http.Server
	cfg    config.ServerConfig
	client *ensembl.Client
}

// New creates a gateway for client. A nil client serves only the health,
// version and metrics endpoints.
func New(cfg config.ServerConfig, client *ensembl.Client) *Server {
	r := chi.NewRouter()

	// Standard chi middleware
	r.Use(middleware.RealIP)

	// RequestID first for correlation, then metrics, then panic recovery
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestMetrics)
	r.Use(servermw.Recovery)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		err := apperrors.NewNotFoundError("The requested resource was not found")
		HandleError(w, req, err)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		err := apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource")
		HandleError(w, req, err)
	})

	s := &Server{
		router: r,
		cfg:    cfg,
		client: client,
	}

	// Ensure handlers use the centralized error responder
	handlers.SetHTTPErrorResponder(HandleError)

	s.registerRoutes()

	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := s.Addr()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  orDefault(s.cfg.ReadTimeout, 30*time.Second),
		WriteTimeout: orDefault(s.cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:  orDefault(s.cfg.IdleTimeout, 120*time.Second),
	}

	fields := []zap.Field{
		zap.String("host", s.cfg.Host),
		zap.Int("port", s.cfg.Port),
		zap.String("addr", addr),
	}
	if s.client != nil {
		fields = append(fields,
			zap.String("upstream", s.client.BaseURL()),
			zap.Int("max_concurrent", s.client.Limiter().MaxConcurrent()),
			zap.Duration("min_interval", s.client.Limiter().MinInterval()))
	}
	observability.ServerLogger.Info("Starting HTTP gateway", fields...)

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	observability.ServerLogger.Info("Shutting down HTTP gateway")
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing and instrumentation
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the server port for testing
func (s *Server) Port() int {
	return s.cfg.Port
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
