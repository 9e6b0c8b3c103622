package server

import (
	"os"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/genelens/genelens/internal/appid"
	"github.com/genelens/genelens/internal/observability"
	"github.com/genelens/genelens/internal/server/handlers"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	s.router.Get("/health", handlers.HealthHandler)
	s.router.Get("/health/live", handlers.LivenessHandler)
	s.router.Get("/health/ready", handlers.ReadinessHandler)
	s.router.Get("/health/startup", handlers.StartupHandler)

	s.router.Get("/version", handlers.VersionHandler)

	// Metrics endpoint (in server package to access HandleError)
	s.router.Get("/metrics", MetricsHandler)

	if s.client != nil {
		s.router.Route("/v1", s.registerEnsemblRoutes)
	}

	// Admin signal endpoint (optional, requires GENELENS_ADMIN_TOKEN)
	s.registerAdminEndpoint()
}

// registerEnsemblRoutes mirrors the Ensembl REST paths under /v1.
func (s *Server) registerEnsemblRoutes(r chi.Router) {
	h := handlers.NewEnsemblHandler(s.client)

	r.Get("/xrefs/symbol/{species}/{symbol}", h.XrefSymbol)
	r.Get("/xrefs/id/{id}", h.XrefID)

	r.Get("/ld/populations", h.LDPopulations)
	r.Get("/ld/{species}/pairwise/{id1}/{id2}", h.LDPairwise)
	r.Get("/ld/{species}/region/{region}/{population}", h.LDRegion)
	r.Get("/ld/{species}/{id}/{population}", h.LDVariant)

	r.Get("/lookup/id/{id}", h.LookupID)
}

// registerAdminEndpoint optionally registers the admin signal endpoint
func (s *Server) registerAdminEndpoint() {
	envPrefix := appid.EnvPrefix
	adminToken := os.Getenv(envPrefix + "ADMIN_TOKEN")
	logger := observability.ServerLogger

	if adminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no " + envPrefix + "ADMIN_TOKEN set)")
		}
		return
	}

	// Bearer token auth and rate limiting
	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: adminToken,
		RateLimit: 10,  // 10 requests per minute
		RateBurst: 5,   // burst size
		Manager:   nil, // use default global manager
	})

	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("auth", "bearer token"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoint enabled - ensure this server is not exposed to public internet")
	}
}
