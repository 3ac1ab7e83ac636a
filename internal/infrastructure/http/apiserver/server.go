// Package apiserver assembles the chi router and net/http.Server for the
// five external operations: /decision, /feedback, /drm, /receipt/import,
// and /healthz.
package apiserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dinnerarbiter/core/internal/infrastructure/config"
	"github.com/dinnerarbiter/core/internal/infrastructure/http/handlers"
	mw "github.com/dinnerarbiter/core/internal/infrastructure/http/middleware"
	"github.com/dinnerarbiter/core/internal/infrastructure/security"
)

// Server wraps the chi-routed HTTP server.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	http   *http.Server
	router *chi.Mux
}

// New builds the router: every SPEC_FULL-mandated middleware (request
// id, logging, recovery, rate limit, tracing, security headers) runs
// ahead of auth, which runs ahead of the five route handlers.
func New(
	cfg *config.Config,
	logger *zap.Logger,
	h *handlers.Handlers,
	health *handlers.HealthHandler,
	auth *security.AuthService,
) *Server {
	m := mw.New(cfg, logger)
	r := chi.NewRouter()

	r.Use(m.RequestID)
	r.Use(m.Recovery)
	r.Use(m.Logger)
	r.Use(m.Security)
	r.Use(m.RateLimit)
	r.Use(m.Tracing)

	r.Get(cfg.Monitoring.HealthCheckPath, health.Healthz)
	r.Handle("/metrics", m.MetricsHandler())

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Use(m.Timeout(cfg.Server.DecisionTimeout))

		r.Post("/decision", h.Decision)
		r.Post("/feedback", h.Feedback)
		r.Post("/drm", h.DRM)
		r.Post("/receipt/import", h.ReceiptImport)
	})

	return &Server{
		cfg:    cfg,
		logger: logger.Named("server"),
		router: r,
		http: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      r,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}
}

// Router exposes the underlying chi router for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.http.Addr))
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.Server.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down HTTP server")
	return s.http.Shutdown(shutdownCtx)
}
