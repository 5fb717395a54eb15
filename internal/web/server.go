// Package web provides the HTTP API over the HIV incidence datasets.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/hivdash/internal/config"
	"github.com/JonMunkholm/hivdash/internal/core"
	"github.com/JonMunkholm/hivdash/internal/metrics"
	webmw "github.com/JonMunkholm/hivdash/internal/web/middleware"
)

// Server is the HTTP server for the dashboard API.
type Server struct {
	cfg      *config.Config
	loader   *core.Loader
	catalog  *core.Catalog
	metrics  *metrics.Metrics
	logger   *slog.Logger
	validate *validator.Validate
	limiter  *rateLimiter
	loads    *core.LoadLimiter

	router *chi.Mux
	server *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records request metrics and serves them on cfg.Metrics.Path.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the server logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config, loader *core.Loader, catalog *core.Catalog, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		loader:   loader,
		catalog:  catalog,
		logger:   slog.Default(),
		validate: newValidator(),
		loads:    core.NewLoadLimiter(cfg.Data.MaxConcurrentLoads, cfg.Data.LoadWait),
		router:   chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics != nil {
		s.metrics.WatchLoads(s.loads)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(webmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(webmw.Logger)
	s.router.Use(middleware.Recoverer)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	// Security hardening
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.limiter = newRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst)
		s.router.Use(s.limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil && s.cfg.Metrics.Enabled {
		s.router.Handle(s.cfg.Metrics.Path, s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(webmw.APIKeyAuth(&s.cfg.Security))

		r.Get("/age-groups", s.handleListAgeGroups)

		r.Route("/{ageGroup}", func(r chi.Router) {
			r.Use(s.withTable)

			r.Get("/indicators", s.handleIndicators)
			r.Get("/rows", s.handleRows)
			r.Get("/slice", s.handleSlice)
			r.Get("/summary", s.handleSummary)
			r.Get("/groups", s.handleGroups)
			r.Get("/series", s.handleSeries)

			// Downloads
			r.Get("/export.csv", s.handleExportCSV)
			r.Get("/export.xlsx", s.handleExportXLSX)
		})
	})
}

// Start begins listening for HTTP requests.
// It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	s.logger.Info("starting server", "addr", addr, "data_root", s.loader.Root())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server, then waits for in-flight loads.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.stop()
	}
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	if n := s.loads.Active(); n > 0 {
		s.logger.Info("waiting for loads to complete", "active", n)
	}
	return s.loads.WaitForDrain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			// The API serves data only; nothing should be loaded by a browser.
			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			}

			w.Header().Set("Referrer-Policy", "no-referrer")

			next.ServeHTTP(w, r)
		})
	}
}
