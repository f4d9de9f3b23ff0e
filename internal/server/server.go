// Package server exposes the snapshot store over HTTP:
//
//	GET    /roadmap/modules          list every stored record
//	POST   /roadmap/modules-bulk     replace the snapshot
//	POST   /roadmap/modules/{id}     upsert one record
//	DELETE /roadmap/modules/reset    clear the snapshot
//	GET    /roadmap/files/{id}       list a module's attachments
//	GET    /healthz                  store health (no auth)
//	GET    /metrics                  Prometheus metrics (no auth)
//
// /roadmap routes require a bearer token when one is configured.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"roadmap/internal/config"
	"roadmap/internal/logging"
	"roadmap/internal/snapshotstore"
)

const maxBodyBytes = 8 << 20

// Server serves the snapshot contract.
type Server struct {
	bind     string
	token    string
	filesDir string
	store    snapshotstore.Store
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *Metrics
	router   chi.Router

	listener net.Listener
	server   *http.Server
}

// New builds a server over store. Each server owns its metrics registry.
func New(cfg *config.Config, store snapshotstore.Store, logger *slog.Logger) *Server {
	registry := prometheus.NewRegistry()
	s := &Server{
		bind:     strings.TrimSpace(cfg.API.Bind),
		token:    strings.TrimSpace(cfg.API.Token),
		filesDir: cfg.Paths.FilesDir,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "api-server"),
		registry: registry,
		metrics:  NewMetrics(registry),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/roadmap", func(r chi.Router) {
		r.Use(authMiddleware(s.token))
		r.Get("/modules", s.handleList)
		r.Post("/modules-bulk", s.handleBulk)
		r.Delete("/modules/reset", s.handleReset)
		r.Post("/modules/{id}", s.handleUpsert)
		r.Get("/files/{id}", s.handleFiles)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured bind address and serves until ctx is done
// or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api bind address is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if count, err := s.store.Count(ctx); err == nil {
		s.metrics.SetSnapshotSize(count)
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.String("backend", s.store.Backend()),
		logging.Bool("auth", s.token != ""),
	)
	return nil
}

// Stop shuts the listener down.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
