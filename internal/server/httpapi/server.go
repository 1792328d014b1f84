// Package httpapi exposes the sync server over HTTP/JSON: auth endpoints,
// a liveness ping, and the authenticated item/record exchange.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clockd/clockd/internal/logging"
	"github.com/clockd/clockd/internal/server/config"
	"github.com/clockd/clockd/internal/server/services"
)

type Server struct {
	httpServer *http.Server
	logger     logging.Logger
}

func NewServer(cfg *config.Config, users *services.UserService, sync *services.SyncService, logger logging.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.EndpointAddr,
			Handler:      NewRouter(cfg, users, sync, logger),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// NewRouter builds the full route tree without binding a listener.
func NewRouter(cfg *config.Config, users *services.UserService, sync *services.SyncService, logger logging.Logger) http.Handler {
	h := &handler{
		users:  users,
		sync:   sync,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)
		r.Post("/auth/refresh", h.refresh)
		r.Get("/ping", h.ping)

		r.Group(func(r chi.Router) {
			r.Use(jwtAuth([]byte(cfg.SecretKey)))
			r.Get("/items", h.fetchItems)
			r.Post("/items", h.pushItems)
			r.Get("/records", h.fetchRecords)
			r.Post("/records", h.pushRecords)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "starting http server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info(ctx, "shutting down http server")
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
