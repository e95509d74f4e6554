// Package httpserver exposes the chat widget and dashboard API over HTTP.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"leadchat/internal/chat"
	"leadchat/internal/config"
	"leadchat/internal/database"
	"leadchat/internal/lead"
)

// Server is the HTTP front of the application.
type Server struct {
	srv *http.Server
	cfg config.ServerConfig
	log *slog.Logger
}

// New builds the router and the underlying http.Server.
func New(cfg config.ServerConfig, chatSvc *chat.Service, analyzer *lead.Analyzer, gateway *database.Gateway, log *slog.Logger) *Server {
	h := &handlers{
		chat:     chatSvc,
		analyzer: analyzer,
		gateway:  gateway,
		log:      log.With("component", "http"),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestLogger(log))

	registerRoutes(router, h)

	return &Server{
		srv: &http.Server{
			Addr:    cfg.Addr,
			Handler: router,
		},
		cfg: cfg,
		log: log.With("component", "http_server"),
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured timeout. It blocks and returns any listener error.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.log.Info("Shutting down HTTP server")
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return <-errCh
}
