package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jsnanigans/rowcast/internal/config"
)

const shutdownTimeout = 5 * time.Second

// Server is the rowcast HTTP API with its access log.
type Server struct {
	logger *zap.Logger
	http   *http.Server
}

// NewServer wires the router and access log for cfg.Server.Addr.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := NewRouter(NewHandler(cfg, logger))
	return &Server{
		logger: logger,
		http: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           WithAccessLog(router, logger),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler exposes the wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.String("addr", s.http.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
