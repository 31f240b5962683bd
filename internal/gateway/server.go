package gateway

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Server runs the relay over HTTP with graceful shutdown.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer builds a Server listening on addr.
func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: handler,
		},
		logger: logger,
	}
}

// Start blocks serving requests until Shutdown or a listener failure.
func (s *Server) Start() error {
	s.logger.Info("gateway listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("gateway shutting down")
	return s.httpServer.Shutdown(ctx)
}
