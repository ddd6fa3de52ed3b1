package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/turtacn/kcfgraph/internal/config"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/kcfgraph/pkg/errors"
)

// Server wraps http.Server with the configured timeouts.
type Server struct {
	srv             *http.Server
	router          http.Handler
	shutdownTimeout time.Duration
	logger          logging.Logger
}

// NewServer creates a server for handler. Zero timeouts fall back to the
// config package defaults.
func NewServer(cfg config.ServerConfig, handler http.Handler, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.Addr == "" {
		cfg.Addr = config.DefaultServerAddr
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = config.DefaultServerReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = config.DefaultServerWriteTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = config.DefaultServerShutdownTimeout
	}

	return &Server{
		router:          handler,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger.Named("http"),
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Start listens on the configured address and blocks until the server stops.
// A graceful Shutdown makes Start return nil.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeServiceUnavailable, "listen failed").WithDetail(s.srv.Addr)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("HTTP server listening", logging.String("addr", ln.Addr().String()))
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "http server failed")
	}
	return nil
}

// Shutdown drains in-flight requests, bounded by the shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "server shutdown failed")
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

//Personal.AI order the ending
