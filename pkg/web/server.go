package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fluxorio/todo-service/pkg/failfast"
	"github.com/fluxorio/todo-service/pkg/logging"
)

// ServerConfig configures the HTTP server
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8080")
	Addr string

	// ReadHeaderTimeout bounds header parsing (default 10s)
	ReadHeaderTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown (default 10s)
	ShutdownTimeout time.Duration
}

// Server wraps http.Server with graceful lifecycle management
type Server struct {
	config ServerConfig
	srv    *http.Server
	logger logging.Logger
}

// NewServer creates a server serving router on config.Addr
func NewServer(config ServerConfig, router *Router, logger logging.Logger) *Server {
	failfast.NotEmpty(config.Addr, "Addr")
	failfast.NotNil(router, "router")
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = 10 * time.Second
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	return &Server{
		config: config,
		logger: logger,
		srv: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: config.ReadHeaderTimeout,
		},
	}
}

// Start blocks serving requests until Stop is called
func (s *Server) Start() error {
	s.logger.Infof("http server listening on %s", s.config.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the server down
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	return s.srv.Shutdown(ctx)
}
