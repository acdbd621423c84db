// Package http serves the learning API: run history, stored models,
// DOT downloads, run triggering and the live monitor socket.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"statelearn/logging"
	"statelearn/monitoring"
)

// Server wraps the API http.Server.
type Server struct {
	server  *http.Server
	hub     *monitoring.Hub
	metrics *monitoring.Metrics
	trigger func(ctx context.Context) error
}

// NewServer builds the server. trigger starts one learn-and-compare
// run; it may be nil when runs cannot be triggered remotely.
func NewServer(port int, hub *monitoring.Hub, metrics *monitoring.Metrics, trigger func(ctx context.Context) error) *Server {
	s := &Server{hub: hub, metrics: metrics, trigger: trigger}

	mux := http.NewServeMux()
	s.registerHandlers(mux)

	chain := Chain(
		RecoveryMiddleware,
		LoggerMiddleware,
		CORSMiddleware([]string{"*"}),
	)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      chain(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Start blocks until the listener stops.
func (s *Server) Start() error {
	logging.L().Info("starting HTTP server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logging.L().Info("shutting down HTTP server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}
