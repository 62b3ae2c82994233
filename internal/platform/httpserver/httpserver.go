// Package httpserver wraps the standard http.Server with the timeouts
// and shutdown behaviour shared by every binary in this repository.
package httpserver

import (
	"context"
	"net/http"
	"time"
)

// Server is a thin wrapper around http.Server with sane timeouts.
type Server struct {
	srv *http.Server
}

// New builds a server listening on addr with handler as its root.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
// It returns http.ErrServerClosed after a clean shutdown.
func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Addr reports the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}
