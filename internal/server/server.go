package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/desertthunder/crate/internal/tasks"
)

// Server serves the HTTP API for one coordinator.
type Server struct {
	coord   *tasks.Coordinator
	hub     *Hub
	logger  *log.Logger
	engine  *gin.Engine
	version string
}

// Options configures a [Server]
type Options struct {
	Hub     *Hub // Required for /ws; also registered as a presenter by the caller
	Logger  *log.Logger
	Version string
}

// New builds the router. The hub must be running before clients connect.
func New(coord *tasks.Coordinator, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Hub == nil {
		opts.Hub = NewHub(opts.Logger)
	}
	s := &Server{coord: coord, hub: opts.Hub, logger: opts.Logger, version: opts.Version}
	s.engine = s.routes()
	return s
}

// Handler returns the root [http.Handler]
func (s *Server) Handler() http.Handler { return s.engine }

// Hub returns the websocket hub
func (s *Server) Hub() *Hub { return s.hub }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
