// Package server is the operator-facing HTTP endpoint: the status
// board, a load-balancer-friendly health probe, the journal history
// and the Prometheus metrics.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"pingcheck/pkg/journal"
	"pingcheck/pkg/log"
	"pingcheck/pkg/metrics"
	"pingcheck/pkg/status"
)

// History serves the journal queries. A nil history means the journal
// is disabled and the history routes answer 404.
type History interface {
	RecentTransitions(limit int) ([]journal.Transition, error)
	RecentActions(limit int) ([]journal.Action, error)
}

type Server struct {
	board                   *status.Board
	history                 History
	metrics                 *metrics.Metrics
	gracefulShutdownTimeout time.Duration
	echo                    *echo.Echo
}

// NewServer wires the ops endpoint. history may be nil.
func NewServer(board *status.Board, history History, m *metrics.Metrics, gracefulShutdownTimeout time.Duration) *Server {
	s := &Server{
		board:                   board,
		history:                 history,
		metrics:                 m,
		gracefulShutdownTimeout: gracefulShutdownTimeout,
		echo:                    echo.New(),
	}
	s.setupRoutes()
	return s
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start(addr string) error {
	go func() {
		log.Info().Str("addr", addr).Msg("Starting ops endpoint")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return s.Shutdown()
}

func (s *Server) Shutdown() error {
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.gracefulShutdownTimeout)
	defer cancel()

	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.echo.HideBanner = true
	s.echo.HidePort = true

	// No request logger: status polling must not drown the
	// transition log lines.
	s.echo.Use(middleware.Recover())

	s.echo.GET("/status", s.getStatus)
	s.echo.GET("/health", s.getHealth)
	s.echo.GET("/history/transitions", s.getTransitions)
	s.echo.GET("/history/actions", s.getActions)
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
}
