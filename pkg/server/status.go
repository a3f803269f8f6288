package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pingcheck/pkg/status"
)

// getStatus handles the GET /status endpoint.
func (s *Server) getStatus(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, s.board.Snapshot())
}

// getHealth handles the GET /health endpoint. Only a confirmed FAIL
// answers 503; Unknown and INACTIVE are not evidence of an outage.
func (s *Server) getHealth(ctx echo.Context) error {
	health, _ := s.board.Get(status.KeyHealthStatus)
	if health == "" {
		health = "Unknown"
	}

	code := http.StatusOK
	if health == "FAIL" {
		code = http.StatusServiceUnavailable
	}
	return ctx.JSON(code, map[string]string{
		"health": health,
	})
}
