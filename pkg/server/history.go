package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"pingcheck/pkg/log"
)

// getTransitions handles the GET /history/transitions endpoint.
func (s *Server) getTransitions(ctx echo.Context) error {
	if s.history == nil {
		return historyDisabled(ctx)
	}

	transitions, err := s.history.RecentTransitions(limitParam(ctx))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read transition history")
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to read transition history",
		})
	}
	return ctx.JSON(http.StatusOK, transitions)
}

// getActions handles the GET /history/actions endpoint.
func (s *Server) getActions(ctx echo.Context) error {
	if s.history == nil {
		return historyDisabled(ctx)
	}

	actions, err := s.history.RecentActions(limitParam(ctx))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read action history")
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to read action history",
		})
	}
	return ctx.JSON(http.StatusOK, actions)
}

func historyDisabled(ctx echo.Context) error {
	return ctx.JSON(http.StatusNotFound, map[string]string{
		"error": "Journal is not enabled, start with -journal to record history",
	})
}

// limitParam reads the optional ?limit= query; the journal clamps it.
func limitParam(ctx echo.Context) int {
	raw := ctx.QueryParam("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}
