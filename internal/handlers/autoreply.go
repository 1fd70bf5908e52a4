package handlers

import (
	"net/http"

	"replyflow/internal/auth"
	"replyflow/internal/autoreply"
	"replyflow/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RunAutoReplyHandler triggers one auto-reply run for the caller
// @Summary Run auto-reply
// @Description Executes one fetch-reply-notify run for the authenticated user and returns its summary
// @Tags auto-reply
// @Produce json
// @Success 200 {object} models.RunSummary
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/auto-reply/run [post]
func RunAutoReplyHandler(runner *autoreply.Runner, logger zerolog.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, _ := c.Get(auth.ContextUserKey).(string)
		if userID == "" {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		}

		summary, err := runner.Run(c.Request().Context(), userID)
		if err != nil {
			// The run could not start at all; per-candidate failures
			// would have come back inside the summary instead.
			logger.Error().Err(err).Str("user_id", userID).Msg("Auto-reply run failed")
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		}

		return c.JSON(http.StatusOK, summary)
	}
}
