package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"replyflow/internal/auth"
	"replyflow/internal/models"
	"replyflow/internal/rulestore"

	"github.com/labstack/echo/v4"
)

// GetConfigHandler returns the caller's rule configuration
// @Summary Get rule configuration
// @Description Returns the user's auto-reply rule, creating the disabled default on first access
// @Tags config
// @Produce json
// @Success 200 {object} models.ConfigResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/config [get]
func GetConfigHandler(store *rulestore.Store, slackConfigured bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, _ := c.Get(auth.ContextUserKey).(string)
		if userID == "" {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		}

		cfg, err := store.GetOrCreate(c.Request().Context(), userID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		}

		return c.JSON(http.StatusOK, models.ConfigResponse{
			RuleConfig:      *cfg,
			SlackConfigured: slackConfigured,
		})
	}
}

// UpdateConfigHandler validates and persists a rule update
// @Summary Update rule configuration
// @Description Replaces the user's auto-reply rule after validation
// @Tags config
// @Accept json
// @Produce json
// @Param request body models.UpdateRuleRequest true "Rule update"
// @Success 200 {object} models.ConfigResponse
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/config [put]
func UpdateConfigHandler(store *rulestore.Store, slackConfigured bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, _ := c.Get(auth.ContextUserKey).(string)
		if userID == "" {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		}

		var req models.UpdateRuleRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ValidationErrorResponse{
				Error: fmt.Sprintf("Invalid request body: %v", err),
			})
		}

		cfg, err := store.Update(c.Request().Context(), userID, &req)
		if err != nil {
			var ve *rulestore.ValidationError
			if errors.As(err, &ve) {
				return c.JSON(http.StatusBadRequest, models.ValidationErrorResponse{
					Error:  "validation failed",
					Fields: ve.Fields,
				})
			}
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		}

		return c.JSON(http.StatusOK, models.ConfigResponse{
			RuleConfig:      *cfg,
			SlackConfigured: slackConfigured,
		})
	}
}
