package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"hackathon/internal/service"
)

// StatusHandler serves public registration status and liveness.
type StatusHandler struct {
	teams       service.TeamService
	environment string
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(teams service.TeamService, environment string) *StatusHandler {
	return &StatusHandler{teams: teams, environment: environment}
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status      string    `json:"status" example:"success"`
	Message     string    `json:"message" example:"Server is running"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment" example:"development"`
}

// Status godoc
// @Summary Registration status
// @Tags status
// @Produce json
// @Success 200 {object} SuccessResponse{data=model.StatusReport}
// @Failure 500 {object} errors.ErrorResponse
// @Router /status [get]
func (h *StatusHandler) Status(c echo.Context) error {
	report, err := h.teams.GetStatusReport(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", report)
}

// Health godoc
// @Summary Liveness check
// @Tags status
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *StatusHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:      "success",
		Message:     "Server is running",
		Timestamp:   time.Now().UTC(),
		Environment: h.environment,
	})
}
