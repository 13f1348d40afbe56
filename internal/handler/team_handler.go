package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"hackathon/internal/model"
	"hackathon/internal/service"
)

// TeamHandler handles team registration and administration endpoints.
type TeamHandler struct {
	teams service.TeamService
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(teams service.TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

// RegisteredTeam is returned by team registration.
type RegisteredTeam struct {
	Team              *model.Team             `json:"team"`
	RegistrationStats model.RegistrationStats `json:"registrationStats"`
}

// TeamData wraps a single team.
type TeamData struct {
	Team *model.Team `json:"team"`
}

// StatusRequest changes the status of a team.
type StatusRequest struct {
	Status model.TeamStatus `json:"status" validate:"required,oneof=registered confirmed cancelled" enums:"registered,confirmed,cancelled"`
}

// Register godoc
// @Summary Register a team
// @Description Open to anyone. A participant token, when sent, records the caller as owner.
// @Tags teams
// @Accept json
// @Produce json
// @Param request body service.TeamInput true "Team"
// @Success 201 {object} SuccessResponse{data=RegisteredTeam}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /teams [post]
func (h *TeamHandler) Register(c echo.Context) error {
	var req service.TeamInput
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	team, stats, err := h.teams.RegisterTeam(c.Request().Context(), req, optionalUserID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Team registered successfully", RegisteredTeam{
		Team:              team,
		RegistrationStats: stats,
	})
}

// List godoc
// @Summary List teams
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size 1-100 (default 10)"
// @Param search query string false "Search team name, registration number, member name, email or USN"
// @Param status query string false "Status filter" Enums(registered, confirmed, cancelled)
// @Param sortBy query string false "Sort field" Enums(teamName, submittedAt, status)
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} SuccessResponse{data=service.TeamList}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /teams [get]
func (h *TeamHandler) List(c echo.Context) error {
	var query service.ListQuery
	if err := bindAndValidate(c, &query); err != nil {
		return err
	}

	list, err := h.teams.ListTeams(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", list)
}

// Export godoc
// @Summary Export all teams as CSV
// @Tags teams
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string "CSV file"
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /teams/export [get]
func (h *TeamHandler) Export(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.teams.ExportCSV(c.Request().Context(), &buf); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", service.CSVFilename))
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

// Get godoc
// @Summary Get a team
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Team ID"
// @Success 200 {object} SuccessResponse{data=TeamData}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /teams/{id} [get]
func (h *TeamHandler) Get(c echo.Context) error {
	id, err := parseTeamID(c)
	if err != nil {
		return err
	}
	team, err := h.teams.GetTeam(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", TeamData{Team: team})
}

// UpdateStatus godoc
// @Summary Change a team's status
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Team ID"
// @Param request body StatusRequest true "New status"
// @Success 200 {object} SuccessResponse{data=TeamData}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /teams/{id}/status [put]
func (h *TeamHandler) UpdateStatus(c echo.Context) error {
	id, err := parseTeamID(c)
	if err != nil {
		return err
	}
	var req StatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	team, err := h.teams.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Team status updated successfully", TeamData{Team: team})
}

// Update godoc
// @Summary Update a team
// @Description Partial update. Omitted fields keep their values.
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Team ID"
// @Param request body service.TeamPatch true "Fields to change"
// @Success 200 {object} SuccessResponse{data=TeamData}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /teams/{id} [put]
func (h *TeamHandler) Update(c echo.Context) error {
	id, err := parseTeamID(c)
	if err != nil {
		return err
	}
	var patch service.TeamPatch
	if err := c.Bind(&patch); err != nil {
		return invalidBody()
	}

	team, err := h.teams.UpdateTeam(c.Request().Context(), id, patch, service.AdminActor)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Team updated successfully", TeamData{Team: team})
}

// Delete godoc
// @Summary Delete a team
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Team ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /teams/{id} [delete]
func (h *TeamHandler) Delete(c echo.Context) error {
	id, err := parseTeamID(c)
	if err != nil {
		return err
	}
	if err := h.teams.DeleteTeam(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Team deleted successfully", nil)
}
