package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hackathon/internal/model"
	"hackathon/internal/service"
)

// UserHandler serves the participant's own profile and team.
type UserHandler struct {
	users service.UserService
	teams service.TeamService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(users service.UserService, teams service.TeamService) *UserHandler {
	return &UserHandler{users: users, teams: teams}
}

// ProfileData wraps a user profile.
type ProfileData struct {
	User *model.User `json:"user"`
}

// GetProfile godoc
// @Summary Get the caller's profile
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SuccessResponse{data=ProfileData}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/profile [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	id, err := UserIDFrom(c)
	if err != nil {
		return err
	}
	user, err := h.users.GetProfile(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", ProfileData{User: user})
}

// UpdateProfile godoc
// @Summary Update the caller's profile
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ProfilePatch true "Fields to change"
// @Success 200 {object} SuccessResponse{data=ProfileData}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /user/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	id, err := UserIDFrom(c)
	if err != nil {
		return err
	}
	var patch service.ProfilePatch
	if err := bindAndValidate(c, &patch); err != nil {
		return err
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Profile updated successfully", ProfileData{User: user})
}

// GetTeam godoc
// @Summary Get the caller's team
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SuccessResponse{data=TeamData}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/team [get]
func (h *UserHandler) GetTeam(c echo.Context) error {
	id, err := UserIDFrom(c)
	if err != nil {
		return err
	}
	team, err := h.teams.GetOwnTeam(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", TeamData{Team: team})
}

// UpdateTeam godoc
// @Summary Edit the caller's team
// @Description Allowed only while the team status is registered.
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.TeamPatch true "Fields to change"
// @Success 200 {object} SuccessResponse{data=TeamData}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/team [put]
func (h *UserHandler) UpdateTeam(c echo.Context) error {
	id, err := UserIDFrom(c)
	if err != nil {
		return err
	}
	var patch service.TeamPatch
	if err := c.Bind(&patch); err != nil {
		return invalidBody()
	}

	team, err := h.teams.UpdateOwnTeam(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Team updated successfully", TeamData{Team: team})
}
