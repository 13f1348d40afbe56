package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hackathon/internal/model"
	"hackathon/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignupRequest represents a participant signup request.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100,personname" example:"Asha Rao"`
	Email    string `json:"email" validate:"required,email,max=255" example:"asha@example.com"`
	Password string `json:"password" validate:"required,min=8,strongpassword" example:"Str0ng!Pass"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"asha@example.com"`
	Password string `json:"password" validate:"required"`
}

// UserAuthData is returned by signup and login.
type UserAuthData struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// AdminAuthData is returned by admin login.
type AdminAuthData struct {
	Admin *model.Admin `json:"admin"`
	Token string       `json:"token"`
}

// Signup godoc
// @Summary Create a participant account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup data"
// @Success 201 {object} SuccessResponse{data=UserAuthData}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, token, err := h.authService.Signup(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "User registered successfully", UserAuthData{User: user, Token: token})
}

// Login godoc
// @Summary Participant login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} SuccessResponse{data=UserAuthData}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Login successful", UserAuthData{User: user, Token: token})
}

// AdminLogin godoc
// @Summary Admin login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Admin credentials"
// @Success 200 {object} SuccessResponse{data=AdminAuthData}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/admin/login [post]
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	admin, token, err := h.authService.AdminLogin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Admin login successful", AdminAuthData{Admin: admin, Token: token})
}
