package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"hackathon/internal/auth"
	"hackathon/internal/errors"
)

// ClaimsContextKey is where the auth middleware stores verified token claims.
const ClaimsContextKey = "claims"

// ClaimsFrom returns the verified claims of the request, if any.
func ClaimsFrom(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(ClaimsContextKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// UserIDFrom returns the participant id carried by the request token.
func UserIDFrom(c echo.Context) (uuid.UUID, error) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return uuid.Nil, errors.Authentication("Access denied. No token provided.")
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, errors.Authentication("Invalid token.")
	}
	return id, nil
}

// optionalUserID returns the participant id when the request carries a valid token.
func optionalUserID(c echo.Context) *uuid.UUID {
	id, err := UserIDFrom(c)
	if err != nil {
		return nil
	}
	return &id
}

func parseTeamID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, errors.Validation("Invalid id: "+c.Param("id"), errors.FieldError{
			Field:   "id",
			Message: "Invalid team id",
			Value:   c.Param("id"),
		})
	}
	return id, nil
}

// bindAndValidate binds the request into req and runs the registered validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return invalidBody()
	}
	return c.Validate(req)
}

func invalidBody() error {
	return errors.Validation("Invalid request body")
}
