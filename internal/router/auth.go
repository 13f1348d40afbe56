package router

import (
	stderrors "errors"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"hackathon/internal/auth"
	"hackathon/internal/errors"
	"hackathon/internal/handler"
	"hackathon/internal/model"
	"hackathon/internal/service"
)

const (
	msgNoToken         = "Access denied. No token provided."
	msgInvalidToken    = "Invalid token."
	msgInvalidAdmin    = "Invalid admin token."
	msgTokenExpired    = "Token expired."
	msgAdminRequired   = "Access denied. Admin privileges required."
	msgParticipantOnly = "Access denied. Participant token required."
	msgUserGone        = "User no longer exists."
)

// requireRole verifies the bearer token against the secret of role and stores
// the claims under handler.ClaimsContextKey.
func requireRole(jwtService *auth.JWTService, role model.Role) echo.MiddlewareFunc {
	return echojwt.WithConfig(jwtConfig(jwtService, role, false))
}

// optionalParticipant attaches participant claims when a valid token is sent and
// lets the request through anonymously otherwise.
func optionalParticipant(jwtService *auth.JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(jwtConfig(jwtService, model.RoleParticipant, true))
}

func jwtConfig(jwtService *auth.JWTService, role model.Role, optional bool) echojwt.Config {
	cfg := echojwt.Config{
		ContextKey: handler.ClaimsContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateToken(token, role)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return tokenError(err, role)
		},
	}
	if optional {
		cfg.ContinueOnIgnoredError = true
		cfg.ErrorHandler = func(c echo.Context, err error) error {
			return nil
		}
	}
	return cfg
}

func tokenError(err error, role model.Role) error {
	switch {
	case stderrors.Is(err, auth.ErrWrongRole):
		if role == model.RoleAdmin {
			return errors.Authorization(msgAdminRequired)
		}
		return errors.Authorization(msgParticipantOnly)
	case stderrors.Is(err, auth.ErrTokenExpired):
		return errors.Authentication(msgTokenExpired)
	case stderrors.Is(err, auth.ErrTokenInvalid):
		if role == model.RoleAdmin {
			return errors.Authentication(msgInvalidAdmin)
		}
		return errors.Authentication(msgInvalidToken)
	}
	return errors.Authentication(msgNoToken)
}

// requireExistingUser rejects participant tokens whose account has been removed.
func requireExistingUser(users service.UserService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := handler.UserIDFrom(c)
			if err != nil {
				return err
			}
			if _, err := users.GetProfile(c.Request().Context(), id); err != nil {
				if stderrors.Is(err, errors.ErrUserNotFound) {
					return errors.Authentication(msgUserGone)
				}
				return err
			}
			return next(c)
		}
	}
}
