package handler

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"hackathon/internal/errors"
)

// Messages for errors raised by echo itself.
const (
	msgTooManyRequests = "Too many requests from this IP, please try again later."
	msgBodyTooLarge    = "Request body is too large"
	msgResourceMissing = "Resource not found"
)

// NewErrorHandler returns the central echo error handler. Every error leaves as the
// {status, message, errors?} envelope. Internal failures are logged, and their detail
// is only sent to clients outside production.
func NewErrorHandler(log *slog.Logger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		httpErr := toHTTPError(err, c)
		if httpErr.StatusCode >= http.StatusInternalServerError {
			log.Error("request failed",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"error", err,
			)
			if !production {
				httpErr.Message = err.Error()
			}
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(httpErr.StatusCode)
		} else {
			writeErr = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		if writeErr != nil {
			log.Error("write error response", "error", writeErr)
		}
	}
}

func toHTTPError(err error, c echo.Context) *errors.HTTPError {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return errors.MapErrorToHTTP(appErr)
	}

	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NewHTTPError(http.StatusNotFound, msgResourceMissing, string(errors.KindNotFound))
	}

	var he *echo.HTTPError
	if stderrors.As(err, &he) {
		if he.Internal != nil {
			var inner *errors.AppError
			if stderrors.As(he.Internal, &inner) {
				return errors.MapErrorToHTTP(inner)
			}
		}
		switch he.Code {
		case http.StatusNotFound:
			return errors.NewHTTPError(he.Code, fmt.Sprintf("Route %s not found", c.Request().URL.Path), string(errors.KindNotFound))
		case http.StatusTooManyRequests:
			return errors.NewHTTPError(he.Code, msgTooManyRequests, "RATE_LIMITED")
		case http.StatusRequestEntityTooLarge:
			return errors.NewHTTPError(he.Code, msgBodyTooLarge, string(errors.KindValidation))
		}
		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			message = m
		}
		code := ""
		if he.Code < http.StatusInternalServerError {
			code = string(errors.KindValidation)
		}
		return errors.NewHTTPError(he.Code, message, code)
	}

	return errors.MapErrorToHTTP(err)
}
