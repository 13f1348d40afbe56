package handler

import (
	"github.com/labstack/echo/v4"
)

// SuccessResponse is the envelope of every successful JSON response.
type SuccessResponse struct {
	Status  string      `json:"status" example:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c echo.Context, code int, message string, data interface{}) error {
	return c.JSON(code, SuccessResponse{Status: "success", Message: message, Data: data})
}
