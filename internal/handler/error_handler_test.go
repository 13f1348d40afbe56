package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hackathon/internal/errors"
	"hackathon/internal/logger"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		production bool
		wantCode   int
		want       errors.ErrorResponse
	}{
		{
			name:     "validation with fields",
			err:      errors.Validation("Validation failed", errors.FieldError{Field: "teamName", Message: "Team name must be between 2 and 100 characters"}),
			wantCode: http.StatusBadRequest,
			want: errors.ErrorResponse{
				Status:  "fail",
				Message: "Validation failed",
				Code:    "VALIDATION_ERROR",
				Errors:  []errors.FieldError{{Field: "teamName", Message: "Team name must be between 2 and 100 characters"}},
			},
		},
		{
			name:     "forbidden",
			err:      errors.ErrTeamForbidden,
			wantCode: http.StatusForbidden,
			want:     errors.ErrorResponse{Status: "fail", Message: "You can only edit your own team", Code: "AUTHORIZATION_ERROR"},
		},
		{
			name:     "record not found",
			err:      fmt.Errorf("load: %w", gorm.ErrRecordNotFound),
			wantCode: http.StatusNotFound,
			want:     errors.ErrorResponse{Status: "fail", Message: msgResourceMissing, Code: "NOT_FOUND"},
		},
		{
			name:     "rate limited",
			err:      echo.NewHTTPError(http.StatusTooManyRequests),
			wantCode: http.StatusTooManyRequests,
			want:     errors.ErrorResponse{Status: "fail", Message: msgTooManyRequests, Code: "RATE_LIMITED"},
		},
		{
			name:     "internal detail outside production",
			err:      errors.Internal(fmt.Errorf("db down")),
			wantCode: http.StatusInternalServerError,
			want:     errors.ErrorResponse{Status: "error", Message: "Something went wrong!: db down", Code: "INTERNAL_ERROR"},
		},
		{
			name:       "internal detail hidden in production",
			err:        errors.Internal(fmt.Errorf("db down")),
			production: true,
			wantCode:   http.StatusInternalServerError,
			want:       errors.ErrorResponse{Status: "error", Message: "Something went wrong!", Code: "INTERNAL_ERROR"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			var logs bytes.Buffer
			e.HTTPErrorHandler = NewErrorHandler(logger.NewWithWriter(&logs, "test", "debug"), tt.production)

			req := httptest.NewRequest(http.MethodGet, "/api/teams", nil)
			rec := httptest.NewRecorder()
			e.HTTPErrorHandler(tt.err, e.NewContext(req, rec))

			require.Equal(t, tt.wantCode, rec.Code)
			var got errors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.want, got)
			if tt.wantCode >= http.StatusInternalServerError {
				assert.Contains(t, logs.String(), "request failed")
			}
		})
	}
}
