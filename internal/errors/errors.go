package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error for the HTTP layer.
type Kind string

const (
	KindValidation     Kind = "VALIDATION_ERROR"
	KindAuthentication Kind = "AUTHENTICATION_ERROR"
	KindAuthorization  Kind = "AUTHORIZATION_ERROR"
	KindNotFound       Kind = "NOT_FOUND"
	KindCapacity       Kind = "REGISTRATION_CLOSED"
	KindConflict       Kind = "CONFLICT"
	KindInternal       Kind = "INTERNAL_ERROR"
)

var (
	// ErrTeamNotFound is returned when a team id does not resolve.
	ErrTeamNotFound = NotFound("Team not found")
	// ErrOwnTeamNotFound is returned when the caller has no team of their own.
	ErrOwnTeamNotFound = NotFound("No team found for this user")
	// ErrUserNotFound is returned when a user id does not resolve.
	ErrUserNotFound = NotFound("User not found")
	// ErrRegistrationClosed is returned once the team capacity has been reached.
	ErrRegistrationClosed = &AppError{Kind: KindCapacity, Message: "Registration is closed. Maximum number of teams reached."}
	// ErrTeamForbidden is returned when a participant edits a team they did not register.
	ErrTeamForbidden = Authorization("You can only edit your own team")
	// ErrTeamLocked is returned when a participant edits a team that is no longer registered.
	ErrTeamLocked = Validation("Team cannot be edited in its current status")
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = Authentication("Invalid email or password")
	// ErrInvalidAdminCredentials is returned for a failed admin login.
	ErrInvalidAdminCredentials = Authentication("Invalid admin credentials")
	// ErrUserAlreadyExists is returned by signup when the email is taken.
	ErrUserAlreadyExists = Validation("User with this email already exists")
	// ErrEmailTaken is returned by a profile update to an email owned by someone else.
	ErrEmailTaken = Validation("Email is already taken")
	// ErrDuplicateRecord is returned when a unique constraint fires after the application checks passed.
	ErrDuplicateRecord = Conflict("A conflicting registration was saved at the same time. Please retry.")
)

// FieldError describes one offending input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// AppError is the error type understood by the central HTTP error handler.
type AppError struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError with the same kind and message, so sentinels work with errors.Is
// on wrapped or rebuilt copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Validation builds a 400 error for bad input or a uniqueness conflict.
func Validation(message string, fields ...FieldError) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Fields: fields}
}

// Authentication builds a 401 error.
func Authentication(message string) *AppError {
	return &AppError{Kind: KindAuthentication, Message: message}
}

// Authorization builds a 403 error.
func Authorization(message string) *AppError {
	return &AppError{Kind: KindAuthorization, Message: message}
}

// NotFound builds a 404 error.
func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

// Conflict builds a 409 error.
func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// Internal wraps an unexpected failure.
func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "Something went wrong!", Err: err}
}

// ErrorResponse represents the standardized error envelope.
type ErrorResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Code    string       `json:"code,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Fields     []FieldError
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	status := "fail"
	if e.StatusCode >= http.StatusInternalServerError {
		status = "error"
	}
	return ErrorResponse{
		Status:  status,
		Message: e.Message,
		Code:    e.Code,
		Errors:  e.Fields,
	}
}

// StatusCode returns the HTTP status for an error kind.
func StatusCode(kind Kind) int {
	switch kind {
	case KindValidation, KindCapacity:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors become a 500 with a generic message.
func MapErrorToHTTP(err error) *HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &HTTPError{
			StatusCode: StatusCode(appErr.Kind),
			Message:    appErr.Message,
			Code:       string(appErr.Kind),
			Fields:     appErr.Fields,
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "Something went wrong!", string(KindInternal))
}
