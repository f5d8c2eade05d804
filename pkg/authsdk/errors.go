package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/pressauth/pkg/httpx"
)

// Error types carried in the errorType field.
const (
	ErrorTypeNotFound        = "NotFoundError"
	ErrorTypeUnauthorized    = "UnauthorizedError"
	ErrorTypeNoPermission    = "NoPermissionError"
	ErrorTypeTooManyRequests = "TooManyRequestsError"
	ErrorTypeBadRequest      = "BadRequestError"
	ErrorTypeValidation      = "ValidationError"
	ErrorTypeInternal        = "InternalServerError"
)

// APIError is a single entry of the {"errors":[...]} envelope. The server
// writes it with WriteError and the client returns it from failed calls.
type APIError struct {
	StatusCode int    `json:"-"`
	ErrorType  string `json:"errorType"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorType, e.Message)
}

// WriteError writes the error envelope with the private cache policy.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteErrors(w, e.StatusCode, e.ErrorType, e.Message)
}

func NewAPIError(status int, errorType, message string) *APIError {
	return &APIError{StatusCode: status, ErrorType: errorType, Message: message}
}

var (
	ErrUserNotFound = NewAPIError(http.StatusNotFound, ErrorTypeNotFound,
		"There is no user with that email address.")
	ErrWrongPassword = NewAPIError(http.StatusUnauthorized, ErrorTypeUnauthorized,
		"Your password is incorrect.")
	ErrUserSuspended = NewAPIError(http.StatusForbidden, ErrorTypeNoPermission,
		"Your account is locked. Please reset your password.")
	ErrInvalidClient = NewAPIError(http.StatusForbidden, ErrorTypeNoPermission,
		"Invalid client credentials.")
	ErrInvalidRefreshToken = NewAPIError(http.StatusForbidden, ErrorTypeNoPermission,
		"Invalid refresh token.")
	ErrUnsupportedGrant = NewAPIError(http.StatusBadRequest, ErrorTypeBadRequest,
		"Unsupported or missing grant_type.")
	ErrMissingCredentials = NewAPIError(http.StatusBadRequest, ErrorTypeBadRequest,
		"Required credentials are missing from the request.")
	ErrInvalidBody = NewAPIError(http.StatusBadRequest, ErrorTypeBadRequest,
		"The request body could not be parsed.")
	ErrInvalidResetToken = NewAPIError(http.StatusBadRequest, ErrorTypeBadRequest,
		"Invalid password reset link.")
	ErrExpiredResetToken = NewAPIError(http.StatusBadRequest, ErrorTypeBadRequest,
		"Password reset link has expired.")
	ErrPasswordsMismatch = NewAPIError(http.StatusUnprocessableEntity, ErrorTypeValidation,
		"Your new passwords do not match.")
	ErrPasswordTooShort = NewAPIError(http.StatusUnprocessableEntity, ErrorTypeValidation,
		"Your password must be at least 8 characters long.")
	ErrTooManyAttempts = NewAPIError(http.StatusTooManyRequests, ErrorTypeTooManyRequests,
		"Too many login attempts. Please wait before trying again.")
	ErrServer = NewAPIError(http.StatusInternalServerError, ErrorTypeInternal,
		"Internal server error.")
)

// parseErrorResponse decodes a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var env ErrorResponse
	if err := json.Unmarshal(body, &env); err == nil && len(env.Errors) > 0 {
		e := env.Errors[0]
		return &APIError{StatusCode: resp.StatusCode, ErrorType: e.ErrorType, Message: e.Message}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		ErrorType:  ErrorTypeInternal,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
