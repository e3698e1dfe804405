package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of application errors
type ErrorType string

const (
	// ErrorTypeConfig covers missing or invalid settings detected
	// before any network call is attempted.
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeAuth covers credential and token problems: missing
	// client id/secret, failed exchange, failed refresh.
	ErrorTypeAuth ErrorType = "authentication"
	// ErrorTypeAuthExpired marks an upstream auth failure that
	// survived the single refresh-and-retry attempt.
	ErrorTypeAuthExpired ErrorType = "auth_expired"
	// ErrorTypeAPI covers upstream 4xx/5xx responses other than auth.
	ErrorTypeAPI ErrorType = "api_error"
	// ErrorTypeNetwork covers transport-level failures and timeouts.
	ErrorTypeNetwork ErrorType = "network_error"
	// ErrorTypeValidation covers bad inbound request parameters.
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNotFound covers missing resources.
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeInternal covers everything the service did to itself.
	ErrorTypeInternal ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code"`
	Internal   error                  `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Internal.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// NewConfigError creates an error for settings missing before any
// network call is made.
func NewConfigError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConfig,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewAuthError creates a new authentication error
func NewAuthError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeAuth,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
		Internal:   internal,
	}
}

// NewAuthExpiredError creates the terminal error returned after the
// single auth-triggered retry also failed.
func NewAuthExpiredError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthExpired,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
		Internal:   internal,
	}
}

// NewAPIError creates an error for a non-auth upstream failure.
func NewAPIError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeAPI,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Internal:   internal,
	}
}

// NewNetworkError wraps a transport failure caught at the boundary of
// an outbound call.
func NewNetworkError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeNetwork,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Internal:   internal,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}

// AsAppError extracts the AppError from err's chain, if any.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// TypeOf returns the ErrorType of err when it is (or wraps) an
// AppError, and ErrorTypeInternal otherwise.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsType reports whether err is (or wraps) an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	return err != nil && TypeOf(err) == t
}
