package errors

import (
	"errors"
	"net/http"
)

// Validation errors: the request was well formed but violates a domain rule.
// Callers should surface the message and re-prompt.
var (
	// ErrUsernameTaken is returned when the lowercased username is already in use.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailTaken is returned when the lowercased email is already in use.
	ErrEmailTaken = errors.New("email already taken")
	// ErrUniqueViolation is returned when the storage unique constraint rejects
	// a commit that passed the advisory application-level check.
	ErrUniqueViolation = errors.New("username or email already taken")
	// ErrParentMenuNotFound is returned when a menu references a missing parent.
	ErrParentMenuNotFound = errors.New("parent menu does not exist")
	// ErrMenuOwnParent is returned when a menu is set as its own parent.
	ErrMenuOwnParent = errors.New("menu cannot be its own parent")
)

// Not-found errors: the referenced entity is absent or out of lookup scope.
var (
	// ErrUserNotFound is returned when a user id does not resolve in the requested scope.
	ErrUserNotFound = errors.New("user not found")
	// ErrRoleNotFound is returned when a role id does not resolve.
	ErrRoleNotFound = errors.New("role not found")
	// ErrPermissionNotFound is returned when a permission id does not resolve.
	ErrPermissionNotFound = errors.New("permission not found")
	// ErrMenuNotFound is returned when a menu id does not resolve.
	ErrMenuNotFound = errors.New("menu not found")
)

// Auth errors.
var (
	// ErrInvalidCredentials is returned when username or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrAccountInactive is returned when the account is unverified or deleted.
	ErrAccountInactive = errors.New("account is not active")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// ErrMenuCycle is returned when the stored menu tree contains a cycle. The
// store does not detect cycles, so a cycle is a fatal configuration error
// rather than something rendering should loop over.
var ErrMenuCycle = errors.New("menu tree contains a cycle")

// IsValidation reports whether err belongs to the validation category.
func IsValidation(err error) bool {
	return errors.Is(err, ErrUsernameTaken) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrUniqueViolation) ||
		errors.Is(err, ErrParentMenuNotFound) ||
		errors.Is(err, ErrMenuOwnParent)
}

// IsNotFound reports whether err belongs to the not-found category.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrRoleNotFound) ||
		errors.Is(err, ErrPermissionNotFound) ||
		errors.Is(err, ErrMenuNotFound)
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
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
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything outside the
// known categories is a persistence failure and surfaces as a generic 500;
// its detail belongs in the log, not the response.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case IsNotFound(err):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case IsValidation(err):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrAccountInactive):
		return NewHTTPError(http.StatusForbidden, err.Error(), "ACCOUNT_INACTIVE")
	case errors.Is(err, ErrInvalidRefreshToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_REFRESH_TOKEN")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "PERSISTENCE_ERROR")
	}
}
