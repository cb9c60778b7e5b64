package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/atelier-api/internal/apperr"
)

// Error codes
const (
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeInvalidState     = "INVALID_STATE"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeDependencyFailed = "DEPENDENCY_FAILED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// Respond translates an application error into an HTTP response. Only the
// taxonomy message is surfaced; wrapped dependency detail stays server-side.
func Respond(c *gin.Context, err error) {
	message := apperr.MessageOf(err)

	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
	case apperr.KindPermissionDenied:
		RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeForbidden, message))
	case apperr.KindInvalidState:
		RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidState, message))
	case apperr.KindValidation:
		RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
	case apperr.KindConflict:
		RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeConflict, message))
	case apperr.KindDependency:
		RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeDependencyFailed, message))
	default:
		RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, "Internal server error"))
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}
