package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	internalErrors "github.com/gcbaptista/poll-search/internal/errors"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodePollNotFound     ErrorCode = "POLL_NOT_FOUND"
	ErrorCodeOptionNotFound   ErrorCode = "OPTION_NOT_FOUND"
	ErrorCodeDuplicateTitle   ErrorCode = "DUPLICATE_TITLE"
	ErrorCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrorCodeInvalidQuery     ErrorCode = "INVALID_QUERY"

	// Server Error Codes (5xx)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ErrorDetail provides additional context for an error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// APIError represents a standardized API error response
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	c.JSON(statusCode, &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	})
}

// SendDomainError maps domain errors from the service layer to HTTP
// responses using errors.Is on the internal sentinels.
func SendDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, internalErrors.ErrPollNotFound):
		SendError(c, http.StatusNotFound, ErrorCodePollNotFound, err.Error())
	case errors.Is(err, internalErrors.ErrOptionNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeOptionNotFound, err.Error())
	case errors.Is(err, internalErrors.ErrDuplicateTitle):
		SendError(c, http.StatusConflict, ErrorCodeDuplicateTitle, err.Error())
	case errors.Is(err, internalErrors.ErrInvalidInput):
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
	default:
		SendError(c, http.StatusInternalServerError, ErrorCodeInternalError, err.Error())
	}
}
