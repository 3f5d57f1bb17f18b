// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/linguachat/encryption/internal/errors"
	"github.com/linguachat/encryption/internal/guard"
)

// Response is the envelope every JSON endpoint returns. Success responses
// carry Data; failures carry Error.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failed operation. Code is a stable identifier
// clients branch on; Details is optional structured context, such as the
// current state on a conflict.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// SuccessResponse builds a success envelope around the given data.
func SuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// ErrorResponse builds a failure envelope.
func ErrorResponse(code, message string, details any) Response {
	return Response{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message, Details: details},
	}
}

// HandleErrorGin maps domain errors to HTTP status codes and writes the
// error envelope using Gin.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	var statusCode int
	var code, message string

	var violation *guard.Violation

	switch {
	case apperrors.As(err, &violation):
		// Guard violations carry a stable code clients can branch on.
		statusCode = http.StatusBadRequest
		code = violation.Code
		message = violation.Message

	case apperrors.Is(err, apperrors.ErrNotFound):
		statusCode = http.StatusNotFound
		code = "not_found"
		message = "The requested resource was not found"

	case apperrors.Is(err, apperrors.ErrConflict):
		statusCode = http.StatusConflict
		code = "conflict"
		message = "A conflict occurred with existing data"

	case apperrors.Is(err, apperrors.ErrIntegrity):
		// Integrity failures are server-side problems. The response stays
		// generic; the log line carries the detail.
		statusCode = http.StatusInternalServerError
		code = "internal_error"
		message = "An internal error occurred"

	case apperrors.Is(err, apperrors.ErrInvalidInput):
		statusCode = http.StatusUnprocessableEntity
		code = "invalid_input"
		message = err.Error()

	case apperrors.Is(err, apperrors.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		code = "unauthorized"
		message = "Authentication is required"

	case apperrors.Is(err, apperrors.ErrForbidden):
		statusCode = http.StatusForbidden
		code = "forbidden"
		message = "You don't have permission to access this resource"

	default:
		statusCode = http.StatusInternalServerError
		code = "internal_error"
		message = "An internal error occurred"
	}

	// Log the full error details (including wrapped errors)
	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", code),
			slog.Any("error", err),
		)
	}

	c.JSON(statusCode, ErrorResponse(code, message, nil))
}

// HandleBadRequestGin writes a 400 Bad Request envelope for malformed JSON or parameters using Gin.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	c.JSON(http.StatusBadRequest, ErrorResponse("bad_request", err.Error(), nil))
}

// HandleValidationErrorGin writes a 422 Unprocessable Entity envelope for validation errors using Gin.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}

	c.JSON(http.StatusUnprocessableEntity, ErrorResponse("validation_error", err.Error(), nil))
}
