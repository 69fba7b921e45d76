package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/helios-home/helios/internal/shared/errors"
)

// APIResponse is the envelope every REST endpoint answers with.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo carries the stable error code and a human-readable message.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse sends a successful response with a custom status code.
func SuccessResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, APIResponse{Success: true, Data: data})
}

// CreatedResponse sends a 201 response.
func CreatedResponse(c *gin.Context, data interface{}) {
	SuccessResponse(c, http.StatusCreated, data)
}

// ErrorResponse sends an error response with an explicit code.
func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error:   &ErrorInfo{Code: code, Message: message},
	})
}

// ErrorResponseWithError maps an error to the envelope. Errors that do not
// carry an AppError are reported as opaque internal failures.
func ErrorResponseWithError(c *gin.Context, err error) {
	if appErr := errors.GetAppError(err); appErr != nil {
		ErrorResponse(c, appErr.Status, appErr.Code, appErr.Message)
		return
	}
	ErrorResponse(c, http.StatusInternalServerError, errors.CodeDatabaseUnknownError,
		"an internal error occurred")
}

// NoContentResponse sends a 204 response.
func NoContentResponse(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
