// Package errors provides the application error type carried across the REST
// boundary. Every AppError has a stable machine-readable code from a closed set.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes returned in the REST envelope.
const (
	CodeRouterAPIUnavailable     = "router-api-unavailable"
	CodeRouterAPIInvalidResponse = "router-api-invalid-response"
	CodeRouterAPIAuthFailed      = "router-api-authentication-failed"
	CodeResourceNotFound         = "resource-not-found"
	CodeResourceUniqueViolation  = "resource-unique-violation"
	CodeResourceCheckViolation   = "resource-check-violation"
	CodeResourceFKViolation      = "resource-foreign-key-violation"
	CodeDatabaseConnectionFailed = "database-connection-failed"
	CodeDatabaseUnknownError     = "database-unknown-error"
	CodeDuplicatePortNumber      = "duplicate-port-number"
	CodeDuplicatePortType        = "duplicate-port-type"
	CodeMissingRequiredPorts     = "missing-required-ports"
	CodeInvalidPortConfiguration = "invalid-port-configuration"
	CodeServiceAlreadyExists     = "service-already-exists"
	CodePayloadValidationFailed  = "payload-validation-failed"
	CodeInvalidJSON              = "invalid-json"
	CodeInvalidQueryParams       = "invalid-query-params"
	CodeSerializationError       = "serialization-error"
)

// AppError is an error with a stable code and an HTTP status.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates an AppError with an explicit code and status.
func New(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: CodePayloadValidationFailed, Message: message, Status: http.StatusBadRequest}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: CodeResourceNotFound, Message: message, Status: http.StatusNotFound}
}

func NewConflictError(code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: http.StatusConflict}
}

func NewInternalError(message string) *AppError {
	return &AppError{Code: CodeDatabaseUnknownError, Message: message, Status: http.StatusInternalServerError}
}

// GetAppError extracts an AppError from an error chain, or nil.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsAppError checks whether the error chain carries an AppError.
func IsAppError(err error) bool {
	return GetAppError(err) != nil
}
