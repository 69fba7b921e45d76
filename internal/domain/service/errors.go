package service

import "errors"

// Domain validation errors raised when building or mutating a service.
var (
	ErrDuplicatePortNumber      = errors.New("duplicate port number")
	ErrDuplicatePortType        = errors.New("duplicate port type")
	ErrMissingRequiredPorts     = errors.New("missing required ports")
	ErrInvalidPortConfiguration = errors.New("invalid port configuration")
	ErrServiceAlreadyExists     = errors.New("service already exists")
)
