package service

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the services. The API layer maps them to status
// codes with errors.Is.
var (
	// ErrNotOwned indicates a resource belongs to a different user.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidHorizon indicates a forecast horizon outside the allowed range.
	ErrInvalidHorizon = errors.New("invalid forecast horizon")

	// ErrNilDependency is returned by constructors given a nil collaborator.
	ErrNilDependency = errors.New("required dependency is nil")
)

// ServiceError is an unexpected failure annotated with the operation that
// failed.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err. Errors that already carry a service sentinel
// pass through untouched so callers can still match them.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{ErrNotOwned, ErrInvalidCredentials, ErrInvalidHorizon} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return &ServiceError{Operation: operation, Message: message, Err: err}
}

func nilDependency(name string) error {
	return fmt.Errorf("%w: %s", ErrNilDependency, name)
}
