package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable is returned when the backend cannot be reached or its
	// response cannot be decoded.
	ErrUnavailable = errors.New("remote: service unavailable")
	// ErrInvalidCredentials is returned when the backend rejects a login.
	ErrInvalidCredentials = errors.New("remote: invalid credentials")
)

// StatusError reports a non-success HTTP status returned by the backend,
// carrying the backend's message when one was provided.
type StatusError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return fmt.Sprintf("remote: status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("remote: status %d", e.Code)
}
